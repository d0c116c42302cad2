package timecode

import "testing"

func TestSecondsToFrames(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		fps     float64
		want    int
	}{
		{"zero", 0, 30, 0},
		{"one second at 30", 1, 30, 30},
		{"single frame boundary at 30", 1.0 / 30.0, 30, 1},
		{"single frame boundary at 24", 1.0 / 24.0, 24, 1},
		{"half frame rounds down", 0.5 / 30.0, 30, 0},
		{"ten seconds at 60", 10, 60, 600},
		{"fractional fps", 2, 29.97, 59},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SecondsToFrames(tt.seconds, tt.fps)
			if got != tt.want {
				t.Errorf("SecondsToFrames(%v, %v) = %d, want %d", tt.seconds, tt.fps, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, fps := range []float64{24, 30, 60, 120} {
		for frames := 0; frames <= 100000; frames++ {
			secs := FramesToSeconds(frames, fps)
			got := SecondsToFrames(secs, fps)
			if got != frames {
				t.Fatalf("round trip failed at fps=%v frames=%d: got %d", fps, frames, got)
			}
		}
	}
}

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		name   string
		frames int
		fps    float64
		want   string
	}{
		{"zero", 0, 30, "00:00:00:00"},
		{"sub second", 29, 30, "00:00:00:29"},
		{"exact second", 30, 30, "00:00:01:00"},
		{"minute boundary", 1800, 30, "00:01:00:00"},
		{"hour boundary", 108000, 30, "01:00:00:00"},
		{"mixed", 108000 + 1800 + 30 + 5, 30, "01:01:01:05"},
		{"negative clamps to zero", -10, 30, "00:00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTimecode(tt.frames, tt.fps)
			if got != tt.want {
				t.Errorf("FormatTimecode(%d, %v) = %q, want %q", tt.frames, tt.fps, got, tt.want)
			}
		})
	}
}
