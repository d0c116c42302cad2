package engine

import (
	"testing"

	"fluxcut/pkg/models"

	"github.com/sirupsen/logrus"
)

func testEngine() *Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return New(logger)
}

func testSettings() models.ProjectSettings {
	return models.ProjectSettings{
		Name:      "test",
		FrameRate: 30,
		Seed:      "test-seed",
	}
}

// clip builds a timeline clip with a full set of valid timing fields.
func clip(id string, source, start, trimStart, trimEnd int) models.Clip {
	return models.Clip{
		ID:                   id,
		File:                 id + ".mp4",
		Name:                 id,
		Type:                 models.MediaVideo,
		SourceDurationFrames: source,
		StartFrame:           start,
		EndFrame:             start + (trimEnd - trimStart),
		TrimStartFrame:       trimStart,
		TrimEndFrame:         trimEnd,
		Speed:                1,
		Volume:               100,
		Track:                1,
		Origin:               models.OriginAuto,
	}
}

func assertTrimBounds(t *testing.T, c *models.Clip) {
	t.Helper()
	if c.TrimStartFrame < 0 || c.TrimStartFrame >= c.TrimEndFrame || c.TrimEndFrame > c.SourceDurationFrames {
		t.Errorf("clip %s trim window [%d..%d) violates source bounds %d",
			c.ID, c.TrimStartFrame, c.TrimEndFrame, c.SourceDurationFrames)
	}
}

func TestRandomizeSegmentSlip(t *testing.T) {
	e := testEngine()
	clips := []models.Clip{clip("a", 300, 0, 0, 90)}

	out, changed := e.RandomizeSegment(clips, testSettings(), "a")
	if !changed {
		t.Fatal("expected slip edit to apply")
	}

	c := &out[0]
	if got := c.TrimLengthFrames(); got != 90 {
		t.Errorf("segment length changed: got %d, want 90", got)
	}
	if c.TrimStartFrame < 0 || c.TrimStartFrame > 210 {
		t.Errorf("trim start %d outside [0,210]", c.TrimStartFrame)
	}
	if c.StartFrame != 0 || c.EndFrame != 90 {
		t.Errorf("timeline placement moved: [%d..%d)", c.StartFrame, c.EndFrame)
	}
	assertTrimBounds(t, c)
}

func TestRandomizeSegmentDeterministic(t *testing.T) {
	e := testEngine()
	clips := []models.Clip{clip("a", 300, 0, 0, 90)}

	first, _ := e.RandomizeSegment(clips, testSettings(), "a")
	second, _ := e.RandomizeSegment(clips, testSettings(), "a")
	if first[0].TrimStartFrame != second[0].TrimStartFrame {
		t.Errorf("same seed gave different slips: %d vs %d",
			first[0].TrimStartFrame, second[0].TrimStartFrame)
	}
}

func TestRandomizeSegmentRefusals(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name string
		clip models.Clip
	}{
		{"unknown source duration", clip("a", 0, 0, 0, 90)},
		{"source under one second", clip("a", 20, 0, 0, 10)},
		{"pinned", func() models.Clip { c := clip("a", 300, 0, 0, 90); c.IsPinned = true; return c }()},
		{"locked", func() models.Clip { c := clip("a", 300, 0, 0, 90); c.Locked = true; return c }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clips := []models.Clip{tt.clip}
			out, changed := e.RandomizeSegment(clips, testSettings(), "a")
			if changed {
				t.Fatal("expected refusal")
			}
			if out[0].TrimStartFrame != tt.clip.TrimStartFrame || out[0].TrimEndFrame != tt.clip.TrimEndFrame {
				t.Error("refusal mutated the trim window")
			}
		})
	}
}

func TestRandomizeClipDuration(t *testing.T) {
	e := testEngine()
	settings := testSettings()

	t.Run("bounds and end frame", func(t *testing.T) {
		clips := []models.Clip{clip("a", 600, 120, 0, 90)}
		out, changed := e.RandomizeClipDuration(clips, settings, "a")
		if !changed {
			t.Fatal("expected flux to apply")
		}
		c := &out[0]
		assertTrimBounds(t, c)

		dur := c.TrimLengthFrames()
		if dur < 30 || dur > 300 { // 1s..10s at 30fps
			t.Errorf("duration %d outside [30,300]", dur)
		}
		if c.StartFrame != 120 {
			t.Errorf("timeline start moved to %d", c.StartFrame)
		}
		if c.EndFrame != c.StartFrame+dur {
			t.Errorf("end frame %d does not follow duration %d", c.EndFrame, dur)
		}
	})

	t.Run("refuses when bounds collapse", func(t *testing.T) {
		clips := []models.Clip{clip("a", 30, 0, 0, 30)} // exactly 1s source
		_, changed := e.RandomizeClipDuration(clips, settings, "a")
		if changed {
			t.Error("expected refusal when max duration <= min duration")
		}
	})

	t.Run("refuses protected", func(t *testing.T) {
		c := clip("a", 600, 0, 0, 90)
		c.Locked = true
		_, changed := e.RandomizeClipDuration([]models.Clip{c}, settings, "a")
		if changed {
			t.Error("expected refusal for locked clip")
		}
	})
}

func TestGlobalFluxTargetAllocation(t *testing.T) {
	e := testEngine()
	settings := testSettings()
	settings.TargetDurationSeconds = 20 // 600 frames at 30fps

	fixed := clip("fixed", 300, 0, 0, 60)
	fixed.Locked = true
	clips := []models.Clip{
		fixed,
		clip("b", 3000, 60, 0, 90),
		clip("c", 3000, 150, 0, 90),
		clip("d", 3000, 240, 0, 90),
	}

	out, changed := e.GlobalFlux(clips, settings)
	if !changed {
		t.Fatal("expected global flux to apply")
	}

	mutableSum := 0
	for i := range out {
		c := &out[i]
		assertTrimBounds(t, c)
		if c.ID == "fixed" {
			if c.TrimStartFrame != 0 || c.TrimEndFrame != 60 {
				t.Errorf("fixed clip trim window changed: [%d..%d)", c.TrimStartFrame, c.TrimEndFrame)
			}
			continue
		}
		mutableSum += c.TrimLengthFrames()
	}

	// 600 target frames minus the fixed clip's 60-frame window.
	if mutableSum != 540 {
		t.Errorf("mutable trim lengths sum to %d, want exactly 540", mutableSum)
	}
}

func TestGlobalFluxInsufficientCapacity(t *testing.T) {
	e := testEngine()
	settings := testSettings()
	settings.TargetDurationSeconds = 100 // 3000 frames, far beyond capacity

	clips := []models.Clip{
		clip("a", 120, 0, 0, 60),
		clip("b", 150, 60, 0, 60),
	}

	out, changed := e.GlobalFlux(clips, settings)
	if !changed {
		t.Fatal("expected global flux to apply")
	}

	sum := 0
	for i := range out {
		assertTrimBounds(t, &out[i])
		sum += out[i].TrimLengthFrames()
	}
	// Every clip saturates at its source length; the loop must terminate.
	if sum != 120+150 {
		t.Errorf("saturated allocation sums to %d, want %d", sum, 270)
	}
}

func TestGlobalFluxChaoticBounds(t *testing.T) {
	e := testEngine()
	settings := testSettings() // no target duration

	clips := []models.Clip{
		clip("a", 600, 0, 0, 90),
		clip("b", 150, 90, 0, 60),
		clip("c", 6000, 150, 0, 90),
	}

	out, changed := e.GlobalFlux(clips, settings)
	if !changed {
		t.Fatal("expected global flux to apply")
	}

	floor := 7 // 0.25s at 30fps, floored with epsilon
	for i := range out {
		c := &out[i]
		assertTrimBounds(t, c)
		dur := c.TrimLengthFrames()
		max := c.SourceDurationFrames
		if max > 300 {
			max = 300
		}
		if dur < floor || dur > max {
			t.Errorf("clip %s duration %d outside [%d,%d]", c.ID, dur, floor, max)
		}
	}
}

func TestGlobalFluxRepacksSequentially(t *testing.T) {
	e := testEngine()
	settings := testSettings()

	clips := []models.Clip{
		clip("a", 600, 500, 0, 90), // gaps and out-of-order starts
		clip("b", 600, 0, 0, 90),
		clip("c", 600, 1000, 0, 90),
	}

	out, _ := e.GlobalFlux(clips, settings)

	if out[0].StartFrame != 0 {
		t.Errorf("first clip starts at %d, want 0", out[0].StartFrame)
	}
	for i := 1; i < len(out); i++ {
		if out[i].StartFrame != out[i-1].EndFrame {
			t.Errorf("gap between clip %d and %d: %d != %d",
				i-1, i, out[i-1].EndFrame, out[i].StartFrame)
		}
	}
	// Relative order follows original StartFrame: b, a, c.
	if out[0].ID != "b" || out[1].ID != "a" || out[2].ID != "c" {
		t.Errorf("repack order = [%s %s %s], want [b a c]", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestGlobalFluxNoMutableClips(t *testing.T) {
	e := testEngine()
	a := clip("a", 600, 0, 0, 90)
	a.IsPinned = true
	b := clip("b", 600, 90, 0, 90)
	b.Locked = true

	_, changed := e.GlobalFlux([]models.Clip{a, b}, testSettings())
	if changed {
		t.Error("expected refusal when every clip is protected")
	}
}
