package store

import (
	"testing"

	"fluxcut/pkg/models"

	"github.com/sirupsen/logrus"
)

func testStore() *Store {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return New(models.ProjectSettings{
		Name:      "test",
		FrameRate: 30,
		Seed:      "test-seed",
	}, logger)
}

func testItem(name string, frames int) models.MediaItem {
	return models.MediaItem{
		ID:             "media-" + name,
		Path:           "/media/" + name,
		Filename:       name,
		Size:           1024,
		Type:           models.MediaVideo,
		DurationFrames: frames,
		Probed:         true,
	}
}

func TestAddMediaClip(t *testing.T) {
	s := testStore()

	a := s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual)
	b := s.AddMediaClip(testItem("b.mp4", 150), models.OriginAuto)

	if a.ID == b.ID {
		t.Error("clips share an id")
	}
	if a.StartFrame != 0 || a.EndFrame != 300 {
		t.Errorf("first clip placed at [%d..%d)", a.StartFrame, a.EndFrame)
	}
	if b.StartFrame != 300 || b.EndFrame != 450 {
		t.Errorf("second clip placed at [%d..%d), want appended at 300", b.StartFrame, b.EndFrame)
	}
	if b.TrimStartFrame != 0 || b.TrimEndFrame != 150 {
		t.Errorf("new clip trim window [%d..%d), want full source", b.TrimStartFrame, b.TrimEndFrame)
	}
	if a.Origin != models.OriginManual || b.Origin != models.OriginAuto {
		t.Error("origins not recorded")
	}
}

func TestDuplicateClip(t *testing.T) {
	s := testStore()
	orig := s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual)

	dup, ok := s.DuplicateClip(orig.ID)
	if !ok {
		t.Fatal("duplicate failed")
	}
	if dup.ID == orig.ID {
		t.Error("duplicate kept the original id")
	}
	if dup.TrimStartFrame != orig.TrimStartFrame || dup.TrimEndFrame != orig.TrimEndFrame {
		t.Error("duplicate trim window differs")
	}

	clips := s.Clips()
	if len(clips) != 2 {
		t.Fatalf("store holds %d clips, want 2", len(clips))
	}
	if clips[1].ID != dup.ID {
		t.Error("duplicate not inserted after original")
	}

	if _, ok := s.DuplicateClip("missing"); ok {
		t.Error("duplicating a missing clip succeeded")
	}
}

func TestVolumeClamping(t *testing.T) {
	s := testStore()
	c := s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual)

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 55, 55},
		{"above range", 150, 100},
		{"below range", -10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetClipVolume(c.ID, tt.in)
			got, _ := s.GetClip(c.ID)
			if got.Volume != tt.want {
				t.Errorf("volume = %v, want %v", got.Volume, tt.want)
			}
		})
	}
}

func TestSetClipSpeed(t *testing.T) {
	s := testStore()
	a := s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual) // [0..300)
	b := s.AddMediaClip(testItem("b.mp4", 150), models.OriginManual) // [300..450)

	if !s.SetClipSpeed(a.ID, 2) {
		t.Fatal("speed change failed")
	}

	gotA, _ := s.GetClip(a.ID)
	if gotA.EndFrame != 150 {
		t.Errorf("clip at 2x ends at %d, want 150", gotA.EndFrame)
	}
	// Magnetize repacks the downstream clip.
	gotB, _ := s.GetClip(b.ID)
	if gotB.StartFrame != 150 {
		t.Errorf("downstream clip starts at %d, want 150", gotB.StartFrame)
	}

	if s.SetClipSpeed(a.ID, 0) {
		t.Error("non-positive speed accepted")
	}
}

func TestSetClipSpeedCommitsOnce(t *testing.T) {
	s := testStore()
	a := s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual) // [0..300)
	b := s.AddMediaClip(testItem("b.mp4", 150), models.OriginManual) // [300..450)

	ch := s.Subscribe()
	for len(ch) > 0 {
		<-ch
	}

	if !s.SetClipSpeed(a.ID, 2) {
		t.Fatal("speed change failed")
	}

	// Exactly one snapshot, and it already has the downstream clip
	// repacked; no intermediate overlapping state is published.
	select {
	case snap := <-ch:
		for i := range snap.Clips {
			switch snap.Clips[i].ID {
			case a.ID:
				if snap.Clips[i].EndFrame != 150 {
					t.Errorf("snapshot clip a ends at %d, want 150", snap.Clips[i].EndFrame)
				}
			case b.ID:
				if snap.Clips[i].StartFrame != 150 {
					t.Errorf("snapshot clip b starts at %d, want 150", snap.Clips[i].StartFrame)
				}
			}
		}
	default:
		t.Fatal("no snapshot delivered after speed change")
	}

	select {
	case <-ch:
		t.Error("speed change published more than one snapshot")
	default:
	}

	if s.SetClipSpeed("missing", 2) {
		t.Error("speed change on a missing clip reported success")
	}
}

func TestSetClipDuration(t *testing.T) {
	s := testStore()
	c := s.AddMediaClip(testItem("a.mp4", 150), models.OriginManual) // placeholder-ish

	// Real probe came back longer.
	if !s.SetClipDuration(c.ID, 600) {
		t.Fatal("duration correction failed")
	}
	got, _ := s.GetClip(c.ID)
	if got.SourceDurationFrames != 600 {
		t.Errorf("source duration = %d, want 600", got.SourceDurationFrames)
	}
	if got.TrimEndFrame != 150 {
		t.Errorf("trim window changed: end = %d", got.TrimEndFrame)
	}

	// Real probe came back shorter; trim window must clamp.
	s.SetClipDuration(c.ID, 60)
	got, _ = s.GetClip(c.ID)
	if got.TrimEndFrame != 60 || got.TrimStartFrame >= got.TrimEndFrame {
		t.Errorf("trim window [%d..%d) not clamped to source 60", got.TrimStartFrame, got.TrimEndFrame)
	}
}

func TestSelection(t *testing.T) {
	s := testStore()
	c := s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual)

	if _, ok := s.Selection(); ok {
		t.Error("fresh store has a selection")
	}

	if !s.SelectSegment(c.ID) {
		t.Fatal("select failed")
	}
	sel, ok := s.Selection()
	if !ok {
		t.Fatal("selection missing after select")
	}
	if sel.ClipID != c.ID || sel.TrimStartFrame != 0 || sel.TrimEndFrame != 300 {
		t.Errorf("selection seeded as %+v", sel)
	}

	// Removing the clip drops the selection.
	s.RemoveClip(c.ID)
	if _, ok := s.Selection(); ok {
		t.Error("selection survived clip removal")
	}
}

func TestApplySerializesCommit(t *testing.T) {
	s := testStore()
	s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual)

	changed := s.Apply(func(clips []models.Clip, _ models.ProjectSettings) ([]models.Clip, bool) {
		clips[0].Volume = 42
		return clips, true
	})
	if !changed {
		t.Fatal("apply reported no change")
	}
	got := s.Clips()
	if got[0].Volume != 42 {
		t.Error("apply result not committed")
	}

	// A transform reporting no change must not commit.
	s.Apply(func(clips []models.Clip, _ models.ProjectSettings) ([]models.Clip, bool) {
		clips[0].Volume = 99
		return clips, false
	})
	got = s.Clips()
	if got[0].Volume != 42 {
		t.Error("unchanged transform was committed")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := testStore()
	s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual)

	snap := s.Clips()
	snap[0].Volume = 7

	got := s.Clips()
	if got[0].Volume == 7 {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestSubscribeNotifies(t *testing.T) {
	s := testStore()
	ch := s.Subscribe()

	s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual)

	select {
	case snap := <-ch:
		if len(snap.Clips) != 1 {
			t.Errorf("snapshot holds %d clips, want 1", len(snap.Clips))
		}
	default:
		t.Error("no snapshot delivered after commit")
	}
}

func TestSetClipBeatsMergesByID(t *testing.T) {
	s := testStore()
	c := s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual)

	markers := []models.BeatMarker{{Time: 0.5, Energy: 0.4}, {Time: 1.0, Energy: 0.35}}
	if !s.SetClipBeats(c.ID, 120, markers) {
		t.Fatal("beat write-back failed")
	}
	got, _ := s.GetClip(c.ID)
	if got.BPM != 120 || len(got.Beats) != 2 {
		t.Errorf("beats not cached: bpm=%v markers=%d", got.BPM, len(got.Beats))
	}

	// Result for a removed clip is discarded.
	s.RemoveClip(c.ID)
	if s.SetClipBeats(c.ID, 90, markers) {
		t.Error("beat result accepted for a missing clip")
	}
}

func TestReset(t *testing.T) {
	s := testStore()
	s.AddMediaClip(testItem("a.mp4", 300), models.OriginManual)
	s.Reset()
	if s.ClipCount() != 0 {
		t.Error("reset left clips behind")
	}
}
