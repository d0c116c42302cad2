package render

import (
	"strings"
	"testing"

	"fluxcut/pkg/models"
)

func renderSettings() models.ProjectSettings {
	return models.ProjectSettings{
		Name:       "test",
		Width:      1920,
		Height:     1080,
		FrameRate:  30,
		Background: "black",
	}
}

func renderClip(id string, start, trimStart, trimEnd int) models.Clip {
	return models.Clip{
		ID:                   id,
		File:                 id + ".mp4",
		Type:                 models.MediaVideo,
		SourceDurationFrames: 600,
		StartFrame:           start,
		EndFrame:             start + (trimEnd - trimStart),
		TrimStartFrame:       trimStart,
		TrimEndFrame:         trimEnd,
		Speed:                1,
		Volume:               100,
		Track:                1,
	}
}

func TestBuildRequestOrdering(t *testing.T) {
	clips := []models.Clip{
		renderClip("late", 200, 0, 90),
		renderClip("early", 0, 0, 90),
		renderClip("mid", 90, 0, 90),
	}

	req := BuildRequest(renderSettings(), clips)
	if len(req.Instructions) != 3 {
		t.Fatalf("got %d instructions, want 3", len(req.Instructions))
	}
	want := []string{"early", "mid", "late"}
	for i, id := range want {
		if req.Instructions[i].ClipID != id {
			t.Errorf("instruction %d is %s, want %s", i, req.Instructions[i].ClipID, id)
		}
	}
	if req.FrameRate != 30 || req.Width != 1920 || req.Height != 1080 {
		t.Error("project settings not carried into the request")
	}
}

func TestBuildRequestSkipsSecondaryTracks(t *testing.T) {
	overlay := renderClip("overlay", 0, 0, 90)
	overlay.Track = 2
	clips := []models.Clip{renderClip("main", 0, 0, 90), overlay}

	req := BuildRequest(renderSettings(), clips)
	if len(req.Instructions) != 1 || req.Instructions[0].ClipID != "main" {
		t.Errorf("secondary track leaked into instructions: %+v", req.Instructions)
	}
}

func TestBuildRequestMute(t *testing.T) {
	muted := renderClip("m", 0, 0, 90)
	muted.IsMuted = true
	muted.Volume = 80

	req := BuildRequest(renderSettings(), []models.Clip{muted})
	inst := req.Instructions[0]
	if inst.Volume != 0 {
		t.Errorf("muted clip volume = %v, want 0", inst.Volume)
	}
	if !strings.Contains(inst.Filter, "volume=0.00") {
		t.Errorf("filter %q missing muted volume stage", inst.Filter)
	}
}

func TestBuildFilterStages(t *testing.T) {
	c := renderClip("c", 0, 30, 120)
	c.Speed = 2
	c.Reversed = true
	c.Volume = 50

	req := BuildRequest(renderSettings(), []models.Clip{c})
	filter := req.Instructions[0].Filter

	for _, stage := range []string{
		"trim=start=1.0000:end=4.0000",
		"setpts=PTS/2.0000",
		"reverse",
		"scale=1920:1080",
		"fps=30",
		"volume=0.50",
	} {
		if !strings.Contains(filter, stage) {
			t.Errorf("filter %q missing stage %q", filter, stage)
		}
	}
}

func TestBuildFilterAudioClip(t *testing.T) {
	c := renderClip("a", 0, 0, 90)
	c.Type = models.MediaAudio

	req := BuildRequest(renderSettings(), []models.Clip{c})
	filter := req.Instructions[0].Filter
	if strings.Contains(filter, "scale=") || strings.Contains(filter, "fps=") {
		t.Errorf("audio filter %q carries video stages", filter)
	}
	if !strings.Contains(filter, "volume=1.00") {
		t.Errorf("audio filter %q missing volume stage", filter)
	}
}

func TestBuildFilterUnitSpeedOmitted(t *testing.T) {
	req := BuildRequest(renderSettings(), []models.Clip{renderClip("c", 0, 0, 90)})
	if strings.Contains(req.Instructions[0].Filter, "setpts") {
		t.Errorf("unit speed emitted a setpts stage: %q", req.Instructions[0].Filter)
	}
}
