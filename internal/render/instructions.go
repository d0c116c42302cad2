// Package render translates final timeline state into the ordered
// instruction list an external transcoding collaborator consumes. The
// engine's output fields (placement, trim window, speed, volume, effects)
// are the whole contract; nothing here executes a renderer.
package render

import (
	"fmt"
	"sort"
	"strings"

	"fluxcut/internal/timecode"
	"fluxcut/pkg/models"
)

// Instruction describes how to render one clip, in timeline order.
type Instruction struct {
	ClipID         string
	File           string
	Type           models.MediaType
	StartFrame     int
	EndFrame       int
	TrimStartFrame int
	TrimEndFrame   int
	Speed          float64
	Volume         float64 // 0-100; 0 when muted
	Reversed       bool
	Effects        []string
	Filter         string // assembled ffmpeg-style filter chain
}

// Request is the full export handed to the renderer.
type Request struct {
	FrameRate    float64
	Width        int
	Height       int
	Background   string
	Instructions []Instruction
}

// BuildRequest assembles the export request from settings and the primary
// track's clips, ordered by timeline position.
func BuildRequest(settings models.ProjectSettings, clips []models.Clip) Request {
	ordered := make([]models.Clip, 0, len(clips))
	for i := range clips {
		if clips[i].Track == 1 || clips[i].Track == 0 {
			ordered = append(ordered, clips[i])
		}
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].StartFrame < ordered[b].StartFrame
	})

	req := Request{
		FrameRate:    settings.FrameRate,
		Width:        settings.Width,
		Height:       settings.Height,
		Background:   settings.Background,
		Instructions: make([]Instruction, 0, len(ordered)),
	}

	for i := range ordered {
		c := &ordered[i]
		volume := c.Volume
		if c.IsMuted {
			volume = 0
		}
		req.Instructions = append(req.Instructions, Instruction{
			ClipID:         c.ID,
			File:           c.File,
			Type:           c.Type,
			StartFrame:     c.StartFrame,
			EndFrame:       c.EndFrame,
			TrimStartFrame: c.TrimStartFrame,
			TrimEndFrame:   c.TrimEndFrame,
			Speed:          c.Speed,
			Volume:         volume,
			Reversed:       c.Reversed,
			Effects:        append([]string(nil), c.EffectIDs...),
			Filter:         buildFilter(settings, c, volume),
		})
	}
	return req
}

// buildFilter assembles the per-clip filter chain string.
func buildFilter(settings models.ProjectSettings, c *models.Clip, volume float64) string {
	fps := settings.FrameRate
	var filters []string

	start := timecode.FramesToSeconds(c.TrimStartFrame, fps)
	end := timecode.FramesToSeconds(c.TrimEndFrame, fps)
	filters = append(filters, fmt.Sprintf("trim=start=%.4f:end=%.4f", start, end))

	if c.Speed > 0 && c.Speed != 1 {
		filters = append(filters, fmt.Sprintf("setpts=PTS/%.4f", c.Speed))
	}
	if c.Reversed {
		filters = append(filters, "reverse")
	}
	if settings.Width > 0 && settings.Height > 0 && c.Type != models.MediaAudio {
		filters = append(filters, fmt.Sprintf("scale=%d:%d", settings.Width, settings.Height))
	}
	if fps > 0 && c.Type == models.MediaVideo {
		filters = append(filters, fmt.Sprintf("fps=%g", fps))
	}
	if c.Type != models.MediaImage {
		filters = append(filters, fmt.Sprintf("volume=%.2f", volume/100))
	}

	return strings.Join(filters, ",")
}
