// Package manifest implements the timeline interchange document: a flat,
// versioned JSON schema carrying project settings and clips, consumed by
// external editor integrations. One canonical schema exists; unknown
// versions are rejected by Validate rather than guessed structurally.
package manifest

import (
	"math"

	"fluxcut/pkg/models"
)

// SchemaVersion is the current manifest schema version. Validate rejects
// any other value.
const SchemaVersion = "1.0"

// Manifest is the root interchange document.
type Manifest struct {
	Version string   `json:"schema_version"`
	Project *Project `json:"project"`
	Clips   []Clip   `json:"clips"`
}

// Project is the portable form of the project settings.
type Project struct {
	Name                  string  `json:"name"`
	Width                 int     `json:"width"`
	Height                int     `json:"height"`
	AspectRatio           string  `json:"aspect_ratio"`
	FrameRate             float64 `json:"frame_rate"`
	Background            string  `json:"background"`
	Seed                  string  `json:"seed,omitempty"`
	TargetDurationSeconds float64 `json:"target_duration_seconds,omitempty"`
}

// Transition mirrors a clip transition descriptor.
type Transition struct {
	Type           string `json:"type"`
	DurationFrames int    `json:"duration_frames"`
}

// Clip is the portable form of a timeline clip. All frame fields are
// integers; source_in/source_out bound the half-open source window.
// Transient UI state (fold, pin) is deliberately absent.
type Clip struct {
	ID                   string      `json:"id"`
	File                 string      `json:"file"`
	Name                 string      `json:"name"`
	Type                 string      `json:"type"`
	SourceDurationFrames int         `json:"source_duration_frames"`
	StartFrame           int         `json:"start_frame"`
	EndFrame             int         `json:"end_frame"`
	SourceIn             int         `json:"source_in"`
	SourceOut            int         `json:"source_out"`
	Speed                float64     `json:"speed"`
	Volume               float64     `json:"volume"`
	Muted                bool        `json:"muted"`
	Reversed             bool        `json:"reversed"`
	Track                int         `json:"track"`
	Locked               bool        `json:"locked"`
	Origin               string      `json:"origin"`
	Effects              []string    `json:"effects"`
	SpeedRamp            string      `json:"speed_ramp,omitempty"`
	Transition           *Transition `json:"transition,omitempty"`
}

// FromState builds a manifest from the current project settings and clip
// collection. Frame fields are floored to integers and missing effect
// lists become empty arrays so consumers never see null.
func FromState(settings models.ProjectSettings, clips []models.Clip) Manifest {
	m := Manifest{
		Version: SchemaVersion,
		Project: &Project{
			Name:                  settings.Name,
			Width:                 settings.Width,
			Height:                settings.Height,
			AspectRatio:           settings.AspectRatio,
			FrameRate:             settings.FrameRate,
			Background:            settings.Background,
			Seed:                  settings.Seed,
			TargetDurationSeconds: settings.TargetDurationSeconds,
		},
		Clips: make([]Clip, 0, len(clips)),
	}

	for i := range clips {
		c := &clips[i]
		mc := Clip{
			ID:                   c.ID,
			File:                 c.File,
			Name:                 c.Name,
			Type:                 string(c.Type),
			SourceDurationFrames: floorFrame(c.SourceDurationFrames),
			StartFrame:           floorFrame(c.StartFrame),
			EndFrame:             floorFrame(c.EndFrame),
			SourceIn:             floorFrame(c.TrimStartFrame),
			SourceOut:            floorFrame(c.TrimEndFrame),
			Speed:                c.Speed,
			Volume:               c.Volume,
			Muted:                c.IsMuted,
			Reversed:             c.Reversed,
			Track:                c.Track,
			Locked:               c.Locked,
			Origin:               string(c.Origin),
			Effects:              append([]string{}, c.EffectIDs...),
			SpeedRamp:            c.SpeedRampID,
		}
		if c.Transition != nil {
			mc.Transition = &Transition{
				Type:           c.Transition.Type,
				DurationFrames: c.Transition.DurationFrames,
			}
		}
		m.Clips = append(m.Clips, mc)
	}
	return m
}

// floorFrame guards against fractional values having crept into frame
// fields through arithmetic upstream; manifests carry whole frames only.
func floorFrame(v int) int {
	return int(math.Floor(float64(v)))
}

// ToState reconstructs project settings and clips from a manifest. Unknown
// clip types default to video, transient UI flags start cleared, and a
// missing source duration is synthesized from the source window.
func ToState(m Manifest) (models.ProjectSettings, []models.Clip) {
	var settings models.ProjectSettings
	if m.Project != nil {
		settings = models.ProjectSettings{
			Name:                  m.Project.Name,
			Width:                 m.Project.Width,
			Height:                m.Project.Height,
			AspectRatio:           m.Project.AspectRatio,
			FrameRate:             m.Project.FrameRate,
			Background:            m.Project.Background,
			Seed:                  m.Project.Seed,
			TargetDurationSeconds: m.Project.TargetDurationSeconds,
		}
	}

	clips := make([]models.Clip, 0, len(m.Clips))
	for i := range m.Clips {
		mc := &m.Clips[i]

		clipType := models.MediaType(mc.Type)
		switch clipType {
		case models.MediaVideo, models.MediaAudio, models.MediaImage:
		default:
			clipType = models.MediaVideo
		}

		src := mc.SourceDurationFrames
		if src <= 0 {
			// Absolute duration unknown: the source window itself is the
			// best available lower bound.
			src = mc.SourceOut - mc.SourceIn
			if src < mc.SourceOut {
				src = mc.SourceOut
			}
		}

		speed := mc.Speed
		if speed <= 0 {
			speed = 1
		}

		c := models.Clip{
			ID:                   mc.ID,
			File:                 mc.File,
			Name:                 mc.Name,
			Type:                 clipType,
			SourceDurationFrames: src,
			StartFrame:           mc.StartFrame,
			EndFrame:             mc.EndFrame,
			TrimStartFrame:       mc.SourceIn,
			TrimEndFrame:         mc.SourceOut,
			Speed:                speed,
			Volume:               mc.Volume,
			IsMuted:              mc.Muted,
			Reversed:             mc.Reversed,
			Track:                mc.Track,
			Locked:               mc.Locked,
			Origin:               models.ClipOrigin(mc.Origin),
			IsFolded:             false,
			IsPinned:             false,
			SpeedRampID:          mc.SpeedRamp,
		}
		if c.Origin != models.OriginManual && c.Origin != models.OriginAuto {
			c.Origin = models.OriginManual
		}
		if len(mc.Effects) > 0 {
			c.EffectIDs = append([]string(nil), mc.Effects...)
		}
		if mc.Transition != nil {
			c.Transition = &models.Transition{
				Type:           mc.Transition.Type,
				DurationFrames: mc.Transition.DurationFrames,
			}
		}
		clips = append(clips, c)
	}
	return settings, clips
}
