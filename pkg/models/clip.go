package models

// MediaType classifies the source media behind a clip.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
	MediaImage MediaType = "image"
)

// ClipOrigin records how a clip got onto the timeline. Manual clips are
// excluded from shuffle and regenerate by default.
type ClipOrigin string

const (
	OriginManual ClipOrigin = "manual"
	OriginAuto   ClipOrigin = "auto"
)

// Transition describes an optional transition attached to a clip.
type Transition struct {
	Type           string `json:"type"`
	DurationFrames int    `json:"durationFrames"`
}

// BeatMarker is a single detected audio beat.
type BeatMarker struct {
	Time   float64 `json:"time"` // seconds from clip source start
	Energy float64 `json:"energy"`
}

// Clip represents one instance of media placed on the timeline.
//
// All timing fields are integer frame counts. StartFrame/EndFrame place the
// clip on its track; TrimStartFrame/TrimEndFrame select the slice of source
// media that plays. Invariant: EndFrame-StartFrame == round(trimLength/Speed).
type Clip struct {
	ID   string    `json:"id"`
	File string    `json:"file"`
	Name string    `json:"name"`
	Type MediaType `json:"type"`

	// Total length of the underlying media; immutable once probed.
	SourceDurationFrames int `json:"sourceDurationFrames"`

	StartFrame     int `json:"startFrame"`
	EndFrame       int `json:"endFrame"`
	TrimStartFrame int `json:"trimStartFrame"`
	TrimEndFrame   int `json:"trimEndFrame"`

	Speed    float64 `json:"speed"`
	Volume   float64 `json:"volume"` // 0-100
	IsMuted  bool    `json:"isMuted"`
	Reversed bool    `json:"reversed"`

	Track int `json:"track"`

	IsPinned bool       `json:"isPinned"` // immune to position/order mutation
	Locked   bool       `json:"locked"`   // immune to trim/duration randomization
	Origin   ClipOrigin `json:"origin"`

	// Presentation-only; never persisted in a manifest.
	IsFolded bool `json:"-"`

	EffectIDs   []string    `json:"effectIds,omitempty"`
	SpeedRampID string      `json:"speedRampId,omitempty"`
	Transition  *Transition `json:"transition,omitempty"`

	// Cached audio analysis, if any.
	BPM   float64      `json:"bpm,omitempty"`
	Beats []BeatMarker `json:"beats,omitempty"`
}

// DurationFrames returns the clip's length on the timeline.
func (c *Clip) DurationFrames() int {
	return c.EndFrame - c.StartFrame
}

// TrimLengthFrames returns the length of the source window that plays.
func (c *Clip) TrimLengthFrames() int {
	return c.TrimEndFrame - c.TrimStartFrame
}

// IsProtected reports whether any mutation-protection flag is set.
func (c *Clip) IsProtected() bool {
	return c.IsPinned || c.Locked
}

// Clone returns a deep copy of the clip. The caller is responsible for
// assigning a fresh ID when the copy becomes a distinct timeline entity.
func (c *Clip) Clone() Clip {
	out := *c
	if c.EffectIDs != nil {
		out.EffectIDs = append([]string(nil), c.EffectIDs...)
	}
	if c.Transition != nil {
		t := *c.Transition
		out.Transition = &t
	}
	if c.Beats != nil {
		out.Beats = append([]BeatMarker(nil), c.Beats...)
	}
	return out
}

// ProjectSettings is the singleton describing the project.
type ProjectSettings struct {
	Name                  string  `json:"name"`
	Width                 int     `json:"width"`
	Height                int     `json:"height"`
	AspectRatio           string  `json:"aspectRatio"`
	FrameRate             float64 `json:"frameRate"`
	Background            string  `json:"background"`
	Seed                  string  `json:"seed,omitempty"`
	TargetDurationSeconds float64 `json:"targetDurationSeconds,omitempty"`
}

// MediaItem is an entry in the media pool: a source file a clip can be cut
// from. DurationFrames holds a placeholder until Probed is true.
type MediaItem struct {
	ID             string    `json:"id"`
	Path           string    `json:"-"` // don't expose file path in exports
	Filename       string    `json:"filename"`
	Size           int64     `json:"size"`
	Type           MediaType `json:"type"`
	DurationFrames int       `json:"durationFrames"`
	Probed         bool      `json:"probed"`
}
