package manifest

import "fmt"

// Result is the outcome of validating a manifest. Errors are
// human-readable; Valid is true only when the list is empty. Callers
// decide whether failures abort the load or merely warn.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks a candidate manifest against the schema. It never
// panics and never returns an error value; all findings land in the
// result list.
func Validate(m Manifest) Result {
	var errs []string

	if m.Version != SchemaVersion {
		errs = append(errs, fmt.Sprintf("unsupported schema version %q (expected %q)", m.Version, SchemaVersion))
	}
	if m.Project == nil {
		errs = append(errs, "missing project section")
	} else {
		if m.Project.FrameRate <= 0 {
			errs = append(errs, fmt.Sprintf("project frame rate must be positive, got %v", m.Project.FrameRate))
		}
	}
	if m.Clips == nil {
		errs = append(errs, "missing clips section")
	}

	for i := range m.Clips {
		c := &m.Clips[i]
		if c.ID == "" {
			errs = append(errs, fmt.Sprintf("clip %d: missing id", i))
		}
		if c.File == "" {
			errs = append(errs, fmt.Sprintf("clip %d: missing file", i))
		}
		if c.StartFrame < 0 {
			errs = append(errs, fmt.Sprintf("clip %d: negative start_frame %d", i, c.StartFrame))
		}
		if c.EndFrame <= c.StartFrame {
			errs = append(errs, fmt.Sprintf("clip %d: end_frame %d not after start_frame %d", i, c.EndFrame, c.StartFrame))
		}
		if c.SourceIn < 0 {
			errs = append(errs, fmt.Sprintf("clip %d: negative source_in %d", i, c.SourceIn))
		}
		if c.SourceOut <= c.SourceIn {
			errs = append(errs, fmt.Sprintf("clip %d: source_out %d not after source_in %d", i, c.SourceOut, c.SourceIn))
		}
		if c.SourceDurationFrames > 0 && c.SourceOut > c.SourceDurationFrames {
			errs = append(errs, fmt.Sprintf("clip %d: source_out %d exceeds source duration %d", i, c.SourceOut, c.SourceDurationFrames))
		}
		if c.Speed < 0 {
			errs = append(errs, fmt.Sprintf("clip %d: negative speed %v", i, c.Speed))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}
