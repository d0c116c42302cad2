package beats

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// AnalyzeWAV decodes the first channel of a WAV file and runs beat
// detection over it.
func (a *Analyzer) AnalyzeWAV(path string) (Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return Analysis{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Analysis{}, fmt.Errorf("invalid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Analysis{}, fmt.Errorf("failed to decode wav samples: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return Analysis{}, fmt.Errorf("wav file missing format info: %s", path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := float64(int(1) << (uint(dec.BitDepth) - 1))
	if scale <= 0 {
		scale = 1 << 15
	}

	// First channel only; the analysis does not need stereo.
	samples := make([]float64, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		samples = append(samples, float64(buf.Data[i])/scale)
	}

	return a.Analyze(samples, buf.Format.SampleRate)
}
