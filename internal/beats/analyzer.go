// Package beats implements simplified beat detection: low-pass filtered
// energy peaks produce beat markers and a BPM estimate. Results are
// informational and cached on clips; analysis failure never propagates.
package beats

import (
	"fmt"
	"math"
	"sort"

	"fluxcut/pkg/models"

	"github.com/sirupsen/logrus"
)

// Detection parameters.
const (
	lowPassCutoffHz  = 150.0 // isolate the kick/bass band
	energyWindowSecs = 0.05
	energyThreshold  = 0.3
	minBeatGapSecs   = 0.25 // enforces <= 240 BPM
	defaultBPM       = 120.0
	bpmBucketSecs    = 0.1
)

// Analyzer runs beat detection over decoded PCM samples.
type Analyzer struct {
	logger *logrus.Logger
}

// NewAnalyzer creates a beat analyzer.
func NewAnalyzer(logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Analyzer{logger: logger}
}

// Analysis is the outcome of one detection pass.
type Analysis struct {
	BPM   float64
	Beats []models.BeatMarker
}

// Analyze detects beats in a mono sample buffer normalized to [-1, 1].
// The signal is low-pass filtered at 150 Hz, energy is the mean absolute
// amplitude over 50 ms windows, and a marker is emitted whenever energy
// crosses the threshold with at least 0.25 s since the previous marker.
// BPM is estimated from the mode of the 0.1 s-bucketed inter-beat
// intervals, defaulting to 120 when fewer than two beats are found.
func (a *Analyzer) Analyze(samples []float64, sampleRate int) (Analysis, error) {
	if sampleRate <= 0 {
		return Analysis{}, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(samples) == 0 {
		return Analysis{BPM: defaultBPM}, nil
	}

	filtered := lowPass(samples, sampleRate, lowPassCutoffHz)

	window := int(float64(sampleRate) * energyWindowSecs)
	if window < 1 {
		window = 1
	}

	var markers []models.BeatMarker
	lastBeat := -minBeatGapSecs
	for off := 0; off < len(filtered); off += window {
		end := off + window
		if end > len(filtered) {
			end = len(filtered)
		}
		sum := 0.0
		for _, v := range filtered[off:end] {
			sum += math.Abs(v)
		}
		energy := sum / float64(end-off)

		at := float64(off) / float64(sampleRate)
		if energy > energyThreshold && at-lastBeat >= minBeatGapSecs {
			markers = append(markers, models.BeatMarker{Time: at, Energy: energy})
			lastBeat = at
		}
	}

	return Analysis{
		BPM:   estimateBPM(markers),
		Beats: markers,
	}, nil
}

// lowPass applies a one-pole low-pass filter with the given cutoff.
func lowPass(samples []float64, sampleRate int, cutoffHz float64) []float64 {
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	dt := 1.0 / float64(sampleRate)
	alpha := dt / (rc + dt)

	out := make([]float64, len(samples))
	prev := 0.0
	for i, v := range samples {
		prev += alpha * (v - prev)
		out[i] = prev
	}
	return out
}

// estimateBPM takes the mode of the rounded inter-beat intervals. Ties go
// to the shorter interval so the faster tempo wins.
func estimateBPM(markers []models.BeatMarker) float64 {
	if len(markers) < 2 {
		return defaultBPM
	}

	counts := make(map[int]int)
	for i := 1; i < len(markers); i++ {
		interval := markers[i].Time - markers[i-1].Time
		bucket := int(math.Round(interval / bpmBucketSecs))
		if bucket < 1 {
			bucket = 1
		}
		counts[bucket]++
	}

	buckets := make([]int, 0, len(counts))
	for b := range counts {
		buckets = append(buckets, b)
	}
	sort.Ints(buckets)

	best, bestCount := buckets[0], 0
	for _, b := range buckets {
		if counts[b] > bestCount {
			best, bestCount = b, counts[b]
		}
	}

	interval := float64(best) * bpmBucketSecs
	return math.Round(60.0 / interval)
}
