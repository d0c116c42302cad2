package beats

import (
	"fluxcut/pkg/models"

	"github.com/sirupsen/logrus"
)

// ClipSink is the write-back surface beat detection needs from the store.
// SetClipBeats must merge by clip id and report false when the clip no
// longer exists, in which case the result is discarded.
type ClipSink interface {
	SetClipBeats(id string, bpm float64, beats []models.BeatMarker) bool
}

// DetectBeats analyzes a clip's audio file asynchronously and caches the
// result on the clip. Failures are logged and leave the clip's beat data
// unset; they never reach the caller. There is no cancellation: a
// superseding call simply produces a second result, and whichever lands
// last wins the id-matched merge.
//
// The returned channel closes when the detection goroutine finishes,
// which callers may use for synchronization but are free to ignore.
func (a *Analyzer) DetectBeats(sink ClipSink, clipID, audioPath string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		res, err := a.AnalyzeWAV(audioPath)
		if err != nil {
			a.logger.WithFields(logrus.Fields{
				"clipId": clipID,
				"path":   audioPath,
			}).WithError(err).Warn("Beat detection failed")
			return
		}

		if !sink.SetClipBeats(clipID, res.BPM, res.Beats) {
			a.logger.WithField("clipId", clipID).Debug("Beat result discarded; clip no longer exists")
			return
		}

		a.logger.WithFields(logrus.Fields{
			"clipId": clipID,
			"bpm":    res.BPM,
			"beats":  len(res.Beats),
		}).Info("Beat detection complete")
	}()
	return done
}
