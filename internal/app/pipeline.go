package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/metrics"
)

// runTracking is the tracking loop: one camera frame per tick, through the
// detector and the extractor, published as a metrics snapshot.
//
// While no hand is tracked a motion gate keeps still frames away from the
// detector. Enabling tracking starts a new session; disabling it, a
// detector failure or stopping the loop resets the extractor and publishes
// empty metrics so consumers never hold on to a stale hand.
func (a *App) runTracking(stop <-chan struct{}) {
	defer a.wg.Done()
	defer a.endSession("stopped")

	fps := a.Camera().FPS()
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	gate := capture.NewMotionGate(a.config.Camera)
	defer gate.Close()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				if a.session != "" {
					gate.Reset()
				}
				a.endSession("disabled")
				continue
			}
			if a.session == "" {
				a.beginSession()
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Warn("error reading frame", "error", err)
				continue
			}

			// A still scene with no hand skips the detector.
			if !gate.Pass(frame, a.present) {
				frame.Close()
				a.track(nil, now)
				continue
			}

			hands, err := a.Detector().Detect(frame)
			frame.Close()

			if err != nil {
				log.Warn("error detecting hands", "session", a.session, "error", err)
				a.resetTracking()
				continue
			}

			a.track(hands, now)
		}
	}
}

// beginSession starts a tracking session with a fresh id and clean state.
func (a *App) beginSession() {
	a.session = uuid.NewString()
	a.extractor.Reset()
	a.present = false
	a.last = time.Time{}
	log.Info("tracking session started", "session", a.session)
}

// endSession closes the current session, if any.
func (a *App) endSession(reason string) {
	if a.session == "" {
		return
	}
	log.Info("tracking session ended", "session", a.session, "reason", reason)
	a.session = ""
	a.resetTracking()
}

// resetTracking discards smoothing history and publishes empty metrics.
func (a *App) resetTracking() {
	a.extractor.Reset()
	a.last = time.Time{}
	if a.present {
		log.Info("hand lost", "session", a.session)
		a.present = false
	}
	a.publish(metrics.Empty(0), time.Now())
}

// track runs the extractor on one detector result and publishes it.
func (a *App) track(hands []detector.HandLandmarks, now time.Time) Snapshot {
	var elapsed time.Duration
	if !a.last.IsZero() {
		elapsed = now.Sub(a.last)
	}
	a.last = now

	hand := detector.Dominant(hands)
	m := a.extractor.Update(hand, elapsed)

	if m.IsPresent != a.present {
		if m.IsPresent {
			log.Info("hand acquired", "session", a.session, "handedness", hand.Handedness, "score", hand.Score)
		} else {
			log.Info("hand lost", "session", a.session)
		}
		a.present = m.IsPresent
	}

	return a.publish(m, now)
}

// publish stores m as the latest snapshot and fans it out.
func (a *App) publish(m metrics.Metrics, now time.Time) Snapshot {
	snap := Snapshot{
		Session:   a.session,
		Timestamp: now.UnixMilli(),
		Metrics:   m,
	}
	a.latest.Store(&snap)
	a.metricsFeed.Publish(snap)
	return snap
}
