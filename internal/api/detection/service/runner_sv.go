package detectionService

import (
	"PlateDetector/pkg/camera"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const fpsLogInterval = 10 * time.Second

// Run drives the frame loop: every frame from source goes through
// ProcessFrame on this goroutine. It returns when ctx is done or the source
// ends, clearing the snapshot either way.
func (s *detectionService) Run(ctx context.Context, source camera.Source) error {
	frames, err := source.Start(ctx)
	if err != nil {
		return fmt.Errorf("start frame source: %w", err)
	}
	defer s.ClearSnapshot()

	s.log.WithField("detector_enabled", s.detector.Enabled()).Info("Frame loop started")

	meter := newFPSMeter(time.Now())
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Frame loop stopped")
			return nil
		case frame, ok := <-frames:
			if !ok {
				s.log.Info("Frame source ended")
				return nil
			}

			result := s.ProcessFrame(frame)

			if fps, ok := meter.tick(time.Now()); ok {
				s.log.WithFields(logrus.Fields{
					"fps":        fmt.Sprintf("%.2f", fps),
					"detections": len(result.Snapshot.Rects),
				}).Debug("Frame loop rate")
			}
		}
	}
}

type fpsMeter struct {
	since  time.Time
	frames int
}

func newFPSMeter(now time.Time) *fpsMeter {
	return &fpsMeter{since: now}
}

// tick counts a frame and reports the rate once per fpsLogInterval.
func (m *fpsMeter) tick(now time.Time) (float64, bool) {
	m.frames++
	elapsed := now.Sub(m.since)
	if elapsed < fpsLogInterval {
		return 0, false
	}

	fps := float64(m.frames) / elapsed.Seconds()
	m.since = now
	m.frames = 0
	return fps, true
}
