package detectionService

import (
	"PlateDetector/internal/api/detection"
	"PlateDetector/internal/entity"
	"PlateDetector/pkg/camera"
	"PlateDetector/pkg/utils"
	"errors"
	"image"
	"image/color"
)

var (
	overlayColor     = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	overlayThickness = 3
)

// ProcessFrame runs the detector on the gray plane and publishes a new
// snapshot. The snapshot keeps the clean colour image; rectangles are drawn
// on a separate copy that is returned for display.
func (s *detectionService) ProcessFrame(frame entity.Frame) entity.FrameResult {
	found := s.detector.Detect(frame.Gray)

	snapshot := &entity.Snapshot{
		Image:      frame.Color,
		Rects:      make([]entity.Rect, 0, len(found)),
		CapturedAt: frame.CapturedAt,
	}

	annotated := frame.Color
	if len(found) > 0 {
		annotated = utils.ToRGBA(frame.Color)
	}
	for _, r := range found {
		utils.DrawRect(annotated, r, overlayColor, overlayThickness)
		snapshot.Rects = append(snapshot.Rects, entity.RectFromImage(r))
	}

	s.snapshot.Store(snapshot)
	s.latest.Store(annotated)

	return entity.FrameResult{
		Snapshot:  snapshot,
		Annotated: annotated,
	}
}

// ProcessImage decodes an encoded frame received over the network and runs
// it through ProcessFrame.
func (s *detectionService) ProcessImage(data []byte) (entity.FrameResult, error) {
	frame, err := s.cameraOpts.Decode(data)
	if err != nil {
		if errors.Is(err, camera.ErrFrameTooLarge) {
			return entity.FrameResult{}, detection.ErrFrameTooLarge
		}
		return entity.FrameResult{}, detection.ErrInvalidImage
	}

	return s.ProcessFrame(frame), nil
}

func (s *detectionService) Snapshot() *entity.Snapshot {
	return s.snapshot.Load()
}

func (s *detectionService) LatestFrame() (*image.RGBA, bool) {
	img := s.latest.Load()
	return img, img != nil
}

// ClearSnapshot drops the current snapshot, used when the frame source stops.
func (s *detectionService) ClearSnapshot() {
	s.snapshot.Store(nil)
	s.latest.Store(nil)
}
