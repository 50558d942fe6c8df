package detectionService

import (
	"PlateDetector/internal/api/detection"
	"PlateDetector/internal/entity"
	"PlateDetector/pkg/camera"
	"PlateDetector/pkg/cascade"
	"PlateDetector/pkg/recognition"
	"PlateDetector/pkg/storage"
	"context"
	"image"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type IDetectionService interface {
	ProcessFrame(frame entity.Frame) entity.FrameResult
	ProcessImage(data []byte) (entity.FrameResult, error)
	Snapshot() *entity.Snapshot
	LatestFrame() (*image.RGBA, bool)
	ClearSnapshot()
	Run(ctx context.Context, source camera.Source) error

	HandlePointer(event detection.PointerEvent) (*detection.SelectionResponse, error)
	Tap() (*detection.SelectionResponse, error)
	Display() entity.DisplayState
	Wait()
	Close()
}

type detectionService struct {
	log        *logrus.Logger
	detector   cascade.Detector
	store      storage.ItfCropStore
	recognizer recognition.ItfRecognizer
	cameraOpts camera.Options

	snapshot atomic.Pointer[entity.Snapshot]
	latest   atomic.Pointer[image.RGBA]

	display *display

	// taskMu guards the handle of the upload in flight.
	taskMu  sync.Mutex
	task    *uploadTask
	tasks   sync.WaitGroup
	baseCtx context.Context
	stop    context.CancelFunc
}

func NewDetectionService(
	log *logrus.Logger,
	detector cascade.Detector,
	store storage.ItfCropStore,
	recognizer recognition.ItfRecognizer,
	cameraOpts camera.Options,
) IDetectionService {
	baseCtx, stop := context.WithCancel(context.Background())

	return &detectionService{
		log:        log,
		detector:   detector,
		store:      store,
		recognizer: recognizer,
		cameraOpts: cameraOpts,
		display:    newDisplay(),
		baseCtx:    baseCtx,
		stop:       stop,
	}
}

// Close cancels a pending upload and waits for it to finish. The detector
// handle is owned by the caller.
func (s *detectionService) Close() {
	s.stop()
	s.tasks.Wait()
}

func (s *detectionService) Wait() {
	s.tasks.Wait()
}
