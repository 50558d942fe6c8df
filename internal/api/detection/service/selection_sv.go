package detectionService

import (
	"PlateDetector/internal/api/detection"
	"PlateDetector/internal/entity"
	contextPkg "PlateDetector/pkg/context"
	"PlateDetector/pkg/utils"
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type uploadTask struct {
	id     string
	cancel context.CancelFunc
}

func (s *detectionService) HandlePointer(event detection.PointerEvent) (*detection.SelectionResponse, error) {
	if !event.IsPrimaryDown() {
		return &detection.SelectionResponse{Ignored: true}, nil
	}
	return s.Tap()
}

// Tap selects the first rectangle of the current snapshot, stores the crop,
// shows it and starts recognition. A recognition still in flight from an
// earlier tap is canceled.
func (s *detectionService) Tap() (*detection.SelectionResponse, error) {
	snapshot := s.snapshot.Load()
	if snapshot.Empty() {
		s.cancelUpload()
		s.log.Debug("Tap without detections")
		return &detection.SelectionResponse{Notice: detection.NoDetectionNotice}, nil
	}

	rect := snapshot.Rects[0]

	cropped, err := utils.Crop(snapshot.Image, rect.Image())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"rect":  rect,
			"error": err.Error(),
		}).Error("Failed to crop selected plate")
		return nil, detection.ErrInternalServerError
	}

	png, err := utils.PNGBytes(cropped)
	if err != nil {
		s.log.WithField("error", err.Error()).Error("Failed to encode selected plate for display")
		return nil, detection.ErrInternalServerError
	}
	s.display.showImage(png)

	path, err := s.store.Save(cropped)
	if err != nil {
		// The crop is still shown; nothing is uploaded.
		s.log.WithFields(logrus.Fields{
			"rect":  rect,
			"error": err.Error(),
		}).Error("Failed to store selected plate")
		s.abortUpload(err)
		return &detection.SelectionResponse{
			Selected: true,
			Rect:     &rect,
		}, nil
	}

	taskID := s.startUpload(path)

	s.log.WithFields(logrus.Fields{
		"rect":    rect,
		"path":    path,
		"task_id": taskID,
	}).Info("Plate selected")

	return &detection.SelectionResponse{
		Selected: true,
		Rect:     &rect,
		TaskID:   taskID,
	}, nil
}

func (s *detectionService) startUpload(path string) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(contextPkg.WithTaskID(s.baseCtx, id))
	task := &uploadTask{
		id:     id,
		cancel: cancel,
	}

	s.taskMu.Lock()
	if s.task != nil {
		s.log.WithField("task_id", s.task.id).Info("Canceling pending recognition")
		s.task.cancel()
	}
	s.task = task
	s.display.pending()
	s.tasks.Add(1)
	s.taskMu.Unlock()

	go func() {
		defer s.tasks.Done()
		defer cancel()

		result := s.recognizer.Recognize(ctx, path)

		s.taskMu.Lock()
		defer s.taskMu.Unlock()
		if s.task != task {
			return
		}
		s.task = nil
		s.display.complete(result)
	}()

	return task.id
}

// cancelUpload drops the upload in flight, so its result never reaches the
// display, and shows the no-detection notice.
func (s *detectionService) cancelUpload() {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()
	if s.task != nil {
		s.log.WithField("task_id", s.task.id).Info("Canceling pending recognition")
		s.task.cancel()
		s.task = nil
	}
	s.display.clear(detection.NoDetectionNotice)
}

// abortUpload completes the display with an empty result when no upload
// could be started.
func (s *detectionService) abortUpload(cause error) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()
	if s.task != nil {
		s.task.cancel()
		s.task = nil
	}
	s.display.complete(entity.UploadResult{Status: entity.UploadFailed, Err: cause})
}

func (s *detectionService) pendingTask() (string, bool) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()
	if s.task == nil {
		return "", false
	}
	return s.task.id, true
}
