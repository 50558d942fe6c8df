package detectionService

import (
	"PlateDetector/internal/api/detection"
	"PlateDetector/internal/entity"
	"sync"
)

type display struct {
	mu    sync.RWMutex
	state entity.DisplayState
}

func newDisplay() *display {
	return &display{state: entity.DisplayState{State: entity.UploadIdle}}
}

func (d *display) snapshot() entity.DisplayState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// clear is the no-detection path: the crop and the text go away, the
// display goes back to idle and the notice is shown.
func (d *display) clear(notice string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.State = entity.UploadIdle
	d.state.Image = nil
	d.state.Text = ""
	d.state.Error = ""
	d.state.Notice = notice
}

func (d *display) showImage(png []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Image = png
	d.state.Notice = ""
}

func (d *display) pending() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.State = entity.UploadPending
	d.state.Text = detection.PendingText
	d.state.Error = ""
}

func (d *display) complete(result entity.UploadResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.State = entity.UploadCompleted
	d.state.Text = result.Text
	d.state.Error = ""
	if result.Err != nil {
		d.state.Error = result.Err.Error()
	}
}

func (s *detectionService) Display() entity.DisplayState {
	return s.display.snapshot()
}
