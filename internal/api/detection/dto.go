package detection

import (
	"PlateDetector/internal/entity"
	"time"
)

const (
	NoDetectionNotice = "No detected numbers of photo..."
	PendingText       = "Recognition number..."
)

type PointerAction string

const (
	PointerDown   PointerAction = "down"
	PointerMove   PointerAction = "move"
	PointerUp     PointerAction = "up"
	PointerCancel PointerAction = "cancel"
)

type FrameRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required,base64|datauri"`
}

type FrameResponse struct {
	Detections []entity.Rect `json:"detections"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Frame      string        `json:"frame,omitempty"`
}

type SnapshotResponse struct {
	Detections []entity.Rect `json:"detections"`
	CapturedAt *time.Time    `json:"captured_at,omitempty"`
}

// PointerEvent is a touch or click on the viewer. Only a single-pointer
// "down" selects a plate.
type PointerEvent struct {
	Action   PointerAction `json:"action" validate:"required,oneof=down move up cancel"`
	Pointers int           `json:"pointers" validate:"omitempty,min=1,max=10"`
}

func (e PointerEvent) IsPrimaryDown() bool {
	return e.Action == PointerDown && e.Pointers <= 1
}

type SelectionResponse struct {
	Selected bool         `json:"selected"`
	Ignored  bool         `json:"ignored,omitempty"`
	Rect     *entity.Rect `json:"rect,omitempty"`
	Notice   string       `json:"notice,omitempty"`
	TaskID   string       `json:"task_id,omitempty"`
}

type DisplayResponse struct {
	HasImage bool               `json:"has_image"`
	Text     string             `json:"text"`
	Notice   string             `json:"notice,omitempty"`
	State    entity.UploadState `json:"state"`
	Error    string             `json:"error,omitempty"`
}
