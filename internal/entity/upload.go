package entity

import "fmt"

// UploadRequest is the JSON body sent to the recognition service.
type UploadRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type RecognitionResponse struct {
	RecognitionResult string `json:"recognition_result"`
}

type UploadStatus string

const (
	UploadRecognized UploadStatus = "recognized"
	UploadEmpty      UploadStatus = "empty"
	UploadFailed     UploadStatus = "failed"
	UploadCanceled   UploadStatus = "canceled"
)

// UploadResult keeps the failure cause next to the text so an empty
// recognition can be told apart from a transport error.
type UploadResult struct {
	Text   string
	Status UploadStatus
	Err    error
}

func (r UploadResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Status, r.Err)
	}
	return fmt.Sprintf("%s: %q", r.Status, r.Text)
}

type UploadState string

const (
	UploadIdle      UploadState = "idle"
	UploadPending   UploadState = "pending"
	UploadCompleted UploadState = "completed"
)
