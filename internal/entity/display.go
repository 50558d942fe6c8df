package entity

// DisplayState is what a viewer shows: the last crop, the last status or
// result text and the last transient notice.
type DisplayState struct {
	Image  []byte
	Text   string
	Notice string
	State  UploadState
	Error  string
}
