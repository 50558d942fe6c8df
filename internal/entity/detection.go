package entity

import (
	"image"
	"time"
)

// Frame is one camera tick: a colour image and its grayscale twin.
type Frame struct {
	Color      *image.RGBA
	Gray       *image.Gray
	CapturedAt time.Time
}

type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		X:      r.Min.X,
		Y:      r.Min.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
	}
}

func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Snapshot is the detection set of a single frame together with the clean
// colour image the rectangles refer to. A snapshot is never mutated after
// it is published.
type Snapshot struct {
	Image      *image.RGBA
	Rects      []Rect
	CapturedAt time.Time
}

func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Rects) == 0
}

type FrameResult struct {
	Snapshot  *Snapshot
	Annotated *image.RGBA
}
