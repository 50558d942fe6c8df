package cascade

import (
	"errors"
	"image"
)

var ErrUnsupported = errors.New("built without the gocv tag, cascade detection is unavailable")

// Params are the detectMultiScale knobs.
type Params struct {
	ScaleFactor  float64
	MinNeighbors int
	// Flags is passed through to detectMultiScale untouched.
	Flags   int
	MinSize image.Point
	MaxSize image.Point
}

// PlateParams are tuned for licence plates seen at phone-camera distance.
var PlateParams = Params{
	ScaleFactor:  1.1,
	MinNeighbors: 10,
	Flags:        5,
	MinSize:      image.Pt(70, 21),
	MaxSize:      image.Pt(500, 150),
}

// Detector finds candidate rectangles on a grayscale frame. Implementations
// return an empty slice rather than an error when nothing is found.
type Detector interface {
	Detect(gray *image.Gray) []image.Rectangle
	Enabled() bool
	Close() error
}

// FilterBySize drops rectangles outside the min/max bounds. Backends that
// apply the bounds themselves can still call it; it is idempotent.
func FilterBySize(rects []image.Rectangle, p Params) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(rects))
	for _, r := range rects {
		w, h := r.Dx(), r.Dy()
		if p.MinSize.X > 0 && (w < p.MinSize.X || h < p.MinSize.Y) {
			continue
		}
		if p.MaxSize.X > 0 && (w > p.MaxSize.X || h > p.MaxSize.Y) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Disabled is the detector used when the model could not be loaded. Every
// frame yields no detections.
type Disabled struct{}

func (Disabled) Detect(*image.Gray) []image.Rectangle {
	return nil
}

func (Disabled) Enabled() bool {
	return false
}

func (Disabled) Close() error {
	return nil
}
