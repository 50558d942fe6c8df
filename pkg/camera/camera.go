package camera

import (
	"PlateDetector/internal/entity"
	"PlateDetector/pkg/utils"
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

var (
	ErrUnsupported   = errors.New("built without the gocv tag, camera capture is unavailable")
	ErrFrameTooLarge = errors.New("frame exceeds the configured maximum size")
)

// Source produces frames until ctx is done or the device stops. The channel
// is closed when the source ends.
type Source interface {
	Start(ctx context.Context) (<-chan entity.Frame, error)
	Close() error
}

type Options struct {
	MaxWidth  int
	MaxHeight int
}

// NewFrame builds the colour and grayscale pair for one tick.
func NewFrame(img image.Image) entity.Frame {
	color := utils.ToRGBA(img)
	return entity.Frame{
		Color:      color,
		Gray:       utils.ToGray(color),
		CapturedAt: time.Now(),
	}
}

// Decode turns an encoded frame into a Frame. Oversized frames are rejected
// from the image header alone.
func (o Options) Decode(data []byte) (entity.Frame, error) {
	img, _, err := utils.DecodeImageLimited(data, o.MaxWidth, o.MaxHeight)
	if err != nil {
		if errors.Is(err, utils.ErrImageTooLarge) {
			return entity.Frame{}, fmt.Errorf("%w: %v", ErrFrameTooLarge, err)
		}
		return entity.Frame{}, err
	}
	return NewFrame(img), nil
}
