//go:build gocv
// +build gocv

package camera

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Device reads frames from a local capture device or stream URL.
type Device struct {
	*stream
}

func NewDevice(log *logrus.Logger, id string, opts Options) (*Device, error) {
	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("open capture device %q: %w", id, err)
	}

	if opts.MaxWidth > 0 && opts.MaxHeight > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(opts.MaxWidth))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(opts.MaxHeight))
	}

	c := &capture{
		log: log,
		vc:  vc,
		mat: gocv.NewMat(),
	}
	return &Device{stream: newStream(log, id, c)}, nil
}

type capture struct {
	log *logrus.Logger
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

func (c *capture) Grab() (image.Image, bool) {
	if ok := c.vc.Read(&c.mat); !ok {
		return nil, false
	}
	if c.mat.Empty() {
		return nil, true
	}

	img, err := c.mat.ToImage()
	if err != nil {
		c.log.WithField("error", err.Error()).Warn("Failed to convert captured frame")
		return nil, true
	}
	return img, true
}

func (c *capture) Close() error {
	c.mat.Close()
	return c.vc.Close()
}
