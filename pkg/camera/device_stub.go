//go:build !gocv
// +build !gocv

package camera

import (
	"PlateDetector/internal/entity"
	"context"

	"github.com/sirupsen/logrus"
)

type Device struct{}

// NewDevice always fails without the gocv build tag.
func NewDevice(log *logrus.Logger, id string, opts Options) (*Device, error) {
	_ = log
	_ = id
	_ = opts
	return nil, ErrUnsupported
}

func (d *Device) Start(context.Context) (<-chan entity.Frame, error) {
	return nil, ErrUnsupported
}

func (d *Device) Close() error {
	return nil
}
