//go:build !gocv
// +build !gocv

package cascade

import "image"

type Classifier struct{}

// NewClassifier always fails without the gocv build tag.
func NewClassifier(path string, params Params) (*Classifier, error) {
	_ = path
	_ = params
	return nil, ErrUnsupported
}

func (c *Classifier) Detect(*image.Gray) []image.Rectangle {
	return nil
}

func (c *Classifier) Enabled() bool {
	return false
}

func (c *Classifier) Close() error {
	return nil
}
