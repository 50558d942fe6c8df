//go:build gocv
// +build gocv

package cascade

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Classifier wraps an OpenCV Haar cascade.
type Classifier struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	params     Params
}

func NewClassifier(path string, params Params) (*Classifier, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("unable to load cascade classifier from '%s'", path)
	}

	return &Classifier{
		classifier: classifier,
		params:     params,
	}, nil
}

func (c *Classifier) Detect(gray *image.Gray) []image.Rectangle {
	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil
	}
	defer mat.Close()

	c.mu.Lock()
	rects := c.classifier.DetectMultiScaleWithParams(
		mat,
		c.params.ScaleFactor,
		c.params.MinNeighbors,
		c.params.Flags,
		c.params.MinSize,
		c.params.MaxSize,
	)
	c.mu.Unlock()

	return FilterBySize(rects, c.params)
}

func (c *Classifier) Enabled() bool { return true }

func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classifier.Close()
}
