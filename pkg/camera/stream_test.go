package camera

import (
	"context"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGrabber struct {
	release  chan struct{}
	entered  chan struct{}
	grabbing atomic.Bool
	overlap  atomic.Bool
	closes   atomic.Int32
	limit    int
	grabs    int
	once     sync.Once
}

func newFakeGrabber(limit int) *fakeGrabber {
	return &fakeGrabber{
		release: make(chan struct{}),
		entered: make(chan struct{}),
		limit:   limit,
	}
}

func (g *fakeGrabber) Grab() (image.Image, bool) {
	g.grabbing.Store(true)
	defer g.grabbing.Store(false)

	g.grabs++
	if g.limit > 0 {
		if g.grabs > g.limit {
			return nil, false
		}
		return image.NewRGBA(image.Rect(0, 0, 8, 4)), true
	}

	g.once.Do(func() { close(g.entered) })
	<-g.release
	return nil, true
}

func (g *fakeGrabber) Close() error {
	if g.grabbing.Load() {
		g.overlap.Store(true)
	}
	g.closes.Add(1)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStreamDeliversFramesUntilDeviceStops(t *testing.T) {
	g := newFakeGrabber(3)
	s := newStream(quietLogger(), "fake", g)

	frames, err := s.Start(context.Background())
	require.NoError(t, err)

	count := 0
	for frame := range frames {
		count++
		assert.Equal(t, image.Rect(0, 0, 8, 4), frame.Gray.Bounds())
	}
	assert.Equal(t, 3, count)

	require.NoError(t, s.Close())
	assert.Equal(t, int32(1), g.closes.Load())
}

func TestStreamCloseWaitsForGrab(t *testing.T) {
	g := newFakeGrabber(0)
	s := newStream(quietLogger(), "fake", g)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := s.Start(ctx)
	require.NoError(t, err)

	<-g.entered
	cancel()

	closed := make(chan struct{})
	go func() {
		_ = s.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while Grab was still running")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(0), g.closes.Load())

	close(g.release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after Grab finished")
	}

	assert.False(t, g.overlap.Load())
	assert.Equal(t, int32(1), g.closes.Load())
}

func TestStreamCloseWithoutStart(t *testing.T) {
	g := newFakeGrabber(1)
	s := newStream(quietLogger(), "fake", g)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, int32(1), g.closes.Load())

	_, err := s.Start(context.Background())
	assert.ErrorIs(t, err, ErrSourceClosed)
}
