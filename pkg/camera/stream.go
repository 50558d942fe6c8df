package camera

import (
	"PlateDetector/internal/entity"
	"context"
	"errors"
	"image"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrSourceClosed = errors.New("frame source is closed")

// grabber reads frames from a capture handle. Grab and Close are never called
// concurrently: the stream goroutine owns the handle while it runs.
type grabber interface {
	// Grab returns ok=false once the device stops. A nil image with ok=true
	// is a frame to skip.
	Grab() (img image.Image, ok bool)
	Close() error
}

// stream turns a grabber into a Source. Close waits for a running producer
// to leave Grab before the handle is released.
type stream struct {
	log     *logrus.Logger
	name    string
	grabber grabber

	mu       sync.Mutex
	started  bool
	closed   bool
	stop     chan struct{}
	done     chan struct{}
	closeErr error
}

func newStream(log *logrus.Logger, name string, g grabber) *stream {
	return &stream{
		log:     log,
		name:    name,
		grabber: g,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *stream) Start(ctx context.Context) (<-chan entity.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSourceClosed
	}
	if s.started {
		return nil, errors.New("frame source already started")
	}
	s.started = true

	frames := make(chan entity.Frame)
	go s.produce(ctx, frames)
	return frames, nil
}

func (s *stream) produce(ctx context.Context, frames chan<- entity.Frame) {
	defer close(s.done)
	defer close(frames)
	defer func() {
		s.closeErr = s.grabber.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		default:
		}

		img, ok := s.grabber.Grab()
		if !ok {
			s.log.WithField("device", s.name).Warn("Capture device stopped delivering frames")
			return
		}
		if img == nil {
			continue
		}

		select {
		case frames <- NewFrame(img):
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		}
	}
}

func (s *stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return s.closeErr
	}
	s.closed = true
	started := s.started
	close(s.stop)
	s.mu.Unlock()

	if !started {
		s.closeErr = s.grabber.Close()
		close(s.done)
		return s.closeErr
	}

	<-s.done
	return s.closeErr
}
