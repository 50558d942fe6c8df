package websocketPkg

import (
	"PlateDetector/internal/entity"
	"PlateDetector/pkg/camera"
	"PlateDetector/pkg/utils"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// RemoteCamera is a frame source fed by a remote camera that streams
// encoded frames over a WebSocket. Binary messages carry raw JPEG/PNG bytes,
// text messages carry the same bytes base64 encoded.
type RemoteCamera struct {
	log          *logrus.Logger
	url          string
	opts         camera.Options
	utils        utils.IUtils
	conn         *websocket.Conn
	mu           sync.Mutex
	pingInterval time.Duration
	writeTimeout time.Duration
}

func NewRemoteCamera(log *logrus.Logger, url string, opts camera.Options) *RemoteCamera {
	return &RemoteCamera{
		log:          log,
		url:          url,
		opts:         opts,
		utils:        utils.New(),
		pingInterval: 30 * time.Second,
		writeTimeout: 5 * time.Second,
	}
}

func (c *RemoteCamera) connect(ctx context.Context) (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.url == "" {
		return nil, fmt.Errorf("remote camera URL not configured")
	}

	c.log.WithField("url", c.url).Info("Connecting to remote camera")

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.WithField("error", err.Error()).Warn("Error sending pong to remote camera")
		}
		return nil
	})

	c.conn = conn
	return conn, nil
}

func (c *RemoteCamera) Start(ctx context.Context) (<-chan entity.Frame, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	frames := make(chan entity.Frame)
	done := make(chan struct{})

	go c.keepAlive(conn, done)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(frames)
		defer close(done)

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.log.WithField("error", err.Error()).Error("Remote camera connection lost")
				} else {
					c.log.Info("Remote camera connection closed")
				}
				return
			}

			frame, err := c.decode(messageType, message)
			if err != nil {
				c.log.WithField("error", err.Error()).Warn("Dropping undecodable remote frame")
				continue
			}

			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames, nil
}

func (c *RemoteCamera) decode(messageType int, message []byte) (entity.Frame, error) {
	data := message
	if messageType == websocket.TextMessage {
		decoded, err := c.utils.DecodeBase64(string(message))
		if err != nil {
			return entity.Frame{}, fmt.Errorf("decode base64 frame: %w", err)
		}
		data = decoded
	}

	return c.opts.Decode(data)
}

func (c *RemoteCamera) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.Lock()
			err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
			c.mu.Unlock()

			if err != nil {
				c.log.WithField("error", err.Error()).Warn("Ping to remote camera failed, closing connection")
				conn.Close()
				return
			}
		}
	}
}

func (c *RemoteCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
