package recognition

import (
	"PlateDetector/internal/entity"
	contextPkg "PlateDetector/pkg/context"
	"PlateDetector/pkg/utils"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const (
	DefaultURL            = "https://diploma-server.herokuapp.com/img/"
	DefaultNamePrefix     = "demo"
	DefaultConnectTimeout = 5 * time.Second
	TimestampLayout       = "2006-01-02 15:04:05.000"
)

var (
	ErrUnexpectedStatus = errors.New("recognition service returned a non-200 status")
	ErrMissingResult    = errors.New("recognition response has no recognition_result field")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ItfRecognizer interface {
	Recognize(ctx context.Context, imagePath string) entity.UploadResult
}

type Config struct {
	URL            string
	NamePrefix     string
	ConnectTimeout time.Duration
}

type client struct {
	log        *logrus.Logger
	url        string
	namePrefix string
	httpClient *http.Client
	now        func() time.Time
}

// New builds the upload client. Only connecting is bounded by a timeout;
// reading the response is bounded by the caller's context.
func New(log *logrus.Logger, cfg Config) ItfRecognizer {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.NamePrefix == "" {
		cfg.NamePrefix = DefaultNamePrefix
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = cfg.ConnectTimeout

	return &client{
		log:        log,
		url:        cfg.URL,
		namePrefix: cfg.NamePrefix,
		httpClient: &http.Client{Transport: transport},
		now:        time.Now,
	}
}

func (c *client) Recognize(ctx context.Context, imagePath string) entity.UploadResult {
	result := c.recognize(ctx, imagePath)

	fields := logrus.Fields{
		"path":   imagePath,
		"status": result.Status,
	}
	if taskID, ok := contextPkg.GetTaskID(ctx); ok {
		fields["task_id"] = taskID
	}
	if result.Err != nil {
		fields["error"] = result.Err.Error()
		c.log.WithFields(fields).Warn("Plate recognition failed")
	} else {
		fields["text"] = result.Text
		c.log.WithFields(fields).Info("Plate recognition completed")
	}

	return result
}

func (c *client) recognize(ctx context.Context, imagePath string) entity.UploadResult {
	encoded, err := encodeImageFile(imagePath)
	if err != nil {
		return failed(ctx, err)
	}

	body, err := json.Marshal(entity.UploadRequest{
		Name:  c.RequestName(),
		Image: encoded,
	})
	if err != nil {
		return failed(ctx, fmt.Errorf("marshal request: %w", err))
	}

	text, err := c.send(ctx, body)
	if err != nil {
		return failed(ctx, err)
	}

	if text == "" {
		return entity.UploadResult{Status: entity.UploadEmpty}
	}
	return entity.UploadResult{Text: text, Status: entity.UploadRecognized}
}

// RequestName is the prefix followed by a millisecond timestamp.
func (c *client) RequestName() string {
	return c.namePrefix + c.now().Format(TimestampLayout)
}

func (c *client) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var payload struct {
		RecognitionResult *string `json:"recognition_result"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if payload.RecognitionResult == nil {
		return "", ErrMissingResult
	}

	return *payload.RecognitionResult, nil
}

// encodeImageFile re-encodes the stored crop losslessly and base64 encodes it.
func encodeImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read crop: %w", err)
	}

	img, _, err := utils.DecodeImage(data)
	if err != nil {
		return "", err
	}

	encoded, err := utils.PNGBytes(img)
	if err != nil {
		return "", fmt.Errorf("encode crop: %w", err)
	}

	return base64.StdEncoding.EncodeToString(encoded), nil
}

func failed(ctx context.Context, err error) entity.UploadResult {
	status := entity.UploadFailed
	if ctx.Err() != nil {
		status = entity.UploadCanceled
	}
	return entity.UploadResult{Status: status, Err: err}
}
