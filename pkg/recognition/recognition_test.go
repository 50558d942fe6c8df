package recognition

import (
	"PlateDetector/internal/entity"
	contextPkg "PlateDetector/pkg/context"
	"PlateDetector/pkg/utils"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeCrop(t *testing.T) (string, *image.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 25))
	for x := 0; x < 80; x++ {
		img.SetRGBA(x, x%25, color.RGBA{R: uint8(x * 3), G: 200, B: 10, A: 255})
	}
	data, err := utils.PNGBytes(img)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "detector-image.png")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, img
}

func newTestClient(url string) *client {
	return New(quietLogger(), Config{URL: url}).(*client)
}

func TestRecognizeSuccess(t *testing.T) {
	path, original := writeCrop(t)

	var got entity.UploadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"recognition_result": "ABC123", "confidence": 0.9}`)
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Recognize(context.Background(), path)

	assert.Equal(t, "ABC123", result.Text)
	assert.Equal(t, entity.UploadRecognized, result.Status)
	assert.NoError(t, result.Err)

	raw, err := base64.StdEncoding.DecodeString(got.Image)
	require.NoError(t, err)
	img, format, err := utils.DecodeImage(raw)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, original.Pix, utils.ToRGBA(img).Pix)
}

func TestRecognizeNon200IsEmpty(t *testing.T) {
	path, _ := writeCrop(t)

	for _, status := range []int{http.StatusCreated, http.StatusBadRequest, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			io.WriteString(w, `{"recognition_result": "SHOULD-NOT-READ"}`)
		}))

		result := newTestClient(srv.URL).Recognize(context.Background(), path)
		srv.Close()

		assert.Equal(t, "", result.Text, "status %d", status)
		assert.Equal(t, entity.UploadFailed, result.Status)
		assert.ErrorIs(t, result.Err, ErrUnexpectedStatus)
	}
}

func TestRecognizeMalformedJSON(t *testing.T) {
	path, _ := writeCrop(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Recognize(context.Background(), path)

	assert.Equal(t, "", result.Text)
	assert.Equal(t, entity.UploadFailed, result.Status)
	assert.Error(t, result.Err)
}

func TestRecognizeMissingField(t *testing.T) {
	path, _ := writeCrop(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"other": "x"}`)
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Recognize(context.Background(), path)

	assert.Equal(t, "", result.Text)
	assert.ErrorIs(t, result.Err, ErrMissingResult)
}

func TestRecognizeEmptyResultIsNotAnError(t *testing.T) {
	path, _ := writeCrop(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"recognition_result": ""}`)
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Recognize(context.Background(), path)

	assert.Equal(t, entity.UploadEmpty, result.Status)
	assert.NoError(t, result.Err)
}

func TestRecognizeTransportError(t *testing.T) {
	path, _ := writeCrop(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	result := newTestClient(url).Recognize(context.Background(), path)

	assert.Equal(t, "", result.Text)
	assert.Equal(t, entity.UploadFailed, result.Status)
	assert.Error(t, result.Err)
}

func TestRecognizeMissingFile(t *testing.T) {
	result := newTestClient("http://127.0.0.1:1").Recognize(context.Background(), filepath.Join(t.TempDir(), "none.png"))

	assert.Equal(t, entity.UploadFailed, result.Status)
	assert.Error(t, result.Err)
}

func TestRecognizeCanceled(t *testing.T) {
	path, _ := writeCrop(t)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	result := newTestClient(srv.URL).Recognize(ctx, path)

	assert.Equal(t, entity.UploadCanceled, result.Status)
	assert.ErrorIs(t, result.Err, context.Canceled)
}

func TestRequestName(t *testing.T) {
	c := newTestClient("http://localhost")
	c.now = func() time.Time {
		return time.Date(2024, 3, 9, 7, 5, 3, 42_000_000, time.UTC)
	}

	assert.Equal(t, "demo2024-03-09 07:05:03.042", c.RequestName())

	c.now = time.Now
	pattern := regexp.MustCompile(`^demo\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}$`)
	assert.Regexp(t, pattern, c.RequestName())
}

func TestNewAppliesDefaults(t *testing.T) {
	c := New(quietLogger(), Config{}).(*client)

	assert.Equal(t, DefaultURL, c.url)
	assert.Equal(t, DefaultNamePrefix, c.namePrefix)
	assert.Zero(t, c.httpClient.Timeout)
}

func TestRecognizeLogsTaskID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"recognition_result":"XY42"}`))
	}))
	defer srv.Close()

	logger, hook := logtest.NewNullLogger()
	c := New(logger, Config{URL: srv.URL})
	path, _ := writeCrop(t)

	result := c.Recognize(contextPkg.WithTaskID(context.Background(), "task-7"), path)
	require.Equal(t, "XY42", result.Text)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "task-7", entry.Data["task_id"])
	assert.Equal(t, "XY42", entry.Data["text"])
}
