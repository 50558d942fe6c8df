package cascade

import (
	"context"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestFilterBySize(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 80, 25),
		image.Rect(0, 0, 60, 25),
		image.Rect(0, 0, 600, 100),
		image.Rect(10, 10, 80, 31),
		image.Rect(0, 0, 500, 150),
	}

	got := FilterBySize(rects, PlateParams)

	assert.Equal(t, []image.Rectangle{
		image.Rect(0, 0, 80, 25),
		image.Rect(10, 10, 80, 31),
		image.Rect(0, 0, 500, 150),
	}, got)
}

func TestFilterBySizeKeepsOrder(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(100, 0, 200, 30),
		image.Rect(0, 0, 100, 30),
	}
	assert.Equal(t, rects, FilterBySize(rects, PlateParams))
}

func TestLoadFailureDisablesDetection(t *testing.T) {
	detector := Load(quietLogger(), "/does/not/exist.xml", PlateParams)

	assert.False(t, detector.Enabled())
	assert.Empty(t, detector.Detect(image.NewGray(image.Rect(0, 0, 100, 100))))
	assert.NoError(t, detector.Close())
}

func TestLoadEmptyPathDisablesDetection(t *testing.T) {
	detector := Load(quietLogger(), "", PlateParams)
	assert.IsType(t, Disabled{}, detector)
}

func TestLoadBytesInvalidModel(t *testing.T) {
	detector := LoadBytes(quietLogger(), []byte("<not a cascade/>"), PlateParams)
	assert.False(t, detector.Enabled())
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://models.local/plate.xml"))
	assert.True(t, IsRemote("http://models.local/plate.xml"))
	assert.False(t, IsRemote("./models/plate.xml"))
	assert.False(t, IsRemote(""))
}

func TestLoadURLFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.xml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<not a cascade/>"))
	}))
	defer srv.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"not found", srv.URL + "/missing.xml"},
		{"invalid model", srv.URL + "/plate.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := LoadURL(context.Background(), quietLogger(), srv.Client(), tt.url, PlateParams)
			assert.False(t, detector.Enabled())
		})
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestLoadURLCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	detector := LoadURL(ctx, quietLogger(), nil, "http://127.0.0.1:1/plate.xml", PlateParams)
	assert.IsType(t, Disabled{}, detector)
}
