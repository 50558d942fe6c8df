package config

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func testServer(t *testing.T) *Server {
	t.Helper()
	clearEnv(t)
	t.Setenv("STORAGE_DIR", t.TempDir())

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	validator := NewValidator()
	cfg, err := LoadAppConfig(validator)
	require.NoError(t, err)

	server, err := NewServer(
		WithFiber(fiber.New()),
		WithLogger(logger),
		WithValidator(validator),
		WithConfig(cfg),
		WithDetector(),
		WithCropStore(),
		WithRecognizer(),
		WithMiddleware(),
		WithUtils(),
	)
	require.NoError(t, err)

	server.RegisterHandler()
	t.Cleanup(func() { _ = server.Shutdown() })
	return server
}

func TestNewServerRequiresConfig(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	_, err := NewServer(WithFiber(fiber.New()), WithLogger(logger))
	assert.Error(t, err)

	_, err = NewServer(WithFiber(fiber.New()), WithLogger(logger), WithDetector())
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	app := testServer(t).Mount()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Message         string `json:"message"`
		DetectorEnabled bool   `json:"detector_enabled"`
	}
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Server is Healthy!", body.Message)
	assert.False(t, body.DetectorEnabled)
}

func TestRoutesAreMounted(t *testing.T) {
	server := testServer(t)
	app := server.Mount()
	assert.Same(t, app, server.Mount())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/display", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/detection/tap", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.NotNil(t, server.DetectionService())
}
