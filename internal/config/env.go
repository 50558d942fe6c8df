package config

import (
	"PlateDetector/pkg/camera"
	"PlateDetector/pkg/recognition"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	CameraSourceNone   = "none"
	CameraSourceDevice = "device"
	CameraSourceWS     = "ws"
)

var ErrMissingCameraURL = errors.New("CAMERA_WS_URL is required when CAMERA_SOURCE=ws")

type AppConfig struct {
	Port        string `validate:"required,numeric"`
	Env         string
	CascadePath string

	CameraSource    string `validate:"oneof=none device ws"`
	CameraDevice    string
	CameraWSURL     string `validate:"omitempty,url"`
	CameraMaxWidth  int    `validate:"gt=0"`
	CameraMaxHeight int    `validate:"gt=0"`

	RecognitionURL            string        `validate:"required,url"`
	RecognitionConnectTimeout time.Duration `validate:"gt=0"`
	RecognitionNamePrefix     string        `validate:"required"`

	StorageDir     string  `validate:"required"`
	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"min=1"`
}

// LoadAppConfig reads the process environment. godotenv has already been
// applied by the caller.
func LoadAppConfig(v *validator.Validate) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:                  getEnv("APP_PORT", "3000"),
		Env:                   getEnv("APP_ENV", "development"),
		CascadePath:           os.Getenv("CASCADE_PATH"),
		CameraSource:          getEnv("CAMERA_SOURCE", CameraSourceNone),
		CameraDevice:          getEnv("CAMERA_DEVICE", "0"),
		CameraWSURL:           os.Getenv("CAMERA_WS_URL"),
		RecognitionURL:        getEnv("RECOGNITION_URL", recognition.DefaultURL),
		RecognitionNamePrefix: getEnv("RECOGNITION_NAME_PREFIX", recognition.DefaultNamePrefix),
		StorageDir:            getEnv("STORAGE_DIR", "./storage/images"),
	}

	var err error
	if cfg.CameraMaxWidth, err = getInt("CAMERA_MAX_WIDTH", 1280); err != nil {
		return nil, err
	}
	if cfg.CameraMaxHeight, err = getInt("CAMERA_MAX_HEIGHT", 720); err != nil {
		return nil, err
	}
	if cfg.RecognitionConnectTimeout, err = getDuration("RECOGNITION_CONNECT_TIMEOUT", recognition.DefaultConnectTimeout); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}

	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.CameraSource == CameraSourceWS && cfg.CameraWSURL == "" {
		return nil, ErrMissingCameraURL
	}

	return cfg, nil
}

func (c *AppConfig) CameraOptions() camera.Options {
	return camera.Options{
		MaxWidth:  c.CameraMaxWidth,
		MaxHeight: c.CameraMaxHeight,
	}
}

func (c *AppConfig) RecognitionConfig() recognition.Config {
	return recognition.Config{
		URL:            c.RecognitionURL,
		NamePrefix:     c.RecognitionNamePrefix,
		ConnectTimeout: c.RecognitionConnectTimeout,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
