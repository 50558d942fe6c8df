package cascade

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Load builds the process-wide classifier handle. A model that fails to load
// is not fatal: the returned detector is Disabled and the failure is logged.
func Load(log *logrus.Logger, path string, params Params) Detector {
	if path == "" {
		log.Warn("Cascade path is empty, plate detection disabled")
		return Disabled{}
	}

	classifier, err := NewClassifier(path, params)
	if err != nil {
		log.WithFields(logrus.Fields{
			"path":  path,
			"error": err.Error(),
		}).Error("Failed to load cascade classifier, plate detection disabled")
		return Disabled{}
	}

	log.WithField("path", path).Info("Loaded cascade classifier")
	return classifier
}

// LoadBytes writes an in-memory model to a temporary file, loads it and
// removes the file again.
func LoadBytes(log *logrus.Logger, model []byte, params Params) Detector {
	tempFile, err := os.CreateTemp("", "plate-cascade-*.xml")
	if err != nil {
		log.WithField("error", err.Error()).Error("Unable to create cascade temp file, plate detection disabled")
		return Disabled{}
	}
	defer os.Remove(tempFile.Name())

	_, err = io.Copy(tempFile, bytes.NewReader(model))
	tempFile.Close()
	if err != nil {
		log.WithField("error", fmt.Errorf("write cascade model into '%s': %w", tempFile.Name(), err).Error()).
			Error("Unable to write cascade model, plate detection disabled")
		return Disabled{}
	}

	return Load(log, tempFile.Name(), params)
}

const maxModelSize = 32 << 20

// IsRemote reports whether path names a model to download.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// LoadURL downloads a model and loads it through LoadBytes. Any failure
// leaves detection disabled.
func LoadURL(ctx context.Context, log *logrus.Logger, client *http.Client, url string, params Params) Detector {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	model, err := fetchModel(ctx, client, url)
	if err != nil {
		log.WithFields(logrus.Fields{
			"url":   url,
			"error": err.Error(),
		}).Error("Failed to download cascade model, plate detection disabled")
		return Disabled{}
	}

	log.WithFields(logrus.Fields{
		"url":  url,
		"size": len(model),
	}).Debug("Downloaded cascade model")
	return LoadBytes(log, model, params)
}

func fetchModel(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	model, err := io.ReadAll(io.LimitReader(resp.Body, maxModelSize+1))
	if err != nil {
		return nil, err
	}
	if len(model) > maxModelSize {
		return nil, fmt.Errorf("model exceeds %d bytes", maxModelSize)
	}
	return model, nil
}
