package storage

import (
	"PlateDetector/pkg/utils"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
)

const ImageName = "detector-image.png"

// ItfCropStore persists the single selected crop, overwriting the previous
// one on every save.
type ItfCropStore interface {
	Save(img image.Image) (string, error)
	Load() (image.Image, error)
	Path() string
}

type cropStore struct {
	mu   sync.Mutex
	dir  string
	name string
}

func New(dir string) (ItfCropStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}

	return &cropStore{
		dir:  dir,
		name: ImageName,
	}, nil
}

func (s *cropStore) Path() string {
	return filepath.Join(s.dir, s.name)
}

func (s *cropStore) Save(img image.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, s.name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp crop file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := utils.EncodePNG(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode crop: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp crop file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return "", fmt.Errorf("chmod crop file: %w", err)
	}

	path := s.Path()
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("replace crop file: %w", err)
	}

	return path, nil
}

func (s *cropStore) Load() (image.Image, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.Path())
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("read crop file: %w", err)
	}

	img, _, err := utils.DecodeImage(data)
	return img, err
}
