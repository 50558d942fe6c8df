package config

import (
	detectionHandler "PlateDetector/internal/api/detection/handler"
	detectionService "PlateDetector/internal/api/detection/service"
	"PlateDetector/internal/middleware"
	"PlateDetector/pkg/cascade"
	"PlateDetector/pkg/recognition"
	"PlateDetector/pkg/storage"
	"PlateDetector/pkg/utils"
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	shutdownTimeout      = 10 * time.Second
	modelDownloadTimeout = time.Minute
)

type ServerOption func(*Server) error

type Server struct {
	engine           *fiber.App
	log              *logrus.Logger
	config           *AppConfig
	middleware       middleware.Middleware
	validator        *validator.Validate
	utils            utils.IUtils
	detector         cascade.Detector
	cropStore        storage.ItfCropStore
	recognizer       recognition.ItfRecognizer
	detectionService detectionService.IDetectionService
	handlers         []handler
	mounted          bool
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if server.detector == nil {
		server.detector = cascade.Disabled{}
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithConfig(cfg *AppConfig) ServerOption {
	return func(s *Server) error {
		s.config = cfg
		return nil
	}
}

// WithDetector loads the cascade from CASCADE_PATH, a file or an http(s) URL. A missing or broken
// model leaves detection disabled instead of failing startup.
func WithDetector() ServerOption {
	return func(s *Server) error {
		if s.log == nil || s.config == nil {
			return fmt.Errorf("logger and config must be initialized before detector")
		}
		if cascade.IsRemote(s.config.CascadePath) {
			ctx, cancel := context.WithTimeout(context.Background(), modelDownloadTimeout)
			defer cancel()
			s.detector = cascade.LoadURL(ctx, s.log, nil, s.config.CascadePath, cascade.PlateParams)
			return nil
		}
		s.detector = cascade.Load(s.log, s.config.CascadePath, cascade.PlateParams)
		return nil
	}
}

func WithCropStore() ServerOption {
	return func(s *Server) error {
		if s.config == nil {
			return fmt.Errorf("config must be initialized before crop store")
		}
		store, err := storage.New(s.config.StorageDir)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize crop store: %v", err)
			}
			return fmt.Errorf("failed to create crop store: %w", err)
		}
		s.cropStore = store
		return nil
	}
}

func WithRecognizer() ServerOption {
	return func(s *Server) error {
		if s.log == nil || s.config == nil {
			return fmt.Errorf("logger and config must be initialized before recognizer")
		}
		s.recognizer = recognition.New(s.log, s.config.RecognitionConfig())
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		cfg := middleware.Config{}
		if s.config != nil {
			cfg.RequestsPerSecond = s.config.RateLimitRPS
			cfg.Burst = s.config.RateLimitBurst
		}
		s.middleware = middleware.New(s.log, cfg)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Detection
	s.detectionService = detectionService.NewDetectionService(s.log, s.detector, s.cropStore, s.recognizer, s.config.CameraOptions())
	detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, s.detectionService, s.utils)

	s.handlers = append(s.handlers, detectionHandlers)
}

func (s *Server) DetectionService() detectionService.IDetectionService {
	return s.detectionService
}

// Mount attaches middleware and handler routes. Run calls it; tests use it
// with fiber's app.Test.
func (s *Server) Mount() *fiber.App {
	if s.mounted {
		return s.engine
	}
	s.mounted = true

	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	s.setupHealthCheck()
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	return s.engine
}

func (s *Server) Run() error {
	s.Mount()

	return s.engine.Listen(fmt.Sprintf(":%s", s.config.Port))
}

// Shutdown stops the listener, cancels a pending recognition and releases
// the classifier.
func (s *Server) Shutdown() error {
	err := s.engine.ShutdownWithTimeout(shutdownTimeout)

	if s.detectionService != nil {
		s.detectionService.Close()
	}
	if closeErr := s.detector.Close(); closeErr != nil {
		s.log.Errorf("Failed to release cascade classifier: %v", closeErr)
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message":          "Server is Healthy!",
			"detector_enabled": s.detector.Enabled(),
		})
	})
}
