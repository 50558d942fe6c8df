package main

import (
	"PlateDetector/internal/config"
	"PlateDetector/pkg/camera"
	"PlateDetector/pkg/log"
	websocketPkg "PlateDetector/pkg/websocket"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	validator := config.NewValidator()
	appConfig, err := config.LoadAppConfig(validator)
	if err != nil {
		logger.Fatal(err)
	}

	fiberApp := config.NewFiber(logger)

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithConfig(appConfig),
		config.WithDetector(),
		config.WithCropStore(),
		config.WithRecognizer(),
		config.WithMiddleware(),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, err := newFrameSource(logger, appConfig)
	if err != nil {
		logger.Errorf("Frame source unavailable, serving HTTP ingest only: %v", err)
	}

	loopDone := make(chan struct{})
	if source != nil {
		go func() {
			defer close(loopDone)
			if err := server.DetectionService().Run(ctx, source); err != nil {
				logger.Errorf("Frame loop failed: %v", err)
			}
		}()
	} else {
		close(loopDone)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":          appConfig.Port,
		"camera_source": appConfig.CameraSource,
	}).Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	cancel()
	<-loopDone
	if source != nil {
		if err := source.Close(); err != nil {
			logger.Errorf("Error closing frame source: %v", err)
		}
	}

	if err := server.Shutdown(); err != nil {
		logger.Errorf("Error shutting down server: %v", err)
	}
}

func newFrameSource(logger *logrus.Logger, cfg *config.AppConfig) (camera.Source, error) {
	switch cfg.CameraSource {
	case config.CameraSourceDevice:
		device, err := camera.NewDevice(logger, cfg.CameraDevice, cfg.CameraOptions())
		if err != nil {
			return nil, err
		}
		return device, nil
	case config.CameraSourceWS:
		return websocketPkg.NewRemoteCamera(logger, cfg.CameraWSURL, cfg.CameraOptions()), nil
	default:
		return nil, nil
	}
}
