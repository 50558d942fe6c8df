package detectionHandler

import (
	detectionService "PlateDetector/internal/api/detection/service"
	"PlateDetector/internal/middleware"
	"PlateDetector/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type DetectionHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	detectionService detectionService.IDetectionService
	utils            utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ds detectionService.IDetectionService,
	utils utils.IUtils,
) *DetectionHandler {
	return &DetectionHandler{
		detectionService: ds,
		log:              log,
		validator:        validator,
		middleware:       middleware,
		utils:            utils,
	}
}

func (h *DetectionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	det := srv.Group("/detection")
	det.Use("/ws", wsMiddleware)
	det.Get("/ws", websocket.New(h.handleFrameWebSocket))
	det.Post("/frame", h.IngestFrame)
	det.Get("/frame", h.LatestFrame)
	det.Get("/snapshot", h.GetSnapshot)
	det.Post("/pointer", h.middleware.NewRateLimiter, h.HandlePointer)
	det.Post("/tap", h.middleware.NewRateLimiter, h.Tap)

	srv.Get("/display", h.GetDisplay)
	srv.Get("/display/image", h.GetDisplayImage)
}
