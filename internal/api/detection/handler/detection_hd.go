package detectionHandler

import (
	"PlateDetector/internal/api/detection"
	"PlateDetector/internal/entity"
	contextPkg "PlateDetector/pkg/context"
	"PlateDetector/pkg/handlerUtil"
	"PlateDetector/pkg/log"
	"PlateDetector/pkg/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	maxReadTimeout = 60 * time.Second
	writeTimeout   = 10 * time.Second
	jpegQuality    = 80
)

// handleFrameWebSocket takes one encoded frame per message and answers with
// the detections and the annotated frame. Text messages carry base64.
func (h *DetectionHandler) handleFrameWebSocket(c *websocket.Conn) {
	h.log.Info("Frame WebSocket client connected")
	defer h.log.Info("Frame WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		h.log.Debug("Received ping, sending pong")
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.log.Errorf("Frame WebSocket error: %v", err)
			} else {
				h.log.Info("Frame WebSocket connection closed")
			}
			break
		}

		var data []byte
		switch messageType {
		case websocket.BinaryMessage:
			data = message
		case websocket.TextMessage:
			data, err = h.utils.DecodeBase64(string(message))
			if err != nil {
				if !h.writeJSON(c, fiber.Map{"error": detection.ErrInvalidImage.Error()}) {
					return
				}
				continue
			}
		default:
			h.log.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		result, err := h.detectionService.ProcessImage(data)
		if err != nil {
			h.log.Debugf("Rejected WebSocket frame: %v", err)
			if !h.writeJSON(c, fiber.Map{"error": err.Error()}) {
				return
			}
			continue
		}

		resp, err := h.frameResponse(result, true)
		if err != nil {
			h.log.Errorf("Error encoding annotated frame: %v", err)
			continue
		}

		if !h.writeJSON(c, resp) {
			return
		}
	}
}

func (h *DetectionHandler) writeJSON(c *websocket.Conn, v interface{}) bool {
	if err := c.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		h.log.Errorf("Error setting write deadline: %v", err)
		return false
	}

	if err := c.WriteJSON(v); err != nil {
		h.log.Errorf("Error writing JSON response: %v", err)
		return false
	}

	if err := c.SetWriteDeadline(time.Time{}); err != nil {
		h.log.Errorf("Error resetting write deadline: %v", err)
		return false
	}
	return true
}

func (h *DetectionHandler) frameResponse(result entity.FrameResult, withFrame bool) (detection.FrameResponse, error) {
	bounds := result.Annotated.Bounds()
	resp := detection.FrameResponse{
		Detections: result.Snapshot.Rects,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}
	if !withFrame {
		return resp, nil
	}

	frame, err := utils.JPEGBytes(result.Annotated, jpegQuality)
	if err != nil {
		return resp, err
	}
	resp.Frame = h.utils.ConvertToBase64(frame)
	return resp, nil
}

// IngestFrame accepts a frame as a multipart "image" file or as a JSON body
// with a base64 image.
func (h *DetectionHandler) IngestFrame(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var data []byte

	file, err := ctx.FormFile("image")
	if err == nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"file_name":  file.Filename,
			"file_size":  file.Size,
		}).Debug("Processing frame upload")

		if err := h.utils.ValidateImageFile(file); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "validate_image_file")
		}

		data, err = h.utils.ReadFile(file)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
		}
	} else {
		var req detection.FrameRequest
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, detection.ErrBadRequest, ctx.Path(), "parse_request_body")
		}

		if err := h.validator.Struct(req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}

		data, err = h.utils.DecodeBase64(req.ImageBase64)
		if err != nil {
			return errHandler.Handle(ctx, requestID, detection.ErrInvalidImage, ctx.Path(), "decode_base64")
		}
	}

	result, err := h.detectionService.ProcessImage(data)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "process_frame")
	}

	log.WithRequestID(contextPkg.FromFiberCtx(ctx)).
		WithField("detections", len(result.Snapshot.Rects)).
		Debug("Frame processed")

	resp, err := h.frameResponse(result, ctx.QueryBool("annotated"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "encode_frame")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}

// LatestFrame serves the last annotated frame as a JPEG.
func (h *DetectionHandler) LatestFrame(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	img, ok := h.detectionService.LatestFrame()
	if !ok {
		return errHandler.Handle(ctx, requestID, detection.ErrNoFrame, ctx.Path(), "latest_frame")
	}

	frame, err := utils.JPEGBytes(img, jpegQuality)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "encode_frame")
	}

	ctx.Set(fiber.HeaderContentType, "image/jpeg")
	ctx.Set(fiber.HeaderCacheControl, "no-store")
	return ctx.Status(fiber.StatusOK).Send(frame)
}

func (h *DetectionHandler) GetSnapshot(ctx *fiber.Ctx) error {
	snapshot := h.detectionService.Snapshot()

	resp := detection.SnapshotResponse{Detections: []entity.Rect{}}
	if snapshot != nil {
		resp.Detections = snapshot.Rects
		capturedAt := snapshot.CapturedAt
		resp.CapturedAt = &capturedAt
	}

	return handlerUtil.New(h.log).HandleSuccess(ctx, fiber.StatusOK, resp)
}

func (h *DetectionHandler) HandlePointer(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req detection.PointerEvent
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, detection.ErrBadRequest, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.detectionService.HandlePointer(req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "handle_pointer")
	}

	return h.selectionResponse(ctx, resp)
}

func (h *DetectionHandler) Tap(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	resp, err := h.detectionService.Tap()
	if err != nil {
		return handlerUtil.New(h.log).Handle(ctx, requestID, err, ctx.Path(), "tap")
	}

	return h.selectionResponse(ctx, resp)
}

func (h *DetectionHandler) selectionResponse(ctx *fiber.Ctx, resp *detection.SelectionResponse) error {
	status := fiber.StatusOK
	if resp.TaskID != "" {
		status = fiber.StatusAccepted
		log.WithRequestID(contextPkg.FromFiberCtx(ctx)).
			WithField("task_id", resp.TaskID).
			Info("Recognition started")
	}
	return handlerUtil.New(h.log).HandleSuccess(ctx, status, resp)
}

func (h *DetectionHandler) GetDisplay(ctx *fiber.Ctx) error {
	state := h.detectionService.Display()

	return handlerUtil.New(h.log).HandleSuccess(ctx, fiber.StatusOK, detection.DisplayResponse{
		HasImage: len(state.Image) > 0,
		Text:     state.Text,
		Notice:   state.Notice,
		State:    state.State,
		Error:    state.Error,
	})
}

func (h *DetectionHandler) GetDisplayImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	state := h.detectionService.Display()
	if len(state.Image) == 0 {
		return handlerUtil.New(h.log).Handle(ctx, requestID, detection.ErrNoCropImage, ctx.Path(), "display_image")
	}

	ctx.Set(fiber.HeaderContentType, "image/png")
	ctx.Set(fiber.HeaderCacheControl, "no-store")
	return ctx.Status(fiber.StatusOK).Send(state.Image)
}

