package context

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

type (
	requestIDKey struct{}
	taskIDKey    struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDKey{}).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

// WithTaskID tags the context of a recognition upload with its task ID.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDKey{}, taskID)
}

func GetTaskID(ctx context.Context) (string, bool) {
	taskID, ok := ctx.Value(taskIDKey{}).(string)
	return taskID, ok && taskID != ""
}

func FromFiberCtx(c *fiber.Ctx) context.Context {
	requestID, ok := c.Locals(RequestIDHeader).(string)
	if !ok || requestID == "" {
		requestID = c.Get(RequestIDHeader, "unknown")
	}

	return WithRequestID(c.UserContext(), requestID)
}
