package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TraceLocalKey is the Locals key under which the request trace id is stored
const TraceLocalKey = "trace_id"

// TraceHeader is attached to every response, success or failure, for
// observability correlation
const TraceHeader = "x-trace-id"

// TraceID assigns a correlation id to every request. An inbound x-trace-id
// header is honored so upstream callers can propagate their own ids.
func TraceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Locals(TraceLocalKey, traceID)
		c.Set(TraceHeader, traceID)
		return c.Next()
	}
}

// Trace returns the trace id assigned to the request, or "" outside the
// TraceID middleware.
func Trace(c *fiber.Ctx) string {
	if id, ok := c.Locals(TraceLocalKey).(string); ok {
		return id
	}
	return ""
}
