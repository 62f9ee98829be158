package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"pantry/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger
	Logger = NewLogger(&buf, "test")
	t.Cleanup(func() { Logger = prev })
	return &buf
}

func TestNewLogger_AddsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "development")

	ctx := withLogAttrs(context.Background(), slog.String("request_id", "req-1"))
	ctx = WithUserID(ctx, 42)
	logger.With(slog.String("component", "test")).InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "user_id=42")
	assert.Contains(t, out, "component=test")
}

func TestNewLogger_JSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "production").Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestWithLogAttrs_DoesNotShareParentSlice(t *testing.T) {
	base := withLogAttrs(context.Background(), slog.String("a", "1"))
	left := withLogAttrs(base, slog.String("b", "2"))
	right := withLogAttrs(base, slog.String("c", "3"))

	assert.Len(t, base.Value(logAttrsKey{}).([]slog.Attr), 1)
	assert.Equal(t, "b", left.Value(logAttrsKey{}).([]slog.Attr)[1].Key)
	assert.Equal(t, "c", right.Value(logAttrsKey{}).([]slog.Attr)[1].Key)
}

func TestRequestContextAndAccessLog(t *testing.T) {
	buf := captureLogger(t)

	tp := sdktrace.NewTracerProvider()
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })

	app := fiber.New()
	app.Use(requestid.New(), Tracing(), RequestContext(), AccessLog())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items/3", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	traceID := resp.Header.Get("X-Trace-ID")
	require.Len(t, traceID, 32)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "trace_id="+traceID)
	assert.Contains(t, out, "request_id="+resp.Header.Get(fiber.HeaderXRequestID))
}
