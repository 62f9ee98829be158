package middleware

import (
	"net/http/httptest"
	"testing"

	"pantry/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevTracer, prevProp := observability.Tracer, otel.GetTextMapPropagator()
	observability.Tracer = tp.Tracer("test")
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		observability.Tracer = prevTracer
		otel.SetTextMapPropagator(prevProp)
	})
	return recorder
}

func TestTracing_NamesSpanByRoute(t *testing.T) {
	recorder := recordSpans(t)

	app := fiber.New()
	app.Use(Tracing())
	app.Get("/recipes/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/recipes/9", nil), -1)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /recipes/:id", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestTracing_ContinuesIncomingTrace(t *testing.T) {
	recorder := recordSpans(t)
	const parent = "4bf92f3577b34da6a3ce929d0e0e4736"

	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", okHandler)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("traceparent", "00-"+parent+"-00f067aa0ba902b7-01")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, parent, resp.Header.Get("X-Trace-ID"))
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, parent, spans[0].SpanContext().TraceID().String())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}
