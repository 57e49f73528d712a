package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{SampleRatio: 3}
	cfg.applyDefaults()

	if cfg.ServiceName != "dentalops-server" {
		t.Errorf("expected default service name, got %q", cfg.ServiceName)
	}
	if cfg.OTLPEndpoint != "localhost:4317" {
		t.Errorf("expected default endpoint, got %q", cfg.OTLPEndpoint)
	}
	if cfg.SampleRatio != 1 {
		t.Errorf("expected out-of-range ratio to reset to 1, got %f", cfg.SampleRatio)
	}
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown error: %v", err)
	}

	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected traceparent propagator, got fields %v", fields)
	}
}

func TestMiddleware_RecordsServerSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	e := echo.New()
	e.Use(Middleware("dentalops-test"))
	e.GET("/api/v1/search", func(c echo.Context) error {
		if !trace.SpanContextFromContext(c.Request().Context()).IsValid() {
			t.Error("expected a span in the request context")
		}
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=jane", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "GET /api/v1/search" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
}
