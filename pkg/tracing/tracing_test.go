package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/storemover/smi/pkg/config"
)

func TestNewTracerProviderDisabled(t *testing.T) {
	cfg := config.TracingConfig{Enabled: false}

	tp, shutdown, err := NewTracerProvider(context.Background(), cfg, "smi-migrator")
	if err != nil {
		t.Fatalf("expected no error for disabled tracing, got %v", err)
	}
	defer shutdown(context.Background())

	if tp == nil {
		t.Fatal("expected non-nil tracer provider")
	}
}

func TestNewTracerProviderMissingEndpoint(t *testing.T) {
	cfg := config.TracingConfig{Enabled: true}

	if _, _, err := NewTracerProvider(context.Background(), cfg, "smi-migrator"); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}

func TestNewTracerProviderMissingServiceName(t *testing.T) {
	cfg := config.TracingConfig{
		Enabled:  true,
		Endpoint: "localhost:4317",
	}

	if _, _, err := NewTracerProvider(context.Background(), cfg, ""); err == nil {
		t.Fatal("expected error for missing service name")
	}
}

func TestNewTracerProviderInvalidExportMode(t *testing.T) {
	cfg := config.TracingConfig{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		ServiceName: "smi-migrator",
		ExportMode:  "carrier-pigeon",
	}

	if _, _, err := NewTracerProvider(context.Background(), cfg, "smi-migrator"); err == nil {
		t.Fatal("expected error for invalid export mode")
	}
}

// withRecorder installs an in-memory span recorder as the global provider for
// the duration of one test.
func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestStartSpanRecordsAttributes(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "CatalogFetch.Products")
	SetSpanAttributes(ctx, attribute.String("url", "https://shop.example.com/products"))
	AddSpanEvent(ctx, "retry", attribute.Int("attempt", 1))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name() != "CatalogFetch.Products" {
		t.Errorf("unexpected span name: %s", got.Name())
	}
	if len(got.Events()) != 1 || got.Events()[0].Name != "retry" {
		t.Errorf("expected a retry event, got %+v", got.Events())
	}

	found := false
	for _, attr := range got.Attributes() {
		if attr.Key == "url" && attr.Value.AsString() == "https://shop.example.com/products" {
			found = true
		}
	}
	if !found {
		t.Errorf("url attribute missing: %+v", got.Attributes())
	}
}

func TestSetSpanError(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "ProvisionUpload.Product")
	SetSpanError(ctx, errors.New("connection refused"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status())
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected the error recorded as an event")
	}
}

func TestSetSpanErrorNil(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "noop")
	SetSpanError(ctx, nil)
	span.End()

	if spans := recorder.Ended(); spans[0].Status().Code == codes.Error {
		t.Error("nil error must not mark the span errored")
	}
}
