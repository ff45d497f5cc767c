package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewTracerProvider_None(t *testing.T) {
	for _, exp := range []string{"", ExporterNone} {
		tp, err := NewTracerProvider(context.Background(), Config{Exporter: exp})
		if err != nil {
			t.Fatalf("exporter %q: %v", exp, err)
		}
		if tp != nil {
			t.Errorf("exporter %q: expected no provider", exp)
		}
	}
}

func TestNewTracerProvider_Unknown(t *testing.T) {
	_, err := NewTracerProvider(context.Background(), Config{Exporter: "zipkin"})
	if !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("err = %v, want ErrUnknownExporter", err)
	}
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, Config{ServiceName: "aiborg-assess", Exporter: ExporterStdout, Writer: &buf})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	_, span := tp.Tracer("test").Start(ctx, "assessment.start")
	span.End()
	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if !strings.Contains(buf.String(), "assessment.start") {
		t.Errorf("expected span name in output, got %q", buf.String())
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AIBORG_TRACES_EXPORTER", "")
	t.Setenv("OTEL_TRACES_EXPORTER", "")
	if got := ConfigFromEnv().Exporter; got != ExporterNone {
		t.Errorf("default exporter = %q, want none", got)
	}

	t.Setenv("OTEL_TRACES_EXPORTER", "otlp")
	t.Setenv("AIBORG_TRACES_EXPORTER", "stdout")
	if got := ConfigFromEnv().Exporter; got != ExporterStdout {
		t.Errorf("exporter = %q, want stdout override", got)
	}
}
