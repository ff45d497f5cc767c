// Package telemetry installs the OpenTelemetry tracer provider used by the
// assessment service spans.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Trace exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// ErrUnknownExporter is returned by Init for an unsupported exporter name.
var ErrUnknownExporter = errors.New("unknown trace exporter")

// Config selects where spans go.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Exporter is "none", "stdout" or "otlp".
	Exporter string

	// OTLPEndpoint is a gRPC host:port.
	OTLPEndpoint string
	OTLPInsecure bool

	// Writer receives stdout-exporter spans; nil means os.Stderr.
	Writer io.Writer
}

// ConfigFromEnv reads AIBORG_TRACES_EXPORTER (falling back to the standard
// OTEL_TRACES_EXPORTER, default none) and OTEL_EXPORTER_OTLP_ENDPOINT.
func ConfigFromEnv() Config {
	exporter := os.Getenv("AIBORG_TRACES_EXPORTER")
	if exporter == "" {
		exporter = getEnvOr("OTEL_TRACES_EXPORTER", ExporterNone)
	}
	return Config{
		ServiceName:  "aiborg-assess",
		Exporter:     exporter,
		OTLPEndpoint: getEnvOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPInsecure: os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") != "false",
	}
}

// Init installs a global tracer provider for cfg. With exporter "none" it
// changes nothing and returns a no-op shutdown. The returned shutdown
// flushes pending spans and must be called before exit.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	tp, err := NewTracerProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if tp == nil {
		return func(context.Context) error { return nil }, nil
	}
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// NewTracerProvider builds the provider without installing it. It returns
// nil for exporter "none".
func NewTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch cfg.Exporter {
	case "", ExporterNone:
		return nil, nil
	case ExporterStdout:
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	res := resource.NewWithAttributes("",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
