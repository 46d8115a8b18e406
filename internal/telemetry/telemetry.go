// Package telemetry exports battle traces to Honeycomb over OTLP/HTTP.
package telemetry

import (
	"context"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName    = "gachabattle"
	serviceVersion = "0.1.0"
	defaultDataset = "gachabattle"
)

// Options configures the exporter. Empty fields fall back to the standard
// OTEL_* environment variables.
type Options struct {
	Endpoint string // e.g. https://api.honeycomb.io
	APIKey   string
	Dataset  string
}

func (o Options) exporterOptions() []otlptracehttp.Option {
	var opts []otlptracehttp.Option
	if o.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(o.Endpoint))
	}
	if o.APIKey != "" {
		dataset := o.Dataset
		if dataset == "" {
			dataset = defaultDataset
		}
		opts = append(opts, otlptracehttp.WithHeaders(map[string]string{
			"x-honeycomb-team":    o.APIKey,
			"x-honeycomb-dataset": dataset,
		}))
	}
	return opts
}

// Setup installs a batching OTLP/HTTP tracer provider as the global provider
// and returns its shutdown function, which flushes pending spans.
func Setup(ctx context.Context, o Options) (shutdown func(context.Context) error, err error) {
	exporter, err := otlptracehttp.New(ctx, o.exporterOptions()...)
	if err != nil {
		return nil, err
	}

	// Our own resource, not merged with Default(), to avoid schema URL conflicts
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
			attribute.String("telemetry.sdk.language", "go"),
			attribute.String("telemetry.sdk.name", "opentelemetry"),
			attribute.String("host.name", hostname()),
			attribute.String("os.type", runtime.GOOS),
			attribute.String("process.runtime.version", runtime.Version()),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns a named tracer for the given component. Before Setup runs, or
// when it fails, the global provider is a no-op and spans cost nothing.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName + "/" + name)
}

// NoopTracer returns a no-op tracer for tests and disabled telemetry.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(serviceName + "/noop")
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
