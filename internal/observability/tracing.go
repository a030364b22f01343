// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package observability

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracingOptions configures StartTracing.
type TracingOptions struct {
	Service string
	Version string
	// OTLPEndpoint is the host:port of an OTLP/HTTP collector. Empty keeps
	// spans in process: they still carry IDs for log correlation.
	OTLPEndpoint string
	// Insecure sends to the collector over plain HTTP.
	Insecure bool
	// SampleRatio is the fraction of new traces sampled, in [0, 1].
	SampleRatio float64
}

// StartTracing installs the global TracerProvider and the W3C trace context
// propagator. Extra provider options are applied last; tests use them to
// attach span recorders. Call the returned shutdown to flush pending spans.
func StartTracing(ctx context.Context, opts TracingOptions, extra ...sdktrace.TracerProviderOption) (func(context.Context) error, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", opts.Service),
		attribute.String("service.version", opts.Version),
	)

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
	}

	if opts.OTLPEndpoint != "" {
		exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.OTLPEndpoint)}
		if opts.Insecure {
			exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, oops.Code("TRACING_START_FAILED").
				With("endpoint", opts.OTLPEndpoint).
				Wrap(err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(append(providerOpts, extra...)...)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		if err := provider.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return oops.Code("TRACING_SHUTDOWN_FAILED").Wrap(err)
		}
		return nil
	}
	return shutdown, nil
}
