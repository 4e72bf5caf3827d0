/*
Copyright 2026 The Quantbench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package instrumentation

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
)

var traceEnabled bool
var traceInitOnce sync.Once

var tracerProvider trace.TracerProvider
var tracerShutdown func(context.Context) error = func(context.Context) error { return nil }
var tracerInitErr error

// InitTraceFromEnvVar initializes the singleton quantbench tracer from the
// QUANTBENCH_TRACE env variable. When set, this sets up the matching tracer
// provider and exporter, configures otel to use it and saves the provider
// shutdown function so it can be run before quantbench exits.
func InitTraceFromEnvVar(opts ...TraceExporterOption) (trace.TracerProvider, func(context.Context) error, error) {
	traceInitOnce.Do(func() {
		_, quantTraceEnv := os.LookupEnv(constants.TraceEnvironmentVariable)
		_, otelTraceExporterEnv := os.LookupEnv("OTEL_TRACES_EXPORTER")
		if quantTraceEnv || otelTraceExporterEnv {
			traceEnabled = true
		}
		if traceEnabled {
			tp, shutdown, err := initTraceExporter(opts...)
			tracerInitErr = err
			if err == nil && quantTraceEnv { // if only OTEL_TRACES_EXPORTER, tp set automatically
				otel.SetTracerProvider(tp)
				tracerProvider = tp
				tracerShutdown = shutdown
			}
		}
	})
	if tracerInitErr != nil {
		log.Entry(context.TODO()).Debugf("error initializing tracing: %v", tracerInitErr)
	}
	return tracerProvider, tracerShutdown, tracerInitErr
}

// TracerShutdown flushes all running spans and makes sure they are exported.
// This should be called once at the end of a quantbench run.
func TracerShutdown(ctx context.Context) error {
	traceInitOnce = sync.Once{}
	return tracerShutdown(ctx)
}

type traceExporterConfig struct {
	writer io.Writer
}

// TraceExporterOption adjusts how the trace exporter is set up.
type TraceExporterOption func(*traceExporterConfig)

// WithWriter directs the stdout trace exporter at w.
func WithWriter(w io.Writer) TraceExporterOption {
	return func(c *traceExporterConfig) {
		c.writer = w
	}
}

func initTraceExporter(opts ...TraceExporterOption) (trace.TracerProvider, func(context.Context) error, error) {
	c := traceExporterConfig{writer: os.Stdout}
	for _, opt := range opts {
		opt(&c)
	}

	switch exporter := os.Getenv(constants.TraceEnvironmentVariable); exporter {
	case "stdout":
		log.Entry(context.TODO()).Debugf("using stdout trace exporter")
		exp, err := stdouttrace.New(stdouttrace.WithWriter(c.writer))
		if err != nil {
			return nil, nil, fmt.Errorf("creating stdout trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		return tp, tp.Shutdown, nil
	case "":
		return nil, func(context.Context) error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported %s value %q, expected 'stdout'", constants.TraceEnvironmentVariable, exporter)
	}
}

// StartTrace uses the otel trace provider to export timing spans (with
// optional attributes) to the exporter chosen via QUANTBENCH_TRACE. Tracing
// metadata is stored in a context.Context, so callers should pass the
// returned context to subsequent calls to get parent/child spans. The
// returned function ends the span:
// _, endTrace = StartTrace...; defer endTrace()
func StartTrace(ctx context.Context, name string, attributes ...map[string]string) (context.Context, func(options ...trace.SpanEndOption)) {
	if traceEnabled {
		_, file, ln, _ := runtime.Caller(1)
		tracer := otel.Tracer(file)
		ctx, span := tracer.Start(ctx, name)
		for _, attrs := range attributes {
			for k, v := range attrs {
				span.SetAttributes(attribute.Key(k).String(v))
			}
		}
		span.SetAttributes(attribute.Key("source_file").String(fmt.Sprintf("%s:%d", file, ln)))
		return ctx, span.End
	}
	return ctx, func(options ...trace.SpanEndOption) {}
}

// TraceEndError adds a stack trace to a span during its end callback. It is
// intended for the "endTrace" callback when an error occurs on the traced
// path, ex: endTrace(instrumentation.TraceEndError(err)); return nil, err
func TraceEndError(err error) trace.SpanEndOption {
	if traceEnabled {
		return trace.WithStackTrace(true)
	}
	return nil
}

// AddAttributesToCurrentSpanFromContext adds the attributes from the input
// map to the span pulled from the current context. This is useful when
// attributes should be added to a parent span that is not directly
// accessible.
func AddAttributesToCurrentSpanFromContext(ctx context.Context, attrs map[string]string) {
	if traceEnabled {
		span := trace.SpanFromContext(ctx)
		for k, v := range attrs {
			span.SetAttributes(attribute.Key(k).String(v))
		}
	}
}
