// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

const (
	// OTelProtocolGRPC exports over OTLP/gRPC
	OTelProtocolGRPC = "grpc"
	// OTelProtocolHTTP exports over OTLP/HTTP
	OTelProtocolHTTP = "http"

	// OTelExporterOTLP enables an OTLP exporter
	OTelExporterOTLP = "otlp"
	// OTelExporterNone disables an exporter
	OTelExporterNone = "none"

	// OTelDefaultPropagators is the propagator set used when OTEL_PROPAGATORS is unset
	OTelDefaultPropagators = "tracecontext,baggage,jaeger"
)

// OTelConfig holds the OpenTelemetry SDK settings read from OTEL_* variables
type OTelConfig struct {
	ServiceName       string
	ServiceVersion    string
	Protocol          string
	Endpoint          string
	Insecure          bool
	TracesExporter    string
	TracesSampleRatio float64
	MetricsExporter   string
	LogsExporter      string
	Propagators       string
}

// OTelConfigFromEnv reads the OpenTelemetry configuration from the environment
func OTelConfigFromEnv() OTelConfig {
	cfg := OTelConfig{
		ServiceName:       envOrDefault("OTEL_SERVICE_NAME", constants.ServiceName),
		ServiceVersion:    os.Getenv("OTEL_SERVICE_VERSION"),
		Protocol:          envOrDefault("OTEL_EXPORTER_OTLP_PROTOCOL", OTelProtocolGRPC),
		Endpoint:          os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Insecure:          os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		TracesExporter:    envOrDefault("OTEL_TRACES_EXPORTER", OTelExporterNone),
		TracesSampleRatio: 1.0,
		MetricsExporter:   envOrDefault("OTEL_METRICS_EXPORTER", OTelExporterNone),
		LogsExporter:      envOrDefault("OTEL_LOGS_EXPORTER", OTelExporterNone),
		Propagators:       envOrDefault("OTEL_PROPAGATORS", OTelDefaultPropagators),
	}

	if raw := os.Getenv("OTEL_TRACES_SAMPLE_RATIO"); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err == nil && ratio >= 0 && ratio <= 1 {
			cfg.TracesSampleRatio = ratio
		} else {
			slog.Warn("invalid OTEL_TRACES_SAMPLE_RATIO, using 1.0", "value", raw)
		}
	}

	return cfg
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// SetupOTelSDK bootstraps the OpenTelemetry pipeline from the environment
func SetupOTelSDK(ctx context.Context) (func(context.Context) error, error) {
	return SetupOTelSDKWithConfig(ctx, OTelConfigFromEnv())
}

// SetupOTelSDKWithConfig bootstraps the OpenTelemetry pipeline. The returned
// shutdown flushes and stops every provider; calling it again is a no-op.
func SetupOTelSDKWithConfig(ctx context.Context, cfg OTelConfig) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error

	shutdown = func(ctx context.Context) error {
		var errs error
		for _, fn := range shutdownFuncs {
			errs = errors.Join(errs, fn(ctx))
		}
		shutdownFuncs = nil
		return errs
	}

	handleErr := func(inErr error) {
		err = errors.Join(inErr, shutdown(ctx))
	}

	res, errRes := newResource(cfg)
	if errRes != nil {
		handleErr(errRes)
		return shutdown, err
	}

	prop, errProp := newPropagator(cfg)
	if errProp != nil {
		handleErr(errProp)
		return shutdown, err
	}
	otel.SetTextMapPropagator(prop)

	if isExporterEnabled(cfg.TracesExporter) {
		tracerProvider, errTrace := newTracerProvider(ctx, cfg, res)
		if errTrace != nil {
			handleErr(errTrace)
			return shutdown, err
		}
		shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
		otel.SetTracerProvider(tracerProvider)
	}

	if isExporterEnabled(cfg.MetricsExporter) {
		meterProvider, errMetric := newMeterProvider(ctx, cfg, res)
		if errMetric != nil {
			handleErr(errMetric)
			return shutdown, err
		}
		shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
		otel.SetMeterProvider(meterProvider)
	}

	if isExporterEnabled(cfg.LogsExporter) {
		loggerProvider, errLog := newLoggerProvider(ctx, cfg, res)
		if errLog != nil {
			handleErr(errLog)
			return shutdown, err
		}
		shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
		global.SetLoggerProvider(loggerProvider)
	}

	return shutdown, nil
}

// isExporterEnabled treats an empty value like "none"
func isExporterEnabled(exporter string) bool {
	return exporter != "" && exporter != OTelExporterNone
}

func newResource(cfg OTelConfig) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{attribute.String("service.name", cfg.ServiceName)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	return resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
}

func newPropagator(cfg OTelConfig) (propagation.TextMapPropagator, error) {
	var propagators []propagation.TextMapPropagator
	for _, name := range strings.Split(cfg.Propagators, ",") {
		switch strings.TrimSpace(name) {
		case "":
		case "tracecontext":
			propagators = append(propagators, propagation.TraceContext{})
		case "baggage":
			propagators = append(propagators, propagation.Baggage{})
		case "jaeger":
			propagators = append(propagators, jaeger.Jaeger{})
		default:
			return nil, fmt.Errorf("unsupported propagator %q", name)
		}
	}
	return propagation.NewCompositeTextMapPropagator(propagators...), nil
}

// endpointURL adds the scheme the OTLP exporters expect on a bare host:port
func endpointURL(raw string, insecure bool) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	if insecure {
		return "http://" + raw
	}
	return "https://" + raw
}

func newTracerProvider(ctx context.Context, cfg OTelConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	if cfg.Protocol == OTelProtocolHTTP {
		var opts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(endpointURL(cfg.Endpoint, cfg.Insecure)))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	} else {
		var opts []otlptracegrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpointURL(endpointURL(cfg.Endpoint, cfg.Insecure)))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TracesSampleRatio))),
	), nil
}

func newMeterProvider(ctx context.Context, cfg OTelConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	var (
		exporter sdkmetric.Exporter
		err      error
	)
	if cfg.Protocol == OTelProtocolHTTP {
		var opts []otlpmetrichttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpointURL(endpointURL(cfg.Endpoint, cfg.Insecure)))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, opts...)
	} else {
		var opts []otlpmetricgrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpointURL(endpointURL(cfg.Endpoint, cfg.Insecure)))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, err
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	), nil
}

func newLoggerProvider(ctx context.Context, cfg OTelConfig, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	var (
		exporter sdklog.Exporter
		err      error
	)
	if cfg.Protocol == OTelProtocolHTTP {
		var opts []otlploghttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlploghttp.WithEndpointURL(endpointURL(cfg.Endpoint, cfg.Insecure)))
		}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		exporter, err = otlploghttp.New(ctx, opts...)
	} else {
		var opts []otlploggrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlploggrpc.WithEndpointURL(endpointURL(cfg.Endpoint, cfg.Insecure)))
		}
		if cfg.Insecure {
			opts = append(opts, otlploggrpc.WithInsecure())
		}
		exporter, err = otlploggrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, err
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	), nil
}
