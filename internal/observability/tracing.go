package observability

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rfwavelabs/epclink-planner/internal/logging"
)

// Exporter names accepted by TracingConfig.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

const defaultOTLPEndpoint = "localhost:4317"

// TracingConfig selects the span exporter and sampling for the planner.
// The zero value means tracing off.
type TracingConfig struct {
	Enabled     bool
	Exporter    string
	ServiceName string

	// OTLP transport settings, ignored by the stdout exporter.
	Endpoint string
	Insecure bool

	// SampleRatio in [0,1]; 1 keeps every root span.
	SampleRatio float64
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TracingConfigFromEnv reads the EPCLINK_TRACING_* variables. Unset or
// out-of-range values fall back to stdout export with full sampling.
func TracingConfigFromEnv() TracingConfig {
	cfg := TracingConfig{
		Enabled:     strings.EqualFold(os.Getenv("EPCLINK_TRACING_ENABLED"), "true"),
		Exporter:    strings.ToLower(envOr("EPCLINK_TRACING_EXPORTER", ExporterStdout)),
		ServiceName: envOr("EPCLINK_TRACING_SERVICE_NAME", "epclink-planner"),
		Endpoint:    envOr("EPCLINK_OTLP_ENDPOINT", defaultOTLPEndpoint),
		Insecure:    !strings.EqualFold(os.Getenv("EPCLINK_OTLP_TLS"), "true"),
		SampleRatio: 1.0,
	}

	if raw := os.Getenv("EPCLINK_TRACING_SAMPLE_RATIO"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err == nil && parsed >= 0 && parsed <= 1 {
			cfg.SampleRatio = parsed
		}
	}
	return cfg
}

// InitTracing installs the global tracer provider and propagators and
// returns the flush/shutdown hook. With tracing disabled it installs a
// noop provider so span call sites stay unconditional.
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logging.Noop()
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		otel.SetTracerProvider(trace.NewNoopTracerProvider())
		log.Info(ctx, "tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	exp, err := cfg.newExporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.namespace", "epclink"),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	// Full-ratio configs skip the ratio sampler entirely.
	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)

	log.Info(ctx, "tracing enabled",
		logging.String("exporter", cfg.Exporter),
		logging.String("service", cfg.ServiceName),
		logging.Float64("sample_ratio", cfg.SampleRatio),
	)
	return tp.Shutdown, nil
}

func (cfg TracingConfig) newExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "", ExporterStdout:
		// Spans go to stderr so stdout stays clean for report tables.
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	case ExporterOTLP, "otlpgrpc":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		creds := credentials.NewTLS(nil)
		if cfg.Insecure {
			creds = insecure.NewCredentials()
		}
		client := otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(creds)),
		)
		return otlptrace.New(ctx, client)
	default:
		return nil, fmt.Errorf("unknown exporter %q", cfg.Exporter)
	}
}

// ShutdownWithTimeout flushes pending spans, giving the exporter at most
// five seconds. Flush failures are logged, not propagated.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log logging.Logger) {
	if shutdown == nil {
		return
	}
	if log == nil {
		log = logging.Noop()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn(ctx, "tracing shutdown failed", logging.Err(err))
	}
}
