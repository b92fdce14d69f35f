package redis

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationScope = "github.com/quarry-labs/instrumentation-go/redis"

// Filter decides per command whether it is instrumented at all. Returning
// false skips the span and metrics; the command still executes normally.
type Filter func(ctx context.Context, operation, statement string) bool

// Enricher is a user hook invoked after the standard attributes are set.
// A panic raised by the hook is recovered and logged.
type Enricher func(span trace.Span, operation, statement string)

// config holds the hook configuration. It is immutable after construction;
// one snapshot serves every command the hook observes.
type config struct {
	// TracerProvider is the OpenTelemetry tracer provider.
	TracerProvider trace.TracerProvider

	// MeterProvider is the OpenTelemetry meter provider.
	MeterProvider metric.MeterProvider

	// Tracer instance (derived from TracerProvider).
	Tracer trace.Tracer

	// Meter instance (derived from MeterProvider).
	Meter metric.Meter

	// Metrics instruments.
	Metrics *metrics

	// Logger receives diagnostics from the instrumentation itself.
	Logger zerolog.Logger

	// DBName is the logical database identity, e.g. "cache" or "sessions".
	DBName string

	// ServerAddress is the host the client talks to.
	ServerAddress string

	// DisableStatement suppresses command text capture; only the command
	// name is recorded.
	DisableStatement bool

	// DisableErrorEvents suppresses exception span events. Failed commands
	// still get an error status.
	DisableErrorEvents bool

	// DisableMetrics disables metric collection.
	DisableMetrics bool

	// Filter, when set, is consulted before each command.
	Filter Filter

	// Enricher, when set, may add custom attributes to each recorded span.
	Enricher Enricher
}

// Option configures the hook.
type Option func(*config)

// newConfig creates a config with defaults applied.
func newConfig(opts ...Option) *config {
	cfg := &config{
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),
		Logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	cfg.Tracer = cfg.TracerProvider.Tracer(instrumentationScope)
	cfg.Meter = cfg.MeterProvider.Meter(instrumentationScope)

	if !cfg.DisableMetrics {
		var err error
		cfg.Metrics, err = newMetrics(cfg.Meter)
		if err != nil {
			cfg.Logger.Warn().Err(err).
				Msg("instrumentation: failed to create redis metrics; metrics disabled")
		}
	}

	return cfg
}

// baseAttributes returns the identity attributes shared by all spans and
// metrics produced under this config.
func (cfg *config) baseAttributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "redis"),
	}
	if cfg.DBName != "" {
		attrs = append(attrs, attribute.String("db.name", cfg.DBName))
	}
	if cfg.ServerAddress != "" {
		attrs = append(attrs,
			attribute.String("server.address", cfg.ServerAddress),
			attribute.String("net.peer.name", cfg.ServerAddress),
		)
	}
	return attrs
}

// WithTracerProvider sets the tracer provider.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		if tp != nil {
			cfg.TracerProvider = tp
		}
	}
}

// WithMeterProvider sets the meter provider.
// Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *config) {
		if mp != nil {
			cfg.MeterProvider = mp
		}
	}
}

// WithLogger sets the logger for the instrumentation's own diagnostics.
// Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.Logger = logger
	}
}

// WithDBName sets a logical database name recorded on spans and metrics.
func WithDBName(name string) Option {
	return func(cfg *config) {
		cfg.DBName = name
	}
}

// WithServerAddress records the server address on spans and metrics.
func WithServerAddress(addr string) Option {
	return func(cfg *config) {
		cfg.ServerAddress = addr
	}
}

// WithDisableStatement suppresses command text capture. Spans carry only the
// command name.
func WithDisableStatement() Option {
	return func(cfg *config) {
		cfg.DisableStatement = true
	}
}

// WithDisableErrorEvents stops errors from being recorded as span events.
// Failed commands still end with an error status.
func WithDisableErrorEvents() Option {
	return func(cfg *config) {
		cfg.DisableErrorEvents = true
	}
}

// WithDisableMetrics disables metric collection. Spans are still created.
func WithDisableMetrics() Option {
	return func(cfg *config) {
		cfg.DisableMetrics = true
	}
}

// WithFilter installs a per-command predicate. Commands for which the filter
// returns false execute completely uninstrumented.
//
// A panic inside the filter is recovered and treated as "instrument" so that
// a broken predicate cannot silence telemetry or break the caller.
func WithFilter(f Filter) Option {
	return func(cfg *config) {
		cfg.Filter = f
	}
}

// WithSpanEnricher installs a hook that runs after the standard attributes
// are set on a recorded span.
func WithSpanEnricher(e Enricher) Option {
	return func(cfg *config) {
		cfg.Enricher = e
	}
}
