package sql

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// scope is the instrumentation scope name for OpenTelemetry.
	// This identifies the library in traces and metrics.
	scope = "github.com/quarry-labs/instrumentation-go/sql"
)

// Filter decides per invocation whether an operation is instrumented at all.
// Returning false skips the span and metrics for that call; the wrapped
// provider is still invoked and its result returned unchanged.
type Filter func(ctx context.Context, operation, query string) bool

// Enricher is a user hook invoked after the standard attributes are set and
// before the wrapped provider call executes. A panic raised by the hook is
// recovered and logged; it never reaches the caller.
type Enricher func(span trace.Span, operation, query string)

// config holds the configuration for instrumentation.
//
// A config is built once (per Open/WrapDriver/Register call), never mutated
// afterwards, and shared by reference across every connection, statement and
// row set manufactured under it.
type config struct {
	// TracerProvider is the tracer provider to use.
	// If not set, uses the global provider via otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// MeterProvider is the meter provider to use.
	// If not set, uses the global provider via otel.GetMeterProvider().
	MeterProvider metric.MeterProvider

	// Tracer is the tracer instance created from TracerProvider.
	Tracer trace.Tracer

	// Meter is the meter instance created from MeterProvider.
	Meter metric.Meter

	// Metrics holds the metric instruments.
	Metrics *metrics

	// Logger receives the library's own diagnostics (recovered hook panics,
	// instrument creation failures). Defaults to a no-op logger.
	Logger zerolog.Logger

	// DBSystem identifies the database management system (DBMS) product.
	// When empty it is resolved from the wrapped driver's concrete type at
	// wrap time; setting it explicitly always wins over resolution.
	// Examples: "postgresql", "mysql", "sqlite", "mssql", "oracle"
	DBSystem string

	// DBName is the name of the database being accessed.
	// When set, span names take the form "<DBName>.<operation>".
	DBName string

	// InstanceName identifies a specific database connection instance,
	// such as "primary" or "replica". Added as the "db.instance" attribute.
	InstanceName string

	// ServerAddress is the host name or address of the database server.
	// Recorded under both "server.address" and the legacy "net.peer.name"
	// key so that consumers on either semantic convention keep working.
	ServerAddress string

	// QuerySanitizer sanitizes SQL statement text before it is attached to
	// spans. If nil, statement text is recorded as-is.
	QuerySanitizer func(query string) string

	// DisableQuery disables recording of SQL statement text in spans.
	DisableQuery bool

	// DisableErrorEvents stops provider errors from being recorded as span
	// events. The error status and message on the span are unaffected.
	DisableErrorEvents bool

	// DisableMetrics turns off the duration histogram and call counter.
	// Spans are still produced normally.
	DisableMetrics bool

	// Filter, when set, is consulted before each operation.
	Filter Filter

	// Enricher, when set, may add custom attributes to each recorded span.
	Enricher Enricher
}

// newConfig creates a new config with defaults and applies options.
func newConfig(opts ...Option) *config {
	cfg := &config{
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),
		Logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	// Initialize tracer and meter after options are applied. Without a
	// configured global provider these are no-op implementations.
	cfg.Tracer = cfg.TracerProvider.Tracer(scope)
	cfg.Meter = cfg.MeterProvider.Meter(scope)

	if !cfg.DisableMetrics {
		var err error
		cfg.Metrics, err = newMetrics(cfg.Meter)
		if err != nil {
			cfg.Logger.Warn().Err(err).Msg("instrumentation: metric instrument creation failed; metrics disabled")
		}
	}

	return cfg
}

// Option configures the instrumentation.
type Option func(*config)

// Named option sets, bound via RegisterOptions and resolved by
// WithOptionsName at config construction time.
var (
	namedMu      sync.RWMutex
	namedOptions = make(map[string][]Option)
)

// RegisterOptions binds an option set to a name. A later call with the same
// name replaces the previous set. The set is applied wherever
// WithOptionsName(name) appears.
//
// Example:
//
//	sql.RegisterOptions("analytics",
//	    sql.WithDBSystem("postgresql"),
//	    sql.WithDBName("analytics"),
//	    sql.WithSanitizedQuery(),
//	)
//	db, _ := sql.Open("postgres", dsn, sql.WithOptionsName("analytics"))
func RegisterOptions(name string, opts ...Option) {
	namedMu.Lock()
	defer namedMu.Unlock()
	namedOptions[name] = opts
}

// WithOptionsName applies the option set previously bound to name with
// RegisterOptions. An unknown name applies nothing.
func WithOptionsName(name string) Option {
	return func(cfg *config) {
		namedMu.RLock()
		opts := namedOptions[name]
		namedMu.RUnlock()
		for _, opt := range opts {
			opt(cfg)
		}
	}
}

// WithTracerProvider sets a custom tracer provider.
// If not called, the global provider from otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.TracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
// If not called, the global provider from otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *config) {
		cfg.MeterProvider = mp
	}
}

// WithLogger sets the logger for the library's own diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.Logger = logger
	}
}

// WithDBSystem overrides database system resolution with an explicit
// identifier. Without this option the system is resolved from the wrapped
// driver's concrete type, falling back to "other" for unknown drivers.
//
// Common values:
//   - "postgresql" - PostgreSQL
//   - "mysql" - MySQL
//   - "sqlite" - SQLite
//   - "mssql" - Microsoft SQL Server
//   - "oracle" - Oracle Database
func WithDBSystem(system string) Option {
	return func(cfg *config) {
		cfg.DBSystem = system
	}
}

// WithDBName sets the database name being accessed.
// This is added as the "db.name" attribute on all spans, and prefixes the
// span name ("<name>.<operation>").
func WithDBName(name string) Option {
	return func(cfg *config) {
		cfg.DBName = name
	}
}

// WithInstanceName sets an identifier for this specific database connection,
// added as the "db.instance" attribute. Use it to distinguish connections to
// the same database: "primary"/"replica", "read"/"write", "shard-1".
func WithInstanceName(name string) Option {
	return func(cfg *config) {
		cfg.InstanceName = name
	}
}

// WithServerAddress sets the database server host, recorded under both
// "server.address" and the legacy "net.peer.name" attribute keys.
func WithServerAddress(addr string) Option {
	return func(cfg *config) {
		cfg.ServerAddress = addr
	}
}

// WithQuerySanitizer sets a custom statement sanitizer. The sanitizer
// receives the raw SQL text and should return a version with literal values
// replaced by placeholders.
//
// Use DefaultQuerySanitizer for the built-in implementation.
func WithQuerySanitizer(fn func(string) string) Option {
	return func(cfg *config) {
		cfg.QuerySanitizer = fn
	}
}

// WithSanitizedQuery enables statement capture through the built-in
// DefaultQuerySanitizer. Shorthand for
// WithQuerySanitizer(DefaultQuerySanitizer).
func WithSanitizedQuery() Option {
	return func(cfg *config) {
		cfg.QuerySanitizer = DefaultQuerySanitizer
	}
}

// WithDisableQuery disables recording of SQL statement text in spans
// entirely. The "db.operation" attribute is still recorded.
func WithDisableQuery() Option {
	return func(cfg *config) {
		cfg.DisableQuery = true
	}
}

// WithDisableErrorEvents stops failed operations from attaching the error as
// a span event. The span still ends with error status and the error message.
func WithDisableErrorEvents() Option {
	return func(cfg *config) {
		cfg.DisableErrorEvents = true
	}
}

// WithDisableMetrics turns off the duration histogram and call counter while
// leaving tracing untouched.
func WithDisableMetrics() Option {
	return func(cfg *config) {
		cfg.DisableMetrics = true
	}
}

// WithFilter installs a per-invocation predicate. Operations for which the
// filter returns false execute completely uninstrumented.
//
// A panic inside the filter is recovered and treated as "instrument" so that
// a broken predicate cannot silence telemetry or break the caller.
func WithFilter(f Filter) Option {
	return func(cfg *config) {
		cfg.Filter = f
	}
}

// WithSpanEnricher installs a hook that runs after the standard attributes
// are set on a recorded span and before the wrapped call executes.
func WithSpanEnricher(e Enricher) Option {
	return func(cfg *config) {
		cfg.Enricher = e
	}
}
