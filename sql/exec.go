package sql

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// call carries the per-execution telemetry state of one operation: the open
// span, the metrics start timestamp and the resolved operation label. It is
// created by startCall and finished either by end (non-cursor verbs) or by
// the instrumented row set that takes ownership of it (cursor verb).
type call struct {
	cfg   *config
	span  trace.Span
	op    string
	start time.Time
	skip  bool
}

// startCall runs the common pre-execution bookkeeping: filter evaluation,
// span start, standard attributes, enrichment hook and metrics timestamp.
// When the filter suppresses the operation the returned call is inert and
// every later method on it is a no-op.
func (cfg *config) startCall(ctx context.Context, op, query string) (context.Context, *call) {
	c := &call{cfg: cfg, op: op}

	if !cfg.instrumentDecision(ctx, op, query) {
		c.skip = true
		return ctx, c
	}

	c.start = time.Now()
	ctx, c.span = cfg.Tracer.Start(ctx, cfg.spanName(op),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	// Attribute and enrichment work only happens when the sampler asked for
	// data; a non-recording span drops attributes anyway.
	if c.span.IsRecording() {
		c.span.SetAttributes(cfg.callAttributes(op, query)...)
		cfg.enrichSpan(c.span, op, query)
	}

	return ctx, c
}

// end finishes a non-cursor execution: terminal span status, optional error
// event, metrics. The provider's error is never altered; err flows back to
// the caller untouched.
func (c *call) end(ctx context.Context, err error) {
	if c.skip {
		return
	}
	c.cfg.finishSpan(c.span, err)
	if !c.cfg.DisableMetrics {
		c.cfg.Metrics.recordOperation(ctx, time.Since(c.start), c.op, c.cfg.baseAttributes(), err)
	}
}

// finishSpan applies the terminal status transition exactly once for the
// span it is handed. Callers guard against double invocation.
func (cfg *config) finishSpan(span trace.Span, err error) {
	if err != nil {
		if !cfg.DisableErrorEvents {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// instrumentDecision evaluates the configured filter. A panicking filter
// fails open: the operation is instrumented, and the panic is logged.
func (cfg *config) instrumentDecision(ctx context.Context, op, query string) (decision bool) {
	if cfg.Filter == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			cfg.Logger.Warn().
				Interface("panic", r).
				Str("operation", op).
				Msg("instrumentation: filter panicked; instrumenting operation")
			decision = true
		}
	}()
	return cfg.Filter(ctx, op, query)
}

// enrichSpan invokes the user enrichment hook. A panic raised by the hook is
// swallowed so that it can never mask a provider error or break the call.
func (cfg *config) enrichSpan(span trace.Span, op, query string) {
	if cfg.Enricher == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			cfg.Logger.Warn().
				Interface("panic", r).
				Str("operation", op).
				Msg("instrumentation: span enricher panicked")
		}
	}()
	cfg.Enricher(span, op, query)
}

// baseAttributes returns the identity attributes shared by all spans and
// metrics produced under this config.
func (cfg *config) baseAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 5)
	if cfg.DBSystem != "" {
		attrs = append(attrs, attribute.String("db.system", cfg.DBSystem))
	}
	if cfg.DBName != "" {
		attrs = append(attrs, attribute.String("db.name", cfg.DBName))
	}
	if cfg.InstanceName != "" {
		attrs = append(attrs, attribute.String("db.instance", cfg.InstanceName))
	}
	if cfg.ServerAddress != "" {
		// Both the current and the legacy key, so consumers on either
		// semantic convention keep working.
		attrs = append(attrs,
			attribute.String("server.address", cfg.ServerAddress),
			attribute.String("net.peer.name", cfg.ServerAddress),
		)
	}
	return attrs
}

// callAttributes returns the full attribute set for one execution span.
func (cfg *config) callAttributes(op, query string) []attribute.KeyValue {
	attrs := cfg.baseAttributes()
	attrs = append(attrs, attribute.String("db.operation", op))

	if cfg.DisableQuery {
		return attrs
	}

	if proc := procedureName(query); proc != "" {
		// Procedure identifiers are captured verbatim; the sanitizer only
		// ever applies to free-form statement text.
		attrs = append(attrs,
			attribute.String("db.statement", proc),
			attribute.String("db.stored_procedure.name", proc),
		)
		return attrs
	}

	if query != "" {
		stmt := query
		if cfg.QuerySanitizer != nil {
			stmt = cfg.QuerySanitizer(query)
		}
		attrs = append(attrs, attribute.String("db.statement", stmt))
	}
	return attrs
}
