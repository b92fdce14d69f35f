package redis

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation labels for spans that don't map to a single command.
const (
	opDial     = "DIAL"
	opPipeline = "PIPELINE"
)

// otelHook implements redis.Hook. One hook instance serves a whole client;
// per-command state lives on the stack of the hook closures.
type otelHook struct {
	cfg *config
}

var _ redis.Hook = (*otelHook)(nil)

// NewHook creates a redis.Hook that traces and meters every command, dial
// and pipeline executed by the client it is installed on.
//
// Example:
//
//	rdb := redis.NewClient(&redis.Options{Addr: addr})
//	rdb.AddHook(otelredis.NewHook(
//	    otelredis.WithDBName("cache"),
//	))
func NewHook(opts ...Option) redis.Hook {
	return &otelHook{cfg: newConfig(opts...)}
}

// Instrument installs an instrumented hook on the client.
func Instrument(client redis.UniversalClient, opts ...Option) {
	client.AddHook(NewHook(opts...))
}

// spanName prefixes the operation with the logical database name when set.
func (cfg *config) spanName(operation string) string {
	if cfg.DBName != "" {
		return cfg.DBName + "." + operation
	}
	return operation
}

// instrumentDecision evaluates the configured filter. A panicking filter
// fails open: the command is instrumented, and the panic is logged.
func (h *otelHook) instrumentDecision(ctx context.Context, op, statement string) (decision bool) {
	if h.cfg.Filter == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			h.cfg.Logger.Warn().
				Interface("panic", r).
				Str("operation", op).
				Msg("instrumentation: filter panicked; instrumenting command")
			decision = true
		}
	}()
	return h.cfg.Filter(ctx, op, statement)
}

// enrichSpan invokes the user enrichment hook. A panic raised by the hook is
// swallowed so that it can never mask a command error.
func (h *otelHook) enrichSpan(span trace.Span, op, statement string) {
	if h.cfg.Enricher == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			h.cfg.Logger.Warn().
				Interface("panic", r).
				Str("operation", op).
				Msg("instrumentation: span enricher panicked")
		}
	}()
	h.cfg.Enricher(span, op, statement)
}

// finish applies the terminal span transition and records metrics.
// A key miss (redis.Nil) is a normal outcome, not an error.
func (h *otelHook) finish(ctx context.Context, span trace.Span, start time.Time, op string, err error) {
	recordedErr := err
	if recordedErr == redis.Nil {
		recordedErr = nil
	}

	if recordedErr != nil {
		if !h.cfg.DisableErrorEvents {
			span.RecordError(recordedErr)
		}
		span.SetStatus(codes.Error, recordedErr.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	if !h.cfg.DisableMetrics {
		h.cfg.Metrics.recordCommand(ctx, time.Since(start), op, h.cfg.baseAttributes(), recordedErr)
	}
}

// DialHook implements redis.Hook.
func (h *otelHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !h.instrumentDecision(ctx, opDial, "") {
			return next(ctx, network, addr)
		}
		start := time.Now()
		ctx, span := h.cfg.Tracer.Start(ctx, h.cfg.spanName(opDial),
			trace.WithSpanKind(trace.SpanKindClient),
		)
		if span.IsRecording() {
			span.SetAttributes(h.cfg.baseAttributes()...)
			span.SetAttributes(
				attribute.String("network.transport", network),
				attribute.String("network.peer.address", addr),
			)
		}

		conn, err := next(ctx, network, addr)

		h.finish(ctx, span, start, opDial, err)
		return conn, err
	}
}

// ProcessHook implements redis.Hook.
func (h *otelHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		op := strings.ToUpper(cmd.FullName())
		statement := cmdString(cmd)
		if !h.instrumentDecision(ctx, op, statement) {
			return next(ctx, cmd)
		}
		start := time.Now()

		ctx, span := h.cfg.Tracer.Start(ctx, h.cfg.spanName(op),
			trace.WithSpanKind(trace.SpanKindClient),
		)
		if span.IsRecording() {
			span.SetAttributes(h.cfg.baseAttributes()...)
			span.SetAttributes(attribute.String("db.operation", op))
			if !h.cfg.DisableStatement {
				span.SetAttributes(attribute.String("db.statement", statement))
			}
			h.enrichSpan(span, op, statement)
		}

		err := next(ctx, cmd)

		h.finish(ctx, span, start, op, err)
		return err
	}
}

// ProcessPipelineHook implements redis.Hook. The pipeline gets one span; the
// statement lists the queued commands in order.
func (h *otelHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		statement := cmdsString(cmds)
		if !h.instrumentDecision(ctx, opPipeline, statement) {
			return next(ctx, cmds)
		}
		start := time.Now()

		ctx, span := h.cfg.Tracer.Start(ctx, h.cfg.spanName(opPipeline),
			trace.WithSpanKind(trace.SpanKindClient),
		)
		if span.IsRecording() {
			span.SetAttributes(h.cfg.baseAttributes()...)
			span.SetAttributes(
				attribute.String("db.operation", opPipeline),
				attribute.Int("db.redis.num_cmd", len(cmds)),
			)
			if !h.cfg.DisableStatement {
				span.SetAttributes(attribute.String("db.statement", statement))
			}
			h.enrichSpan(span, opPipeline, statement)
		}

		err := next(ctx, cmds)

		h.finish(ctx, span, start, opPipeline, err)
		return err
	}
}
