// Package redis provides OpenTelemetry instrumentation for go-redis clients.
//
// The instrumentation is a redis.Hook: installed once on a client, it traces
// and meters every command, pipeline and dial without touching call sites.
//
// # Quick Start
//
//	import (
//	    "github.com/redis/go-redis/v9"
//	    otelredis "github.com/quarry-labs/instrumentation-go/redis"
//	)
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	otelredis.Instrument(rdb,
//	    otelredis.WithDBName("cache"),
//	    otelredis.WithServerAddress("localhost"),
//	)
//
//	// Every command is now traced.
//	val, err := rdb.Get(ctx, "session:abc").Result()
//
// A key miss (redis.Nil) is recorded as a successful operation; only real
// failures mark spans as errors.
//
// # Observability
//
// Spans are named after the command (GET, SET, HGETALL, ...), carry
// db.system=redis plus the configured identity attributes, and record the
// rendered command as db.statement unless WithDisableStatement is set. Large
// argument values are truncated before they reach the span.
//
// Two instruments are exported through the configured meter provider:
//
//   - db.client.operation.duration: command latency histogram
//   - db.client.operations: command counter with ok/error status
package redis
