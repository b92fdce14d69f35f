// Package sql provides an instrumented database/sql driver wrapper
// with automatic OpenTelemetry tracing and metrics.
//
// The wrapper decorates a driver at three levels - connection, statement and
// row set - so that every execution path produces exactly one client span
// and, optionally, duration/call-count metrics, while the functional outcome
// of each call stays indistinguishable from the unwrapped driver.
//
// # Quick Start
//
// Open a database connection with instrumentation:
//
//	import otelsql "github.com/quarry-labs/instrumentation-go/sql"
//
//	db, err := otelsql.Open("postgres", dsn,
//	    otelsql.WithDBName("myapp"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	// Use like standard *sql.DB
//	rows, err := db.QueryContext(ctx, "SELECT * FROM users")
//
// The database system attribute (db.system) is resolved automatically from
// the driver's concrete type; WithDBSystem overrides resolution, and unknown
// drivers report "other".
//
// # Driver Registration
//
// For more control, register a wrapped driver:
//
//	drv := otelsql.WrapDriver(pq.Driver{})
//	sql.Register("postgres-instrumented", drv)
//
//	db, _ := sql.Open("postgres-instrumented", dsn)
//
// Connector-based setups wrap the connector instead:
//
//	connector, _ := pq.NewConnector(dsn)
//	db := sql.OpenDB(otelsql.WrapConnector(connector))
//
// # Query spans
//
// Spans for query executions stay open for the lifetime of the returned
// rows: the span completes when rows.Close is called (or on the first read
// error), so the span duration covers result streaming, not just the call
// that produced the cursor.
//
// # Configuration Options
//
//	db, _ := otelsql.Open("postgres", dsn,
//	    otelsql.WithDBName("users_db"),         // Database name
//	    otelsql.WithInstanceName("primary"),    // Connection identifier
//	    otelsql.WithServerAddress("db.prod"),   // Server host attribute
//	    otelsql.WithSanitizedQuery(),           // Mask literals in db.statement
//	    otelsql.WithFilter(filter),             // Skip selected operations
//	    otelsql.WithSpanEnricher(enrich),       // Custom span attributes
//	)
//
// Option sets can be bound to a name with RegisterOptions and reused through
// WithOptionsName.
//
// # Statement Sanitization
//
// DefaultQuerySanitizer strips comments and masks literal values:
//
//	// Input:  "SELECT * FROM users WHERE id = 123; -- lookup"
//	// Output: "SELECT * FROM users WHERE id = ?;"
//
// Stored-procedure invocations (CALL/EXEC) record the procedure name
// verbatim; procedure identifiers are never sanitized.
//
// # Observability
//
// Traces:
//   - Span per operation, named "<db>.<operation>"
//   - Attributes: db.system, db.name, db.instance, server.address,
//     db.operation, db.statement
//
// Metrics:
//   - db.client.operation.duration (histogram)
//   - db.client.operations (counter)
//   - db.client.connections.* (pool gauges, via RecordPoolMetrics)
package sql
