package sql

import (
	"context"
	"database/sql/driver"
)

// Compile-time interface checks.
var (
	_ driver.Stmt             = (*otelStmt)(nil)
	_ driver.StmtExecContext  = (*otelStmt)(nil)
	_ driver.StmtQueryContext = (*otelStmt)(nil)
)

// otelStmt wraps a driver.Stmt. The statement is stateless between
// executions; every execution independently runs the shared span-lifecycle
// algorithm against the config snapshot captured at prepare time.
type otelStmt struct {
	stmt  driver.Stmt
	cfg   *config
	query string
}

// newOtelStmt creates a new instrumented statement.
func newOtelStmt(stmt driver.Stmt, cfg *config, query string) *otelStmt {
	return &otelStmt{
		stmt:  stmt,
		cfg:   cfg,
		query: query,
	}
}

// Close implements driver.Stmt.
func (s *otelStmt) Close() error {
	return s.stmt.Close()
}

// NumInput implements driver.Stmt.
func (s *otelStmt) NumInput() int {
	return s.stmt.NumInput()
}

// Exec implements driver.Stmt.
// Deprecated: Use ExecContext instead. This exists for driver.Stmt interface compatibility.
func (s *otelStmt) Exec(args []driver.Value) (driver.Result, error) {
	ctx, call := s.cfg.startCall(context.Background(), operationName(s.query, opExec), s.query)

	result, err := s.stmt.Exec(args) //nolint:staticcheck // Required for driver.Stmt interface

	call.end(ctx, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Query implements driver.Stmt.
// Deprecated: Use QueryContext instead. This exists for driver.Stmt interface compatibility.
func (s *otelStmt) Query(args []driver.Value) (driver.Rows, error) {
	ctx, call := s.cfg.startCall(context.Background(), operationName(s.query, opQuery), s.query)

	rows, err := s.stmt.Query(args) //nolint:staticcheck // Required for driver.Stmt interface
	if err != nil {
		call.end(ctx, err)
		return nil, err
	}
	return call.rows(ctx, rows), nil
}

// ExecContext implements driver.StmtExecContext.
func (s *otelStmt) ExecContext(
	ctx context.Context,
	args []driver.NamedValue,
) (driver.Result, error) {
	ctx, call := s.cfg.startCall(ctx, operationName(s.query, opExec), s.query)

	var result driver.Result
	var err error

	if execer, ok := s.stmt.(driver.StmtExecContext); ok {
		result, err = execer.ExecContext(ctx, args)
	} else {
		// Fallback to non-context version.
		values := namedValueToValue(args)
		result, err = s.stmt.Exec(values) //nolint:staticcheck // Fallback for older drivers
	}

	call.end(ctx, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryContext implements driver.StmtQueryContext. On success the span is
// handed to the returned row set, which terminates it on close.
func (s *otelStmt) QueryContext(
	ctx context.Context,
	args []driver.NamedValue,
) (driver.Rows, error) {
	ctx, call := s.cfg.startCall(ctx, operationName(s.query, opQuery), s.query)

	var rows driver.Rows
	var err error

	if queryer, ok := s.stmt.(driver.StmtQueryContext); ok {
		rows, err = queryer.QueryContext(ctx, args)
	} else {
		// Fallback to non-context version.
		values := namedValueToValue(args)
		rows, err = s.stmt.Query(values) //nolint:staticcheck // Fallback for older drivers
	}

	if err != nil {
		call.end(ctx, err)
		return nil, err
	}
	return call.rows(ctx, rows), nil
}

// namedValueToValue converts NamedValue slice to Value slice.
func namedValueToValue(named []driver.NamedValue) []driver.Value {
	values := make([]driver.Value, len(named))
	for i, nv := range named {
		values[i] = nv.Value
	}
	return values
}
