package sql

import (
	"context"
	"database/sql/driver"
	"io"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newTestTracer returns a span recorder and a config option pointing the
// instrumentation at it.
func newTestTracer(t *testing.T) (*tracetest.SpanRecorder, Option) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, WithTracerProvider(tp)
}

// fakeDriver returns a canned connection or error.
type fakeDriver struct {
	conn    driver.Conn
	openErr error
}

func (d *fakeDriver) Open(_ string) (driver.Conn, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.conn, nil
}

// fakeConn implements the full modern connection surface.
type fakeConn struct {
	prepareErr error
	execErr    error
	queryErr   error
	pingErr    error
	beginErr   error

	stmt   *fakeStmt
	rows   *fakeRows
	result driver.Result
	tx     *fakeTx

	closed    bool
	lastQuery string
}

var _ DriverConn = (*fakeConn)(nil)

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	if c.prepareErr != nil {
		return nil, c.prepareErr
	}
	if c.stmt != nil {
		return c.stmt, nil
	}
	return &fakeStmt{query: query}, nil
}

func (c *fakeConn) PrepareContext(_ context.Context, query string) (driver.Stmt, error) {
	return c.Prepare(query)
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *fakeConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	if c.tx == nil {
		c.tx = &fakeTx{}
	}
	return c.tx, nil
}

func (c *fakeConn) ExecContext(
	_ context.Context,
	query string,
	_ []driver.NamedValue,
) (driver.Result, error) {
	c.lastQuery = query
	if c.execErr != nil {
		return nil, c.execErr
	}
	if c.result != nil {
		return c.result, nil
	}
	return &fakeResult{rowsAffected: 1}, nil
}

func (c *fakeConn) QueryContext(
	_ context.Context,
	query string,
	_ []driver.NamedValue,
) (driver.Rows, error) {
	c.lastQuery = query
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	if c.rows != nil {
		return c.rows, nil
	}
	return &fakeRows{}, nil
}

func (c *fakeConn) Ping(_ context.Context) error {
	return c.pingErr
}

// basicConn implements only driver.Conn, to exercise ErrSkip fallbacks.
type basicConn struct {
	stmt *fakeStmt
}

func (c *basicConn) Prepare(query string) (driver.Stmt, error) {
	if c.stmt != nil {
		return c.stmt, nil
	}
	return &fakeStmt{query: query}, nil
}

func (c *basicConn) Close() error { return nil }

func (c *basicConn) Begin() (driver.Tx, error) { return &fakeTx{}, nil }

// fakeStmt implements the full statement surface.
type fakeStmt struct {
	query    string
	numInput int

	execErr  error
	queryErr error
	rows     *fakeRows
	result   driver.Result

	closed bool
}

var _ DriverStmt = (*fakeStmt)(nil)

func (s *fakeStmt) Close() error {
	s.closed = true
	return nil
}

func (s *fakeStmt) NumInput() int { return s.numInput }

func (s *fakeStmt) Exec(_ []driver.Value) (driver.Result, error) {
	if s.execErr != nil {
		return nil, s.execErr
	}
	if s.result != nil {
		return s.result, nil
	}
	return &fakeResult{rowsAffected: 1}, nil
}

func (s *fakeStmt) Query(_ []driver.Value) (driver.Rows, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if s.rows != nil {
		return s.rows, nil
	}
	return &fakeRows{}, nil
}

func (s *fakeStmt) ExecContext(_ context.Context, args []driver.NamedValue) (driver.Result, error) {
	return s.Exec(namedValueToValue(args))
}

func (s *fakeStmt) QueryContext(_ context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return s.Query(namedValueToValue(args))
}

// basicStmtOnly implements only driver.Stmt, to exercise the non-context
// fallbacks in the instrumented statement.
type basicStmtOnly struct {
	s *fakeStmt
}

func (b *basicStmtOnly) Close() error  { return b.s.Close() }
func (b *basicStmtOnly) NumInput() int { return b.s.NumInput() }

func (b *basicStmtOnly) Exec(args []driver.Value) (driver.Result, error) { return b.s.Exec(args) }
func (b *basicStmtOnly) Query(args []driver.Value) (driver.Rows, error)  { return b.s.Query(args) }

// fakeRows serves canned rows, with an optional injected error at a given
// row index.
type fakeRows struct {
	columns []string
	data    [][]driver.Value

	failAt  int // row index at which Next fails; -1 disables
	nextErr error

	closeErr error
	closed   bool
	idx      int
}

var _ driver.Rows = (*fakeRows)(nil)

func newFakeRows(columns []string, data [][]driver.Value) *fakeRows {
	return &fakeRows{columns: columns, data: data, failAt: -1}
}

func (r *fakeRows) Columns() []string { return r.columns }

func (r *fakeRows) Close() error {
	r.closed = true
	return r.closeErr
}

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.nextErr != nil && r.idx == r.failAt {
		return r.nextErr
	}
	if r.idx >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.idx])
	r.idx++
	return nil
}

// fakeResult implements driver.Result.
type fakeResult struct {
	lastInsertID int64
	rowsAffected int64
}

var _ driver.Result = (*fakeResult)(nil)

func (r *fakeResult) LastInsertId() (int64, error) { return r.lastInsertID, nil }
func (r *fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// fakeTx implements driver.Tx.
type fakeTx struct {
	commitErr   error
	rollbackErr error

	committed  bool
	rolledBack bool
}

var _ driver.Tx = (*fakeTx)(nil)

func (t *fakeTx) Commit() error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return t.rollbackErr
}
