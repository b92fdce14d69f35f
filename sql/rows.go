package sql

import (
	"context"
	"database/sql/driver"
	"io"
	"reflect"
	"time"
)

// Compile-time interface checks.
var (
	_ driver.Rows                           = (*otelRows)(nil)
	_ driver.RowsNextResultSet              = (*otelRows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*otelRows)(nil)
	_ driver.RowsColumnTypeLength           = (*otelRows)(nil)
	_ driver.RowsColumnTypeNullable         = (*otelRows)(nil)
	_ driver.RowsColumnTypePrecisionScale   = (*otelRows)(nil)
)

// otelRows wraps a streaming driver.Rows cursor together with the span of
// the query execution that produced it. The span stays open across the
// cursor's whole read lifetime and is terminated exactly once: on Close, or
// earlier on the first read error. The done flag is the dispose guard that
// enforces the exactly-once invariant.
type otelRows struct {
	parent driver.Rows
	ctx    context.Context
	call   *call
	done   bool
}

// rows hands the execution span over to an instrumented row set. From here
// on the row set owns the span's disposal obligation; the calling execution
// path must not end it.
func (c *call) rows(ctx context.Context, parent driver.Rows) driver.Rows {
	if c.skip {
		return parent
	}
	return wrapRows(ctx, parent, c)
}

// finish applies the terminal span transition and records cursor metrics.
// Safe to call more than once; only the first call has any effect.
func (r *otelRows) finish(err error) {
	if r.done {
		return
	}
	r.done = true
	r.call.cfg.finishSpan(r.call.span, err)
	if !r.call.cfg.DisableMetrics {
		r.call.cfg.Metrics.recordOperation(
			r.ctx,
			time.Since(r.call.start),
			r.call.op,
			r.call.cfg.baseAttributes(),
			err,
		)
	}
}

// Columns implements driver.Rows.
func (r *otelRows) Columns() []string {
	return r.parent.Columns()
}

// Close implements driver.Rows. It terminates the owned span with ok status
// unless a read error already terminated it, then closes the wrapped cursor.
func (r *otelRows) Close() error {
	r.finish(nil)
	return r.parent.Close()
}

// Next implements driver.Rows. io.EOF is the normal end of iteration and
// leaves the span open for Close; any other error terminates the span with
// error status before being returned.
func (r *otelRows) Next(dest []driver.Value) error {
	err := r.parent.Next(dest)
	if err != nil && err != io.EOF {
		r.finish(err)
	}
	return err
}

// HasNextResultSet implements driver.RowsNextResultSet.
func (r *otelRows) HasNextResultSet() bool {
	if v, ok := r.parent.(driver.RowsNextResultSet); ok {
		return v.HasNextResultSet()
	}
	return false
}

// NextResultSet implements driver.RowsNextResultSet.
func (r *otelRows) NextResultSet() error {
	v, ok := r.parent.(driver.RowsNextResultSet)
	if !ok {
		return io.EOF
	}
	err := v.NextResultSet()
	if err != nil && err != io.EOF {
		r.finish(err)
	}
	return err
}

// ColumnTypeDatabaseTypeName implements driver.RowsColumnTypeDatabaseTypeName.
func (r *otelRows) ColumnTypeDatabaseTypeName(index int) string {
	if v, ok := r.parent.(driver.RowsColumnTypeDatabaseTypeName); ok {
		return v.ColumnTypeDatabaseTypeName(index)
	}
	return ""
}

// ColumnTypeLength implements driver.RowsColumnTypeLength.
func (r *otelRows) ColumnTypeLength(index int) (length int64, ok bool) {
	if v, ok := r.parent.(driver.RowsColumnTypeLength); ok {
		return v.ColumnTypeLength(index)
	}
	return 0, false
}

// ColumnTypeNullable implements driver.RowsColumnTypeNullable.
func (r *otelRows) ColumnTypeNullable(index int) (nullable, ok bool) {
	if v, ok := r.parent.(driver.RowsColumnTypeNullable); ok {
		return v.ColumnTypeNullable(index)
	}
	return false, false
}

// ColumnTypePrecisionScale implements driver.RowsColumnTypePrecisionScale.
func (r *otelRows) ColumnTypePrecisionScale(index int) (precision, scale int64, ok bool) {
	if v, ok := r.parent.(driver.RowsColumnTypePrecisionScale); ok {
		return v.ColumnTypePrecisionScale(index)
	}
	return 0, 0, false
}

// withRowsColumnTypeScanType mirrors driver.RowsColumnTypeScanType without
// the embedded driver.Rows. ColumnTypeScanType has no usable zero value, so
// unlike the other column-type interfaces it is only exposed when the
// wrapped cursor supports it.
type withRowsColumnTypeScanType interface {
	ColumnTypeScanType(index int) reflect.Type
}

// wrapRows builds the instrumented cursor. All optional row interfaces with
// safe zero values are always implemented; RowsColumnTypeScanType is spliced
// in by composition only when the parent supports it.
func wrapRows(ctx context.Context, parent driver.Rows, c *call) driver.Rows {
	r := &otelRows{
		parent: parent,
		ctx:    ctx,
		call:   c,
	}

	if ts, ok := parent.(driver.RowsColumnTypeScanType); ok {
		return struct {
			*otelRows
			withRowsColumnTypeScanType
		}{r, ts}
	}

	return r
}
