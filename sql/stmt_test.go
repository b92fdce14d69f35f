package sql

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestStmt_ExecContext(t *testing.T) {
	t.Run("given successful exec, then one span ends with the prepared statement", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		stmt := newOtelStmt(&fakeStmt{}, newConfig(tracerOpt), "UPDATE users SET active = true")

		_, err := stmt.ExecContext(context.Background(), nil)
		require.NoError(t, err)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "UPDATE", spans[0].Name())
		assert.Equal(t, "UPDATE users SET active = true", spanAttrMap(spans[0])["db.statement"])
	})

	t.Run("given exec failure, then span ends with error", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		execErr := errors.New("constraint violation")
		stmt := newOtelStmt(&fakeStmt{execErr: execErr}, newConfig(tracerOpt), "INSERT INTO users VALUES (1)")

		_, err := stmt.ExecContext(context.Background(), nil)

		assert.Same(t, execErr, err)
		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("given statement without context support, then exec falls back and is still traced", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		inner := &fakeStmt{}
		stmt := newOtelStmt(&basicStmtOnly{s: inner}, newConfig(tracerOpt), "DELETE FROM sessions")

		_, err := stmt.ExecContext(context.Background(), []driver.NamedValue{{Ordinal: 1, Value: int64(5)}})
		require.NoError(t, err)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "DELETE", spans[0].Name())
	})
}

func TestStmt_QueryContext(t *testing.T) {
	t.Run("given successful query, then span ends on rows close", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		inner := &fakeStmt{rows: newFakeRows([]string{"id"}, [][]driver.Value{{int64(1)}})}
		stmt := newOtelStmt(inner, newConfig(tracerOpt), "SELECT id FROM users")

		rows, err := stmt.QueryContext(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, sr.Ended())

		require.NoError(t, rows.Close())
		assert.Len(t, sr.Ended(), 1)
	})

	t.Run("given query failure, then span ends with error immediately", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		queryErr := errors.New("timeout")
		stmt := newOtelStmt(&fakeStmt{queryErr: queryErr}, newConfig(tracerOpt), "SELECT 1")

		_, err := stmt.QueryContext(context.Background(), nil)

		assert.Same(t, queryErr, err)
		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("given statement without context support, then query falls back and is still traced", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		inner := &fakeStmt{rows: newFakeRows([]string{"id"}, nil)}
		stmt := newOtelStmt(&basicStmtOnly{s: inner}, newConfig(tracerOpt), "SELECT id FROM users")

		rows, err := stmt.QueryContext(context.Background(), nil)
		require.NoError(t, err)
		require.NoError(t, rows.Close())

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "SELECT", spans[0].Name())
	})
}

func TestStmt_Delegation(t *testing.T) {
	t.Run("given Close, then the wrapped statement is closed", func(t *testing.T) {
		inner := &fakeStmt{}
		stmt := newOtelStmt(inner, newConfig(), "SELECT 1")

		require.NoError(t, stmt.Close())
		assert.True(t, inner.closed)
	})

	t.Run("given NumInput, then the wrapped value passes through", func(t *testing.T) {
		stmt := newOtelStmt(&fakeStmt{numInput: 3}, newConfig(), "SELECT 1")

		assert.Equal(t, 3, stmt.NumInput())
	})
}

func TestNamedValueToValue(t *testing.T) {
	t.Run("given named values, then plain values are extracted in order", func(t *testing.T) {
		named := []driver.NamedValue{
			{Ordinal: 1, Value: int64(42)},
			{Ordinal: 2, Value: "ada"},
		}

		values := namedValueToValue(named)

		require.Len(t, values, 2)
		assert.Equal(t, int64(42), values[0])
		assert.Equal(t, "ada", values[1])
	})

	t.Run("given empty input, then an empty slice is returned", func(t *testing.T) {
		assert.Empty(t, namedValueToValue(nil))
	})
}
