package sql

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var mockSeq atomic.Int64

// newMockDB wires a sqlmock backend through the instrumented driver and
// returns the instrumented *sql.DB plus the expectation handle.
// sql.Register is process-wide, so every call uses a fresh name and DSN.
func newMockDB(t *testing.T, opts ...Option) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	n := mockSeq.Add(1)
	dsn := fmt.Sprintf("mock_dsn_%d", n)

	backing, mock, err := sqlmock.NewWithDSN(dsn, sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = backing.Close() })

	name := fmt.Sprintf("otel-mock-%d", n)
	Register(name, backing.Driver(), opts...)

	db, err := sql.Open(name, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func endedSpanNames(sr *tracetest.SpanRecorder) []string {
	names := make([]string, 0, len(sr.Ended()))
	for _, span := range sr.Ended() {
		names = append(names, span.Name())
	}
	return names
}

func TestIntegration_Query(t *testing.T) {
	t.Run("given instrumented db, then results pass through unchanged", func(t *testing.T) {
		_, tracerOpt := newTestTracer(t)
		db, mock := newMockDB(t, tracerOpt)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM users")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
				AddRow(1, "ada").
				AddRow(2, "grace"))

		rows, err := db.QueryContext(context.Background(), "SELECT id, name FROM users")
		require.NoError(t, err)

		var got []string
		for rows.Next() {
			var id int64
			var name string
			require.NoError(t, rows.Scan(&id, &name))
			got = append(got, name)
		}
		require.NoError(t, rows.Err())
		require.NoError(t, rows.Close())

		assert.Equal(t, []string{"ada", "grace"}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("given rows consumed and closed, then exactly one ok span exists", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		db, mock := newMockDB(t, tracerOpt)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		rows, err := db.QueryContext(context.Background(), "SELECT id FROM users")
		require.NoError(t, err)
		for rows.Next() {
		}
		require.NoError(t, rows.Close())

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "SELECT", spans[0].Name())
		assert.Equal(t, codes.Ok, spans[0].Status().Code)
	})

	t.Run("given query failure, then span carries driver error verbatim", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		db, mock := newMockDB(t, tracerOpt)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM missing")).
			WillReturnError(fmt.Errorf("relation %q does not exist", "missing"))

		_, err := db.QueryContext(context.Background(), "SELECT * FROM missing")
		require.Error(t, err)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Contains(t, spans[0].Status().Description, "missing")
	})
}

func TestIntegration_Exec(t *testing.T) {
	t.Run("given exec, then affected rows pass through and span ends", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		db, mock := newMockDB(t, tracerOpt, WithDBSystem("postgresql"))

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET active = false")).
			WillReturnResult(sqlmock.NewResult(0, 3))

		result, err := db.ExecContext(context.Background(), "UPDATE users SET active = false")
		require.NoError(t, err)

		affected, err := result.RowsAffected()
		require.NoError(t, err)
		assert.Equal(t, int64(3), affected)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "UPDATE", spans[0].Name())
		assert.Equal(t, "postgresql", spanAttrMap(spans[0])["db.system"])
	})
}

func TestIntegration_PreparedStatement(t *testing.T) {
	t.Run("given prepared query, then span ends when rows close", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		db, mock := newMockDB(t, tracerOpt)

		mock.ExpectPrepare(regexp.QuoteMeta("SELECT name FROM users WHERE id = ?")).
			ExpectQuery().
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("ada"))

		stmt, err := db.PrepareContext(context.Background(), "SELECT name FROM users WHERE id = ?")
		require.NoError(t, err)
		defer stmt.Close()

		rows, err := stmt.QueryContext(context.Background(), 7)
		require.NoError(t, err)

		var name string
		require.True(t, rows.Next())
		require.NoError(t, rows.Scan(&name))
		require.NoError(t, rows.Close())

		assert.Equal(t, "ada", name)
		assert.Len(t, sr.Ended(), 1)
	})
}

func TestIntegration_Transaction(t *testing.T) {
	t.Run("given commit, then BEGIN, EXEC and COMMIT spans are emitted", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		db, mock := newMockDB(t, tracerOpt)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit VALUES (1)")).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		tx, err := db.BeginTx(context.Background(), nil)
		require.NoError(t, err)
		_, err = tx.ExecContext(context.Background(), "INSERT INTO audit VALUES (1)")
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		assert.Equal(t, []string{"BEGIN", "INSERT", "COMMIT"}, endedSpanNames(sr))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("given rollback, then a ROLLBACK span is emitted", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		db, mock := newMockDB(t, tracerOpt)

		mock.ExpectBegin()
		mock.ExpectRollback()

		tx, err := db.BeginTx(context.Background(), nil)
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())

		assert.Contains(t, endedSpanNames(sr), "ROLLBACK")
	})
}

func TestIntegration_Ping(t *testing.T) {
	t.Run("given ping, then a PING span ends ok", func(t *testing.T) {
		sr, tracerOpt := newTestTracer(t)
		db, mock := newMockDB(t, tracerOpt)
		mock.ExpectPing()

		require.NoError(t, db.PingContext(context.Background()))

		names := endedSpanNames(sr)
		assert.Contains(t, names, "PING")
	})
}
