package sqlx

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	otelsql "github.com/quarry-labs/instrumentation-go/sql"
)

// Open opens an instrumented database connection and wraps it with sqlx.
// Tracing and metrics happen at the driver level, so every sqlx convenience
// method (Get, Select, NamedExec, NamedQuery, ...) is covered without any
// per-method wrapping.
//
// Example:
//
//	db, err := otelsqlx.Open("postgres", dsn,
//	    otelsql.WithDBName("mydb"),
//	)
func Open(driverName, dsn string, opts ...otelsql.Option) (*sqlx.DB, error) {
	db, err := otelsql.Open(driverName, dsn, opts...)
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(db, driverName), nil
}

// Connect opens an instrumented connection and verifies it with a ping.
func Connect(ctx context.Context, driverName, dsn string, opts ...otelsql.Option) (*sqlx.DB, error) {
	db, err := Open(driverName, dsn, opts...)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewDb wraps an existing *sql.DB with sqlx. The driverName is used by sqlx
// to pick the bindvar type for named queries; pass the name the connection
// was opened with.
//
// Use this when the *sql.DB was built through otelsql.Open, WrapDriver or
// WrapConnector and you want sqlx semantics on top.
func NewDb(db *sql.DB, driverName string) *sqlx.DB {
	return sqlx.NewDb(db, driverName)
}

// MustOpen is like Open but panics on error.
func MustOpen(driverName, dsn string, opts ...otelsql.Option) *sqlx.DB {
	db, err := Open(driverName, dsn, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

// MustConnect is like Connect but panics on error.
func MustConnect(ctx context.Context, driverName, dsn string, opts ...otelsql.Option) *sqlx.DB {
	db, err := Connect(ctx, driverName, dsn, opts...)
	if err != nil {
		panic(err)
	}
	return db
}
