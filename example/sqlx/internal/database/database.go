package database

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Register postgres driver
	"github.com/quarry-labs/instrumentation-go/example/sqlx/internal/config"
	otelsql "github.com/quarry-labs/instrumentation-go/sql"
	otelsqlx "github.com/quarry-labs/instrumentation-go/sqlx"

	"go.opentelemetry.io/otel"
)

// DB wraps the sqlx database handle
type DB struct {
	*sqlx.DB
}

// New creates an instrumented sqlx connection. Because instrumentation
// happens at the driver level, Get, Select, NamedExec and friends are all
// traced without further wrapping.
func New(ctx context.Context) (*DB, error) {
	db, err := otelsqlx.Connect(ctx, "postgres", config.DefaultDSN,
		otelsql.WithDBName(config.DefaultDBName),
		otelsql.WithInstanceName(config.DefaultInstance),
		otelsql.WithSanitizedQuery(),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(config.DefaultMaxOpen)
	db.SetMaxIdleConns(config.DefaultMaxIdle)
	db.SetConnMaxLifetime(time.Duration(config.DefaultMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(config.DefaultMaxIdleTime) * time.Second)

	err = otelsql.RecordPoolMetrics(db.DB, otel.GetMeterProvider().Meter("example-app"))
	if err != nil {
		log.Printf("Failed to register pool metrics: %v", err)
	}

	return &DB{DB: db}, nil
}
