package database

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq" // Register postgres driver
	"github.com/quarry-labs/instrumentation-go/example/sql/internal/config"
	otelsql "github.com/quarry-labs/instrumentation-go/sql"

	"go.opentelemetry.io/otel"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// New creates a new instrumented database connection. The db.system
// attribute is resolved automatically from the registered pq driver.
func New(ctx context.Context) (*DB, error) {
	db, err := otelsql.Open("postgres", config.DefaultDSN,
		otelsql.WithDBName(config.DefaultDBName),
		otelsql.WithInstanceName(config.DefaultInstance),
		otelsql.WithSanitizedQuery(),
	)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.DefaultMaxOpen)
	db.SetMaxIdleConns(config.DefaultMaxIdle)
	db.SetConnMaxLifetime(time.Duration(config.DefaultMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(config.DefaultMaxIdleTime) * time.Second)

	// Register connection pool metrics; identity attributes are picked up
	// from the instrumented driver.
	err = otelsql.RecordPoolMetrics(db, otel.GetMeterProvider().Meter("example-app"))
	if err != nil {
		log.Printf("Failed to register pool metrics: %v", err)
	}

	return &DB{DB: db}, nil
}
