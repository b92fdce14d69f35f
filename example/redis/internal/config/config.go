package config

const (
	// Redis configuration
	DefaultAddr   = "localhost:6379"
	DefaultDBName = "cache"

	// Server configuration
	MetricsPort = ":2112"

	// OpenTelemetry configuration
	OTLPEndpoint   = "localhost:4317"
	ServiceName    = "otel-redis-example"
	ServiceVersion = "0.1.0"

	// Operation intervals
	OperationInterval = 5 // seconds
)
