package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/quarry-labs/instrumentation-go/example/redis/internal/cache"
	"github.com/quarry-labs/instrumentation-go/example/redis/internal/config"
	"github.com/quarry-labs/instrumentation-go/example/redis/internal/telemetry"

	"go.opentelemetry.io/otel"
)

func main() {
	ctx := context.Background()

	shutdownTracing, shutdownMetrics, err := telemetry.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to setup OTel: %v", err)
	}
	defer func() {
		shutdownTracing(ctx)
		shutdownMetrics(ctx)
	}()

	metricsServer := &http.Server{Addr: config.MetricsPort}
	go func() {
		log.Printf("Starting Prometheus metrics server on %s", config.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Metrics server failed: %v", err)
		}
	}()

	store := cache.New()
	defer store.Close()

	tracer := otel.Tracer("example-app")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(config.OperationInterval) * time.Second)
	defer ticker.Stop()

	fmt.Println("✅ Redis example app started!")
	fmt.Println("📊 Prometheus metrics: http://localhost:2112/metrics")
	fmt.Println("Press Ctrl+C to stop...")

	iteration := 0
	for {
		select {
		case <-ticker.C:
			ctx, span := tracer.Start(ctx, "cache-operations")
			iteration++

			id := strconv.Itoa(iteration % 3)
			if err := store.StoreSession(ctx, id, "payload-"+id); err != nil {
				log.Printf("Failed to store session: %v", err)
			}

			if _, found, err := store.LoadSession(ctx, id); err != nil {
				log.Printf("Failed to load session: %v", err)
			} else if !found {
				log.Printf("Session %s missing", id)
			}

			// A lookup that misses every time, to show redis.Nil handling
			if _, found, _ := store.LoadSession(ctx, "never-set"); !found {
				log.Println("Cache miss recorded as ok")
			}

			if err := store.RefreshLeaderboard(ctx); err != nil {
				log.Printf("Failed to refresh leaderboard: %v", err)
			}

			store.Touch(ctx)
			span.End()
			log.Println("✓ Cache operations completed")

		case <-sigChan:
			fmt.Println("\n🛑 Shutting down gracefully...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				log.Printf("Metrics server shutdown error: %v", err)
			}
			return
		}
	}
}
