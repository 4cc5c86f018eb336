// Package bootstrap wires the runtime stores shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"icarus/internal/cache"
	"icarus/internal/config"
	"icarus/internal/database"
	"icarus/internal/observability"
	"icarus/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Version is reported in traces.
const Version = "1.0.0"

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// InitRuntime connects to the database and Redis and optionally seeds the
// demo account. A nil Redis client means the service runs uncached.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if _, err := seed.Demo(context.Background(), db, bcrypt.DefaultCost); err != nil {
			return nil, nil, err
		}
	}

	return db, r, nil
}

// InitTracing starts the tracer provider described by cfg. The returned
// shutdown function is a no-op when tracing is disabled.
func InitTracing(cfg *config.Config) (func(context.Context) error, error) {
	return observability.InitTracing(observability.TracingConfig{
		ServiceName:    observability.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
}
