package storage

import (
	"fmt"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publish backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// NewMetafieldStore builds the configured publish target.
// client may be nil unless the backend is redis.
func NewMetafieldStore(cfg *config.PublishConfig, client redis.UniversalClient, logger *zap.Logger) (integration.MetafieldStore, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		logger.Warn("Publishing to in-memory store; published feeds are lost on restart")
		return NewMemoryMetafieldStore(), nil
	case BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("%w: redis client for publish backend", integration.ErrConfigMissing)
		}
		return NewRedisMetafieldStore(client), nil
	case BackendS3:
		return NewS3MetafieldStore(&cfg.S3, WithLogger(logger))
	default:
		return nil, fmt.Errorf("unsupported publish backend: %s", cfg.Backend)
	}
}
