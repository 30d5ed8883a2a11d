package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

// Store is what the rest of the service needs from the cache backend
type Store interface {
	Cache
	IdempotencyStore
}

// Backend is the opened cache backend. Client is nil when running in memory.
type Backend struct {
	Client *redis.Client
	Store  Store
}

// Close releases the Redis client or stops the memory store
func (b *Backend) Close() error {
	if b.Client != nil {
		return b.Client.Close()
	}
	if m, ok := b.Store.(*MemoryStore); ok {
		return m.Close()
	}
	return nil
}

// Factory opens the cache backend based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open connects to Redis when enabled and falls back to memory when allowed
func (f *Factory) Open(ctx context.Context) (*Backend, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory cache")
		return &Backend{Store: NewMemoryStore()}, nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis cache", zap.String("addr", f.redisConfig.Addr()))
		return &Backend{Client: client, Store: NewRedisStore(client)}, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cache. "+
		"Token revocations and cached reports will not be shared between instances.",
		zap.Error(err),
	)
	return &Backend{Store: NewMemoryStore()}, nil
}
