package backend

import (
	"context"
	"fmt"

	"pocketledger/internal/cache"
	"pocketledger/internal/kv"
	"pocketledger/internal/kv/memory"
	"pocketledger/internal/log"
	"pocketledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*StoreResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *StoreResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteStore(ctx, config)
	case MemoryBackend:
		result = f.createMemoryStore(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.CacheSize > 0 {
		f.wrapWithCache(ctx, result, config)
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteStore(ctx context.Context, config Config) (*StoreResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		log.FieldBackend, SQLiteBackend.String(),
		"db_path", config.SQLiteDBPath)

	return &StoreResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryStore(ctx context.Context) *StoreResult {
	f.logger.InfoContext(ctx, "Initialized memory backend", log.FieldBackend, MemoryBackend.String())

	return &StoreResult{
		Store:   memory.New(),
		Cleanup: nil, // No cleanup needed for memory backend
	}
}

// wrapWithCache puts an LRU read cache in front of the store and starts its
// expiry sweep. Cleanup stops the sweep before releasing the inner store.
func (f *DefaultFactory) wrapWithCache(ctx context.Context, result *StoreResult, config Config) {
	lru := cache.NewLRUCache[[]byte](config.CacheSize, config.CacheTTL)
	manager := cache.NewManager(f.logger)
	manager.Register(lru)
	manager.StartCleanup(config.CacheCleanupInterval)

	inner := result.Cleanup
	result.Store = kv.NewCached(result.Store, lru)
	result.Cleanup = func() error {
		manager.Stop()
		if inner != nil {
			return inner()
		}
		return nil
	}

	f.logger.InfoContext(ctx, "Enabled read cache",
		"size", config.CacheSize,
		"ttl", config.CacheTTL)
}
