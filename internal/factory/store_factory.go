package factory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/adapters/store"
	"github.com/mikey/group-guard/internal/config"
	"github.com/mikey/group-guard/internal/core"
)

// ErrUnsupportedStore is returned for an unknown store.type
var ErrUnsupportedStore = errors.New("unsupported store type")

// StoreFactory creates badword stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateBadwordStore creates a badword store based on the configuration
func (f *StoreFactory) CreateBadwordStore() (core.BadwordStore, error) {
	storeCfg, err := f.cfg.GetStore()
	if err != nil {
		return nil, err
	}

	switch storeCfg.Type {
	case "memory":
		f.logger.Warn("Using the in-memory badword store, badwords are lost on restart")
		return store.NewMemoryStore(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(storeCfg.SQLitePath, f.logger)
	case "mysql":
		return store.NewMySQLStore(storeCfg.MySQLDSN, f.logger)
	case "postgres":
		return store.NewPostgresStore(storeCfg.PostgresDSN, f.logger)
	case "redis":
		return store.NewRedisStore(&redis.Options{
			Addr:     storeCfg.RedisAddr,
			Password: storeCfg.RedisPassword,
			DB:       storeCfg.RedisDB,
		}, storeCfg.RedisPrefix, f.logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStore, storeCfg.Type)
	}
}

// GetStoreTimeout returns the timeout for a single store call
func (f *StoreFactory) GetStoreTimeout() (time.Duration, error) {
	storeCfg, err := f.cfg.GetStore()
	if err != nil {
		return 0, err
	}
	return storeCfg.Timeout, nil
}
