package store

import (
	"context"
	"fmt"

	"backoffice/internal/config"
	"backoffice/internal/shared/logger"
)

// Open builds the backend named by cfg.Backend and checks it is reachable.
func Open(ctx context.Context, cfg config.StoreConfig, log logger.Logger) (Store, error) {
	log = log.WithComponent("store").WithFields(map[string]interface{}{"backend": cfg.Backend})

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendSQLite:
		s, err = OpenSQLite(cfg.SQLite.Path)
	case config.BackendRedis:
		s = NewRedisStore(NewRedisClient(cfg.Redis), cfg.Redis.KeyPrefix)
	case config.BackendMongo:
		s, err = ConnectMongo(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%s store unreachable: %w", cfg.Backend, err)
	}
	log.Info("Cache store ready")
	return s, nil
}
