package managers

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrissnell/airfieldwx/internal/storage"
	"github.com/chrissnell/airfieldwx/internal/storage/sqlite"
	"github.com/chrissnell/airfieldwx/internal/storage/timescaledb"
	"github.com/chrissnell/airfieldwx/pkg/config"
)

const healthCheckInterval = 30 * time.Second

// StorageManager holds the active event store and the health of its backend.
type StorageManager struct {
	Store   storage.EventStore
	Backend string
	Health  *storage.HealthManager
}

// NewStorageManager opens the single configured storage backend.
func NewStorageManager(ctx context.Context, c *config.StorageData, clock clockwork.Clock, logger *zap.SugaredLogger) (*StorageManager, error) {
	s := &StorageManager{
		Health: storage.NewHealthManager(clock),
	}

	var err error
	switch {
	case c.TimescaleDB != nil:
		s.Backend = "timescaledb"
		s.Store, err = timescaledb.New(ctx, c.TimescaleDB.ConnectionString, clock, logger.Named("timescaledb"))
		if err != nil {
			return nil, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
	case c.SQLite != nil:
		s.Backend = "sqlite"
		s.Store, err = sqlite.New(ctx, c.SQLite.Path, clock, logger.Named("sqlite"))
		if err != nil {
			return nil, fmt.Errorf("could not add SQLite storage backend: %w", err)
		}
	default:
		return nil, config.ErrStorageBackend
	}

	return s, nil
}

// StartHealthMonitor begins periodic health checks of the backend, if it
// supports them.
func (s *StorageManager) StartHealthMonitor(ctx context.Context, logger *zap.SugaredLogger) {
	if checker, ok := s.Store.(storage.HealthChecker); ok {
		storage.StartHealthMonitor(ctx, s.Health, s.Backend, checker, healthCheckInterval, logger)
	}
}

// Close closes the event store.
func (s *StorageManager) Close() error {
	return s.Store.Close()
}
