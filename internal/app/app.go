package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrissnell/airfieldwx/internal/managers"
	"github.com/chrissnell/airfieldwx/internal/observability"
	"github.com/chrissnell/airfieldwx/pkg/config"
)

// App represents the main application
type App struct {
	config *config.ConfigData
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		config: cfg,
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	storageManager, err := managers.NewStorageManager(ctx, &a.config.Storage, a.clock, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storageManager.Close(); err != nil {
			a.logger.Errorf("error closing event store: %v", err)
		}
	}()
	storageManager.StartHealthMonitor(ctx, a.logger.Named("health"))

	metrics := observability.NewMetrics()

	cm, err := managers.NewControllerManager(ctx, &wg, a.config, storageManager, a.clock, metrics, a.logger)
	if err != nil {
		return err
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	a.logger.Infof("airfieldwx started for %s (%s), storage backend %s",
		a.config.Airfield.Name, a.config.Airfield.ICAO, storageManager.Backend)

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}
