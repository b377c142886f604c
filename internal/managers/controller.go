package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrissnell/airfieldwx/internal/controllers/restserver"
	"github.com/chrissnell/airfieldwx/internal/observability"
	"github.com/chrissnell/airfieldwx/internal/render"
	"github.com/chrissnell/airfieldwx/pkg/config"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// NewControllerManager creates the controllers for the loaded configuration.
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, c *config.ConfigData, sm *StorageManager, clock clockwork.Clock, metrics *observability.Metrics, logger *zap.SugaredLogger) (ControllerManager, error) {
	cm := &controllerManager{
		ctx:         ctx,
		wg:          wg,
		logger:      logger,
		controllers: make([]Controller, 0),
	}

	rest, err := restserver.NewController(ctx, wg, c.REST, restserver.Options{
		Store:   sm.Store,
		Health:  sm.Health,
		Backend: sm.Backend,
		Clock:   clock,
		Metrics: metrics,
		Render:  render.FromConfigData(c),
	}, logger.Named("rest"))
	if err != nil {
		return nil, fmt.Errorf("error creating controller: %w", err)
	}
	cm.controllers = append(cm.controllers, rest)

	return cm, nil
}

type controllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	logger      *zap.SugaredLogger
	controllers []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %w", err)
		}
	}

	c.logger.Infof("started %d controllers successfully", len(c.controllers))
	return nil
}
