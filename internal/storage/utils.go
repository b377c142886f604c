package storage

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// HealthChecker is implemented by backends that can verify their connection.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// CheckOnce runs one health check and records the result.
func CheckOnce(ctx context.Context, hm *HealthManager, backend string, checker HealthChecker) HealthData {
	health := CreateHealthData(hm.clock, StatusHealthy, "connection ok", nil)
	if err := checker.CheckHealth(ctx); err != nil {
		health = CreateHealthData(hm.clock, StatusUnhealthy, "health check failed", err)
	}
	hm.UpdateHealth(backend, health)
	return health
}

// StartHealthMonitor checks the backend immediately and then every interval
// until ctx is cancelled.
func StartHealthMonitor(ctx context.Context, hm *HealthManager, backend string, checker HealthChecker, interval time.Duration, logger *zap.SugaredLogger) {
	go func() {
		update := func() {
			health := CheckOnce(ctx, hm, backend, checker)
			if health.Status != StatusHealthy {
				logger.Errorf("%s health check failed: %s", backend, health.Error)
			} else {
				logger.Debugf("updated %s health status: %s", backend, health.Status)
			}
		}

		update()

		ticker := hm.clock.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				update()
			case <-ctx.Done():
				logger.Infof("stopping %s health monitor", backend)
				return
			}
		}
	}()
}

// CreateHealthData creates a basic health data structure
func CreateHealthData(clock clockwork.Clock, status, message string, err error) HealthData {
	health := HealthData{
		LastCheck: clock.Now(),
		Status:    status,
		Message:   message,
	}

	if err != nil {
		health.Error = err.Error()
	}

	return health
}
