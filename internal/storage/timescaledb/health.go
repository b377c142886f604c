package timescaledb

import (
	"context"
	"fmt"
	"time"
)

// CheckHealth pings the database with a short timeout.
func (t *Storage) CheckHealth(ctx context.Context) error {
	sqlDB, err := t.TimescaleDBConn.DB()
	if err != nil {
		return fmt.Errorf("could not get database handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("TimescaleDB ping failed: %w", err)
	}
	return nil
}
