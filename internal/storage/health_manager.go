package storage

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthData is the result of one backend health check.
type HealthData struct {
	LastCheck time.Time `json:"last_check" msgpack:"last_check"`
	Status    string    `json:"status" msgpack:"status"`
	Message   string    `json:"message,omitempty" msgpack:"message,omitempty"`
	Error     string    `json:"error,omitempty" msgpack:"error,omitempty"`
}

// HealthManager manages storage health status in memory
type HealthManager struct {
	mu     sync.RWMutex
	clock  clockwork.Clock
	health map[string]HealthData
}

// NewHealthManager creates a new health manager
func NewHealthManager(clock clockwork.Clock) *HealthManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthManager{
		clock:  clock,
		health: make(map[string]HealthData),
	}
}

// UpdateHealth records the health status for a storage backend
func (hm *HealthManager) UpdateHealth(backend string, health HealthData) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.health[backend] = health
}

// GetHealth retrieves the health status for a specific storage backend
func (hm *HealthManager) GetHealth(backend string) (HealthData, bool) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	health, exists := hm.health[backend]
	return health, exists
}

// GetAllHealth retrieves all storage health statuses
func (hm *HealthManager) GetAllHealth() map[string]HealthData {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	result := make(map[string]HealthData, len(hm.health))
	for k, v := range hm.health {
		result[k] = v
	}
	return result
}

// IsHealthy checks if a storage backend is healthy and its last check is no
// older than maxAge.
func (hm *HealthManager) IsHealthy(backend string, maxAge time.Duration) bool {
	health, exists := hm.GetHealth(backend)
	if !exists {
		return false
	}

	if hm.clock.Since(health.LastCheck) > maxAge {
		return false
	}

	return health.Status == StatusHealthy
}
