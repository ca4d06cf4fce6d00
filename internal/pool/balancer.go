package pool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dhruvsoni1802/wiredriver/internal/transport"
)

// ErrNoHealthyHub is returned when every hub failed its last health check
var ErrNoHealthyHub = errors.New("no healthy hubs in the pool")

// LoadBalancer spreads sessions over the hubs of a pool
type LoadBalancer struct {
	pool *HubPool
	mu   sync.Mutex
}

// NewLoadBalancer creates a new load balancer
func NewLoadBalancer(pool *HubPool) *LoadBalancer {
	return &LoadBalancer{
		pool: pool,
	}
}

// Pool returns the balanced pool
func (lb *LoadBalancer) Pool() *HubPool {
	return lb.pool
}

// SelectHub picks the healthy hub with the fewest sessions and counts a
// session against it. Callers hand the slot back with DecrementSessionCount
// once the session ends or fails to start.
func (lb *LoadBalancer) SelectHub() (*ManagedHub, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	hubs := lb.pool.GetHubs()
	if len(hubs) == 0 {
		return nil, fmt.Errorf("no hubs in the pool")
	}

	var selected *ManagedHub
	var minSessions int64 = -1

	for _, hub := range hubs {
		if !hub.IsHealthy() {
			slog.Warn("skipping unhealthy hub", "url", transport.Redact(hub.GetURL()))
			continue
		}

		sessionCount := hub.GetSessionCount()
		if minSessions == -1 || sessionCount < minSessions {
			minSessions = sessionCount
			selected = hub
		}
	}

	if selected == nil {
		return nil, ErrNoHealthyHub
	}
	selected.IncrementSessionCount()

	slog.Debug("selected hub",
		"url", transport.Redact(selected.GetURL()),
		"current_sessions", selected.GetSessionCount())

	return selected, nil
}
