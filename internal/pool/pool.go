package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/transport"
)

// HubPool manages the grid hubs sessions can be placed on
type HubPool struct {
	hubs []*ManagedHub
	mu   sync.RWMutex
}

// PoolMetrics contains metrics about the entire pool
type PoolMetrics struct {
	TotalHubs     int          `json:"total_hubs"`
	HealthyHubs   int          `json:"healthy_hubs"`
	TotalSessions int64        `json:"total_sessions"`
	Hubs          []HubMetrics `json:"hubs"`
}

// NewHubPool creates a pool from hub URLs. Duplicates are dropped.
func NewHubPool(urls []string, t transport.Transport) (*HubPool, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("hub pool needs at least one hub url")
	}

	pool := &HubPool{hubs: make([]*ManagedHub, 0, len(urls))}
	seen := make(map[string]bool, len(urls))

	for _, u := range urls {
		hub := NewManagedHub(u, t)
		if seen[hub.GetURL()] {
			continue
		}
		seen[hub.GetURL()] = true
		pool.hubs = append(pool.hubs, hub)
		slog.Info("registered grid hub", "url", transport.Redact(hub.GetURL()))
	}

	slog.Info("hub pool initialized", "size", len(pool.hubs))
	return pool, nil
}

// GetHubs returns a copy of all hubs (for monitoring)
func (p *HubPool) GetHubs() []*ManagedHub {
	p.mu.RLock()
	defer p.mu.RUnlock()

	hubs := make([]*ManagedHub, len(p.hubs))
	copy(hubs, p.hubs)
	return hubs
}

// GetHubCount returns the number of hubs in the pool
func (p *HubPool) GetHubCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.hubs)
}

// FindHub returns the hub serving url, nil if none does
func (p *HubPool) FindHub(url string) *ManagedHub {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, hub := range p.hubs {
		if hub.GetURL() == url {
			return hub
		}
	}
	return nil
}

// CheckHealth probes every hub once and returns how many are healthy
func (p *HubPool) CheckHealth() int {
	healthy := 0
	for _, hub := range p.GetHubs() {
		if err := hub.CheckHealth(); err == nil {
			healthy++
		}
	}
	return healthy
}

// StartHealthChecks probes the hubs every interval until ctx is done
func (p *HubPool) StartHealthChecks(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		slog.Info("hub health checks started", "interval", interval)

		for {
			select {
			case <-ctx.Done():
				slog.Info("hub health checks stopping")
				return
			case <-ticker.C:
				p.CheckHealth()
			}
		}
	}()
}

// GetMetrics returns metrics for the entire pool
func (p *HubPool) GetMetrics() PoolMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var totalSessions int64
	healthy := 0
	hubMetrics := make([]HubMetrics, len(p.hubs))

	for i, hub := range p.hubs {
		metrics := hub.GetMetrics()
		hubMetrics[i] = metrics
		totalSessions += metrics.SessionCount
		if metrics.Healthy {
			healthy++
		}
	}

	return PoolMetrics{
		TotalHubs:     len(p.hubs),
		HealthyHubs:   healthy,
		TotalSessions: totalSessions,
		Hubs:          hubMetrics,
	}
}
