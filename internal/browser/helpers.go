package browser

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
)

const (
	MinPortRange = 9515 // chromedriver's default port
	MaxPortRange = 9565 // 50 ports for driver servers
)

// PortPool hands out ports from a fixed range
type PortPool struct {
	min, max int
	free     []int
	inPool   map[int]bool
	mu       sync.Mutex
}

// NewPortPool creates a pool of ports in [min, max)
func NewPortPool(min, max int) *PortPool {
	p := &PortPool{
		min:    min,
		max:    max,
		inPool: make(map[int]bool, max-min),
	}
	// Pushed in reverse so the lowest port is popped first
	for port := max - 1; port >= min; port-- {
		p.free = append(p.free, port)
		p.inPool[port] = true
	}
	return p
}

var defaultPorts = NewPortPool(MinPortRange, MaxPortRange)

// IsPortAvailable checks if a port is available by attempting to listen on it
func IsPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// Acquire hands out the lowest free port that is also free on the host.
// Ports held by other processes stay in the pool for a later call.
func (p *PortPool) Acquire() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(p.free) - 1; i >= 0; i-- {
		port := p.free[i]
		if !IsPortAvailable(port) {
			slog.Debug("port in use by external process", "port", port)
			continue
		}

		p.free = append(p.free[:i], p.free[i+1:]...)
		delete(p.inPool, port)
		slog.Debug("allocated port from pool", "port", port, "remaining", len(p.free))
		return port, nil
	}

	return 0, fmt.Errorf("no free ports available in pool")
}

// Release returns a port to the pool for reuse
func (p *PortPool) Release(port int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if port < p.min || port >= p.max {
		slog.Warn("attempted to return invalid port", "port", port)
		return
	}
	if p.inPool[port] {
		slog.Warn("port already in pool, ignoring duplicate return", "port", port)
		return
	}

	p.free = append(p.free, port)
	p.inPool[port] = true
	slog.Debug("returned port to pool", "port", port, "available", len(p.free))
}

// Stats returns the pool size and how many ports are available
func (p *PortPool) Stats() (total, available int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.max - p.min, len(p.free)
}

// GetPoolStats returns statistics of the default pool
func GetPoolStats() (total, available int) {
	return defaultPorts.Stats()
}
