package pool

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/transport"
	"github.com/dhruvsoni1802/wiredriver/internal/wire"
)

// ManagedHub is one grid hub endpoint with its load and health
type ManagedHub struct {
	url          string
	exec         *wire.Executor
	sessionCount atomic.Int64
	healthy      atomic.Bool

	mu        sync.RWMutex
	lastCheck time.Time
	lastError string
}

// HubMetrics contains metrics about a single hub
type HubMetrics struct {
	URL          string    `json:"url"`
	SessionCount int64     `json:"session_count"`
	Healthy      bool      `json:"healthy"`
	LastCheck    time.Time `json:"last_check"`
	LastError    string    `json:"last_error,omitempty"`
}

// NewManagedHub creates a hub entry. It counts as healthy until a check says otherwise.
func NewManagedHub(hubURL string, t transport.Transport) *ManagedHub {
	h := &ManagedHub{
		url:  strings.TrimRight(hubURL, "/"),
		exec: wire.NewExecutor(hubURL, t),
	}
	h.healthy.Store(true)
	return h
}

// GetURL returns the hub session endpoint
func (h *ManagedHub) GetURL() string {
	return h.url
}

func (h *ManagedHub) GetSessionCount() int64 {
	return h.sessionCount.Load()
}

func (h *ManagedHub) IncrementSessionCount() {
	h.sessionCount.Add(1)
}

func (h *ManagedHub) DecrementSessionCount() {
	if h.sessionCount.Add(-1) < 0 {
		h.sessionCount.Store(0)
	}
}

func (h *ManagedHub) IsHealthy() bool {
	return h.healthy.Load()
}

// CheckHealth asks the hub for GET /status and records the outcome
func (h *ManagedHub) CheckHealth() error {
	err := h.probe()

	h.mu.Lock()
	h.lastCheck = time.Now()
	if err != nil {
		h.lastError = err.Error()
	} else {
		h.lastError = ""
	}
	h.mu.Unlock()

	wasHealthy := h.healthy.Swap(err == nil)
	if wasHealthy && err != nil {
		slog.Warn("hub became unhealthy", "url", transport.Redact(h.url), "error", err)
	} else if !wasHealthy && err == nil {
		slog.Info("hub recovered", "url", transport.Redact(h.url))
	}
	return err
}

func (h *ManagedHub) probe() error {
	resp, err := h.exec.Execute(http.MethodGet, "/status", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("hub status returned %d", resp.StatusCode)
	}

	// W3C style hubs report readiness, legacy ones only a zero status
	var value struct {
		Ready *bool `json:"ready"`
	}
	if resp.Envelope != nil && len(resp.Envelope.Value) > 0 {
		if err := json.Unmarshal(resp.Envelope.Value, &value); err == nil && value.Ready != nil && !*value.Ready {
			return fmt.Errorf("hub is not ready")
		}
	}
	return nil
}

// GetMetrics returns a snapshot of the hub
func (h *ManagedHub) GetMetrics() HubMetrics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return HubMetrics{
		URL:          transport.Redact(h.url),
		SessionCount: h.sessionCount.Load(),
		Healthy:      h.healthy.Load(),
		LastCheck:    h.lastCheck,
		LastError:    h.lastError,
	}
}
