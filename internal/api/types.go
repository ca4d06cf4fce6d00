package api

import (
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/pool"
	"github.com/dhruvsoni1802/wiredriver/internal/session"
)

// Request Types

// OpenSessionRequest for POST /sessions
type OpenSessionRequest struct {
	Provider     string               `json:"provider"`
	Browser      string               `json:"browser"`
	Version      string               `json:"version,omitempty"`
	OS           string               `json:"os,omitempty"`
	Port         int                  `json:"port,omitempty"`    // Local only, 0 launches a driver
	HubURL       string               `json:"hub_url,omitempty"` // Grid only, empty lets the balancer pick
	Capabilities session.Capabilities `json:"capabilities"`
}

// Response Types

// SessionInfo describes one tracked session. The server URL never carries credentials.
type SessionInfo struct {
	SessionID    string                `json:"session_id"`
	ServerURL    string                `json:"server_url"`
	Provider     session.Provider      `json:"provider"`
	Browser      string                `json:"browser"`
	JobURL       string                `json:"job_url,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	LastActivity time.Time             `json:"last_activity"`
	Status       session.SessionStatus `json:"status"`
}

// ListSessionsResponse returned with all sessions
type ListSessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
	Count    int           `json:"count"`
}

// HealthResponse for GET /healthz
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// HubsResponse for GET /hubs
type HubsResponse = pool.PoolMetrics

// Error Types

// ErrorResponse for all error cases
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`    // Machine-readable error code
	Message string `json:"message"` // Human-readable message
}

// Common error codes
const (
	ErrCodeSessionNotFound     = "SESSION_NOT_FOUND"
	ErrCodeSessionLimit        = "SESSION_LIMIT_REACHED"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeSessionCreateFailed = "SESSION_CREATE_FAILED"
	ErrCodeQuitFailed          = "QUIT_FAILED"
	ErrCodeNoHubPool           = "NO_HUB_POOL"
)
