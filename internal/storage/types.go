package storage

import (
	"errors"
	"fmt"
	"time"
)

// ErrRecordNotFound is returned when no record exists for a session id
var ErrRecordNotFound = errors.New("session record not found")

// SessionRecord is the persisted view of an open wire session
type SessionRecord struct {
	SessionID    string         `json:"session_id"`
	ServerURL    string         `json:"server_url"` // Credentials stripped
	Provider     string         `json:"provider"`
	Browser      string         `json:"browser"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`
	Status       string         `json:"status"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
}

// Validate checks the fields every record needs
func (s *SessionRecord) Validate() error {
	if s.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if s.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	return nil
}
