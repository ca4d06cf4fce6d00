package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

func capabilitiesKey(sessionID string) string {
	return fmt.Sprintf("session:%s:capabilities", sessionID)
}

// UpdateLastActivity updates just the last activity timestamp
func (r *SessionRepository) UpdateLastActivity(sessionID string) error {
	key := sessionKey(sessionID)

	err := r.redis.client.HSet(r.redis.ctx, key, "last_activity", time.Now().Format(time.RFC3339)).Err()
	if err != nil {
		return fmt.Errorf("failed to update last activity: %w", err)
	}

	// Refresh TTL
	if err := r.redis.client.Expire(r.redis.ctx, key, r.ttl).Err(); err != nil {
		slog.Warn("failed to refresh TTL", "error", err)
	}
	if err := r.redis.client.Expire(r.redis.ctx, capabilitiesKey(sessionID), r.ttl).Err(); err != nil {
		slog.Warn("failed to refresh capabilities TTL", "error", err)
	}

	return nil
}

// UpdateStatus sets the status field of a record
func (r *SessionRepository) UpdateStatus(sessionID, status string) error {
	if err := r.redis.client.HSet(r.redis.ctx, sessionKey(sessionID), "status", status).Err(); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// SaveCapabilities stores the desired capabilities as a JSON string
func (r *SessionRepository) SaveCapabilities(sessionID string, caps map[string]any) error {
	if len(caps) == 0 {
		return nil
	}

	data, err := json.Marshal(caps)
	if err != nil {
		return fmt.Errorf("failed to marshal capabilities: %w", err)
	}

	if err := r.redis.client.Set(r.redis.ctx, capabilitiesKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save capabilities: %w", err)
	}

	return nil
}

// GetCapabilities retrieves stored capabilities, nil when none were saved
func (r *SessionRepository) GetCapabilities(sessionID string) (map[string]any, error) {
	data, err := r.redis.client.Get(r.redis.ctx, capabilitiesKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capabilities: %w", err)
	}

	var caps map[string]any
	if err := json.Unmarshal([]byte(data), &caps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal capabilities: %w", err)
	}

	return caps, nil
}

// PruneActiveSessions drops ids from the active set whose record has expired
func (r *SessionRepository) PruneActiveSessions() (int, error) {
	ids, err := r.ListActiveSessions()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, id := range ids {
		n, err := r.redis.client.Exists(r.redis.ctx, sessionKey(id)).Result()
		if err != nil {
			return pruned, fmt.Errorf("failed to check session %s: %w", id, err)
		}
		if n == 0 {
			r.redis.client.SRem(r.redis.ctx, activeSessionsKey, id)
			pruned++
		}
	}
	return pruned, nil
}
