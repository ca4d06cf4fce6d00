package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

const activeSessionsKey = "active:sessions"

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func providerKey(provider string) string {
	return fmt.Sprintf("provider:%s:sessions", provider)
}

// This struct handles session persistence in Redis
type SessionRepository struct {
	redis *RedisClient  // The Redis client to use for persistence
	ttl   time.Duration // Default TTL for sessions
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(redisClient *RedisClient, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		redis: redisClient,
		ttl:   ttl,
	}
}

// stripCredentials removes userinfo so access keys never reach Redis
func stripCredentials(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.User = nil
	return u.String()
}

// SaveSession persists a session record to Redis using Hash
func (r *SessionRepository) SaveSession(rec *SessionRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid session record: %w", err)
	}

	key := sessionKey(rec.SessionID)

	fields := map[string]interface{}{
		"session_id":    rec.SessionID,
		"server_url":    stripCredentials(rec.ServerURL),
		"provider":      rec.Provider,
		"browser":       rec.Browser,
		"created_at":    rec.CreatedAt.Format(time.RFC3339),
		"last_activity": rec.LastActivity.Format(time.RFC3339),
		"status":        rec.Status,
	}

	if err := r.redis.client.HSet(r.redis.ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if err := r.redis.client.Expire(r.redis.ctx, key, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set TTL: %w", err)
	}

	if err := r.redis.client.SAdd(r.redis.ctx, activeSessionsKey, rec.SessionID).Err(); err != nil {
		slog.Warn("failed to add to active sessions set", "error", err)
	}

	if rec.Provider != "" {
		if err := r.redis.client.SAdd(r.redis.ctx, providerKey(rec.Provider), rec.SessionID).Err(); err != nil {
			slog.Warn("failed to add session to provider set", "error", err)
		}
	}

	if len(rec.Capabilities) > 0 {
		if err := r.SaveCapabilities(rec.SessionID, rec.Capabilities); err != nil {
			slog.Warn("failed to save capabilities", "error", err)
		}
	}

	slog.Debug("session saved to Redis", "session_id", rec.SessionID)
	return nil
}

// GetSession retrieves a session record from Redis
func (r *SessionRepository) GetSession(sessionID string) (*SessionRecord, error) {
	data, err := r.redis.client.HGetAll(r.redis.ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// Empty map means not found
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, sessionID)
	}

	rec := &SessionRecord{
		SessionID: data["session_id"],
		ServerURL: data["server_url"],
		Provider:  data["provider"],
		Browser:   data["browser"],
		Status:    data["status"],
	}

	if createdAt, err := time.Parse(time.RFC3339, data["created_at"]); err == nil {
		rec.CreatedAt = createdAt
	}
	if lastActivity, err := time.Parse(time.RFC3339, data["last_activity"]); err == nil {
		rec.LastActivity = lastActivity
	}

	if caps, err := r.GetCapabilities(sessionID); err == nil {
		rec.Capabilities = caps
	}

	return rec, nil
}

// ListActiveSessions returns all active session IDs
func (r *SessionRepository) ListActiveSessions() ([]string, error) {
	sessions, err := r.redis.client.SMembers(r.redis.ctx, activeSessionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return sessions, nil
}

// ListProviderSessions returns the session IDs recorded for one provider
func (r *SessionRepository) ListProviderSessions(provider string) ([]string, error) {
	sessions, err := r.redis.client.SMembers(r.redis.ctx, providerKey(provider)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list provider sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession removes a session record from Redis
func (r *SessionRepository) DeleteSession(sessionID string) error {
	key := sessionKey(sessionID)

	// Read the provider first so the provider set can be cleaned too
	provider, err := r.redis.client.HGet(r.redis.ctx, key, "provider").Result()
	if err == nil && provider != "" {
		r.redis.client.SRem(r.redis.ctx, providerKey(provider), sessionID)
	}

	if err := r.redis.client.Del(r.redis.ctx, key, capabilitiesKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	r.redis.client.SRem(r.redis.ctx, activeSessionsKey, sessionID)

	slog.Debug("session deleted from Redis", "session_id", sessionID)
	return nil
}
