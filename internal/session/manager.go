package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/browser"
	"github.com/dhruvsoni1802/wiredriver/internal/pool"
	"github.com/dhruvsoni1802/wiredriver/internal/storage"
	"github.com/dhruvsoni1802/wiredriver/internal/transport"
	"github.com/dhruvsoni1802/wiredriver/internal/wire"
)

const defaultDriverReadyTimeout = 20 * time.Second

// ManagerConfig holds the limits and provider settings of a Manager
type ManagerConfig struct {
	MaxTotalSessions   int
	Credentials        map[Provider]Credentials
	DriverPath         string        // Local driver binary launched when a local target has no port
	DriverReadyTimeout time.Duration // How long to wait for a launched driver to answer
}

// tracked is a session plus the resources it holds
type tracked struct {
	session *Session
	hub     *pool.ManagedHub
	proc    *browser.Process
}

// Manager keeps track of the sessions opened through it so none is leaked
type Manager struct {
	sessions map[string]*tracked
	pending  int // Opens in flight, counted against MaxTotalSessions
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	repo     *storage.SessionRepository
	balancer *pool.LoadBalancer
	cfg      ManagerConfig
	opts     Options
}

// NewManager creates a session manager. repo and balancer may be nil.
func NewManager(repo *storage.SessionRepository, balancer *pool.LoadBalancer, cfg ManagerConfig, opts Options) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.MaxTotalSessions <= 0 {
		cfg.MaxTotalSessions = MaxTotalSessions
	}
	if cfg.DriverReadyTimeout <= 0 {
		cfg.DriverReadyTimeout = defaultDriverReadyTimeout
	}
	if opts.Transport == nil {
		opts.Transport = opts.transport()
	}

	return &Manager{
		sessions: make(map[string]*tracked),
		ctx:      ctx,
		cancel:   cancel,
		repo:     repo,
		balancer: balancer,
		cfg:      cfg,
		opts:     opts,
	}
}

// Open places a session at the target and tracks it
func (m *Manager) Open(target Target, overrides Capabilities) (*Session, error) {
	if err := m.reserveSlot(); err != nil {
		return nil, err
	}

	if target.Credentials == (Credentials{}) {
		target.Credentials = m.cfg.Credentials[target.Provider]
	}

	entry := &tracked{}

	switch target.Provider {
	case ProviderGrid:
		if target.HubURL == "" {
			if m.balancer == nil {
				m.releaseSlot()
				return nil, fmt.Errorf("grid target without hub url and no hub pool configured")
			}
			hub, err := m.balancer.SelectHub()
			if err != nil {
				m.releaseSlot()
				return nil, fmt.Errorf("failed to select hub: %w", err)
			}
			target.HubURL = hub.GetURL()
			entry.hub = hub
		}

	case ProviderLocal:
		if target.Port == 0 {
			proc, err := m.launchDriver()
			if err != nil {
				m.releaseSlot()
				return nil, err
			}
			target.Port = proc.Port
			entry.proc = proc
		}
	}

	s, err := InitAtProvider(target, overrides, m.opts)
	if err != nil {
		m.release(entry)
		m.releaseSlot()
		return nil, err
	}
	entry.session = s

	m.track(entry, true)
	return s, nil
}

func (m *Manager) launchDriver() (*browser.Process, error) {
	if m.cfg.DriverPath == "" {
		return nil, fmt.Errorf("local target has no port and no driver path is configured")
	}

	proc, err := browser.NewProcess(m.cfg.DriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver process: %w", err)
	}
	if err := proc.Start(); err != nil {
		return nil, err
	}
	if err := proc.WaitReady(m.opts.Transport, m.cfg.DriverReadyTimeout); err != nil {
		if stopErr := proc.Stop(); stopErr != nil {
			slog.Warn("failed to stop driver process", "port", proc.Port, "error", stopErr)
		}
		return nil, err
	}
	return proc, nil
}

// release frees what an entry holds apart from the remote session itself
func (m *Manager) release(entry *tracked) {
	if entry.proc != nil {
		if err := entry.proc.Stop(); err != nil {
			slog.Warn("failed to stop driver process", "port", entry.proc.Port, "error", err)
		}
	}
	if entry.hub != nil {
		entry.hub.DecrementSessionCount()
	}
}

// Track adds a session opened elsewhere to the manager
func (m *Manager) Track(s *Session) {
	m.track(&tracked{session: s}, false)
}

// track records an entry. reserved hands back the slot taken by reserveSlot.
func (m *Manager) track(entry *tracked, reserved bool) {
	s := entry.session

	m.mu.Lock()
	if reserved {
		m.pending--
	}
	m.sessions[s.ID] = entry
	count := len(m.sessions)
	m.mu.Unlock()

	m.opts.Metrics.SetActiveSessions(count)

	if m.repo != nil {
		if err := m.repo.SaveSession(sessionToRecord(s)); err != nil {
			slog.Warn("failed to persist session to Redis", "session_id", s.ID, "error", err)
		}
	}

	slog.Info("session tracked",
		"session_id", s.ID,
		"provider", s.Provider,
		"browser", s.BrowserName,
		"url", transport.Redact(s.ServerURL))
}

// GetSession retrieves a tracked session by ID
func (m *Manager) GetSession(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.sessions[sessionID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return entry.session, nil
}

// Touch records activity on a session so the cleanup worker leaves it alone
func (m *Manager) Touch(sessionID string) error {
	s, err := m.GetSession(sessionID)
	if err != nil {
		return err
	}
	s.Touch()

	if m.repo != nil {
		if err := m.repo.UpdateLastActivity(sessionID); err != nil {
			slog.Warn("failed to update last activity", "session_id", sessionID, "error", err)
		}
	}
	return nil
}

// Quit ends a tracked session and forgets it. The session is forgotten even
// when the remote end could not be reached.
func (m *Manager) Quit(sessionID string) error {
	return m.quit(sessionID, SessionClosed)
}

func (m *Manager) quit(sessionID string, final SessionStatus) error {
	m.mu.Lock()
	entry, exists := m.sessions[sessionID]
	if exists {
		delete(m.sessions, sessionID)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	m.opts.Metrics.SetActiveSessions(count)

	quitErr := entry.session.Quit()
	entry.session.setStatus(final)
	m.release(entry)

	if m.repo != nil {
		if err := m.repo.DeleteSession(sessionID); err != nil {
			slog.Warn("failed to delete session from Redis", "session_id", sessionID, "error", err)
		}
	}

	if quitErr != nil {
		return quitErr
	}

	slog.Info("session destroyed", "session_id", sessionID, "status", final)
	return nil
}

// ListSessions returns all tracked sessions
func (m *Manager) ListSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, entry := range m.sessions {
		sessions = append(sessions, entry.session)
	}
	return sessions
}

// GetSessionCount returns the number of tracked sessions
func (m *Manager) GetSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// reserveSlot claims room for one session. Opens still in flight count
// against the limit so concurrent callers cannot overshoot it.
func (m *Manager) reserveSlot() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if total := len(m.sessions) + m.pending; total >= m.cfg.MaxTotalSessions {
		return fmt.Errorf("%w: %d sessions open (max %d)", ErrSessionLimitReached, total, m.cfg.MaxTotalSessions)
	}
	m.pending++
	return nil
}

func (m *Manager) releaseSlot() {
	m.mu.Lock()
	m.pending--
	m.mu.Unlock()
}

// Close stops background workers and quits every tracked session (best effort)
func (m *Manager) Close() error {
	m.cancel()

	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	var errs []error
	for _, id := range ids {
		if err := m.Quit(id); err != nil {
			slog.Warn("failed to quit session on close", "session_id", id, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartCleanupWorker starts a background worker that quits idle sessions
func (m *Manager) StartCleanupWorker(interval, timeout time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		slog.Info("cleanup worker started",
			"check_interval", interval,
			"session_timeout", timeout)

		for {
			select {
			case <-m.ctx.Done():
				slog.Info("cleanup worker stopping")
				return

			case <-ticker.C:
				m.cleanupExpiredSessions(timeout)
			}
		}
	}()
}

// cleanupExpiredSessions quits sessions inactive for longer than timeout
func (m *Manager) cleanupExpiredSessions(timeout time.Duration) {
	// Collect under the read lock, quit outside it
	m.mu.RLock()
	expiredIDs := make([]string, 0)
	for sessionID, entry := range m.sessions {
		if entry.session.IsExpired(timeout) {
			expiredIDs = append(expiredIDs, sessionID)
		}
	}
	m.mu.RUnlock()

	if len(expiredIDs) == 0 {
		return
	}

	slog.Info("cleaning up expired sessions",
		"count", len(expiredIDs),
		"timeout", timeout)

	for _, sessionID := range expiredIDs {
		if err := m.quit(sessionID, SessionExpired); err != nil {
			slog.Warn("failed to quit expired session",
				"session_id", sessionID,
				"error", err)
		}
	}
}

// ReapOrphans quits sessions recorded in Redis by an earlier process that no
// longer tracks them. Records are kept when the server could not be reached.
func (m *Manager) ReapOrphans() (int, error) {
	if m.repo == nil {
		return 0, nil
	}

	ids, err := m.repo.ListActiveSessions()
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, id := range ids {
		if _, err := m.GetSession(id); err == nil {
			continue
		}

		rec, err := m.repo.GetSession(id)
		if errors.Is(err, storage.ErrRecordNotFound) {
			// Expired record still listed in the active set
			_ = m.repo.DeleteSession(id)
			continue
		}
		if err != nil {
			return reaped, err
		}

		serverURL := m.withStoredCredentials(rec)
		_, err = wire.NewExecutor(serverURL, m.opts.Transport).
			WithSession(id).
			Execute(http.MethodDelete, "/session/:sessionId", nil)
		if errors.Is(err, transport.ErrTransport) {
			slog.Warn("orphaned session unreachable, keeping record", "session_id", id, "error", err)
			continue
		}
		if err != nil {
			// Already gone on the remote end
			slog.Debug("orphaned session quit failed", "session_id", id, "error", err)
		}

		if err := m.repo.DeleteSession(id); err != nil {
			slog.Warn("failed to delete orphaned session record", "session_id", id, "error", err)
		}
		reaped++
		slog.Info("reaped orphaned session", "session_id", id, "provider", rec.Provider)
	}
	return reaped, nil
}

// withStoredCredentials puts the configured credentials back into a stripped URL
func (m *Manager) withStoredCredentials(rec *storage.SessionRecord) string {
	creds, ok := m.cfg.Credentials[Provider(rec.Provider)]
	if !ok || creds.Username == "" {
		return rec.ServerURL
	}
	u, err := url.Parse(rec.ServerURL)
	if err != nil {
		return rec.ServerURL
	}
	u.User = url.UserPassword(creds.Username, creds.AccessKey)
	return u.String()
}

// sessionToRecord converts a Session to its Redis record
func sessionToRecord(s *Session) *storage.SessionRecord {
	return &storage.SessionRecord{
		SessionID:    s.ID,
		ServerURL:    s.ServerURL,
		Provider:     string(s.Provider),
		Browser:      s.BrowserName,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity(),
		Status:       string(s.Status()),
		Capabilities: s.Capabilities.Map(),
	}
}
