package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/metrics"
	"github.com/dhruvsoni1802/wiredriver/internal/transport"
	"github.com/dhruvsoni1802/wiredriver/internal/wait"
	"github.com/dhruvsoni1802/wiredriver/internal/wire"
)

// SessionStatus represents the current state of a session
type SessionStatus string

const (
	SessionActive  SessionStatus = "active"  // Session is open on the remote end
	SessionClosed  SessionStatus = "closed"  // Session was explicitly quit
	SessionExpired SessionStatus = "expired" // Session was quit by the cleanup worker
)

// Options control how a session is created and how it talks to the server
type Options struct {
	Transport transport.Transport
	Wait      wait.Config
	Retry     RetryPolicy
	Metrics   *metrics.Metrics

	// set by InitAtProvider
	target Target

	// sleep and now are replaced in tests
	sleep func(time.Duration)
	now   func() time.Time
}

func (o Options) transport() transport.Transport {
	if o.Transport != nil {
		return o.Transport
	}
	return transport.NewHTTPTransport(transport.Options{})
}

func (o Options) clock() func() time.Time {
	if o.now != nil {
		return o.now
	}
	return time.Now
}

func (o Options) sleeper() func(time.Duration) {
	if o.sleep != nil {
		return o.sleep
	}
	return time.Sleep
}

// Session is one remote browser session. ID never changes after creation.
type Session struct {
	ServerURL    string
	ID           string
	BrowserName  string
	Capabilities Capabilities
	Provider     Provider
	Wait         wait.Config
	CreatedAt    time.Time

	target   Target
	exec     *wire.Executor
	metrics  *metrics.Metrics
	mu       sync.Mutex
	activity time.Time
	status   SessionStatus
}

// CreationError is returned when the server answered but no session id could be found
type CreationError struct {
	ServerURL string
	Header    http.Header
	Body      string
}

func (e *CreationError) Error() string {
	if e.Body == "" && len(e.Header) == 0 {
		return fmt.Sprintf("did not get a session id from %s: empty response", e.ServerURL)
	}
	return fmt.Sprintf("did not get a session id from %s\nheaders: %v\nbody: %s", e.ServerURL, e.Header, e.Body)
}

func (e *CreationError) Unwrap() error {
	return ErrSessionCreationFailed
}

// Create opens a session at serverURL with the desired capabilities
func Create(serverURL string, caps Capabilities, opts Options) (*Session, error) {
	redacted := transport.Redact(serverURL)
	exec := wire.NewExecutor(serverURL, opts.transport())
	if opts.Metrics != nil {
		exec = exec.WithRecorder(opts.Metrics)
	}

	resp, err := exec.Execute(http.MethodPost, "/session", map[string]any{"desiredCapabilities": caps})
	if err != nil {
		return nil, fmt.Errorf("failed to create session at %s: %w", redacted, err)
	}

	id := resolveSessionID(resp)
	if id == "" {
		return nil, &CreationError{ServerURL: redacted, Header: resp.Header, Body: string(resp.Body)}
	}

	now := opts.clock()()
	s := &Session{
		ServerURL:    exec.ServerURL(),
		ID:           id,
		BrowserName:  caps.BrowserName,
		Capabilities: caps,
		Provider:     opts.target.Provider,
		Wait:         opts.Wait,
		CreatedAt:    now,
		target:       opts.target,
		exec:         exec.WithSession(id),
		metrics:      opts.Metrics,
		activity:     now,
		status:       SessionActive,
	}

	opts.Metrics.RecordSessionCreated(string(s.Provider))
	slog.Info("session created", "session_id", id, "url", redacted, "browser", caps.BrowserName)

	if opts.Wait.Implicit > 0 {
		if err := s.SetImplicitWait(opts.Wait.Implicit); err != nil {
			if qerr := s.Quit(); qerr != nil {
				slog.Warn("failed to quit session after setup error", "session_id", id, "error", qerr)
			}
			return nil, err
		}
	}

	return s, nil
}

// resolveSessionID checks the Location header, then the body sessionId, then the vendor field
func resolveSessionID(resp *wire.Response) string {
	if loc := strings.TrimSpace(resp.Header.Get("Location")); loc != "" {
		if i := strings.LastIndex(loc, "/"); i >= 0 && i < len(loc)-1 {
			return loc[i+1:]
		}
	}

	if resp.Envelope == nil {
		return ""
	}
	if resp.Envelope.SessionID != "" {
		return resp.Envelope.SessionID
	}

	var value map[string]json.RawMessage
	if err := json.Unmarshal(resp.Envelope.Value, &value); err != nil {
		return ""
	}
	var id string
	if raw, ok := value[vendorSessionIDKey]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	return id
}

// Executor returns the executor bound to this session
func (s *Session) Executor() *wire.Executor {
	return s.exec
}

// Execute sends one command on this session and records activity
func (s *Session) Execute(method, pathTemplate string, payload any) (*wire.Response, error) {
	s.Touch()
	return s.exec.Execute(method, pathTemplate, payload)
}

// SetImplicitWait sets how long the server searches for elements
func (s *Session) SetImplicitWait(d time.Duration) error {
	_, err := s.Execute(http.MethodPost, "/session/:sessionId/timeouts/implicit_wait", map[string]any{"ms": d.Milliseconds()})
	if err != nil {
		return fmt.Errorf("failed to set implicit wait: %w", err)
	}
	s.Wait.Implicit = d
	return nil
}

// ServerCapabilities returns the capabilities the server actually granted
func (s *Session) ServerCapabilities() (map[string]any, error) {
	resp, err := s.Execute(http.MethodGet, "/session/:sessionId", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get session capabilities: %w", err)
	}
	var caps map[string]any
	if err := resp.DecodeValue(&caps); err != nil {
		return nil, err
	}
	return caps, nil
}

// Quit ends the session on the remote end
func (s *Session) Quit() error {
	if _, err := s.exec.Execute(http.MethodDelete, "/session/:sessionId", nil); err != nil {
		return fmt.Errorf("failed to quit session %s: %w", s.ID, err)
	}
	s.setStatus(SessionClosed)
	s.metrics.RecordSessionClosed(string(s.Provider))
	slog.Info("session quit", "session_id", s.ID)
	return nil
}

// Touch updates the last activity timestamp
func (s *Session) Touch() {
	s.mu.Lock()
	s.activity = time.Now()
	s.mu.Unlock()
}

// LastActivity returns when the session was last used
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activity
}

// IsExpired checks if the session has been inactive too long
func (s *Session) IsExpired(timeout time.Duration) bool {
	return time.Since(s.LastActivity()) > timeout
}

// Status returns the current session status
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(st SessionStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}
