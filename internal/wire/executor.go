package wire

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/status"
	"github.com/dhruvsoni1802/wiredriver/internal/transport"
)

// SessionPlaceholder is substituted with the session id before a command is sent
const SessionPlaceholder = ":sessionId"

// Recorder observes every completed command. kind is Success for passing
// commands and empty for transport or decode failures.
type Recorder interface {
	ObserveCommand(method string, kind status.Kind, elapsed time.Duration)
}

// Executor sends commands to one server, optionally bound to a session
type Executor struct {
	serverURL string
	sessionID string
	transport transport.Transport
	recorder  Recorder
}

// NewExecutor creates an executor with no session bound
func NewExecutor(serverURL string, t transport.Transport) *Executor {
	return &Executor{
		serverURL: strings.TrimRight(serverURL, "/"),
		transport: t,
	}
}

// WithSession returns a copy bound to sessionID. The original is left untouched.
func (e *Executor) WithSession(sessionID string) *Executor {
	bound := *e
	bound.sessionID = sessionID
	return &bound
}

// WithRecorder returns a copy that reports commands to r
func (e *Executor) WithRecorder(r Recorder) *Executor {
	bound := *e
	bound.recorder = r
	return &bound
}

// SessionID returns the bound session id, empty before session creation
func (e *Executor) SessionID() string {
	return e.sessionID
}

// ServerURL returns the base URL commands are sent to
func (e *Executor) ServerURL() string {
	return e.serverURL
}

// Transport returns the underlying transport
func (e *Executor) Transport() transport.Transport {
	return e.transport
}

// Execute sends one command and checks its status
func (e *Executor) Execute(method string, pathTemplate string, payload any) (*Response, error) {
	start := time.Now()

	if strings.Contains(pathTemplate, SessionPlaceholder) {
		if e.sessionID == "" {
			return nil, fmt.Errorf("%w: %s %s", ErrNoSession, method, pathTemplate)
		}
		pathTemplate = strings.ReplaceAll(pathTemplate, SessionPlaceholder, e.sessionID)
	}
	fullURL := e.serverURL + pathTemplate

	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload for %s %s: %w", method, pathTemplate, err)
		}
		body = data
	}

	slog.Debug("sending command", "method", method, "url", transport.Redact(fullURL), "session_id", e.sessionID)

	raw, err := e.transport.Do(method, fullURL, body)
	if err != nil {
		e.observe(method, "", start)
		return nil, err
	}

	resp := &Response{
		StatusCode: raw.StatusCode,
		Header:     raw.Header,
		Body:       raw.Body,
	}
	if len(raw.Body) == 0 {
		e.observe(method, status.Success, start)
		return resp, nil
	}

	env, err := decodeEnvelope(raw.Body)
	if err != nil {
		e.observe(method, "", start)
		return nil, err
	}
	resp.Envelope = env

	// Screenshots, raw pages and W3C-style bodies carry no status to check
	if env == nil || !env.HasStatus {
		e.observe(method, status.Success, start)
		return resp, nil
	}

	entry, ok := status.Lookup(env.Status)
	if !ok {
		e.observe(method, "", start)
		return nil, fmt.Errorf("%w %d returned from server: %s", ErrUnknownStatusCode, env.Status, string(raw.Body))
	}

	e.observe(method, entry.Kind, start)
	if entry.IsSuccess() {
		return resp, nil
	}

	wireErr := &Error{
		Entry:   entry,
		Method:  method,
		URL:     transport.Redact(fullURL),
		Payload: string(body),
		Message: env.message(),
	}
	if wireErr.Message == "" {
		wireErr.Body = string(raw.Body)
	}

	slog.Debug("command failed", "method", method, "url", wireErr.URL, "kind", entry.Kind, "code", entry.Code)
	return resp, wireErr
}

func (e *Executor) observe(method string, kind status.Kind, start time.Time) {
	if e.recorder != nil {
		e.recorder.ObserveCommand(method, kind, time.Since(start))
	}
}
