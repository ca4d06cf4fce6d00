// Package driver wraps a wire session in typed per-endpoint calls.
package driver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/session"
	"github.com/dhruvsoni1802/wiredriver/internal/wait"
	"github.com/dhruvsoni1802/wiredriver/internal/wire"
)

// bodyTextTries is how often the body text is read on Sauce Labs, where the
// body tag is sometimes briefly unavailable
const bodyTextTries = 3

// Driver issues commands on one session. Like the protocol itself it is not
// safe for concurrent use.
type Driver struct {
	session *session.Session
	poller  *wait.Poller
}

// New creates a driver for an open session
func New(s *session.Session) *Driver {
	return &Driver{session: s, poller: wait.NewPoller()}
}

// NewWithPoller creates a driver whose polls read time from p
func NewWithPoller(s *session.Session, p *wait.Poller) *Driver {
	return &Driver{session: s, poller: p}
}

// Session returns the underlying session
func (d *Driver) Session() *session.Session {
	return d.session
}

// pollTimeout is the client-side budget for value-matching polls
func (d *Driver) pollTimeout() time.Duration {
	if d.session.Wait.Poll > 0 {
		return d.session.Wait.Poll
	}
	return wait.DefaultPollTimeout
}

func (d *Driver) execute(method, path string, payload any) (*wire.Response, error) {
	return d.session.Execute(method, path, payload)
}

func (d *Driver) post(path string, payload any) error {
	_, err := d.execute(http.MethodPost, path, payload)
	return err
}

func (d *Driver) del(path string) error {
	_, err := d.execute(http.MethodDelete, path, nil)
	return err
}

// get sends a GET and decodes the value into v
func (d *Driver) get(path string, v any) error {
	resp, err := d.execute(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return resp.DecodeValue(v)
}

func (d *Driver) getString(path string) (string, error) {
	var s string
	err := d.get(path, &s)
	return s, err
}

func (d *Driver) getBool(path string) (bool, error) {
	var b bool
	err := d.get(path, &b)
	return b, err
}

// Quit ends the session
func (d *Driver) Quit() error {
	return d.session.Quit()
}

// Capabilities returns what the server granted for this session
func (d *Driver) Capabilities() (map[string]any, error) {
	return d.session.ServerCapabilities()
}

// Load navigates to url
func (d *Driver) Load(url string) error {
	return d.post("/session/:sessionId/url", map[string]string{"url": url})
}

// URL returns the current page URL
func (d *Driver) URL() (string, error) {
	return d.getString("/session/:sessionId/url")
}

func (d *Driver) Forward() error {
	return d.post("/session/:sessionId/forward", nil)
}

func (d *Driver) Back() error {
	return d.post("/session/:sessionId/back", nil)
}

func (d *Driver) Refresh() error {
	return d.post("/session/:sessionId/refresh", nil)
}

// Title returns the current page title
func (d *Driver) Title() (string, error) {
	return d.getString("/session/:sessionId/title")
}

// Source returns the page source
func (d *Driver) Source() (string, error) {
	return d.getString("/session/:sessionId/source")
}

// Screenshot returns the current page as PNG bytes
func (d *Driver) Screenshot() ([]byte, error) {
	encoded, err := d.getString("/session/:sessionId/screenshot")
	if err != nil {
		return nil, err
	}
	png, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return png, nil
}

// BodyText returns the visible text of the body element
func (d *Driver) BodyText() (string, error) {
	tries := 1
	if d.session.RunningAtSauce() {
		tries = bodyTextTries
	}

	var errs []error
	for i := 1; i <= tries; i++ {
		el, err := d.FindElement("tag name=body")
		if err == nil {
			var text string
			if text, err = el.Text(); err == nil {
				return text, nil
			}
		}
		errs = append(errs, err)
		slog.Debug("body text unavailable", "session_id", d.session.ID, "try", i, "error", err)
	}

	return "", fmt.Errorf("could not get body text after %d tries: %w", tries, errors.Join(errs...))
}
