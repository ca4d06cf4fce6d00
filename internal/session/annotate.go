package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dhruvsoni1802/wiredriver/internal/transport"
)

// ErrAnnotationUnsupported is returned for providers without a job API
var ErrAnnotationUnsupported = errors.New("provider has no job annotation api")

const (
	sauceAPIURL        = "https://saucelabs.com/rest/v1"
	browserStackAPIURL = "https://api.browserstack.com/automate"
	testingBotAPIURL   = "https://api.testingbot.com/v1"
)

// annotationURL returns the REST endpoint describing this session's job
func (s *Session) annotationURL() (string, error) {
	t := s.target
	base := t.APIURL

	var path string
	switch t.Provider {
	case ProviderSauceLabs:
		if base == "" {
			base = sauceAPIURL
		}
		path = fmt.Sprintf("/%s/jobs/%s", url.PathEscape(t.Credentials.Username), url.PathEscape(s.ID))
	case ProviderBrowserStack:
		if base == "" {
			base = browserStackAPIURL
		}
		path = fmt.Sprintf("/sessions/%s.json", url.PathEscape(s.ID))
	case ProviderTestingBot:
		if base == "" {
			base = testingBotAPIURL
		}
		path = fmt.Sprintf("/tests/%s", url.PathEscape(s.ID))
	default:
		return "", fmt.Errorf("%w: %s", ErrAnnotationUnsupported, t.Provider)
	}

	return withCredentials(base+path, t.Credentials)
}

// Annotate sends fields to the provider's job API. The protocol session is
// never affected by the outcome.
func (s *Session) Annotate(fields map[string]any) error {
	endpoint, err := s.annotationURL()
	if err != nil {
		return err
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal annotation: %w", err)
	}

	resp, err := s.exec.Transport().Do(http.MethodPut, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to annotate session %s: %w", s.ID, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("annotation of session %s at %s returned %d: %s",
			s.ID, transport.Redact(endpoint), resp.StatusCode, string(resp.Body))
	}

	slog.Debug("session annotated", "session_id", s.ID, "provider", s.Provider)
	return nil
}

// SetSauceContext sets one job field, e.g. name, build or tags
func (s *Session) SetSauceContext(field string, value any) error {
	if !s.RunningAtSauce() {
		return fmt.Errorf("%w: session is not at sauce labs", ErrAnnotationUnsupported)
	}
	return s.Annotate(map[string]any{field: value})
}

// ReportResult marks the provider job as passed or failed
func (s *Session) ReportResult(passed bool, reason string) error {
	switch s.Provider {
	case ProviderSauceLabs:
		return s.Annotate(map[string]any{"passed": passed})
	case ProviderBrowserStack:
		state := "failed"
		if passed {
			state = "passed"
		}
		return s.Annotate(map[string]any{"status": state, "reason": reason})
	case ProviderTestingBot:
		test := map[string]any{"success": passed}
		if reason != "" {
			test["status_message"] = reason
		}
		return s.Annotate(map[string]any{"test": test})
	}
	return fmt.Errorf("%w: %s", ErrAnnotationUnsupported, s.Provider)
}
