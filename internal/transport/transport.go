package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// ErrTransport wraps every failure to complete an HTTP exchange. Callers treat it as fatal.
var ErrTransport = errors.New("transport failure")

// Response is the raw result of one HTTP exchange
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs exactly one request and returns headers and body
type Transport interface {
	Do(method string, rawURL string, body []byte) (*Response, error)
}

// Options configures HTTPTransport
type Options struct {
	Timeout           time.Duration // Per-request timeout, zero means none
	RequestsPerSecond float64       // Zero disables pacing
	Burst             int
}

// HTTPTransport sends wire commands over net/http
type HTTPTransport struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPTransport creates a transport. Redirects are not followed so the
// Location header of a session creation response stays visible.
func NewHTTPTransport(opts Options) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return t
}

// Do sends the request and reads the whole body
func (t *HTTPTransport) Do(method string, rawURL string, body []byte) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(context.Background()); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", ErrTransport, err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", ErrTransport, Redact(rawURL), err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	}

	// Hosted providers take credentials from the URL userinfo
	if user := req.URL.User; user != nil {
		password, _ := user.Password()
		req.SetBasicAuth(user.Username(), password)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, Redact(rawURL), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", ErrTransport, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// Redact hides the password part of a URL so it can be logged
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Redacted()
}
