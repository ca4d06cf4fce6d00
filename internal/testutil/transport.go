// Package testutil holds scripted wire servers shared by package tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dhruvsoni1802/wiredriver/internal/transport"
)

// Request is one request seen by FakeTransport
type Request struct {
	Method string
	URL    string
	Body   []byte
}

// route holds queued replies, the last one repeats
type route struct {
	method  string
	suffix  string
	replies []reply
}

type reply struct {
	resp *transport.Response
	err  error
}

// FakeTransport answers commands from routes matched on method and URL suffix
type FakeTransport struct {
	mu       sync.Mutex
	routes   []*route
	requests []Request
}

// NewFakeTransport creates an empty fake
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// On queues responses for method + URL suffix. Once the queue is down to one
// response it is repeated for every further call.
func (f *FakeTransport) On(method, suffix string, responses ...*transport.Response) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := f.find(method, suffix)
	if r == nil {
		r = &route{method: method, suffix: suffix}
		f.routes = append(f.routes, r)
	}
	for _, resp := range responses {
		r.replies = append(r.replies, reply{resp: resp})
	}
	return f
}

// Fail makes method + suffix fail at the transport level
func (f *FakeTransport) Fail(method, suffix string, err error) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := f.find(method, suffix)
	if r == nil {
		r = &route{method: method, suffix: suffix}
		f.routes = append(f.routes, r)
	}
	r.replies = append(r.replies, reply{err: err})
	return f
}

func (f *FakeTransport) find(method, suffix string) *route {
	for _, r := range f.routes {
		if r.method == method && r.suffix == suffix {
			return r
		}
	}
	return nil
}

// Do implements transport.Transport. The longest matching suffix wins.
func (f *FakeTransport) Do(method string, rawURL string, body []byte) (*transport.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, Request{Method: method, URL: rawURL, Body: body})

	var best *route
	for _, r := range f.routes {
		if r.method == method && strings.HasSuffix(rawURL, r.suffix) {
			if best == nil || len(r.suffix) > len(best.suffix) {
				best = r
			}
		}
	}
	if best == nil || len(best.replies) == 0 {
		return nil, fmt.Errorf("%w: no route for %s %s", transport.ErrTransport, method, rawURL)
	}

	next := best.replies[0]
	if len(best.replies) > 1 {
		best.replies = best.replies[1:]
	}
	return next.resp, next.err
}

// Requests returns a copy of every request seen so far
func (f *FakeTransport) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Count returns how many requests matched method + suffix
func (f *FakeTransport) Count(method, suffix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, req := range f.requests {
		if req.Method == method && strings.HasSuffix(req.URL, suffix) {
			n++
		}
	}
	return n
}

// OK builds a status 0 envelope around value
func OK(value any) *transport.Response {
	return Envelope(0, value)
}

// Envelope builds a protocol envelope with the given status and value
func Envelope(code int, value any) *transport.Response {
	data, err := json.Marshal(map[string]any{"status": code, "value": value})
	if err != nil {
		panic(err)
	}
	return Raw(http.StatusOK, nil, string(data))
}

// Raw builds a response with an arbitrary body and headers
func Raw(statusCode int, header http.Header, body string) *transport.Response {
	if header == nil {
		header = http.Header{}
	}
	return &transport.Response{StatusCode: statusCode, Header: header, Body: []byte(body)}
}

// Element builds a single element lookup reply
func Element(id string) *transport.Response {
	return OK(map[string]string{"ELEMENT": id})
}
