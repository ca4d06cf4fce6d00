package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

// w3cElementKey is the element reference key used by W3C-leaning servers
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Envelope is the decoded protocol wrapper {status, value, sessionId}
type Envelope struct {
	Status    int
	HasStatus bool
	Value     json.RawMessage
	SessionID string
}

// Response is the raw result of a command plus its envelope when the body had one
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Envelope   *Envelope
}

// decodeEnvelope returns nil for bodies that are not a JSON object
func decodeEnvelope(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || fields == nil {
		return nil, nil
	}

	env := &Envelope{Value: fields["value"]}
	if raw, ok := fields["sessionId"]; ok {
		_ = json.Unmarshal(raw, &env.SessionID)
	}

	raw, ok := fields["status"]
	if !ok {
		// W3C servers send {"value": ...} without a status, nothing to check
		return env, nil
	}

	var code float64
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w null returned from server: %s", ErrUnknownStatusCode, string(trimmed))
	}
	if err := json.Unmarshal(raw, &code); err != nil || code != math.Trunc(code) {
		return nil, fmt.Errorf("%w %s returned from server: %s", ErrUnknownStatusCode, string(raw), string(trimmed))
	}
	env.Status = int(code)
	env.HasStatus = true

	return env, nil
}

// message pulls value.message out of a failure envelope
func (env *Envelope) message() string {
	if env == nil || len(env.Value) == 0 {
		return ""
	}
	var v struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Value, &v); err != nil {
		return ""
	}
	return v.Message
}

// DecodeValue unmarshals the envelope value into v
func (r *Response) DecodeValue(v any) error {
	if r.Envelope == nil {
		return ErrNoEnvelope
	}
	if len(r.Envelope.Value) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Envelope.Value, v); err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	return nil
}

// StringValue returns the value as a string
func (r *Response) StringValue() (string, error) {
	var s string
	if err := r.DecodeValue(&s); err != nil {
		return "", err
	}
	return s, nil
}

// BoolValue returns the value as a bool
func (r *Response) BoolValue() (bool, error) {
	var b bool
	if err := r.DecodeValue(&b); err != nil {
		return false, err
	}
	return b, nil
}

// elementRef accepts both the legacy and the W3C element key
type elementRef map[string]string

func (ref elementRef) id() string {
	if id := ref["ELEMENT"]; id != "" {
		return id
	}
	return ref[w3cElementKey]
}

// ElementID returns the element id from a single element lookup
func (r *Response) ElementID() (string, error) {
	var ref elementRef
	if err := r.DecodeValue(&ref); err != nil {
		return "", err
	}
	id := ref.id()
	if id == "" {
		return "", fmt.Errorf("no element id in response: %s", string(r.Body))
	}
	return id, nil
}

// ElementIDs returns the element ids from a plural element lookup
func (r *Response) ElementIDs() ([]string, error) {
	var refs []elementRef
	if err := r.DecodeValue(&refs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if id := ref.id(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
