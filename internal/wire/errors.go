package wire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhruvsoni1802/wiredriver/internal/status"
)

// overParallelMarker is the text a hosted provider puts in an UnknownError
// when the account has no free parallel session slot
const overParallelMarker = "Please upgrade to add more parallel sessions"

// Error definitions
var (
	ErrNoSession             = errors.New("command requires a session id but none is set")
	ErrUnknownStatusCode     = status.ErrUnknownStatusCode
	ErrCommandFailed         = errors.New("command failed")
	ErrNoSuchElement         = errors.New("no such element")
	ErrStaleElementReference = errors.New("stale element reference")
	ErrElementNotVisible     = errors.New("element not visible")
	ErrOverParallelLimit     = errors.New("over parallel session limit")
	ErrNoEnvelope            = errors.New("response is not a protocol envelope")
)

// Error is a recognized non-zero wire status
type Error struct {
	Entry   status.Entry
	Method  string
	URL     string // Credentials already redacted
	Payload string
	Message string // value.message when the server sent one
	Body    string // Raw body, used when there is no message
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d %s: %s", e.Method, e.URL, e.Entry.Code, e.Entry.Kind, e.Entry.Description)
	if e.Payload != "" {
		fmt.Fprintf(&b, " payload: %s", e.Payload)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, " message: %s", e.Message)
	} else {
		fmt.Fprintf(&b, " response: %s", e.Body)
	}
	return b.String()
}

// Kind returns the symbolic status kind
func (e *Error) Kind() status.Kind {
	return e.Entry.Kind
}

// OverParallelLimit reports whether this is the provider concurrency cap
func (e *Error) OverParallelLimit() bool {
	return e.Entry.Kind == status.UnknownError && strings.Contains(e.Message+e.Body, overParallelMarker)
}

// Is lets callers branch on the outcomes they recover from with errors.Is
func (e *Error) Is(target error) bool {
	switch target {
	case ErrCommandFailed:
		return true
	case ErrNoSuchElement:
		return e.Entry.Kind == status.NoSuchElement
	case ErrStaleElementReference:
		return e.Entry.Kind == status.StaleElementReference
	case ErrElementNotVisible:
		return e.Entry.Kind == status.ElementNotVisible
	case ErrOverParallelLimit:
		return e.OverParallelLimit()
	}
	return false
}

// KindOf extracts the wire status kind from an error chain
func KindOf(err error) (status.Kind, bool) {
	var wireErr *Error
	if errors.As(err, &wireErr) {
		return wireErr.Kind(), true
	}
	return "", false
}
