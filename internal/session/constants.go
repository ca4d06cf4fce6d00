package session

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxTotalSessions is the limit of sessions one manager keeps open
	MaxTotalSessions = 100

	// vendorSessionIDKey is where one driver puts the id in a non-conformant response
	vendorSessionIDKey = "webdriver.remote.sessionid"

	DefaultRetryBackoff    = 10 * time.Second
	DefaultRetryAttempts   = 30
	DefaultRetryMaxElapsed = 10 * time.Minute
)

// Error definitions
var (
	ErrSessionCreationFailed = errors.New("session creation failed")
	ErrRetryBudgetExhausted  = errors.New("session creation retry budget exhausted")
	ErrSessionLimitReached   = fmt.Errorf("session limit reached")
	ErrSessionNotFound       = fmt.Errorf("session not found")
	ErrUnknownProvider       = errors.New("unknown provider")
	ErrMissingCredentials    = errors.New("provider credentials are required")
)
