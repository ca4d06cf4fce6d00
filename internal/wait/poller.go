package wait

import (
	"reflect"
	"time"
)

const (
	DefaultPollTimeout = 10 * time.Second
)

// Config holds the wait budgets of one session
type Config struct {
	Implicit time.Duration // Server-side implicit wait, sent when the session starts
	Poll     time.Duration // Client-side budget for value-matching polls
}

// DefaultConfig returns the budgets used when nothing is configured
func DefaultConfig() Config {
	return Config{Poll: DefaultPollTimeout}
}

// Poller runs bounded polls against a wall clock
type Poller struct {
	now func() time.Time
}

// NewPoller creates a poller on the real clock
func NewPoller() *Poller {
	return &Poller{now: time.Now}
}

// NewPollerWithClock creates a poller reading time from now
func NewPollerWithClock(now func() time.Time) *Poller {
	return &Poller{now: now}
}

// Until calls op until it returns expected or the deadline passes, and returns
// the last value observed. A timeout is not an error: callers compare the
// result against expected themselves. Errors from op end the poll at once.
func Until[T any](p *Poller, op func() (T, error), expected T, timeout time.Duration) (T, error) {
	return UntilFunc(p, op, func(v T) bool { return reflect.DeepEqual(v, expected) }, timeout)
}

// UntilFunc is Until with a custom match
func UntilFunc[T any](p *Poller, op func() (T, error), match func(T) bool, timeout time.Duration) (T, error) {
	deadline := p.now().Add(timeout)

	for {
		last, err := op()
		if err != nil {
			return last, err
		}
		if match(last) {
			return last, nil
		}
		// No sleep here, every call is already a network round trip
		if !p.now().Before(deadline) {
			return last, nil
		}
	}
}
