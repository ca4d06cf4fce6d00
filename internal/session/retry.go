package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/wire"
)

// RetryPolicy bounds the OverParallelLimit retry loop
type RetryPolicy struct {
	Backoff     time.Duration
	MaxAttempts int
	MaxElapsed  time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Backoff:     DefaultRetryBackoff,
		MaxAttempts: DefaultRetryAttempts,
		MaxElapsed:  DefaultRetryMaxElapsed,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.Backoff <= 0 {
		p.Backoff = def.Backoff
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.MaxElapsed <= 0 {
		p.MaxElapsed = def.MaxElapsed
	}
	return p
}

type retryState struct {
	attempt   int
	startedAt time.Time
}

// exhausted reports whether another attempt would break either bound
func (st retryState) exhausted(p RetryPolicy, now time.Time) bool {
	if st.attempt >= p.MaxAttempts {
		return true
	}
	return now.Sub(st.startedAt)+p.Backoff > p.MaxElapsed
}

// createWithRetry calls Create until it stops failing with OverParallelLimit
func createWithRetry(serverURL string, caps Capabilities, opts Options) (*Session, error) {
	policy := opts.Retry.withDefaults()
	now := opts.clock()
	sleep := opts.sleeper()

	st := retryState{startedAt: now()}
	for {
		st.attempt++

		s, err := Create(serverURL, caps, opts)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, wire.ErrOverParallelLimit) {
			return nil, err
		}

		if st.exhausted(policy, now()) {
			return nil, fmt.Errorf("%w after %d attempts in %s: %w",
				ErrRetryBudgetExhausted, st.attempt, now().Sub(st.startedAt).Round(time.Millisecond), err)
		}

		opts.Metrics.RecordRetry(string(opts.target.Provider))
		slog.Warn("over parallel session limit, retrying",
			"provider", opts.target.Provider,
			"attempt", st.attempt,
			"backoff", policy.Backoff)
		sleep(policy.Backoff)
	}
}
