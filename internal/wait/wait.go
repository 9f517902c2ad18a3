// Package wait polls for a condition with a bounded timeout.
package wait

import (
	"context"
	"errors"
	"time"

	"github.com/spiffcs/ghfeed/internal/constants"
)

// ErrTimeout is returned when the condition did not hold before the
// timeout elapsed.
var ErrTimeout = errors.New("timed out waiting for condition")

// Condition reports whether the awaited state has been reached.
type Condition func(ctx context.Context) (bool, error)

type options struct {
	interval time.Duration
	timeout  time.Duration
}

// Option configures Until.
type Option func(*options)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithTimeout bounds the total wait. Zero disables the bound, leaving only
// the context.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Until checks cond immediately and then on every tick until it returns
// true or an error, ctx is done, or the timeout elapses.
func Until(ctx context.Context, cond Condition, opts ...Option) error {
	o := options{
		interval: constants.ReadinessInterval,
		timeout:  constants.ReadinessTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var deadline <-chan time.Time
	if o.timeout > 0 {
		timer := time.NewTimer(o.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return ErrTimeout
		case <-ticker.C:
		}
	}
}
