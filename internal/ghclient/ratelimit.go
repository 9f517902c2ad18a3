package ghclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/spiffcs/ghfeed/internal/constants"
	"github.com/spiffcs/ghfeed/internal/log"
)

// ErrRateLimited is returned when the GitHub API rate limit has been exceeded.
var ErrRateLimited = errors.New("GitHub API rate limit exceeded")

// RateLimitError carries the time the quota frees up again. It matches
// ErrRateLimited with errors.Is.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return ErrRateLimited.Error()
	}
	return fmt.Sprintf("%s (resets at %s)", ErrRateLimited, e.ResetAt.Format(time.Kitchen))
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// RateLimitState is the quota last reported by the API for one client.
// Requests are refused locally while it says the quota is spent, since
// the feed never retries on its own.
type RateLimitState struct {
	mu        sync.RWMutex
	limited   bool
	resetAt   time.Time
	remaining int
	limit     int
	now       func() time.Time
}

func newRateLimitState() *RateLimitState {
	return &RateLimitState{remaining: -1, limit: -1, now: time.Now}
}

// IsLimited reports whether requests are refused until the reset time.
func (s *RateLimitState) IsLimited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limitedLocked()
}

func (s *RateLimitState) limitedLocked() bool {
	return s.limited && s.now().Before(s.resetAt)
}

// SetLimited marks the quota as spent until resetAt.
func (s *RateLimitState) SetLimited(limited bool, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limited = limited
	s.resetAt = resetAt
}

// Update records the quota headers of a response.
func (s *RateLimitState) Update(remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = remaining
	s.limit = limit
	s.resetAt = resetAt
	s.limited = remaining == 0
}

// Status returns the last observed quota. remaining and limit are -1
// until a response carried the headers.
func (s *RateLimitState) Status() (remaining, limit int, resetAt time.Time, limited bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remaining, s.limit, s.resetAt, s.limitedLocked()
}

func (s *RateLimitState) refusal() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.limitedLocked() {
		return nil
	}
	return &RateLimitError{ResetAt: s.resetAt}
}

// rateLimitTransport records quota headers and turns primary (403 with
// no remaining quota) and secondary (429, or Retry-After) limits into
// RateLimitError.
type rateLimitTransport struct {
	base  http.RoundTripper
	state *RateLimitState
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.state.refusal(); err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	q := parseQuota(resp.Header, t.state.now())
	if q.remaining >= 0 && q.limit > 0 {
		t.state.Update(q.remaining, q.limit, q.resetAt)
		if q.remaining > 0 && q.remaining <= constants.RateLimitLowWatermark {
			log.Debug("rate limit low", "remaining", q.remaining, "resets_at", q.resetAt.Format(time.RFC3339))
		}
	}

	if !isRateLimited(resp.StatusCode, q) {
		return resp, nil
	}

	resetAt := q.resetAt
	if !q.retryAt.IsZero() {
		resetAt = q.retryAt
	}
	t.state.SetLimited(true, resetAt)
	_ = resp.Body.Close()
	log.Debug("rate limited", "status", resp.StatusCode, "until", resetAt.Format(time.RFC3339))
	return nil, &RateLimitError{ResetAt: resetAt}
}

func isRateLimited(status int, q quota) bool {
	switch status {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return q.remaining == 0 || !q.retryAt.IsZero()
	default:
		return false
	}
}

type quota struct {
	remaining int
	limit     int
	resetAt   time.Time
	retryAt   time.Time
}

// parseQuota reads the X-RateLimit-* and Retry-After headers. Absent or
// malformed counters are -1 and absent times are zero.
func parseQuota(h http.Header, now time.Time) quota {
	q := quota{
		remaining: headerInt(h, "X-RateLimit-Remaining"),
		limit:     headerInt(h, "X-RateLimit-Limit"),
	}
	if reset := headerInt(h, "X-RateLimit-Reset"); reset >= 0 {
		q.resetAt = time.Unix(int64(reset), 0)
	}
	if secs := headerInt(h, "Retry-After"); secs >= 0 {
		q.retryAt = now.Add(time.Duration(secs) * time.Second)
	}
	return q
}

func headerInt(h http.Header, key string) int {
	v := h.Get(key)
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
