package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

var errDelayNotAllowed = errors.New("delay not allowed")

// NewRateLimit creates a new RateLimit based of time interval and how many
// actions allowed and breaks it down to an actions-per-second basis -- Burst
// rate is kept as one as this is not supported for out-bound requests.
func NewRateLimit(interval time.Duration, actions int) *rate.Limiter {
	if actions <= 0 || interval <= 0 {
		// Returns an un-restricted rate limiter
		return rate.NewLimiter(rate.Inf, 1)
	}

	i := 1 / interval.Seconds()
	rps := i * float64(actions)
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// WithLimiter sets the rate limiter used before every request
func WithLimiter(l *rate.Limiter) RequesterOption {
	return func(r *Requester) {
		r.limiter = l
	}
}

// InitiateRateLimit sleeps until the limiter allows the next request. A
// context marked with WithDelayNotAllowed fails instead of sleeping.
func (r *Requester) InitiateRateLimit(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}

	reservation := r.limiter.Reserve()
	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}

	if hasDelayNotAllowed(ctx) {
		reservation.Cancel()
		return fmt.Errorf("%s %w: would wait %s", r.Name, errDelayNotAllowed, delay)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
