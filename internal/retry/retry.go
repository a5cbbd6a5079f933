package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

// Policy configures bounded-attempt exponential backoff. The zero value is
// usable: Do applies the defaults below.
type Policy struct {
	// MaxAttempts includes the initial attempt. Minimum 1, default 3.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt. Default 1s.
	InitialDelay time.Duration
	// MaxDelay caps the computed backoff. Default 10s.
	MaxDelay time.Duration
	// Factor multiplies the delay each attempt. Default 2.
	Factor float64
	// RetryIf decides whether an error is worth another attempt.
	// Default: Transient.
	RetryIf func(error) bool
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Second
	}
	if p.Factor <= 0 {
		p.Factor = 2
	}
	if p.RetryIf == nil {
		p.RetryIf = Transient
	}
	return p
}

// Delay returns the deterministic backoff for a zero-based attempt index:
// min(InitialDelay * Factor^attempt, MaxDelay). No jitter.
func (p Policy) Delay(attempt int) time.Duration {
	p = p.withDefaults()
	d := time.Duration(float64(p.InitialDelay) * math.Pow(p.Factor, float64(attempt)))
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	return d
}

// StatusError carries an HTTP status code so the retry predicate can
// distinguish server-side failures from client errors.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// ErrTimeout is returned by WithTimeout when the timer wins the race.
var ErrTimeout = errors.New("operation timed out")

// Transient reports whether an error belongs to the retryable class:
// HTTP 5xx and 429 responses, timeouts, and connection-reset/DNS-failure
// network errors. Client errors (4xx) and everything else are final.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == 429
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// Do executes op with bounded-attempt exponential backoff. On failure it
// retries while attempts remain and the policy's predicate accepts the
// error; otherwise the last error propagates unchanged. Cancelling ctx
// during a backoff wait returns ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	var zero T
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if attempt == p.MaxAttempts-1 || !p.RetryIf(err) {
			return zero, err
		}
		delay := p.Delay(attempt)
		log.Warn().Err(err).Int("attempt", attempt+1).Int("max", p.MaxAttempts).Dur("delay", delay).Msg("retrying")
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return zero, lastErr
}

// WithTimeout races op against a wall-clock timer. When the timer wins the
// result is ErrTimeout, which Transient accepts, so a timed-out operation
// wrapped in Do is retried like any other transient failure. The op receives
// a context cancelled at the deadline; ops that ignore it keep running in
// the background, their result discarded.
func WithTimeout[T any](ctx context.Context, d time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	opCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := op(opCtx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w after %s", ErrTimeout, d)
		}
		return r.v, r.err
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w after %s", ErrTimeout, d)
	}
}
