package startupx

import (
	"context"
	"fmt"
	"time"

	"github.com/mealforge/recipe-service/pkg/errorx"
	"github.com/mealforge/recipe-service/pkg/logx"
)

// Pinger - a single reachability attempt against a dependency.
// An implementation must not retry internally: the Gate owns the retry loop.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc - adapter to allow plain functions as Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// BackoffFunc computes the wait before retry number attempt (1-based).
type BackoffFunc func(attempt int, base time.Duration) time.Duration

// RetryPolicy - how the Gate retries a failing dependency.
//
// MaxAttempts 0 retries until the context is cancelled. The unbounded mode
// exists for orchestrated deployments where the platform owns the startup
// deadline; standalone deployments should set a bound.
type RetryPolicy struct {
	Interval    time.Duration
	MaxAttempts int
	Backoff     BackoffFunc
}

// DefaultRetryInterval - wait between attempts when none is configured.
const DefaultRetryInterval = 1 * time.Second

// FixedBackoff - constant wait between attempts.
func FixedBackoff(attempt int, base time.Duration) time.Duration {
	return base
}

// ExponentialBackoff - base * 2^(attempt-1), capped at 30s.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	const maxWait = 30 * time.Second

	wait := base * time.Duration(1<<uint(attempt-1))
	if wait > maxWait || wait <= 0 {
		return maxWait
	}

	return wait
}

// Gate - readiness gate blocking startup until a dependency answers a Ping.
//
// The gate performs the first attempt immediately, so a dependency that is
// already reachable never delays startup. Transient failures are retried per
// the policy and are not surfaced to the caller on eventual success.
type Gate struct {
	name   string
	pinger Pinger
	policy RetryPolicy
}

// NewGate - Gate constructor. A zero Interval falls back to DefaultRetryInterval
// and a nil Backoff to FixedBackoff.
func NewGate(name string, pinger Pinger, policy RetryPolicy) *Gate {
	if policy.Interval <= 0 {
		policy.Interval = DefaultRetryInterval
	}

	if policy.Backoff == nil {
		policy.Backoff = FixedBackoff
	}

	return &Gate{name: name, pinger: pinger, policy: policy}
}

// Wait - block until the dependency is reachable, the attempt budget is
// exhausted, or ctx is cancelled. Returns nil only when a Ping succeeded.
func (g *Gate) Wait(ctx context.Context) error {
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return errorx.NewStartupErrorWrapper(err, "readiness wait for '%s' cancelled after %d attempt(s)", g.name, attempt-1)
		}

		lastErr = g.pinger.Ping(ctx)
		if lastErr == nil {
			if attempt > 1 {
				logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Dependency '%s' became ready after %d attempts", g.name, attempt))
			}

			return nil
		}

		if g.policy.MaxAttempts > 0 && attempt >= g.policy.MaxAttempts {
			return errorx.NewStartupErrorWrapper(lastErr, "dependency '%s' not ready after %d attempt(s)", g.name, attempt)
		}

		wait := g.policy.Backoff(attempt, g.policy.Interval)
		logx.GetLogger().LogDebug(ctx, fmt.Sprintf("Dependency '%s' unavailable (attempt %d): %v. Retrying in %s", g.name, attempt, lastErr, wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errorx.NewStartupErrorWrapper(ctx.Err(), "readiness wait for '%s' cancelled after %d attempt(s)", g.name, attempt)
		case <-timer.C:
		}
	}
}
