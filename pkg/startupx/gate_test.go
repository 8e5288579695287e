package startupx_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mealforge/recipe-service/pkg/startupx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPinger struct {
	calls    int
	failures int
	err      error
}

func (p *countingPinger) Ping(ctx context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return p.err
	}

	return nil
}

func TestGateReadyOnFirstAttempt(t *testing.T) {
	pinger := &countingPinger{}
	gate := startupx.NewGate("db", pinger, startupx.RetryPolicy{Interval: time.Hour})

	start := time.Now()
	err := gate.Wait(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, pinger.calls)
	// A reachable dependency must not delay startup
	assert.Less(t, time.Since(start), time.Second)
}

func TestGateRecoversAfterTransientFailures(t *testing.T) {
	pinger := &countingPinger{failures: 3, err: errors.New("connection refused")}
	gate := startupx.NewGate("db", pinger, startupx.RetryPolicy{Interval: 5 * time.Millisecond})

	err := gate.Wait(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, pinger.calls)
}

func TestGateExhaustsBoundedAttempts(t *testing.T) {
	cause := errors.New("connection refused")
	pinger := &countingPinger{failures: 100, err: cause}
	gate := startupx.NewGate("db", pinger, startupx.RetryPolicy{Interval: time.Millisecond, MaxAttempts: 3})

	err := gate.Wait(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, pinger.calls)
}

func TestGateWaitIsCancellable(t *testing.T) {
	pinger := &countingPinger{failures: 100, err: errors.New("connection refused")}
	gate := startupx.NewGate("db", pinger, startupx.RetryPolicy{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- gate.Wait(ctx)
	}()

	// let the first attempt fail and the gate park on its retry timer
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("gate did not abort on context cancellation")
	}
}

func TestGateCancelledBeforeFirstAttempt(t *testing.T) {
	pinger := &countingPinger{}
	gate := startupx.NewGate("db", pinger, startupx.RetryPolicy{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := gate.Wait(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, pinger.calls)
}

func TestGatePingerFuncAdapter(t *testing.T) {
	called := false
	gate := startupx.NewGate("db", startupx.PingerFunc(func(ctx context.Context) error {
		called = true
		return nil
	}), startupx.RetryPolicy{})

	require.NoError(t, gate.Wait(context.Background()))
	assert.True(t, called)
}

func TestExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond

	assert.Equal(t, 100*time.Millisecond, startupx.ExponentialBackoff(1, base))
	assert.Equal(t, 200*time.Millisecond, startupx.ExponentialBackoff(2, base))
	assert.Equal(t, 400*time.Millisecond, startupx.ExponentialBackoff(3, base))
	// large attempt counts clamp instead of overflowing
	assert.Equal(t, 30*time.Second, startupx.ExponentialBackoff(40, base))
}
