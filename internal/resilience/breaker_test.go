package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("understander unavailable")

func fail(context.Context) error { return errBackend }
func ok(context.Context) error   { return nil }

func TestClosedAllowsCalls(t *testing.T) {
	b := NewBreaker(3, time.Second)
	called := false
	err := b.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, Closed, b.State())
}

func TestOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(3, time.Second)
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(context.Background(), fail), errBackend)
	}
	assert.ErrorIs(t, b.Execute(context.Background(), ok), ErrCircuitOpen)
	assert.Equal(t, Open, b.State())
}

func TestHalfOpenProbe(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	var seen []State
	b.OnStateChange(func(s State) { seen = append(seen, s) })

	_ = b.Execute(context.Background(), fail)
	_ = b.Execute(context.Background(), fail)
	require.ErrorIs(t, b.Execute(context.Background(), ok), ErrCircuitOpen)

	now = now.Add(2 * time.Second)
	require.NoError(t, b.Execute(context.Background(), ok))
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, []State{Open, HalfOpen, Closed}, seen)
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(1, time.Second)
	b.now = func() time.Time { return now }

	_ = b.Execute(context.Background(), fail)
	now = now.Add(2 * time.Second)
	assert.ErrorIs(t, b.Execute(context.Background(), fail), errBackend)
	assert.Equal(t, Open, b.State())
	assert.ErrorIs(t, b.Execute(context.Background(), ok), ErrCircuitOpen)
}

func TestSuccessResetsCount(t *testing.T) {
	b := NewBreaker(2, time.Second)
	_ = b.Execute(context.Background(), fail)
	_ = b.Execute(context.Background(), ok)
	_ = b.Execute(context.Background(), fail)
	assert.Equal(t, Closed, b.State())
}

func TestCallerCancellationNotCounted(t *testing.T) {
	b := NewBreaker(1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	err := b.Execute(ctx, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Closed, b.State())

	assert.ErrorIs(t, b.Execute(ctx, ok), context.Canceled)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half_open", HalfOpen.String())
}
