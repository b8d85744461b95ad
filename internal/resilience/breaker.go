// Package resilience guards calls to the remote understander.
package resilience

// #region imports
import (
	"context"
	"errors"
	"sync"
	"time"
)

// #endregion

// #region state

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker position.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// #endregion

// #region breaker

// Breaker opens after maxFailures consecutive failures and stays open for
// cooldown, then lets a single probe through. Cancellation of the caller's
// own context is not counted as a backend failure.
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	maxFailures int
	cooldown    time.Duration
	openedAt    time.Time
	probing     bool
	onChange    func(State)
	now         func() time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(maxFailures int, cooldown time.Duration) *Breaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Breaker{maxFailures: maxFailures, cooldown: cooldown, now: time.Now}
}

// OnStateChange registers a hook called (under no lock) after each transition.
func (b *Breaker) OnStateChange(fn func(State)) { b.onChange = fn }

// State returns the current position without advancing it.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Execute runs fn unless the circuit is open.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.allow() {
		return ErrCircuitOpen
	}

	err := fn(ctx)

	b.mu.Lock()
	before := b.state
	switch {
	case err == nil:
		b.failures = 0
		b.state = Closed
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		// caller gave up; leave the count alone
	default:
		b.failures++
		if b.state == HalfOpen || b.failures >= b.maxFailures {
			b.state = Open
			b.openedAt = b.now()
		}
	}
	b.probing = false
	after := b.state
	b.mu.Unlock()

	b.notify(before, after)
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	before := b.state
	ok := false
	switch b.state {
	case Closed:
		ok = true
	case Open:
		if b.now().Sub(b.openedAt) >= b.cooldown {
			b.state = HalfOpen
			b.probing = true
			ok = true
		}
	case HalfOpen:
		if !b.probing {
			b.probing = true
			ok = true
		}
	}
	after := b.state
	b.mu.Unlock()

	b.notify(before, after)
	return ok
}

func (b *Breaker) notify(before, after State) {
	if before != after && b.onChange != nil {
		b.onChange(after)
	}
}

// #endregion
