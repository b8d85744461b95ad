// Package understand chains a remote understander in front of the local
// keyword backend.
package understand

// #region imports
import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/rate-advisor/internal/resilience"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region interface

// Understander turns free text into cues, slots and restriction verdicts.
type Understander interface {
	ClassifyFollowUp(ctx context.Context, text, priorSummary string) (shipping.FollowUpSignal, error)
	ExtractParameters(ctx context.Context, text string) (shipping.Extraction, error)
	DetectRestrictedGoods(ctx context.Context, text string) (shipping.Restriction, error)
}

// #endregion

// #region fallback

// Fallback calls primary through a breaker and answers from local when the
// primary is down or the breaker is open. Context errors are returned as
// is so a turn deadline is never hidden behind a local answer.
type Fallback struct {
	primary   Understander
	local     Understander
	breaker   *resilience.Breaker
	logger    zerolog.Logger
	onDegrade func(op string)
	timeout   time.Duration
}

// Option configures a Fallback.
type Option func(*Fallback)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Fallback) { f.logger = l.With().Str("component", "understand").Logger() }
}

// OnDegrade registers a hook called each time local answers for primary.
func OnDegrade(fn func(op string)) Option {
	return func(f *Fallback) { f.onDegrade = fn }
}

// WithCallTimeout bounds each primary call. A primary that runs out of its
// own budget degrades to local; the caller's deadline still wins.
func WithCallTimeout(d time.Duration) Option {
	return func(f *Fallback) { f.timeout = d }
}

// NewFallback builds the chain. A nil primary means local only.
func NewFallback(primary, local Understander, breaker *resilience.Breaker, opts ...Option) *Fallback {
	f := &Fallback{primary: primary, local: local, breaker: breaker, logger: zerolog.Nop()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// #endregion

// #region ops

func (f *Fallback) ClassifyFollowUp(ctx context.Context, text, priorSummary string) (shipping.FollowUpSignal, error) {
	return run(ctx, f, "classify_follow_up", func(ctx context.Context, u Understander) (shipping.FollowUpSignal, error) {
		return u.ClassifyFollowUp(ctx, text, priorSummary)
	})
}

func (f *Fallback) ExtractParameters(ctx context.Context, text string) (shipping.Extraction, error) {
	return run(ctx, f, "extract_parameters", func(ctx context.Context, u Understander) (shipping.Extraction, error) {
		return u.ExtractParameters(ctx, text)
	})
}

func (f *Fallback) DetectRestrictedGoods(ctx context.Context, text string) (shipping.Restriction, error) {
	return run(ctx, f, "detect_restricted_goods", func(ctx context.Context, u Understander) (shipping.Restriction, error) {
		return u.DetectRestrictedGoods(ctx, text)
	})
}

func run[T any](ctx context.Context, f *Fallback, op string, call func(context.Context, Understander) (T, error)) (T, error) {
	if f.primary == nil {
		return call(ctx, f.local)
	}

	var (
		out      T
		timedOut bool
	)
	err := f.breaker.Execute(ctx, func(ctx context.Context) error {
		if f.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.timeout)
			defer cancel()
		}
		var err error
		out, err = call(ctx, f.primary)
		timedOut = f.timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded)
		return err
	})
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil || (!timedOut && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled))) {
		var zero T
		return zero, err
	}

	f.logger.Warn().Err(err).Str("op", op).Msg("remote understander failed, using keyword backend")
	if f.onDegrade != nil {
		f.onDegrade(op)
	}
	return call(ctx, f.local)
}

// #endregion
