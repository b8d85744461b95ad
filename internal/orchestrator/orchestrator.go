package orchestrator

// #region imports
import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/rate-advisor/internal/lexicon"
	"github.com/danielpatrickdp/rate-advisor/internal/recommend"
	"github.com/danielpatrickdp/rate-advisor/internal/session"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region orchestrator-struct

// Orchestrator runs one turn at a time per session through the
// classify, resolve, recommend, reflect and escalate steps.
type Orchestrator struct {
	screener   Screener
	classifier *Classifier
	resolver   *Resolver
	rates      RateQueryService
	engine     *recommend.Engine
	reflector  *Reflector
	sessions   *session.Store
	cfg        Config
	logger     zerolog.Logger
	observers  []Observer
	hints      func(item string) (float64, bool)
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l.With().Str("component", "orchestrator").Logger() }
}

// WithObserver adds a turn observer (metrics, turn log).
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, obs) }
}

// WithScreener replaces the input screen. nil disables screening.
func WithScreener(s Screener) Option {
	return func(o *Orchestrator) { o.screener = s }
}

// WithClock sets the clock used for turn timestamps and timings.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// #endregion

// #region constructor

// New wires an orchestrator.
func New(u TextUnderstander, zones ZoneResolver, rates RateQueryService, sessions *session.Store, cfg Config, opts ...Option) *Orchestrator {
	if cfg.Mode == "" {
		cfg.Mode = ModeInteractive
	}
	engine := recommend.NewEngine(cfg.Policy)
	o := &Orchestrator{
		screener:   lexicon.NewGuard(),
		classifier: NewClassifier(u),
		resolver:   NewResolver(zones),
		rates:      rates,
		engine:     engine,
		reflector:  NewReflector(engine),
		sessions:   sessions,
		cfg:        cfg,
		logger:     zerolog.Nop(),
		hints:      lexicon.ItemWeight,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sessions exposes the session store.
func (o *Orchestrator) Sessions() *session.Store { return o.sessions }

// Config returns the active configuration.
func (o *Orchestrator) Config() Config { return o.cfg }

// #endregion

// #region process-turn

// ProcessTurn handles one user utterance. The whole turn runs under the
// session lock; any failure rolls the session back to its pre-turn state
// and is reported as a retryable Kind, never as an error.
func (o *Orchestrator) ProcessTurn(ctx context.Context, sessionID, text string) TurnResult {
	start := o.now()
	if o.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.TurnTimeout)
		defer cancel()
	}

	var res TurnResult
	var t *turn
	_, err := o.sessions.Update(ctx, sessionID, func(st *session.State) error {
		t = &turn{o: o, m: newMachine()}
		var err error
		res, err = o.run(ctx, st, text, t)
		return err
	})

	if err != nil {
		kind := kindFor(ctx, err)
		res = TurnResult{
			Kind:      kind,
			ReplyText: failureReply(kind),
			Retryable: true,
			Seq:       res.Seq,
		}
		if t != nil {
			res.Path = t.m.path
			res.Timing = t.timing
		}
		ev := o.logger.Warn()
		if kind == KindSessionFailed {
			ev = o.logger.Error()
		}
		ev.Err(err).Str("session", sessionID).Str("kind", string(kind)).Msg("turn rolled back")
	}

	res.SessionID = sessionID
	res.Total = o.now().Sub(start)
	o.logger.Debug().
		Str("session", sessionID).
		Str("kind", string(res.Kind)).
		Interface("path", res.Path).
		Dur("total", res.Total).
		Msg("turn")

	for _, obs := range o.observers {
		obs.ObserveTurn(context.WithoutCancel(ctx), text, res)
	}
	return res
}

// kindFor maps a rolled-back turn's error onto the taxonomy.
func kindFor(ctx context.Context, err error) Kind {
	switch {
	case errors.Is(err, session.ErrSessionCorrupted):
		return KindSessionFailed
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return KindTimeout
	}
	return KindUnavailable
}

// #endregion

// #region turn

// turn carries the per-turn machine and step timings.
type turn struct {
	o      *Orchestrator
	m      *machine
	timing []StepTiming
}

func timed[T any](t *turn, step string, fn func() (T, error)) (T, error) {
	start := t.o.now()
	v, err := fn()
	t.timing = append(t.timing, StepTiming{Step: step, Duration: t.o.now().Sub(start)})
	return v, err
}

func (t *turn) result(kind Kind, reply string) TurnResult {
	return TurnResult{Kind: kind, ReplyText: reply, Path: t.m.path, Timing: t.timing}
}

// #endregion

// #region run

func (o *Orchestrator) run(ctx context.Context, st *session.State, text string, t *turn) (TurnResult, error) {
	seq := st.NextSeq()
	prior := st.Clone()
	st.History = append(st.History, shipping.Turn{Seq: seq, Text: text, At: o.now().UTC()})

	if err := t.m.fire(EventBegin); err != nil {
		return TurnResult{Seq: seq}, err
	}
	if o.screener != nil {
		if verdict := o.screener.Screen(text); verdict != shipping.ScreenClear {
			res, err := o.screened(verdict, t)
			res.Seq = seq
			return res, err
		}
	}
	cl, err := timed(t, "classify", func() (Classification, error) {
		return o.classifier.Classify(ctx, text, prior)
	})
	if err != nil {
		return TurnResult{Seq: seq}, err
	}

	var res TurnResult
	switch cl.Intent {
	case IntentInsufficientInfo:
		res, err = o.insufficient(st, cl, t)
	case IntentFollowUp:
		res, err = o.followUp(st, cl, t)
	default:
		res, err = o.newRequest(ctx, st, cl, t)
	}
	if err == nil {
		// A reply produced after the deadline is stale.
		err = ctx.Err()
	}
	res.Seq = seq
	return res, err
}

// screened answers a turn the input screen stopped. The session keeps
// everything it had; only the turn itself is recorded.
func (o *Orchestrator) screened(verdict shipping.Screen, t *turn) (TurnResult, error) {
	if err := t.m.fire(EventScreened); err != nil {
		return TurnResult{}, err
	}
	if err := t.m.fire(EventDone); err != nil {
		return TurnResult{}, err
	}
	o.logger.Info().Str("screen", string(verdict)).Msg("turn screened")
	if verdict == shipping.ScreenInjection {
		return t.result(KindBlocked, blockedReply()), nil
	}
	return t.result(KindOffTopic, offTopicReply()), nil
}

// #endregion

// #region clarify

func (o *Orchestrator) insufficient(st *session.State, cl Classification, t *turn) (TurnResult, error) {
	if err := t.m.fire(EventInsufficientInfo); err != nil {
		return TurnResult{}, err
	}
	missing := []string{FieldDestination, FieldWeight}
	reply := o.clarification(missing, cl.Extraction.ItemHint)
	o.holdPending(st, cl.Extraction, reply)
	if err := t.m.fire(EventDone); err != nil {
		return TurnResult{}, err
	}
	res := t.result(KindInsufficientInfo, reply)
	res.Missing = missing
	return res, nil
}

func (o *Orchestrator) clarification(missing []string, item string) string {
	if item != "" && o.hints != nil && contains(missing, FieldWeight) {
		if w, ok := o.hints(item); ok {
			return clarifyReply(missing, item, w, true)
		}
	}
	return clarifyReply(missing, "", 0, false)
}

// holdPending remembers a partial request so the next turn can complete it.
func (o *Orchestrator) holdPending(st *session.State, ex shipping.Extraction, question string) {
	st.PendingClarification = question
	if ex == (shipping.Extraction{}) {
		st.Pending = nil
		return
	}
	st.Pending = &ex
}

func ptrTo[T any](v T) *T { return &v }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// #endregion

// #region new-request

func (o *Orchestrator) newRequest(ctx context.Context, st *session.State, cl Classification, t *turn) (TurnResult, error) {
	if err := t.m.fire(EventNewRequest); err != nil {
		return TurnResult{}, err
	}
	r, err := timed(t, "resolve", func() (Resolved, error) {
		return o.resolver.Resolve(ctx, cl)
	})
	if err != nil {
		return TurnResult{}, err
	}

	if r.Restricted != nil {
		if err := t.m.fire(EventShortCircuit); err != nil {
			return TurnResult{}, err
		}
		st.PendingClarification = ""
		st.Pending = nil
		if err := t.m.fire(EventDone); err != nil {
			return TurnResult{}, err
		}
		res := t.result(KindRestrictedGoods, restrictedReply(*r.Restricted))
		res.Restriction = r.Restricted
		return res, nil
	}

	if len(r.Missing) > 0 {
		return o.missingFields(st, cl, r, t)
	}

	params := r.Params
	rows, err := timed(t, "rates", func() ([]shipping.RateRow, error) {
		return o.rates.QueryRates(ctx, params.Zone(), *params.WeightLb)
	})
	if err != nil {
		return TurnResult{}, err
	}

	if err := t.m.fire(EventResolved); err != nil {
		return TurnResult{}, err
	}
	out, err := timed(t, "recommend", func() (recommend.Outcome, error) {
		return o.engine.Recommend(params, rows)
	})
	if errors.Is(err, recommend.ErrNoRatesFound) {
		return o.noRates(st, params, r.Notes, t)
	}
	if err != nil {
		return TurnResult{}, err
	}

	rec := out.Primary
	st.LastParameters = ptrTo(params.Clone())
	st.LastRecommendation = ptrTo(rec)
	st.LastRows = rows
	st.Satisfaction = shipping.SatisfactionUnknown
	st.PendingClarification = ""
	st.Pending = nil

	if err := t.m.fire(EventRecommended); err != nil {
		return TurnResult{}, err
	}
	res := t.result(KindRecommended, recommendationReply(params, out))
	res.Recommendation = &rec
	res.Secondary = out.Secondary
	res.Parameters = &params
	res.Notes = append(res.Notes, r.Notes...)
	if out.TierFallback {
		res.Notes = append(res.Notes, NoteTierFallback)
	}
	if rec.EscalationRequired {
		res.Notes = append(res.Notes, NoteHighCost)
	}

	supervisor := cl.Signal.Has(shipping.CueSupervisor)
	if supervisor {
		res.Notes = append(res.Notes, NoteSupervisorRequest)
	}
	highCost := rec.EscalationRequired && o.cfg.Mode == ModeAutomatic

	// A verify cue reflects first; the reflection then decides whether a
	// supervisor ask or the automatic high-cost review still escalates.
	switch {
	case cl.Signal.Has(shipping.CueVerify):
		res.Notes = append(res.Notes, NoteVerifyRequested)
		st.Satisfaction = shipping.SatisfactionUnsure
		if err := t.m.fire(EventVerifyRequested); err != nil {
			return TurnResult{}, err
		}
		return o.reflect(st, SentimentUnsure, escalateAsk{supervisor: supervisor, highCost: highCost}, res, t)
	case supervisor || highCost:
		if err := t.m.fire(EventEscalate); err != nil {
			return TurnResult{}, err
		}
		reason := shipping.ReasonHighCost
		if supervisor {
			reason = shipping.ReasonSupervisorRequest
		}
		dec := Escalate(EscalationInput{
			Reason:              reason,
			Current:             rec,
			Options:             out.Options,
			SupervisorRequested: supervisor,
		})
		res.Escalation = &dec
		res.Kind = KindEscalated
		res.ReplyText += " " + dec.FinalMessage
	}

	if err := t.m.fire(EventDone); err != nil {
		return TurnResult{}, err
	}
	res.Path = t.m.path
	res.Timing = t.timing
	return res, nil
}

func (o *Orchestrator) missingFields(st *session.State, cl Classification, r Resolved, t *turn) (TurnResult, error) {
	if err := t.m.fire(EventMissingFields); err != nil {
		return TurnResult{}, err
	}
	kind := KindInsufficientInfo
	reply := o.clarification(r.Missing, r.ItemHint)
	pending := cl.Extraction
	if r.Unresolvable != "" {
		kind = KindUnresolvable
		reply = unresolvableReply(r.Unresolvable, r.Missing)
		pending.DestinationText = ""
		pending.Zone = nil
	}
	o.holdPending(st, pending, reply)
	if err := t.m.fire(EventDone); err != nil {
		return TurnResult{}, err
	}
	res := t.result(kind, reply)
	res.Missing = r.Missing
	res.Notes = r.Notes
	params := r.Params
	res.Parameters = &params
	return res, nil
}

func (o *Orchestrator) noRates(st *session.State, params shipping.ShippingParameters, notes []string, t *turn) (TurnResult, error) {
	if err := t.m.fire(EventShortCircuit); err != nil {
		return TurnResult{}, err
	}
	st.LastParameters = ptrTo(params.Clone())
	st.LastRecommendation = nil
	st.LastRows = nil
	st.PendingClarification = ""
	st.Pending = nil
	if err := t.m.fire(EventDone); err != nil {
		return TurnResult{}, err
	}
	res := t.result(KindNoRatesFound, noRatesReply(params))
	res.Parameters = &params
	res.Notes = notes
	return res, nil
}

// #endregion

// #region follow-up

func (o *Orchestrator) followUp(st *session.State, cl Classification, t *turn) (TurnResult, error) {
	if err := t.m.fire(EventFollowUp); err != nil {
		return TurnResult{}, err
	}
	switch cl.Sentiment {
	case SentimentUnsure:
		st.Satisfaction = shipping.SatisfactionUnsure
	case SentimentDissatisfied:
		st.Satisfaction = shipping.SatisfactionDissatisfied
	default:
		if cl.Signal.Has(shipping.CueSatisfied) {
			st.Satisfaction = shipping.SatisfactionSatisfied
		}
	}

	supervisor := cl.Signal.Has(shipping.CueSupervisor)
	res := t.result(KindReflected, "")
	rec := *st.LastRecommendation
	res.Recommendation = &rec
	if st.LastParameters != nil {
		res.Parameters = ptrTo(st.LastParameters.Clone())
	}
	if supervisor {
		res.Notes = append(res.Notes, NoteSupervisorRequest)
	}
	return o.reflect(st, cl.Sentiment, escalateAsk{supervisor: supervisor}, res, t)
}

// escalateAsk lists the escalation triggers that exist before reflecting.
type escalateAsk struct {
	supervisor bool
	highCost   bool
}

// reason picks the escalation reason. A supervisor ask outranks a failed
// reflection, which outranks the high-cost review.
func (a escalateAsk) reason(refl shipping.ReflectionResult) (shipping.EscalationReason, bool) {
	switch {
	case a.supervisor:
		return shipping.ReasonSupervisorRequest, true
	case refl.EscalationRequired:
		return shipping.ReasonReflection, true
	case a.highCost:
		return shipping.ReasonHighCost, true
	}
	return "", false
}

// reflect runs from the Reflect state and finishes the turn. res carries
// whatever the turn produced so far.
func (o *Orchestrator) reflect(st *session.State, s Sentiment, ask escalateAsk, res TurnResult, t *turn) (TurnResult, error) {
	refl, _ := timed(t, "reflect", func() (shipping.ReflectionResult, error) {
		return o.reflector.Reflect(*st, s), nil
	})
	res.Reflection = &refl

	prefix := res.ReplyText
	if prefix != "" {
		prefix += " "
	}

	if reason, ok := ask.reason(refl); ok {
		if err := t.m.fire(EventEscalate); err != nil {
			return TurnResult{}, err
		}
		dec, _ := timed(t, "escalate", func() (shipping.EscalationDecision, error) {
			return Escalate(EscalationInput{
				Reason:              reason,
				Current:             refl.Original,
				Options:             recommend.Options(st.LastRows),
				Reflection:          &refl,
				SupervisorRequested: ask.supervisor,
			}), nil
		})
		if dec.Decision == shipping.DecisionModified && dec.Final != nil {
			st.LastRecommendation = ptrTo(*dec.Final)
			res.Recommendation = ptrTo(*dec.Final)
		}
		res.Escalation = &dec
		res.Kind = KindEscalated
		res.ReplyText = prefix + refl.Explanation + " " + dec.FinalMessage
	} else {
		res.Kind = KindReflected
		if s == SentimentNeutral {
			res.ReplyText = prefix + reaffirmReply(refl.Original, st.Satisfaction == shipping.SatisfactionSatisfied)
		} else {
			res.ReplyText = prefix + refl.Explanation
		}
	}

	if err := t.m.fire(EventDone); err != nil {
		return TurnResult{}, err
	}
	res.Path = t.m.path
	res.Timing = t.timing
	return res, nil
}

// #endregion
