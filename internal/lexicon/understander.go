package lexicon

// #region imports
import (
	"context"
	"strings"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region understander

// Understander is the deterministic keyword backend for turn understanding.
// It needs no model and never fails except on a cancelled context.
type Understander struct {
	places     placeIndex
	verify     phraseSet
	reject     phraseSet
	satisfied  phraseSet
	supervisor phraseSet
	reference  phraseSet
}

// Option configures an Understander.
type Option func(*Understander)

// WithPlaces lets the understander spot known place names that appear
// without a "to"/"from" lead-in.
func WithPlaces(names []string) Option {
	return func(u *Understander) { u.places = newPlaceIndex(names) }
}

// New builds an Understander.
func New(opts ...Option) *Understander {
	u := &Understander{
		verify:     newPhraseSet(verifyPhrases),
		reject:     newPhraseSet(rejectPhrases),
		satisfied:  newPhraseSet(satisfiedPhrases),
		supervisor: newPhraseSet(supervisorPhrases),
		reference:  newPhraseSet(referencePhrases),
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// #endregion

// #region classify-follow-up

// ClassifyFollowUp reports the conversational cues in text. A turn can only
// be a follow-up when there is a prior answer to refer to; cues are
// reported either way so a new request can still carry a verification ask.
func (u *Understander) ClassifyFollowUp(ctx context.Context, text, priorSummary string) (shipping.FollowUpSignal, error) {
	if err := ctx.Err(); err != nil {
		return shipping.FollowUpSignal{}, err
	}
	lower := normalize(text)
	words := strings.Fields(strings.Trim(lower, "?!."))

	var cues []shipping.Cue
	rejected := u.reject.any(lower)
	if u.verify.any(lower) {
		cues = append(cues, shipping.CueVerify)
	}
	if rejected {
		cues = append(cues, shipping.CueReject)
	}
	if u.supervisor.any(lower) {
		cues = append(cues, shipping.CueSupervisor)
	}
	if !rejected && u.satisfied.any(lower) {
		cues = append(cues, shipping.CueSatisfied)
	}
	if u.reference.any(lower) || (len(words) < shortTurnWords && hasReferential(words)) {
		cues = append(cues, shipping.CueReference)
	}

	return shipping.FollowUpSignal{
		IsFollowUp: priorSummary != "" && len(cues) > 0,
		Cues:       cues,
	}, nil
}

func hasReferential(words []string) bool {
	for _, w := range words {
		if referentialWords[strings.Trim(w, ",;:'\"")] {
			return true
		}
	}
	return false
}

// #endregion

// #region extract-parameters

// ExtractParameters pulls shipment slots out of free text.
func (u *Understander) ExtractParameters(ctx context.Context, text string) (shipping.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return shipping.Extraction{}, err
	}
	return extract(text, u.places), nil
}

// #endregion

// #region detect-restricted

// DetectRestrictedGoods flags living beings, hazardous materials and
// perishables.
func (u *Understander) DetectRestrictedGoods(ctx context.Context, text string) (shipping.Restriction, error) {
	if err := ctx.Err(); err != nil {
		return shipping.Restriction{}, err
	}
	return detectRestricted(normalize(text)), nil
}

// #endregion
