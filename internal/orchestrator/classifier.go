package orchestrator

// #region imports
import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/rate-advisor/internal/session"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region classifier

// Classifier decides whether a turn is a new request, a follow-up on the
// last answer, or too thin to act on.
type Classifier struct {
	understander TextUnderstander
}

// NewClassifier creates a classifier backed by u.
func NewClassifier(u TextUnderstander) *Classifier {
	return &Classifier{understander: u}
}

// Classify runs the decision for text against the state before this turn.
//
// Cues are always requested, even with no prior answer, because a new
// request can still ask to be double-checked in the same sentence.
func (c *Classifier) Classify(ctx context.Context, text string, prior session.State) (Classification, error) {
	sig, err := c.understander.ClassifyFollowUp(ctx, text, prior.Summary())
	if err != nil {
		return Classification{}, fmt.Errorf("classify follow-up: %w", err)
	}
	ex, err := c.understander.ExtractParameters(ctx, text)
	if err != nil {
		return Classification{}, fmt.Errorf("extract parameters: %w", err)
	}

	cl := Classification{Signal: sig, Extraction: ex}

	// New explicit parameters beat any follow-up reading.
	if prior.LastRecommendation != nil && refersBack(sig) && !ex.HasShipmentDetails() {
		cl.Intent = IntentFollowUp
		cl.Sentiment = sentiment(sig)
		return cl, nil
	}

	if prior.Pending != nil {
		cl.Extraction = prior.Pending.Merge(ex)
	}

	restr, err := c.understander.DetectRestrictedGoods(ctx, text)
	if err != nil {
		return Classification{}, fmt.Errorf("detect restricted goods: %w", err)
	}
	cl.Restriction = restr

	cl.Intent = IntentNewRequest
	if !restr.Detected && !cl.Extraction.HasDestination() && !cl.Extraction.HasWeight() {
		cl.Intent = IntentInsufficientInfo
	}
	return cl, nil
}

// refersBack treats a supervisor ask as a follow-up even when the backend
// did not flag it, since there is an answer on the table to escalate.
func refersBack(sig shipping.FollowUpSignal) bool {
	return sig.IsFollowUp || sig.Has(shipping.CueSupervisor)
}

func sentiment(sig shipping.FollowUpSignal) Sentiment {
	switch {
	case sig.Has(shipping.CueReject):
		return SentimentDissatisfied
	case sig.Has(shipping.CueVerify):
		return SentimentUnsure
	}
	return SentimentNeutral
}

// #endregion
