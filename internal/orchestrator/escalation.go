package orchestrator

// #region imports
import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/rate-advisor/internal/recommend"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region input

// maxAlternatives is how many other services an escalation lists.
const maxAlternatives = 3

// EscalationInput is everything already computed this turn. Escalation
// never looks anything up on its own.
type EscalationInput struct {
	Reason              shipping.EscalationReason
	Current             shipping.Recommendation
	Options             []shipping.Recommendation
	Reflection          *shipping.ReflectionResult
	SupervisorRequested bool
}

// #endregion

// #region escalate

// Escalate produces the supervisory decision.
func Escalate(in EscalationInput) shipping.EscalationDecision {
	d := shipping.EscalationDecision{
		Reason:       in.Reason,
		Alternatives: recommend.Alternatives(in.Options, in.Current.Service, maxAlternatives),
	}
	current := in.Current

	switch {
	case in.Reflection != nil && in.Reflection.Correction != nil:
		d.Decision = shipping.DecisionModified
		corr := *in.Reflection.Correction
		d.Final = &corr
		d.Alternatives = recommend.Alternatives(in.Options, corr.Service, maxAlternatives)
	case in.SupervisorRequested || unverifiable(in):
		d.Decision = shipping.DecisionEscalatedFurther
		d.Final = &current
	default:
		d.Decision = shipping.DecisionApproved
		d.Final = &current
	}
	d.FinalMessage = escalationMessage(d, current)
	return d
}

// unverifiable is true when no check could confirm anything.
func unverifiable(in EscalationInput) bool {
	if len(in.Options) == 0 {
		return true
	}
	return in.Reflection != nil && in.Reflection.Confidence == 0
}

// #endregion

// #region message

func escalationMessage(d shipping.EscalationDecision, current shipping.Recommendation) string {
	var b strings.Builder
	switch d.Decision {
	case shipping.DecisionModified:
		fmt.Fprintf(&b, "On review, %s was not the right pick. The recommendation is now %s.",
			shipping.ServiceInfo(current.Service).Display, recommend.Describe(*d.Final))
	case shipping.DecisionEscalatedFurther:
		if d.Reason == shipping.ReasonSupervisorRequest {
			b.WriteString("I've flagged this conversation for a human shipping specialist.")
		} else {
			b.WriteString("I couldn't confirm this quote, so I've flagged it for a human shipping specialist.")
		}
		fmt.Fprintf(&b, " The current quote is %s.", recommend.Describe(current))
	default:
		switch d.Reason {
		case shipping.ReasonHighCost:
			fmt.Fprintf(&b, "This is a high-value shipment. %s has been reviewed and stands.", recommend.Describe(current))
		default:
			fmt.Fprintf(&b, "After review, %s stands as the best match for what you asked.", recommend.Describe(current))
		}
	}

	if len(d.Alternatives) > 0 {
		b.WriteString(" Other options:")
		for i, a := range d.Alternatives {
			sep := ";"
			if i == len(d.Alternatives)-1 {
				sep = "."
			}
			fmt.Fprintf(&b, " %s%s", recommend.Describe(a), sep)
		}
	}
	return b.String()
}

// #endregion
