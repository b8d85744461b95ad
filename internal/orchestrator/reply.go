package orchestrator

// #region imports
import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/rate-advisor/internal/recommend"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region constants

const carrierPhone = "1-800-463-3339"

var fieldLabels = map[string]string{
	FieldDestination: "the destination city",
	FieldWeight:      "the package weight",
}

// #endregion

// #region clarify

func clarifyReply(missing []string, item string, hint float64, hasHint bool) string {
	labels := make([]string, 0, len(missing))
	for _, f := range missing {
		labels = append(labels, fieldLabels[f])
	}
	msg := "To quote a rate I still need " + joinAnd(labels) + "."
	if hasHint {
		msg += fmt.Sprintf(" A typical %s weighs about %g lb; tell me the actual weight and I'll price it.", item, hint)
	}
	return msg
}

func unresolvableReply(text string, missing []string) string {
	msg := fmt.Sprintf("I couldn't match %q to a US destination. Which city and state is it going to?", text)
	for _, f := range missing {
		if f == FieldWeight {
			msg += " Please include the package weight too."
		}
	}
	return msg
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

// #endregion

// #region restricted

func restrictedReply(r shipping.Restriction) string {
	terms := joinAnd(r.Terms)
	switch r.Category {
	case shipping.RestrictionLiving:
		return fmt.Sprintf("I can't quote shipping for %s. FedEx standard services do not accept live animals or people. "+
			"For live animal shipments, contact FedEx Live Animal Desk at %s.", terms, carrierPhone)
	case shipping.RestrictionHazardous:
		return fmt.Sprintf("Shipping restriction: %s counts as hazardous material. It needs FedEx dangerous goods handling, "+
			"which standard rates don't cover. Please call FedEx at %s before shipping.", terms, carrierPhone)
	default:
		return fmt.Sprintf("Shipping restriction: %s is perishable. Temperature-sensitive items need special packaging "+
			"such as FedEx Cold Shipping Solutions, which standard rates don't cover. Please call FedEx at %s "+
			"for perishable shipping options.", terms, carrierPhone)
	}
}

// #endregion

// #region screened

func blockedReply() string {
	return "I'm sorry, but I can't process that request. Please ask a shipping-related question."
}

func offTopicReply() string {
	return "I'm a FedEx shipping rate assistant. I can help with shipping rates, zones and delivery options. " +
		"What would you like to ship?"
}

// #endregion

// #region recommend

// noRatesReply must never mention a price or any figure.
func noRatesReply(p shipping.ShippingParameters) string {
	dest := "that destination"
	if p.Destination != nil {
		if d := p.Destination.Display(); d != "" && !strings.ContainsAny(d, "0123456789") {
			dest = d
		}
	}
	return fmt.Sprintf("I couldn't find any FedEx options for that weight to %s. "+
		"Please check the weight or try a nearby city.", dest)
}

func recommendationReply(p shipping.ShippingParameters, out recommend.Outcome) string {
	var b strings.Builder
	if p.Destination.Resolved() && p.WeightLb != nil {
		fmt.Fprintf(&b, "For %g lb to %s (zone %d): ", *p.WeightLb, p.Destination.Display(), p.Zone())
	}
	b.WriteString(out.Primary.Rationale)
	if out.Secondary != nil {
		b.WriteString(" " + out.Secondary.Rationale)
	}
	if out.Primary.EscalationRequired {
		b.WriteString(" This is a high-value shipment; consider adding declared value coverage.")
	}
	return b.String()
}

// #endregion

// #region follow-up

func reaffirmReply(rec shipping.Recommendation, satisfied bool) string {
	if satisfied {
		return fmt.Sprintf("Glad that works. I'll stick with %s.", recommend.Describe(rec))
	}
	return fmt.Sprintf("My recommendation is still %s.", recommend.Describe(rec))
}

// #endregion

// #region failures

func failureReply(k Kind) string {
	switch k {
	case KindTimeout:
		return "That took too long to answer. Nothing was changed; please try again."
	case KindSessionFailed:
		return "Something went wrong with this conversation and it has been reset. Please start your request again."
	default:
		return "A lookup service is unavailable right now. Nothing was changed; please try again."
	}
}

// #endregion
