package lexicon

// #region imports
import (
	"regexp"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region guard-keywords

// injectionPhrases try to rewrite the assistant's instructions.
var injectionPhrases = []string{
	"ignore previous", "ignore all previous", "ignore the above", "ignore your instructions",
	"disregard instructions", "disregard your instructions", "disregard previous",
	"new instructions", "system prompt", "you are now", "pretend to be", "act as if",
	"forget everything", "override", "bypass", "jailbreak", "developer mode",
}

// offTopicPhrases ask for something no rate table answers.
var offTopicPhrases = []string{
	"joke", "poem", "song", "lyrics", "story", "recipe", "weather", "forecast",
	"horoscope", "homework", "essay", "write code", "python script", "stock price",
	"bitcoin", "crypto", "capital of", "who won", "movie", "sports score", "translate",
	"meaning of life",
}

// shippingTerms keep a turn on topic even when an off-topic word appears.
var shippingTerms = []string{
	"ship", "ships", "shipped", "shipping", "shipment", "send", "sending", "mail", "deliver", "delivery", "package",
	"parcel", "box", "envelope", "rate", "rates", "quote", "cost", "price", "zone",
	"overnight", "express", "fedex", "carrier", "freight", "lb", "lbs", "pound", "pounds",
	"kg", "weight", "weighs",
}

// #endregion

// #region guard

// Guard screens raw turn text before it reaches any understanding backend.
// It is keyword only and never calls out.
type Guard struct {
	injection phraseSet
	offTopic  phraseSet
	shipping  phraseSet
}

// NewGuard builds a Guard.
func NewGuard() *Guard {
	return &Guard{
		injection: newPhraseSet(injectionPhrases),
		offTopic:  newPhraseSet(offTopicPhrases),
		shipping:  newPhraseSet(shippingTerms),
	}
}

var digitRe = regexp.MustCompile(`\d`)

// Screen returns ScreenInjection for instruction-rewriting text and
// ScreenOffTopic for a request with an off-topic phrase and no shipping
// vocabulary or numbers. Everything else is ScreenClear, so short replies
// like "hello" or "thanks" still reach the classifier.
func (g *Guard) Screen(text string) shipping.Screen {
	lower := normalize(text)
	if g.injection.any(lower) {
		return shipping.ScreenInjection
	}
	if g.offTopic.any(lower) && !g.shipping.any(lower) && !digitRe.MatchString(lower) {
		return shipping.ScreenOffTopic
	}
	return shipping.ScreenClear
}

// #endregion
