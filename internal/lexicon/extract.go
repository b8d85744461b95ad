package lexicon

// #region imports
import (
	"regexp"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region patterns

var (
	weightRe      = regexp.MustCompile(`(?i)((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)\s*-?\s*(lbs?\b\.?|pounds?\b|#|kgs?\b|kilograms?\b|kilos?\b|oz\b|ounces?\b)`)
	weighsRe      = regexp.MustCompile(`(?i)\bweigh(?:s|ing|t)?\s*(?:is|of|about|around|roughly|:)?\s*((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)`)
	zoneRe        = regexp.MustCompile(`(?i)\bzone\s*#?\s*(\d+)\b`)
	budgetKeyRe   = regexp.MustCompile(`(?i)\bbudget(?:\s+(?:is|of|at|around))?\s*:?\s*(\$?\s*\S+)`)
	moneyRe       = regexp.MustCompile(`(?i)(\$\s*[\d,]+(?:\.\d+)?|\b[\d,]+(?:\.\d+)?\s*(?:dollars|usd|bucks)\b)`)
	toRe          = regexp.MustCompile(`(?i)\bto\b`)
	fromRe        = regexp.MustCompile(`(?i)\bfrom\b`)
	placeWordRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z.'\-]*`)
	stateSuffixRe = regexp.MustCompile(`^\s*,\s*([A-Za-z]+(?:\s+[A-Za-z]+){0,2})`)
)

// placeStop ends a location phrase.
var placeStop = map[string]bool{
	"from": true, "to": true, "by": true, "with": true, "for": true, "under": true, "overnight": true,
	"tomorrow": true, "today": true, "next": true, "within": true, "weighing": true,
	"weighs": true, "that": true, "and": true, "in": true, "on": true, "asap": true,
	"please": true, "budget": true, "via": true, "using": true, "express": true,
	"economy": true, "cheap": true, "cheapest": true, "which": true, "what": true,
	"how": true, "is": true, "it": true, "costs": true, "cost": true, "at": true,
	"before": true, "around": true, "about": true, "of": true, "or": true, "but": true,
	"urgently": true, "urgent": true, "zone": true, "package": true, "box": true,
	"lb": true, "lbs": true, "pounds": true, "no": true, "my": true, "i": true,
	"two": true, "three": true, "second": true, "shipping": true, "delivery": true,
	"instead": true, "as": true, "well": true, "too": true, "also": true, "again": true,
	"then": true, "rather": true, "if": true, "so": true,
}

// placeVerbs after "to" mean the phrase is an infinitive, not a place.
var placeVerbs = map[string]bool{
	"ship": true, "send": true, "mail": true, "get": true, "know": true, "deliver": true,
	"be": true, "have": true, "go": true, "see": true, "make": true, "find": true,
	"check": true, "pay": true, "spend": true, "ask": true, "talk": true, "speak": true,
	"a": true, "an": true, "me": true, "you": true, "my": true, "your": true, "someone": true,
}

const maxPlaceWords = 4

// #endregion

// #region extract

func extract(text string, places placeIndex) shipping.Extraction {
	var ext shipping.Extraction
	lower := normalize(text)

	if w, ok := parseWeight(text); ok {
		ext.WeightLb = &w
	}
	if m := zoneRe.FindStringSubmatch(text); m != nil {
		if z, err := strconv.Atoi(m[1]); err == nil {
			ext.Zone = &z
		}
	}
	ext.BudgetText = findBudget(text)
	ext.Urgency = findUrgency(lower)
	ext.DestinationText = placeAfter(text, toRe)
	ext.OriginText = placeAfter(text, fromRe)
	if ext.DestinationText == "" && ext.Zone == nil {
		ext.DestinationText = places.scan(text, lower, ext.OriginText)
	}
	ext.ItemHint = findItem(lower)
	return ext
}

// #endregion

// #region weight

func parseWeight(text string) (float64, bool) {
	if m := weightRe.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil || v <= 0 {
			return 0, false
		}
		unit := strings.ToLower(strings.TrimSuffix(m[2], "."))
		switch {
		case strings.HasPrefix(unit, "k"):
			v *= 2.20462
		case unit == "oz" || strings.HasPrefix(unit, "ounce"):
			v /= 16
		}
		return roundTenth(v), true
	}
	if m := weighsRe.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

func roundTenth(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

// #endregion

// #region budget

// findBudget returns the raw budget token. A "budget" keyword captures the
// next token whatever it is, so malformed values still reach the resolver.
func findBudget(text string) string {
	if m := budgetKeyRe.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(strings.TrimSpace(m[1]), ".,;!?")
	}
	if m := moneyRe.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(strings.TrimSpace(m[1]), ".,;!?")
	}
	return ""
}

// #endregion

// #region urgency

var (
	economySet   = newPhraseSet(economyPhrases)
	twoDaySet    = newPhraseSet(twoDayPhrases)
	overnightSet = newPhraseSet(overnightPhrases)

	// a negation up to three words before an urgency word: "not in a rush",
	// "don't need it urgently", "never in a hurry"
	negatedUrgencyRe = regexp.MustCompile(`(?:\b(?:not|no|never)\b|n't)(?:\s+[a-z']+){0,3}?\s+(?:rush|rushed|hurry|urgent|urgently|asap)\b`)
)

// findUrgency checks slower tiers and negated urgency words before the
// overnight set, which would otherwise match "rush" in "not in a rush".
func findUrgency(lower string) shipping.Urgency {
	switch {
	case economySet.any(lower), negatedUrgencyRe.MatchString(lower):
		return shipping.UrgencyEconomy
	case twoDaySet.any(lower):
		return shipping.UrgencyTwoDay
	case overnightSet.any(lower):
		return shipping.UrgencyOvernight
	}
	return ""
}

// #endregion

// #region place

// placeAfter returns the first location phrase following prep.
func placeAfter(text string, prep *regexp.Regexp) string {
	for _, loc := range prep.FindAllStringIndex(text, -1) {
		if p := takePlace(text[loc[1]:]); p != "" {
			return p
		}
	}
	return ""
}

func takePlace(rest string) string {
	var words []string
	i := 0
	for len(words) < maxPlaceWords {
		j := i
		for j < len(rest) && rest[j] == ' ' {
			j++
		}
		if j == i && i > 0 {
			break
		}
		m := placeWordRe.FindString(rest[j:])
		if m == "" {
			break
		}
		w := strings.TrimRight(m, ".'-")
		lw := strings.ToLower(w)
		if len(words) == 0 && lw == "the" {
			i = j + len(m)
			continue
		}
		if len(words) == 0 && placeVerbs[lw] {
			return ""
		}
		if placeStop[lw] {
			break
		}
		words = append(words, w)
		i = j + len(m)
		if w != m {
			break
		}
	}
	if len(words) == 0 {
		return ""
	}
	place := strings.Join(words, " ")
	if m := stateSuffixRe.FindStringSubmatch(rest[i:]); m != nil {
		if code, ok := stateSuffix(m[1]); ok {
			place += ", " + code
		}
	}
	return place
}

// stateSuffix accepts a state code or name, trying the longest word run
// first so "New York" wins over "New".
func stateSuffix(s string) (string, bool) {
	words := strings.Fields(s)
	for n := len(words); n > 0; n-- {
		cand := strings.Join(words[:n], " ")
		if code, ok := shipping.StateCode(cand); ok {
			if len(cand) == 2 {
				return code, true
			}
			return cand, true
		}
	}
	return "", false
}

// #endregion

// #region place-index

// placeIndex finds known place names mentioned without a preposition.
type placeIndex struct {
	set phraseSet
}

func newPlaceIndex(names []string) placeIndex {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		if n = normalize(n); len(n) > 2 {
			lowered = append(lowered, n)
		}
	}
	return placeIndex{set: newPhraseSet(lowered)}
}

// scan returns the longest known place in text, skipping the origin.
func (p placeIndex) scan(text, lower, origin string) string {
	best := ""
	bestAt := -1
	for i, name := range p.set.phrases {
		if origin != "" && strings.EqualFold(name, origin) {
			continue
		}
		for _, loc := range p.set.findIndex(lower, i) {
			if len(name) > len(best) {
				best = name
				bestAt = loc[0]
			}
		}
	}
	if best == "" {
		return ""
	}
	// recover original casing
	start := strings.Index(lower[bestAt:], best) + bestAt
	if start+len(best) <= len(text) && len(text) == len(lower) {
		return text[start : start+len(best)]
	}
	return best
}

// #endregion
