package lexicon

// #region imports
import (
	"regexp"
	"strings"
)

// #endregion

// #region cue-keywords

// verifyPhrases ask the assistant to re-check its answer.
var verifyPhrases = []string{
	"is this right", "is that right", "are you sure", "is this correct", "is that correct",
	"can you verify", "verify", "double check", "double-check", "check this", "check that",
	"confirm this", "confirm that", "confirm", "are you certain", "are you positive",
	"sure about", "certain about", "really?", "actually correct",
	"not sure", "unsure", "i'm not sure",
}

// rejectPhrases express dissatisfaction with the answer.
var rejectPhrases = []string{
	"not satisfied", "not happy", "unhappy", "wrong", "incorrect", "mistake",
	"doesn't seem right", "does not seem right", "that's not", "this isn't", "seems wrong",
	"not what i", "disappointed", "unacceptable", "no way", "can't be", "impossible",
	"not right", "not good", "too expensive", "too high", "too much", "rip off", "ripoff",
}

// satisfiedPhrases close a thread positively.
var satisfiedPhrases = []string{
	"perfect", "great", "excellent", "thank you", "thanks", "that's good",
	"sounds good", "looks good", "okay", "ok", "fine", "good", "awesome",
}

// supervisorPhrases request a human decision.
var supervisorPhrases = []string{
	"supervisor", "manager", "escalate", "speak to supervisor", "talk to manager",
	"need help", "human", "representative", "real person", "speak to someone",
}

// referencePhrases point back at the previous answer.
var referencePhrases = []string{
	"but", "however", "actually", "wait", "hold on", "reconsider", "think again",
	"what about", "why not", "instead",
}

// referentialWords make a short turn a follow-up.
var referentialWords = map[string]bool{
	"this": true, "that": true, "it": true, "these": true, "those": true,
}

const shortTurnWords = 10

// #endregion

// #region urgency-keywords

var economyPhrases = []string{
	"no rush", "not urgent", "not in a hurry", "no hurry", "whenever", "economy",
	"express saver", "3 day", "3-day", "three day", "three-day", "3 days", "three days",
}

var twoDayPhrases = []string{
	"2 day", "2-day", "2day", "two day", "two-day", "2 days", "two days",
	"2nd day", "second day",
}

var overnightPhrases = []string{
	"overnight", "next day", "next-day", "tomorrow", "next morning", "urgent", "urgently",
	"asap", "as soon as possible", "rush", "first thing", "1 day", "one day", "same night",
}

// #endregion

// #region restricted-keywords

var livingTerms = []string{
	"baby", "babies", "child", "children", "infant", "toddler",
	"human", "person", "people", "man", "woman", "kid", "kids", "boy", "girl",
	"pet", "pets", "dog", "dogs", "cat", "cats", "puppy", "kitten", "animal", "animals",
	"bird", "fish", "hamster", "rabbit", "snake", "lizard", "turtle",
	"horse", "cow", "pig", "chicken", "livestock",
}

var perishableTerms = []string{
	"mango", "mangoes", "mangos", "fruit", "fruits", "vegetable", "vegetables",
	"perishable", "perishables", "food", "fresh", "ripe", "meat", "seafood",
	"dairy", "milk", "cheese", "yogurt", "ice cream", "frozen",
	"flower", "flowers", "plant", "plants", "produce", "cake", "bakery",
}

var hazardousTerms = []string{
	"battery", "batteries", "lithium", "explosive", "explosives", "fireworks",
	"gasoline", "gas can", "flammable", "aerosol", "ammunition", "ammo",
	"propane", "dry ice", "bleach", "paint thinner",
}

// #endregion

// #region phrase-set

// phraseSet matches whole-word phrases against lowercased text.
type phraseSet struct {
	phrases []string
	res     []*regexp.Regexp
}

func newPhraseSet(phrases []string) phraseSet {
	ps := phraseSet{phrases: phrases, res: make([]*regexp.Regexp, len(phrases))}
	for i, p := range phrases {
		ps.res[i] = regexp.MustCompile(`(?:^|[^a-z0-9'])` + regexp.QuoteMeta(p) + `(?:$|[^a-z0-9'])`)
	}
	return ps
}

// find returns every phrase present in lower, in declaration order.
func (ps phraseSet) find(lower string) []string {
	var out []string
	for i, re := range ps.res {
		if re.MatchString(lower) {
			out = append(out, ps.phrases[i])
		}
	}
	return out
}

func (ps phraseSet) any(lower string) bool {
	for _, re := range ps.res {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// findIndex returns the byte offset of each match of phrase i.
func (ps phraseSet) findIndex(lower string, i int) [][]int {
	return ps.res[i].FindAllStringIndex(lower, -1)
}

// normalize lowercases and folds typographic apostrophes.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("’", "'", "‘", "'").Replace(s)
}

// #endregion
