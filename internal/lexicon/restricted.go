package lexicon

// #region imports
import (
	"strings"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region sets

var (
	livingSet     = newPhraseSet(livingTerms)
	perishableSet = newPhraseSet(perishableTerms)
	hazardousSet  = newPhraseSet(hazardousTerms)
)

// conversational lead-ins that make "human" or "person" a contact request
// rather than cargo.
var contactLeadIns = []string{"to a ", "to an ", "to the ", "with a ", "with an ", "to ", "real "}

// #endregion

// #region detect

// detectRestricted checks living beings first, then hazardous goods, then
// perishables. The first category with a hit wins.
func detectRestricted(lower string) shipping.Restriction {
	if terms := livingCargo(lower); len(terms) > 0 {
		return shipping.Restriction{Detected: true, Category: shipping.RestrictionLiving, Terms: terms}
	}
	if terms := hazardousSet.find(lower); len(terms) > 0 {
		return shipping.Restriction{Detected: true, Category: shipping.RestrictionHazardous, Terms: terms}
	}
	if terms := perishableSet.find(lower); len(terms) > 0 {
		return shipping.Restriction{Detected: true, Category: shipping.RestrictionPerishable, Terms: terms}
	}
	return shipping.Restriction{}
}

func livingCargo(lower string) []string {
	var out []string
	for i, term := range livingSet.phrases {
		for _, loc := range livingSet.findIndex(lower, i) {
			if isContactRequest(lower[:loc[0]+1]) {
				continue
			}
			out = append(out, term)
			break
		}
	}
	return out
}

func isContactRequest(before string) bool {
	for _, lead := range contactLeadIns {
		if strings.HasSuffix(before, lead) {
			return true
		}
	}
	return false
}

// #endregion
