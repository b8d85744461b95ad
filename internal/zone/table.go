package zone

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region types

// ErrUnresolvable means the text could not be mapped to a zone.
var ErrUnresolvable = errors.New("location unresolvable")

// Method records how a location was resolved.
type Method string

const (
	MethodExact    Method = "exact"
	MethodAirport  Method = "airport"
	MethodNickname Method = "nickname"
	MethodTypo     Method = "typo"
	MethodState    Method = "state"
)

// Resolution is a resolved location.
type Resolution struct {
	CorrectedText string
	State         string
	Zone          int
	Method        Method
}

// #endregion

// #region table

// Table resolves locations from static reference data. Safe for concurrent
// use; Resolve has no side effects.
type Table struct {
	byKey  map[string]city   // "boston, ma"
	byName map[string][]city // "boston", table order
	names  []string          // distinct lowercase city names, table order
}

// NewTable builds the lookup indexes.
func NewTable() *Table {
	t := &Table{
		byKey:  make(map[string]city, len(cities)),
		byName: make(map[string][]city, len(cities)),
	}
	for _, c := range cities {
		name := strings.ToLower(c.Name)
		t.byKey[name+", "+strings.ToLower(c.State)] = c
		if _, seen := t.byName[name]; !seen {
			t.names = append(t.names, name)
		}
		t.byName[name] = append(t.byName[name], c)
	}
	return t
}

// Names lists city names and multi-word nicknames, for spotting place
// mentions in free text.
func (t *Table) Names() []string {
	out := make([]string, 0, len(cities)+len(nicknames))
	for _, n := range t.names {
		out = append(out, t.byName[n][0].Name)
	}
	for nick := range nicknames {
		if strings.Contains(nick, " ") {
			out = append(out, nick)
		}
	}
	return out
}

// #endregion

// #region resolve

// Resolve maps free location text to a zone. Order: airport code,
// nickname, exact city, typo-corrected city, state-level estimate. Anything
// else is ErrUnresolvable; there is no default zone.
func (t *Table) Resolve(ctx context.Context, text string) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	clean := cleanLocation(text)
	if clean == "" {
		return Resolution{}, fmt.Errorf("%q: %w", text, ErrUnresolvable)
	}
	lower := strings.ToLower(clean)

	if len(clean) == 3 {
		if p, ok := airports[strings.ToUpper(clean)]; ok {
			return t.fromPlace(p, MethodAirport)
		}
	}
	if p, ok := nicknames[lower]; ok {
		return t.fromPlace(p, MethodNickname)
	}

	cityPart, state, stateGiven := splitState(clean)
	cityLower := strings.ToLower(cityPart)
	if p, ok := nicknames[cityLower]; ok {
		return t.fromPlace(p, MethodNickname)
	}

	if c, ok := t.lookup(cityLower, state); ok {
		return resolution(c, MethodExact), nil
	}
	if !stateGiven {
		if code, ok := shipping.StateCode(cityPart); ok && len(cityPart) > 2 {
			if z, ok := stateZones[code]; ok {
				return Resolution{CorrectedText: titleCase(cityPart), State: code, Zone: z, Method: MethodState}, nil
			}
		}
	}
	if c, ok := t.correct(cityLower, state); ok {
		return resolution(c, MethodTypo), nil
	}
	if state != "" {
		if z, ok := stateZones[state]; ok {
			return Resolution{CorrectedText: titleCase(cityPart), State: state, Zone: z, Method: MethodState}, nil
		}
	}
	return Resolution{}, fmt.Errorf("%q: %w", text, ErrUnresolvable)
}

func (t *Table) lookup(name, state string) (city, bool) {
	if state != "" {
		c, ok := t.byKey[name+", "+strings.ToLower(state)]
		return c, ok
	}
	if cs := t.byName[name]; len(cs) > 0 {
		return cs[0], true
	}
	return city{}, false
}

func (t *Table) fromPlace(p place, m Method) (Resolution, error) {
	c, ok := t.lookup(strings.ToLower(p.City), p.State)
	if !ok {
		return Resolution{}, fmt.Errorf("%s, %s: %w", p.City, p.State, ErrUnresolvable)
	}
	return resolution(c, m), nil
}

func resolution(c city, m Method) Resolution {
	return Resolution{CorrectedText: c.Name, State: c.State, Zone: c.Zone, Method: m}
}

// #endregion

// #region typo-correction

type nameSource []string

func (s nameSource) String(i int) string { return s[i] }
func (s nameSource) Len() int            { return len(s) }

// correct finds the closest known city. Fuzzy subsequence matches are
// tried first since they cover dropped letters; plain edit distance covers
// substitutions the subsequence match cannot.
func (t *Table) correct(name, state string) (city, bool) {
	cands := t.names
	if state != "" {
		cands = cands[:0:0]
		for _, n := range t.names {
			if _, ok := t.byKey[n+", "+strings.ToLower(state)]; ok {
				cands = append(cands, n)
			}
		}
	}
	if len(cands) == 0 || name == "" {
		return city{}, false
	}
	limit := typoLimit(name)

	best, bestDist := "", limit+1
	for _, m := range fuzzy.FindFrom(name, nameSource(cands)) {
		if d := levenshtein.ComputeDistance(name, m.Str); d < bestDist {
			best, bestDist = m.Str, d
		}
	}
	if best == "" {
		for _, c := range cands {
			if d := levenshtein.ComputeDistance(name, c); d < bestDist {
				best, bestDist = c, d
			}
		}
	}
	if best == "" {
		return city{}, false
	}
	return t.lookup(best, state)
}

func typoLimit(name string) int {
	if len(name) <= 4 {
		return 1
	}
	return 2
}

// #endregion

// #region parsing

// cleanLocation trims punctuation and collapses whitespace.
func cleanLocation(s string) string {
	s = strings.Trim(strings.TrimSpace(s), ".!?;:\"'")
	return strings.Join(strings.Fields(s), " ")
}

// splitState separates "City, ST", "City ST" and "City State Name". An
// unparseable state part after a comma is dropped and the city is resolved
// on its own. A bare state name is left whole.
func splitState(s string) (cityPart, state string, stateGiven bool) {
	if i := strings.Index(s, ","); i >= 0 {
		cityPart = strings.TrimSpace(s[:i])
		raw := strings.TrimSpace(s[i+1:])
		if raw == "" {
			return cityPart, "", false
		}
		if code, ok := shipping.StateCode(raw); ok {
			return cityPart, code, true
		}
		return cityPart, "", false
	}
	if _, ok := shipping.StateCode(s); ok && len(s) > 2 {
		return s, "", false
	}
	words := strings.Fields(s)
	n := len(words)
	if n > 1 {
		last := words[n-1]
		if len(last) == 2 && strings.ToUpper(last) == last {
			if code, ok := shipping.StateCode(last); ok {
				return strings.Join(words[:n-1], " "), code, true
			}
		}
	}
	// Longest trailing state name first, so "Kansas City Missouri" and
	// "Albany New York" keep a non-empty city part.
	for k := min(maxStateWords, n-1); k > 0; k-- {
		name := strings.Join(words[n-k:], " ")
		if len(name) <= 2 {
			continue
		}
		if code, ok := shipping.StateCode(name); ok {
			return strings.Join(words[:n-k], " "), code, true
		}
	}
	return s, "", false
}

// maxStateWords is the longest state name in words ("District of Columbia").
const maxStateWords = 3

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// #endregion
