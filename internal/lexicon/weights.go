package lexicon

// #region item-weights

// itemWeights are typical shipping weights in pounds, offered as hints when
// a user names an item but not its weight.
var itemWeights = map[string]float64{
	"wine bottle": 3.0, "champagne bottle": 3.5, "beer case": 20.0,
	"laptop": 5.0, "macbook": 4.5, "ipad": 1.5, "tablet": 1.5, "iphone": 0.5, "phone": 0.5,
	"playstation": 10.0, "xbox": 9.0, "nintendo switch": 2.0, "monitor": 15.0,
	"32 inch tv": 15.0, "40 inch tv": 20.0, "50 inch tv": 35.0, "55 inch tv": 40.0,
	"65 inch tv": 55.0, "75 inch tv": 70.0, "tv": 35.0,
	"chocolates": 2.0, "cookies": 1.5, "gift basket": 8.0,
	"shoes": 3.0, "boots": 4.0, "jacket": 3.0, "coat": 5.0, "dress": 1.5, "suit": 4.0,
	"book": 1.5, "textbook": 3.0, "box of books": 30.0,
	"golf clubs": 30.0, "golf bag": 35.0, "bicycle": 30.0, "bike": 30.0,
	"skateboard": 8.0, "snowboard": 15.0, "skis": 20.0,
	"guitar": 10.0, "keyboard": 25.0, "violin": 5.0,
	"chair": 20.0, "lamp": 8.0, "mirror": 15.0, "picture frame": 3.0,
	"blender": 8.0, "coffee maker": 10.0, "instant pot": 15.0, "air fryer": 12.0,
	"microwave": 30.0, "toaster": 5.0,
}

var itemSet = func() phraseSet {
	names := make([]string, 0, len(itemWeights))
	for k := range itemWeights {
		names = append(names, k)
	}
	return newPhraseSet(names)
}()

// findItem returns the longest known item named in lower.
func findItem(lower string) string {
	best := ""
	for _, m := range itemSet.find(lower) {
		if len(m) > len(best) || (len(m) == len(best) && m < best) {
			best = m
		}
	}
	return best
}

// ItemWeight returns the typical weight for a known item.
func ItemWeight(item string) (float64, bool) {
	w, ok := itemWeights[normalize(item)]
	return w, ok
}

// #endregion
