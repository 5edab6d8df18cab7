package discovery

// WeightedClass is a named group of include patterns that contributes
// Weight to the score for every member pattern found in the text.
type WeightedClass struct {
	Name     string
	Weight   int
	Patterns []*Pattern
}

// Score sums class weights over every matching pattern. Weights are
// validated non-negative when a Filter is built, so the total is >= 0.
func Score(text string, classes []WeightedClass) int {
	return scoreRunes([]rune(Normalize(text)), classes)
}

func scoreRunes(text []rune, classes []WeightedClass) int {
	total := 0
	for _, c := range classes {
		if c.Weight <= 0 {
			continue
		}
		for _, p := range c.Patterns {
			if p.MatchRunes(text) {
				total += c.Weight
			}
		}
	}
	return total
}
