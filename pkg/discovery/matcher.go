package discovery

// Matches decides whether text passes the include/exclude sets. Exclude
// always wins; an empty include set allows everything not excluded.
func Matches(text string, include, exclude []*Pattern) bool {
	return matchesRunes([]rune(Normalize(text)), include, exclude)
}

func matchesRunes(text []rune, include, exclude []*Pattern) bool {
	for _, p := range exclude {
		if p.MatchRunes(text) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, p := range include {
		if p.MatchRunes(text) {
			return true
		}
	}
	return false
}
