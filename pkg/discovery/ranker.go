package discovery

import "sort"

// SecondaryKey orders results that tie on score. Larger values rank first.
type SecondaryKey func(Candidate) int

// ByMembers is the default secondary key; unknown counts sort as 0.
func ByMembers(c Candidate) int {
	return c.Members()
}

// Rank keeps passed results, orders them by score then key (both
// descending, stable on full ties) and truncates to topN. topN <= 0
// disables truncation. The input slice is not modified.
func Rank(results []MatchResult, topN int, key SecondaryKey) RankedList {
	if key == nil {
		key = ByMembers
	}

	ranked := make(RankedList, 0, len(results))
	for _, r := range results {
		if r.Passed {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score == ranked[j].Score {
			return key(ranked[i].Candidate) > key(ranked[j].Candidate)
		}
		return ranked[i].Score > ranked[j].Score
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
