package discovery

import "strings"

const DefaultSnippetRunes = 140

// Link returns the public t.me link for a candidate with a username, or
// its invite link otherwise.
func (c Candidate) Link() string {
	if u := strings.TrimPrefix(strings.TrimSpace(c.Username), "@"); u != "" {
		return "https://t.me/" + u
	}
	return strings.TrimSpace(c.InviteLink)
}

// Items converts a ranked list into presentation items with about-text
// snippets bounded to snippetRunes runes.
func Items(list RankedList, snippetRunes int) []Item {
	items := make([]Item, 0, len(list))
	for _, r := range list {
		c := r.Candidate
		items = append(items, Item{
			Kind:        c.Kind,
			Title:       strings.TrimSpace(c.Title),
			Link:        c.Link(),
			MemberCount: c.MemberCount,
			Snippet:     Snippet(c.About, snippetRunes),
			Score:       r.Score,
		})
	}
	return items
}

// Snippet collapses whitespace and bounds text to max runes. When anything
// is dropped the last three runes of the budget become "...".
func Snippet(text string, max int) string {
	if max <= 0 {
		max = DefaultSnippetRunes
	}
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= max {
		return collapsed
	}
	if max <= len(ellipsis) {
		return string(runes[:max])
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}

const ellipsis = "..."
