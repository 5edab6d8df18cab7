package scout

import "github.com/sipeed/chanscout/pkg/discovery"

const NoteNoMatches = "no matching channels"

type SearchRequest struct {
	Query string `json:"query"`
	TopN  int    `json:"top_n,omitempty"`
}

// SearchResult is a finished search. An empty Items slice with the
// NoteNoMatches note is a normal outcome, not an error.
type SearchResult struct {
	Query      string           `json:"query"`
	Items      []discovery.Item `json:"items"`
	Notes      []string         `json:"notes,omitempty"`
	Candidates int              `json:"candidates"`
	Skipped    int              `json:"skipped"`
	ElapsedMS  int64            `json:"elapsed_ms"`
}

// Empty reports whether nothing passed the filter.
func (r *SearchResult) Empty() bool {
	return r == nil || len(r.Items) == 0
}
