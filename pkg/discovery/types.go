package discovery

import "strings"

// Kind tags the directory entity a candidate was built from.
type Kind string

const (
	KindChannel   Kind = "channel"
	KindMegagroup Kind = "megagroup"
	KindGroup     Kind = "group"
)

type KeywordClass string

const (
	ClassInclude KeywordClass = "include"
	ClassExclude KeywordClass = "exclude"
)

// Keyword is one operator-configured term. Weight only matters for include
// keywords; exclude keywords veto and never score.
type Keyword struct {
	Text   string       `json:"text" yaml:"text"`
	Class  KeywordClass `json:"class" yaml:"class"`
	Weight int          `json:"weight,omitempty" yaml:"weight,omitempty"`
}

type Candidate struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Username    string `json:"username,omitempty"`
	About       string `json:"about,omitempty"`
	InviteLink  string `json:"invite_link,omitempty"`
	MemberCount *int   `json:"member_count,omitempty"`
}

// CombinedText joins the present text fields into the single blob that
// matching and scoring look at.
func (c Candidate) CombinedText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Title, c.Username, c.About} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// Members returns the member count, treating an unknown count as 0.
func (c Candidate) Members() int {
	if c.MemberCount == nil {
		return 0
	}
	return *c.MemberCount
}

type MatchResult struct {
	Candidate Candidate `json:"candidate"`
	Passed    bool      `json:"passed"`
	Score     int       `json:"score"`
}

type RankedList []MatchResult

// Item is the presentation form of a ranked result handed to the bot and
// the HTTP API.
type Item struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Link        string `json:"link,omitempty"`
	MemberCount *int   `json:"member_count,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
	Score       int    `json:"score"`
}

// IntPtr is a small helper for building candidates with a known count.
func IntPtr(v int) *int {
	return &v
}
