// Package directory talks to the external channel directory. Whatever the
// source, results are narrowed to discovery.Candidate at this boundary.
package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/sipeed/chanscout/pkg/discovery"
)

// ErrNoDirectory is returned when no directory source is configured.
var ErrNoDirectory = errors.New("no channel directory configured")

// Searcher returns raw candidates for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]discovery.Candidate, error)
}

// Entry is one raw directory result. Type is one of channel, megagroup,
// group or user.
type Entry struct {
	Type       string `json:"type" yaml:"type"`
	Title      string `json:"title" yaml:"title"`
	Username   string `json:"username,omitempty" yaml:"username"`
	About      string `json:"about,omitempty" yaml:"about"`
	InviteLink string `json:"invite_link,omitempty" yaml:"invite_link"`
	Members    *int   `json:"members,omitempty" yaml:"members"`
}

// Response is the envelope returned by the HTTP directory and accepted by
// result files.
type Response struct {
	Results []Entry `json:"results" yaml:"results"`
}

// kind maps a raw type tag to a candidate kind. Users and unknown tags are
// not candidates.
func kind(tag string) (discovery.Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "channel", "broadcast":
		return discovery.KindChannel, true
	case "megagroup", "supergroup":
		return discovery.KindMegagroup, true
	case "group", "chat":
		return discovery.KindGroup, true
	default:
		return "", false
	}
}

// Candidates converts directory entries, preserving directory order. Only
// broadcast channels are kept unless includeGroups is set, in which case
// megagroups and basic groups are kept too. Users and unknown entries are
// always dropped.
func Candidates(entries []Entry, includeGroups bool) []discovery.Candidate {
	out := make([]discovery.Candidate, 0, len(entries))
	for _, e := range entries {
		k, ok := kind(e.Type)
		if !ok || (k != discovery.KindChannel && !includeGroups) {
			continue
		}
		out = append(out, discovery.Candidate{
			Kind:        k,
			Title:       e.Title,
			Username:    strings.TrimPrefix(strings.TrimSpace(e.Username), "@"),
			About:       e.About,
			InviteLink:  e.InviteLink,
			MemberCount: e.Members,
		})
	}
	return out
}

func clampLimit(n, have int) int {
	if n <= 0 || n > have {
		return have
	}
	return n
}
