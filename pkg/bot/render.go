package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/sipeed/chanscout/pkg/discovery"
	"github.com/sipeed/chanscout/pkg/scout"
)

// maxMessageRunes stays under Telegram's 4096 character message limit.
const maxMessageRunes = 4000

// RenderResult formats a search result as an HTML message with one join
// button per item that has a link.
func RenderResult(res *scout.SearchResult) Reply {
	if res.Empty() {
		return Reply{Text: "No results found."}
	}

	var b strings.Builder
	var buttons []Button
	for i, it := range res.Items {
		title := it.Title
		members := "?"
		if it.MemberCount != nil {
			members = strconv.Itoa(*it.MemberCount)
		}
		entry := fmt.Sprintf("%d) <b>%s</b> · %s members · score %d", i+1, html.EscapeString(title), members, it.Score)
		if it.Snippet != "" {
			entry += "\n" + html.EscapeString(it.Snippet)
		}
		if len([]rune(b.String()))+len([]rune(entry))+2 > maxMessageRunes {
			break
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(entry)
		if it.Link != "" {
			buttons = append(buttons, Button{Text: "Join: " + title, URL: it.Link})
		}
	}
	return Reply{Text: b.String(), HTML: true, Buttons: buttons}
}

// DescribeFilter lists the active keyword classes for /keywords.
func DescribeFilter(f *discovery.Filter) string {
	if f == nil {
		return "No filter loaded."
	}
	var b strings.Builder
	classes := f.Classes()
	if len(classes) == 0 && len(f.Include()) == 0 {
		b.WriteString("<b>Include</b>: everything (no include keywords)\n")
	}
	for _, c := range classes {
		fmt.Fprintf(&b, "<b>%s</b> (weight %d): %s\n", html.EscapeString(c.Name), c.Weight, keywordList(c.Patterns))
	}
	if ex := f.Exclude(); len(ex) > 0 {
		fmt.Fprintf(&b, "<b>Exclude</b>: %s\n", keywordList(ex))
	} else {
		b.WriteString("<b>Exclude</b>: none\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func keywordList(ps []*discovery.Pattern) string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, html.EscapeString(p.Keyword()))
	}
	return strings.Join(names, ", ")
}
