package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func patterns(keywords ...string) []*Pattern {
	out := make([]*Pattern, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, MustCompile(kw))
	}
	return out
}

func TestMatches(t *testing.T) {
	cases := []struct {
		name    string
		include []string
		exclude []string
		text    string
		want    bool
	}{
		{"exclude beats include", []string{"gulf"}, []string{"news"}, "Gulf News", false},
		{"empty include allows all", nil, []string{"spam"}, "anything", true},
		{"empty include still excludes", nil, []string{"spam"}, "spam channel", false},
		{"include hit", []string{"gulf", "qatar"}, nil, "Qatar Today", true},
		{"include miss", []string{"gulf"}, nil, "sports daily", false},
		{"obfuscated exclude", []string{"gulf"}, []string{"casino"}, "gulf c.a.s.i.n.o", false},
		{"arabic variants", []string{"أخبار"}, nil, "اخبار الخليج", true},
		{"no patterns at all", nil, nil, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Matches(tc.text, patterns(tc.include...), patterns(tc.exclude...))
			assert.Equal(t, tc.want, got)
		})
	}
}
