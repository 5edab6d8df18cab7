package discovery

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DefaultMaxGap is the number of separator runes tolerated between two
// keyword letters ("t.e.s.t", "t _ e").
const DefaultMaxGap = 3

// Pattern is a compiled keyword matcher. It follows the grammar
//
//	lit (noise{0,gap} lit)*
//
// where every lit is one rune of the normalized keyword, taken literally
// (punctuation and inner spaces included), and noise is any rune that is
// neither a letter nor a number. A Pattern is immutable once built and may
// be shared between goroutines.
type Pattern struct {
	keyword string
	lits    []rune
	maxGap  int
}

type patternConfig struct {
	maxGap int
}

type PatternOption func(*patternConfig)

// WithMaxGap bounds the separator run between keyword letters. A value of
// zero or less removes the bound.
func WithMaxGap(n int) PatternOption {
	return func(c *patternConfig) { c.maxGap = n }
}

// IsNoise reports whether r counts as a separator between keyword letters.
func IsNoise(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// Compile normalizes keyword and builds its matcher. Empty and
// whitespace-only keywords are rejected with a *ConfigurationError.
func Compile(keyword string, opts ...PatternOption) (*Pattern, error) {
	cfg := patternConfig{maxGap: DefaultMaxGap}
	for _, opt := range opts {
		opt(&cfg)
	}

	trimmed := strings.TrimSpace(keyword)
	if trimmed == "" {
		return nil, &ConfigurationError{Keyword: keyword, Reason: "keyword is empty"}
	}

	lits := []rune(Normalize(trimmed))
	if len(lits) == 0 {
		return nil, &ConfigurationError{Keyword: keyword, Reason: "keyword is empty after normalization"}
	}

	return &Pattern{keyword: trimmed, lits: lits, maxGap: cfg.maxGap}, nil
}

// MustCompile is Compile for keywords known to be valid.
func MustCompile(keyword string, opts ...PatternOption) *Pattern {
	p, err := Compile(keyword, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Keyword returns the keyword as configured (trimmed, not normalized).
func (p *Pattern) Keyword() string {
	return p.keyword
}

// Match reports whether the pattern occurs anywhere in text. text must
// already be normalized.
func (p *Pattern) Match(text string) bool {
	return p.MatchRunes([]rune(text))
}

// MatchRunes is Match over a pre-split normalized text, so a caller testing
// many patterns against one candidate decodes it once.
func (p *Pattern) MatchRunes(text []rune) bool {
	if len(p.lits) == 0 || len(text) < len(p.lits) {
		return false
	}

	// reach[i] is set when the literals consumed so far can end right
	// before text[i]. A literal may itself be noise, so every skip length
	// up to the gap is tried rather than skipping greedily.
	reach := make([]bool, len(text)+1)
	next := make([]bool, len(text)+1)
	alive := false
	for i, r := range text {
		if r == p.lits[0] {
			reach[i+1] = true
			alive = true
		}
	}
	for _, lit := range p.lits[1:] {
		if !alive {
			return false
		}
		clear(next)
		alive = false
		for pos, ok := range reach {
			if !ok {
				continue
			}
			for at := pos; at < len(text); at++ {
				if text[at] == lit {
					next[at+1] = true
					alive = true
				}
				if !IsNoise(text[at]) || (p.maxGap > 0 && at-pos >= p.maxGap) {
					break
				}
			}
		}
		reach, next = next, reach
	}
	return alive
}

// String renders the equivalent regular expression. It is meant for logs
// and diagnostics; matching does not go through regexp.
func (p *Pattern) String() string {
	sep := `[^\pL\pN]*`
	if p.maxGap > 0 {
		sep = fmt.Sprintf(`[^\pL\pN]{0,%d}`, p.maxGap)
	}
	parts := make([]string, len(p.lits))
	for i, r := range p.lits {
		parts[i] = regexp.QuoteMeta(string(r))
	}
	return strings.Join(parts, sep)
}
