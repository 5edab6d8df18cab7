package discovery

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// arabicFold maps letter variants onto the base letter used for comparison.
var arabicFold = map[rune]rune{
	'آ': 'ا', // alef with madda
	'أ': 'ا', // alef with hamza above
	'إ': 'ا', // alef with hamza below
	'ٱ': 'ا', // alef wasla
	'ى': 'ي', // alef maksura -> yeh
	'ة': 'ه', // teh marbuta -> heh
	'ؤ': 'و', // waw with hamza
	'ئ': 'ي', // yeh with hamza
}

// tashkeelRanges are the combining marks stripped before comparison.
var tashkeelRanges = [][2]rune{
	{0x0610, 0x061A},
	{0x064B, 0x065F},
	{0x0670, 0x0670},
	{0x06D6, 0x06DC},
	{0x06DF, 0x06E4},
	{0x06E7, 0x06E8},
	{0x06EA, 0x06ED},
}

const tatweel = 'ـ'

func foldRune(r rune) rune {
	if f, ok := arabicFold[r]; ok {
		return f
	}
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	}
	return r
}

func isStripped(r rune) bool {
	if r == tatweel {
		return true
	}
	for _, rg := range tashkeelRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// Transformer chains carry internal buffers, so each goroutine takes its own.
var normalizerPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Map(foldRune),
			runes.Remove(runes.Predicate(isStripped)),
			cases.Fold(),
			// Fold is not a fixed point for every script (Cherokee ꮵ and Ꮵ
			// swap), so settle on lower case afterwards.
			runes.Map(unicode.ToLower),
			norm.NFC,
		)
	},
}

// Normalize returns the canonical comparison form of text. It never fails:
// invalid UTF-8 is replaced with U+FFFD and the empty string maps to itself.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToValidUTF8(text, "�")

	t := normalizerPool.Get().(transform.Transformer)
	defer normalizerPool.Put(t)

	out, _, err := transform.String(t, text)
	if err != nil {
		return strings.ToLower(text)
	}
	return out
}
