package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var normalizeCorpus = []string{
	"",
	"Hello World",
	"أحمد",
	"إسلام",
	"آمنة",
	"ٱلله",
	"مستشفى",
	"مدرسة جميلة",
	"جَميلةٌ",
	"سُؤال",
	"مسائل",
	"مرحبـــا",
	"قناة ٢٠٢٤",
	"۱۲۳ test",
	"Café",
	"İstanbul",
	"Straße",
	"ΣΊΣΥΦΟΣ",
	"أ",
	"\xff\xfe broken",
	"s.p.a.m",
	"Gulf_News | أخبار الخليج",
	"ꮵ",
	"Ꮵ",
	"000000000000000000000000000000ꮵ",
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range normalizeCorpus {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestNormalize_NeverPanics(t *testing.T) {
	for _, s := range normalizeCorpus {
		assert.NotPanics(t, func() { _ = Normalize(s) }, "input %q", s)
	}
}

func TestNormalize_LetterVariants(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"hamza above alef", "أحمد", "احمد"},
		{"hamza below alef", "إسلام", "اسلام"},
		{"madda alef", "آمنة", "امنه"},
		{"alef wasla", "ٱلله", "الله"},
		{"alef maksura", "مستشفى", "مستشفي"},
		{"teh marbuta", "مدرسة", "مدرسه"},
		{"waw hamza", "سؤال", "سوال"},
		{"yeh hamza", "مسائل", "مسايل"},
		{"decomposed hamza", "ا\u0654حمد", "احمد"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, Normalize(tc.b), Normalize(tc.a))
		})
	}
}

func TestNormalize_StripsDiacritics(t *testing.T) {
	assert.Equal(t, Normalize("جميلة"), Normalize("جَميلة"))
	assert.Equal(t, Normalize("محمد"), Normalize("مُحَمَّد"))
	assert.Equal(t, "مرحبا", Normalize("مرحبـــا"))
}

func TestNormalize_Digits(t *testing.T) {
	assert.Equal(t, "0123456789", Normalize("٠١٢٣٤٥٦٧٨٩"))
	assert.Equal(t, "0123456789", Normalize("۰۱۲۳۴۵۶۷۸۹"))
	assert.Equal(t, "قناه 2024", Normalize("قناة ٢٠٢٤"))
}

func TestNormalize_CaseFolding(t *testing.T) {
	assert.Equal(t, "gulf news", Normalize("GULF News"))
	assert.Equal(t, Normalize("café"), Normalize("CAFÉ"))
}

func TestNormalize_CherokeeIsStable(t *testing.T) {
	assert.Equal(t, Normalize("ꮵ"), Normalize("Ꮵ"))
	once := Normalize("Ꮵ")
	assert.Equal(t, once, Normalize(once))
}

func TestNormalize_InvalidUTF8(t *testing.T) {
	out := Normalize("\xff abc")
	assert.Equal(t, "� abc", out)
}

func FuzzNormalizeIdempotent(f *testing.F) {
	for _, s := range normalizeCorpus {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}
