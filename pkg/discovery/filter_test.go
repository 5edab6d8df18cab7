package discovery

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilter_ConfigurationErrors(t *testing.T) {
	cases := []struct {
		name string
		spec FilterSpec
		want string
	}{
		{"empty include", FilterSpec{Include: []string{"gulf", ""}}, "include keyword"},
		{"blank exclude", FilterSpec{Exclude: []string{"  "}}, "exclude keyword"},
		{"diacritics only", FilterSpec{Exclude: []string{"ًٌ"}}, `"ًٌ"`},
		{"negative class weight", FilterSpec{Classes: []ClassSpec{{Name: "ar", Weight: -1, Keywords: []string{"x"}}}}, "negative"},
		{"negative include weight", FilterSpec{IncludeWeight: IntPtr(-2)}, "negative"},
		{"duplicate class", FilterSpec{Classes: []ClassSpec{{Name: "ar", Weight: 1}, {Name: "ar", Weight: 2}}}, "duplicate"},
		{"unnamed class", FilterSpec{Classes: []ClassSpec{{Weight: 1}}}, "without a name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFilter(tc.spec)
			require.Error(t, err)
			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestFilter_WeightedClasses(t *testing.T) {
	f := MustFilter(FilterSpec{
		Exclude: []string{"casino"},
		Classes: []ClassSpec{
			{Name: "arabic", Weight: 2, Keywords: []string{"أخبار", "رياضة"}},
			{Name: "latin", Weight: 1, Keywords: []string{"news", "sport"}},
		},
	})

	passed, score := f.Check("أخبار الرياضة | Sport News")
	assert.True(t, passed)
	assert.Equal(t, 6, score)

	passed, score = f.Check("casino news")
	assert.False(t, passed)
	assert.Equal(t, 1, score)

	passed, _ = f.Check("weather")
	assert.False(t, passed)
}

func TestFilter_PlainIncludeUsesIncludeWeight(t *testing.T) {
	f := MustFilter(FilterSpec{Include: []string{"gulf"}, IncludeWeight: IntPtr(3)})
	_, score := f.Check("gulf")
	assert.Equal(t, 3, score)

	def := MustFilter(FilterSpec{Include: []string{"gulf"}})
	_, score = def.Check("gulf")
	assert.Equal(t, 1, score)
}

func TestFilter_ZeroIncludeWeightStillFilters(t *testing.T) {
	f := MustFilter(FilterSpec{Include: []string{"gulf"}, IncludeWeight: IntPtr(0)})
	passed, score := f.Check("gulf news")
	assert.True(t, passed)
	assert.Equal(t, 0, score)

	passed, _ = f.Check("weather")
	assert.False(t, passed)
}

func TestFilter_SymbolExcludeDoesNotVetoDigits(t *testing.T) {
	f := MustFilter(FilterSpec{Include: []string{"news"}, Exclude: []string{"18+"}})
	passed, _ := f.Check("Gulf News since 2018")
	assert.True(t, passed)

	passed, _ = f.Check("News 18+")
	assert.False(t, passed)
}

func TestFilter_AllowAllWithoutIncludes(t *testing.T) {
	f := MustFilter(FilterSpec{Exclude: []string{"spam"}})
	passed, score := f.Check("anything")
	assert.True(t, passed)
	assert.Equal(t, 0, score)
}

func TestFilter_EvaluateSkipsMalformed(t *testing.T) {
	f := MustFilter(FilterSpec{Include: []string{"news"}})
	cands := []Candidate{
		{Title: "Daily News", MemberCount: IntPtr(5)},
		{Title: "   ", Username: "ghost"},
		{Title: "Weather"},
	}
	results, errs := f.Evaluate(cands)
	require.Len(t, results, 2)
	require.Len(t, errs, 1)
	assert.True(t, IsInputError(errs[0]))

	var ie *InputError
	require.True(t, errors.As(errs[0], &ie))
	assert.Equal(t, 1, ie.Index)

	assert.True(t, results[0].Passed)
	assert.False(t, results[1].Passed)
}

func TestFilter_EvaluateParallelMatchesSequential(t *testing.T) {
	f := MustFilter(FilterSpec{
		Include: []string{"news"},
		Exclude: []string{"spam"},
		Classes: []ClassSpec{{Name: "ar", Weight: 2, Keywords: []string{"اخبار"}}},
	})
	cands := make([]Candidate, 0, 200)
	for i := 0; i < 200; i++ {
		title := fmt.Sprintf("channel %d", i)
		switch i % 4 {
		case 0:
			title += " news"
		case 1:
			title += " أخبار"
		case 2:
			title += " s.p.a.m news"
		case 3:
			title = ""
		}
		cands = append(cands, Candidate{Title: title, MemberCount: IntPtr(i)})
	}

	seq, seqErrs := f.Evaluate(cands)
	par, parErrs := f.EvaluateParallel(cands, 8)
	assert.Equal(t, seq, par)
	assert.Equal(t, len(seqErrs), len(parErrs))
}

func TestFilter_SearchRanksAndTruncates(t *testing.T) {
	f := MustFilter(FilterSpec{
		Classes: []ClassSpec{
			{Name: "arabic", Weight: 2, Keywords: []string{"اخبار"}},
			{Name: "latin", Weight: 1, Keywords: []string{"news"}},
		},
	})
	cands := []Candidate{
		{Title: "World News", MemberCount: IntPtr(500)},
		{Title: "أخبار News", MemberCount: IntPtr(10)},
		{Title: "Cooking"},
		{Title: "اخبار", MemberCount: IntPtr(20)},
	}
	ranked, errs := f.Search(cands, 2, 4)
	assert.Empty(t, errs)
	assert.Equal(t, []string{"أخبار News", "اخبار"}, titles(ranked))
}
