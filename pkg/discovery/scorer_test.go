package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Additive(t *testing.T) {
	arabic := WeightedClass{Name: "arabic", Weight: 2, Patterns: patterns("اخبار")}
	latin := WeightedClass{Name: "latin", Weight: 1, Patterns: patterns("news")}
	text := "أخبار | news"

	assert.Equal(t, 3, Score(text, []WeightedClass{arabic, latin}))
	assert.Equal(t, 3, Score(text, []WeightedClass{latin, arabic}))
}

func TestScore_PerKeyword(t *testing.T) {
	c := WeightedClass{Name: "latin", Weight: 2, Patterns: patterns("gulf", "news", "sport")}
	assert.Equal(t, 4, Score("gulf news", []WeightedClass{c}))
	assert.Equal(t, 0, Score("weather", []WeightedClass{c}))
}

func TestScore_NonNegative(t *testing.T) {
	zero := WeightedClass{Name: "muted", Weight: 0, Patterns: patterns("gulf")}
	negative := WeightedClass{Name: "bad", Weight: -5, Patterns: patterns("gulf")}
	assert.Equal(t, 0, Score("gulf", []WeightedClass{zero, negative}))
	assert.Equal(t, 0, Score("", nil))
}
