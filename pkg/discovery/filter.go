package discovery

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ClassSpec declares a weighted keyword class ("arabic" weight 2, "latin"
// weight 1, ...). Class keywords are include keywords.
type ClassSpec struct {
	Name     string   `yaml:"name" json:"name"`
	Weight   int      `yaml:"weight" json:"weight"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// FilterSpec is the raw keyword configuration a Filter is compiled from.
type FilterSpec struct {
	Include       []string
	Exclude       []string
	Classes       []ClassSpec
	// IncludeWeight scores the plain Include keywords. nil selects 1; an
	// explicit 0 keeps them as pass criteria that add nothing to the score.
	IncludeWeight *int
	// MaxGap bounds separator runs; 0 selects DefaultMaxGap and a negative
	// value removes the bound.
	MaxGap int
}

// Filter is the compiled, read-only keyword configuration. It is built once
// per configuration load and shared by every request.
type Filter struct {
	include []*Pattern
	exclude []*Pattern
	classes []WeightedClass
}

// NewFilter compiles spec. The first invalid keyword or weight aborts with
// a *ConfigurationError.
func NewFilter(spec FilterSpec) (*Filter, error) {
	gap := spec.MaxGap
	if gap == 0 {
		gap = DefaultMaxGap
	}
	opt := WithMaxGap(gap)
	weight := 1
	if spec.IncludeWeight != nil {
		weight = *spec.IncludeWeight
	}
	if weight < 0 {
		return nil, &ConfigurationError{Class: ClassInclude, Reason: fmt.Sprintf("include weight %d is negative", weight)}
	}

	f := &Filter{}

	compileAll := func(keywords []string, class KeywordClass) ([]*Pattern, error) {
		out := make([]*Pattern, 0, len(keywords))
		for _, kw := range keywords {
			p, err := Compile(kw, opt)
			if err != nil {
				if ce, ok := err.(*ConfigurationError); ok {
					ce.Class = class
				}
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	}

	plain, err := compileAll(spec.Include, ClassInclude)
	if err != nil {
		return nil, err
	}
	f.exclude, err = compileAll(spec.Exclude, ClassExclude)
	if err != nil {
		return nil, err
	}

	f.include = append(f.include, plain...)
	if len(plain) > 0 {
		f.classes = append(f.classes, WeightedClass{Name: string(ClassInclude), Weight: weight, Patterns: plain})
	}

	seen := make(map[string]struct{}, len(spec.Classes))
	for _, cs := range spec.Classes {
		name := strings.TrimSpace(cs.Name)
		if name == "" {
			return nil, &ConfigurationError{Class: ClassInclude, Reason: "keyword class without a name"}
		}
		if _, dup := seen[name]; dup {
			return nil, &ConfigurationError{Keyword: name, Class: ClassInclude, Reason: "duplicate keyword class"}
		}
		seen[name] = struct{}{}
		if cs.Weight < 0 {
			return nil, &ConfigurationError{Keyword: name, Class: ClassInclude, Reason: fmt.Sprintf("class weight %d is negative", cs.Weight)}
		}
		patterns, err := compileAll(cs.Keywords, ClassInclude)
		if err != nil {
			return nil, err
		}
		f.include = append(f.include, patterns...)
		f.classes = append(f.classes, WeightedClass{Name: name, Weight: cs.Weight, Patterns: patterns})
	}

	return f, nil
}

// MustFilter is NewFilter for specs known to be valid.
func MustFilter(spec FilterSpec) *Filter {
	f, err := NewFilter(spec)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Filter) Include() []*Pattern { return f.include }

func (f *Filter) Exclude() []*Pattern { return f.exclude }

func (f *Filter) Classes() []WeightedClass { return f.classes }

// Check runs the pipeline on free text, for diagnostics.
func (f *Filter) Check(text string) (passed bool, score int) {
	norm := []rune(Normalize(text))
	return matchesRunes(norm, f.include, f.exclude), scoreRunes(norm, f.classes)
}

func (f *Filter) evaluateOne(idx int, c Candidate) (MatchResult, error) {
	if strings.TrimSpace(c.Title) == "" {
		return MatchResult{}, &InputError{Index: idx, Title: c.Title, Reason: "missing title"}
	}
	norm := []rune(Normalize(c.CombinedText()))
	return MatchResult{
		Candidate: c,
		Passed:    matchesRunes(norm, f.include, f.exclude),
		Score:     scoreRunes(norm, f.classes),
	}, nil
}

// Evaluate matches and scores every candidate in input order. Malformed
// candidates are skipped and reported as *InputError values; they never
// abort the batch.
func (f *Filter) Evaluate(cands []Candidate) ([]MatchResult, []error) {
	results := make([]MatchResult, 0, len(cands))
	var errs []error
	for i, c := range cands {
		r, err := f.evaluateOne(i, c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, r)
	}
	return results, errs
}

// EvaluateParallel is Evaluate spread over at most workers goroutines. The
// output order matches Evaluate.
func (f *Filter) EvaluateParallel(cands []Candidate, workers int) ([]MatchResult, []error) {
	if workers <= 1 || len(cands) < 2 {
		return f.Evaluate(cands)
	}

	slots := make([]MatchResult, len(cands))
	slotErrs := make([]error, len(cands))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range cands {
		g.Go(func() error {
			slots[i], slotErrs[i] = f.evaluateOne(i, cands[i])
			return nil
		})
	}
	_ = g.Wait()

	results := make([]MatchResult, 0, len(cands))
	var errs []error
	for i := range cands {
		if slotErrs[i] != nil {
			errs = append(errs, slotErrs[i])
			continue
		}
		results = append(results, slots[i])
	}
	return results, errs
}

// Search evaluates cands and returns the ranked top results.
func (f *Filter) Search(cands []Candidate, topN, workers int) (RankedList, []error) {
	results, errs := f.EvaluateParallel(cands, workers)
	return Rank(results, topN, ByMembers), errs
}
