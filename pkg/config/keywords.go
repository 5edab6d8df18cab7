package config

import (
	"fmt"
	"os"

	"github.com/sipeed/chanscout/pkg/discovery"
	"gopkg.in/yaml.v3"
)

// KeywordFile is the YAML layout of KEYWORDS_FILE:
//
//	include: [gulf, qatar]
//	exclude: [casino, "18+"]
//	include_weight: 1
//	classes:
//	  - name: arabic
//	    weight: 2
//	    keywords: [أخبار, رياضة]
//	  - name: latin
//	    weight: 1
//	    keywords: [news, sport]
type KeywordFile struct {
	Include       []string              `yaml:"include"`
	Exclude       []string              `yaml:"exclude"`
	IncludeWeight *int                  `yaml:"include_weight"`
	Classes       []discovery.ClassSpec `yaml:"classes"`
}

// LoadKeywordFile reads and parses a keyword file.
func LoadKeywordFile(path string) (*KeywordFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read keywords file %s: %w", path, err)
	}
	var kf KeywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return &kf, nil
}

// FilterSpec merges the environment keyword lists with the keyword file.
func (c *Config) FilterSpec() (discovery.FilterSpec, error) {
	weight := c.IncludeWeight
	spec := discovery.FilterSpec{
		Include:       append([]string(nil), c.IncludeKeywords...),
		Exclude:       append([]string(nil), c.ExcludeKeywords...),
		IncludeWeight: &weight,
		MaxGap:        c.KeywordMaxGap,
	}
	if spec.MaxGap == 0 {
		spec.MaxGap = -1
	}
	if c.KeywordsFile == "" {
		return spec, nil
	}

	kf, err := LoadKeywordFile(c.KeywordsFile)
	if err != nil {
		return spec, err
	}
	spec.Include = append(spec.Include, kf.Include...)
	spec.Exclude = append(spec.Exclude, kf.Exclude...)
	spec.Classes = kf.Classes
	if kf.IncludeWeight != nil {
		spec.IncludeWeight = kf.IncludeWeight
	}
	return spec, nil
}

// BuildFilter compiles the keyword configuration. A returned error wraps a
// *discovery.ConfigurationError when a keyword or weight is invalid.
func (c *Config) BuildFilter() (*discovery.Filter, error) {
	spec, err := c.FilterSpec()
	if err != nil {
		return nil, err
	}
	f, err := discovery.NewFilter(spec)
	if err != nil {
		return nil, fmt.Errorf("keyword configuration: %w", err)
	}
	return f, nil
}
