package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sipeed/chanscout/pkg/discovery"
	"gopkg.in/yaml.v3"
)

// FileSource serves results from a static JSON or YAML file. The file holds
// either a Response envelope or a bare list of entries.
//
// Queries narrow the entries loosely: an entry is kept when the query,
// compiled like a keyword, matches its text. A query that does not compile
// keeps everything.
type FileSource struct {
	entries []Entry
	groups  bool
}

type FileOption func(*FileSource)

// WithFileGroups keeps megagroups and basic groups next to channels.
func WithFileGroups(include bool) FileOption {
	return func(f *FileSource) { f.groups = include }
}

func LoadFile(path string, opts ...FileOption) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory file %s: %w", path, err)
	}
	entries, err := parseEntries(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("invalid directory file %s: %w", path, err)
	}
	return NewFileSource(entries, opts...), nil
}

// NewFileSource wraps entries already in memory.
func NewFileSource(entries []Entry, opts ...FileOption) *FileSource {
	f := &FileSource{entries: entries}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func parseEntries(data []byte, ext string) ([]Entry, error) {
	trimmed := strings.TrimSpace(string(data))
	if ext == ".json" || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if strings.HasPrefix(trimmed, "[") {
			var list []Entry
			err := json.Unmarshal(data, &list)
			return list, err
		}
		var resp Response
		err := json.Unmarshal(data, &resp)
		return resp.Results, err
	}

	var resp Response
	if err := yaml.Unmarshal(data, &resp); err == nil && len(resp.Results) > 0 {
		return resp.Results, nil
	}
	var list []Entry
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (f *FileSource) Search(ctx context.Context, query string, limit int) ([]discovery.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cands := Candidates(f.entries, f.groups)
	if p, err := discovery.Compile(query, discovery.WithMaxGap(-1)); err == nil {
		kept := cands[:0:0]
		for _, c := range cands {
			if p.Match(discovery.Normalize(c.CombinedText())) {
				kept = append(kept, c)
			}
		}
		cands = kept
	}
	return cands[:clampLimit(limit, len(cands))], nil
}
