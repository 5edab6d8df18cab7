package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sipeed/chanscout/pkg/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplain(t *testing.T) {
	f := discovery.MustFilter(discovery.FilterSpec{
		Include: []string{"news"},
		Exclude: []string{"casino"},
	})
	var buf bytes.Buffer
	explain(&buf, f, "N.E.W.S Casino")
	out := buf.String()
	assert.Contains(t, out, "normalized: n.e.w.s casino")
	assert.Contains(t, out, `exclude "casino" matched`)
	assert.Contains(t, out, `include "news" matched (+1)`)
	assert.Contains(t, out, "FAIL score=1")
}

func TestSearchFromFile(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(results, []byte(`{"results":[
		{"type":"channel","title":"Gulf News","username":"gulfnews","members":50},
		{"type":"channel","title":"Gulf Casino News","username":"casino"},
		{"type":"user","title":"Gulf News Fan"}
	]}`), 0o644))

	t.Setenv("INCLUDE_KEYWORDS", "news")
	t.Setenv("EXCLUDE_KEYWORDS", "casino")
	envFile = ""

	cmd := searchCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"gulf", "--from", results})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Items: 1 | Candidates: 2 | Skipped: 0")
	assert.Contains(t, out, "1. [channel] Gulf News score=1 members=50")
	assert.Contains(t, out, "https://t.me/gulfnews")
}

func TestVersion(t *testing.T) {
	cmd := versionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "chanscout dev\n", buf.String())
}
