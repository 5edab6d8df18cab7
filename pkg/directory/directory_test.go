package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sipeed/chanscout/pkg/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{Type: "channel", Title: "Gulf News", Username: "@gulfnews", Members: discovery.IntPtr(900)},
		{Type: "user", Title: "Some Person", Username: "person"},
		{Type: "megagroup", Title: "أخبار الخليج", About: "نقاش"},
		{Type: "group", Title: "Old Chat", InviteLink: "https://t.me/+abc"},
		{Type: "bot", Title: "Helper"},
	}
}

func TestCandidatesKeepsOnlyChannels(t *testing.T) {
	got := Candidates(sampleEntries(), false)
	require.Len(t, got, 1)
	assert.Equal(t, discovery.KindChannel, got[0].Kind)
	assert.Equal(t, "Gulf News", got[0].Title)
}

func TestCandidatesWithGroups(t *testing.T) {
	got := Candidates(sampleEntries(), true)
	require.Len(t, got, 3)
	assert.Equal(t, discovery.KindChannel, got[0].Kind)
	assert.Equal(t, "gulfnews", got[0].Username)
	assert.Equal(t, 900, got[0].Members())
	assert.Equal(t, discovery.KindMegagroup, got[1].Kind)
	assert.Equal(t, discovery.KindGroup, got[2].Kind)
	assert.Equal(t, 0, got[2].Members())
}

func TestHTTPClientSearch(t *testing.T) {
	var gotQuery, gotLimit, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{Results: sampleEntries()})
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL, WithToken("secret"), WithRate(100), WithGroups(true))
	require.NoError(t, err)

	cands, err := c.Search(context.Background(), "أخبار", 2)
	require.NoError(t, err)
	assert.Equal(t, "أخبار", gotQuery)
	assert.Equal(t, "2", gotLimit)
	assert.Equal(t, "Bearer secret", gotAuth)
	require.Len(t, cands, 2)
	assert.Equal(t, "Gulf News", cands[0].Title)

	channels, err := NewHTTPClient(srv.URL, WithRate(100))
	require.NoError(t, err)
	cands, err = channels.Search(context.Background(), "أخبار", 10)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, discovery.KindChannel, cands[0].Kind)
}

func TestHTTPClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL, WithRate(100))
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "x", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	_, err = NewHTTPClient("")
	assert.ErrorIs(t, err, ErrNoDirectory)
	_, err = NewHTTPClient("ftp://example.com")
	assert.Error(t, err)
}

func TestHTTPClientHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{})
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL, WithRate(0.001))
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "first", 1)
	require.NoError(t, err)

	// The bucket is now empty; the next call must give up with the context.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Search(ctx, "second", 1)
	assert.Error(t, err)
}

func TestFileSourceJSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	data, err := json.Marshal(Response{Results: sampleEntries()})
	require.NoError(t, err)
	jsonPath := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(jsonPath, data, 0o644))

	yamlPath := filepath.Join(dir, "results.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`- type: channel
  title: Gulf News
  username: gulfnews
  members: 10
- type: user
  title: Nobody
`), 0o644))

	src, err := LoadFile(jsonPath)
	require.NoError(t, err)
	all, err := src.Search(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	src, err = LoadFile(jsonPath, WithFileGroups(true))
	require.NoError(t, err)
	all, err = src.Search(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	src, err = LoadFile(yamlPath)
	require.NoError(t, err)
	all, err = src.Search(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 10, all[0].Members())
}

func TestFileSourceNarrowsByQuery(t *testing.T) {
	src := NewFileSource(sampleEntries(), WithFileGroups(true))

	got, err := src.Search(context.Background(), "اخبار", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "أخبار الخليج", got[0].Title)

	got, err = src.Search(context.Background(), "news", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = src.Search(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
