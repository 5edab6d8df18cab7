package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sipeed/chanscout/pkg/bot"
	"github.com/sipeed/chanscout/pkg/discovery"
	"github.com/sipeed/chanscout/pkg/scout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearch struct {
	fail map[string]bool
}

func (s stubSearch) Search(_ context.Context, req scout.SearchRequest) (*scout.SearchResult, error) {
	if s.fail[req.Query] {
		return nil, errors.New("directory down")
	}
	return &scout.SearchResult{Query: req.Query, Items: []discovery.Item{{Title: "Hit for " + req.Query, Link: "https://t.me/x"}}}, nil
}

type delivery struct {
	chatID int64
	reply  bot.Reply
}

type sink struct{ got []delivery }

func (s *sink) Reply(_ context.Context, chatID int64, r bot.Reply) error {
	s.got = append(s.got, delivery{chatID, r})
	return nil
}

func TestNewValidates(t *testing.T) {
	_, err := New("bogus", []string{"q"}, []int64{1}, stubSearch{}, &sink{})
	assert.Error(t, err)
	_, err = New("0 9 * * *", nil, []int64{1}, stubSearch{}, &sink{})
	assert.Error(t, err)
	_, err = New("0 9 * * *", []string{"q"}, nil, stubSearch{}, &sink{})
	assert.Error(t, err)
}

func TestNextTick(t *testing.T) {
	s, err := New("0 9 * * *", []string{"q"}, []int64{1}, stubSearch{}, &sink{})
	require.NoError(t, err)

	ref := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	next, err := s.Next(ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), next)

	next, err = s.Next(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), next)
}

func TestRunOnceSendsEveryQueryToEveryAdmin(t *testing.T) {
	out := &sink{}
	s, err := New("0 9 * * *", []string{"gulf", "broken", "قطر"}, []int64{1, 2},
		stubSearch{fail: map[string]bool{"broken": true}}, out)
	require.NoError(t, err)

	s.RunOnce(context.Background())

	require.Len(t, out.got, 4)
	assert.Equal(t, int64(1), out.got[0].chatID)
	assert.Equal(t, int64(2), out.got[1].chatID)
	assert.Contains(t, out.got[0].reply.Text, "Digest: <b>gulf</b>")
	assert.Contains(t, out.got[0].reply.Text, "Hit for gulf")
	assert.Contains(t, out.got[2].reply.Text, "قطر")
	assert.True(t, out.got[2].reply.HTML)
}

func TestStartStop(t *testing.T) {
	s, err := New("0 9 * * *", []string{"q"}, []int64{1}, stubSearch{}, &sink{})
	require.NoError(t, err)
	s.Start(context.Background())
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
