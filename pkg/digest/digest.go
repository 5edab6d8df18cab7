// Package digest runs saved queries on a cron schedule and sends the
// results to the admins.
package digest

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/sipeed/chanscout/pkg/bot"
	"github.com/sipeed/chanscout/pkg/logger"
	"github.com/sipeed/chanscout/pkg/scout"
)

type Searcher interface {
	Search(ctx context.Context, req scout.SearchRequest) (*scout.SearchResult, error)
}

type Scheduler struct {
	expr       string
	queries    []string
	recipients []int64
	svc        Searcher
	out        bot.Responder
	now        func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(expr string, queries []string, recipients []int64, svc Searcher, out bot.Responder, opts ...Option) (*Scheduler, error) {
	if !gronx.New().IsValid(expr) {
		return nil, fmt.Errorf("invalid digest schedule %q", expr)
	}
	if len(queries) == 0 {
		return nil, errors.New("digest has no queries")
	}
	if len(recipients) == 0 {
		return nil, errors.New("digest has no recipients")
	}
	s := &Scheduler{
		expr:       expr,
		queries:    queries,
		recipients: recipients,
		svc:        svc,
		out:        out,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next is the first tick strictly after ref.
func (s *Scheduler) Next(ref time.Time) (time.Time, error) {
	return gronx.NextTickAfter(s.expr, ref, false)
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		next, err := s.Next(s.now())
		if err != nil {
			logger.ErrorCF("digest", "cannot compute next run", map[string]any{"schedule": s.expr, "error": err.Error()})
			return
		}
		logger.InfoCF("digest", "next run scheduled", map[string]any{"at": next.Format(time.RFC3339)})

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs every query and sends each result to every recipient. A
// failing query or delivery is logged and does not stop the rest.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, q := range s.queries {
		res, err := s.svc.Search(ctx, scout.SearchRequest{Query: q})
		if err != nil {
			logger.WarnCF("digest", "query failed", map[string]any{"query": q, "error": err.Error()})
			continue
		}
		rep := bot.RenderResult(res)
		rep.Text = fmt.Sprintf("📬 Digest: <b>%s</b>\n\n%s", html.EscapeString(q), rep.Text)
		rep.HTML = true
		for _, chatID := range s.recipients {
			if err := s.out.Reply(ctx, chatID, rep); err != nil {
				logger.WarnCF("digest", "delivery failed", map[string]any{"chat_id": chatID, "error": err.Error()})
			}
		}
	}
}
