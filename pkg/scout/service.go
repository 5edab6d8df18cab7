package scout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sipeed/chanscout/pkg/config"
	"github.com/sipeed/chanscout/pkg/directory"
	"github.com/sipeed/chanscout/pkg/discovery"
	"github.com/sipeed/chanscout/pkg/logger"
)

var (
	ErrQueueFull      = errors.New("queue_full")
	ErrEmptyQuery     = errors.New("query is required")
	defaultRetryAfter = 3
)

// Service runs searches end to end: directory lookup, filtering, ranking
// and rendering. The filter can be swapped at any time; a search in flight
// keeps the filter it started with.
type Service struct {
	cfg    config.Config
	dir    directory.Searcher
	filter atomic.Pointer[discovery.Filter]

	sem chan struct{}
	mu  sync.Mutex
	q   int

	now func() time.Time
}

type ServiceOption func(*Service)

// WithClock overrides time.Now for elapsed-time reporting.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService applies runtime defaults so every entry point (bot, HTTP, CLI)
// behaves identically. dir may be nil; searches then fail with
// directory.ErrNoDirectory.
func NewService(cfg config.Config, dir directory.Searcher, filter *discovery.Filter, opts ...ServiceOption) *Service {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}
	if cfg.MaxTopN < cfg.TopN {
		cfg.MaxTopN = cfg.TopN
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 50
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.SnippetRunes <= 0 {
		cfg.SnippetRunes = discovery.DefaultSnippetRunes
	}

	s := &Service{
		cfg: cfg,
		dir: dir,
		sem: make(chan struct{}, cfg.Concurrency),
		now: time.Now,
	}
	if filter == nil {
		filter = discovery.MustFilter(discovery.FilterSpec{})
	}
	s.filter.Store(filter)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFilter installs a new compiled configuration for subsequent searches.
func (s *Service) SetFilter(f *discovery.Filter) {
	if f != nil {
		s.filter.Store(f)
	}
}

func (s *Service) Filter() *discovery.Filter {
	return s.filter.Load()
}

// RetryAfterSeconds is the backoff hint returned with ErrQueueFull.
func (s *Service) RetryAfterSeconds() int {
	return defaultRetryAfter
}

func IsQueueFull(err error) bool {
	return errors.Is(err, ErrQueueFull)
}

func (s *Service) beginQueued(ctx context.Context) error {
	s.mu.Lock()
	if s.q >= s.cfg.QueueSize {
		s.mu.Unlock()
		return ErrQueueFull
	}
	s.q++
	s.mu.Unlock()

	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		s.q--
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *Service) endQueued() {
	select {
	case <-s.sem:
	default:
	}
	s.mu.Lock()
	if s.q > 0 {
		s.q--
	}
	s.mu.Unlock()
}

// clampTopN maps a requested size onto [1, MaxTopN], 0 meaning the default.
func (s *Service) clampTopN(n int) int {
	if n <= 0 {
		return s.cfg.TopN
	}
	if n > s.cfg.MaxTopN {
		return s.cfg.MaxTopN
	}
	return n
}

func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if s.dir == nil {
		return nil, directory.ErrNoDirectory
	}
	if err := s.beginQueued(ctx); err != nil {
		return nil, err
	}
	defer s.endQueued()

	start := s.now()
	cands, err := s.dir.Search(ctx, query, s.cfg.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("directory search: %w", err)
	}
	return s.rank(query, cands, s.clampTopN(req.TopN), start), nil
}

// Rank runs the pipeline over candidates the caller already holds, such as
// a file passed to the CLI. It does not take a queue slot.
func (s *Service) Rank(query string, cands []discovery.Candidate, topN int) *SearchResult {
	return s.rank(strings.TrimSpace(query), cands, s.clampTopN(topN), s.now())
}

func (s *Service) rank(query string, cands []discovery.Candidate, topN int, start time.Time) *SearchResult {
	f := s.filter.Load()
	list, errs := f.Search(cands, topN, s.cfg.Workers)
	for _, e := range errs {
		logger.WarnCF("scout", "candidate skipped", map[string]any{
			"query": query,
			"error": e.Error(),
		})
	}

	res := &SearchResult{
		Query:      query,
		Items:      discovery.Items(list, s.cfg.SnippetRunes),
		Candidates: len(cands),
		Skipped:    len(errs),
		ElapsedMS:  s.now().Sub(start).Milliseconds(),
	}
	if len(res.Items) == 0 {
		res.Notes = append(res.Notes, NoteNoMatches)
	}
	logger.InfoCF("scout", "search done", map[string]any{
		"query":      query,
		"candidates": res.Candidates,
		"items":      len(res.Items),
		"skipped":    res.Skipped,
		"elapsed_ms": res.ElapsedMS,
	})
	return res
}
