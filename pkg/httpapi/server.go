// Package httpapi exposes liveness probes and a JSON search endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sipeed/chanscout/pkg/directory"
	"github.com/sipeed/chanscout/pkg/logger"
	"github.com/sipeed/chanscout/pkg/scout"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	minQueryRunes   = 2
)

// Searcher is the part of scout.Service the API needs.
type Searcher interface {
	Search(ctx context.Context, req scout.SearchRequest) (*scout.SearchResult, error)
	RetryAfterSeconds() int
}

type Server struct {
	svc     Searcher
	limiter *rate.Limiter
	mux     *http.ServeMux
}

type Option func(*Server)

// WithRateLimit caps /search to rps requests per second across all
// clients. rps <= 0 disables the limit.
func WithRateLimit(rps float64) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(svc Searcher, opts ...Option) *Server {
	s := &Server{svc: svc, mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /search", s.handleSearch)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, id)
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.InfoCF("http", "listening", map[string]any{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

type searchBody struct {
	*scout.SearchResult
	RequestID string `json:"request_id"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	id := w.Header().Get(requestIDHeader)
	fail := func(status int, msg string) {
		writeJSON(w, status, errorBody{Error: msg, RequestID: id})
	}

	if s.limiter != nil && !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		fail(http.StatusTooManyRequests, "rate limited")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(query) < minQueryRunes {
		fail(http.StatusBadRequest, "query parameter q needs at least 2 characters")
		return
	}
	if country := strings.TrimSpace(r.URL.Query().Get("country")); country != "" {
		query += " " + country
	}
	top := 0
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		top = n
	}

	res, err := s.svc.Search(r.Context(), scout.SearchRequest{Query: query, TopN: top})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, searchBody{SearchResult: res, RequestID: id})
	case scout.IsQueueFull(err):
		w.Header().Set("Retry-After", strconv.Itoa(s.svc.RetryAfterSeconds()))
		fail(http.StatusTooManyRequests, "search queue is full")
	case errors.Is(err, directory.ErrNoDirectory):
		fail(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		fail(http.StatusGatewayTimeout, err.Error())
	default:
		logger.ErrorCF("http", "search failed", map[string]any{"request_id": id, "error": err.Error()})
		fail(http.StatusBadGateway, "directory search failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
