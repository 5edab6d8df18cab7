// Package bot is the Telegram front end. Command logic lives in Handler and
// never touches the Telegram client directly, so the transport in
// telegram.go stays a thin adapter.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sipeed/chanscout/pkg/directory"
	"github.com/sipeed/chanscout/pkg/discovery"
	"github.com/sipeed/chanscout/pkg/logger"
	"github.com/sipeed/chanscout/pkg/scout"
	"golang.org/x/time/rate"
)

var ErrUnauthorized = errors.New("unauthorized")

// Request is one incoming bot command.
type Request struct {
	ChatID  int64
	UserID  int64
	Command string
	Args    string
}

type Button struct {
	Text string
	URL  string
}

type Reply struct {
	Text    string
	HTML    bool
	Buttons []Button
}

// Responder delivers replies to a chat.
type Responder interface {
	Reply(ctx context.Context, chatID int64, r Reply) error
}

// Webhooks controls the bot's webhook registration.
type Webhooks interface {
	DeleteWebhook(ctx context.Context) error
	WebhookURL(ctx context.Context) (string, error)
}

// Searcher is the part of scout.Service the bot uses.
type Searcher interface {
	Search(ctx context.Context, req scout.SearchRequest) (*scout.SearchResult, error)
	RetryAfterSeconds() int
	Filter() *discovery.Filter
}

type commandFunc func(ctx context.Context, req Request, out Responder) error

type command struct {
	fn        commandFunc
	adminOnly bool
	// private commands are refused to non-admins with the private bot reply.
	private bool
	limited bool
}

// Handler routes commands. It is safe for concurrent use.
type Handler struct {
	svc      Searcher
	webhooks Webhooks
	admins   map[int64]struct{}
	commands map[string]command

	perMinute int
	mu        sync.Mutex
	limiters  map[int64]*rate.Limiter
}

type HandlerOption func(*Handler)

// WithChatRate limits each chat to n rate-limited commands per minute.
// n <= 0 disables the limit.
func WithChatRate(n int) HandlerOption {
	return func(h *Handler) { h.perMinute = n }
}

// NewHandler builds the command table. A non-empty admin set makes the bot
// private: only admins may start it or search. An empty set lets every user
// run every command.
func NewHandler(svc Searcher, webhooks Webhooks, admins map[int64]struct{}, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:      svc,
		webhooks: webhooks,
		admins:   admins,
		limiters: make(map[int64]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.commands = map[string]command{
		"start":          {fn: h.cmdStart, private: true},
		"help":           {fn: h.cmdHelp},
		"search":         {fn: h.cmdSearch, private: true, limited: true},
		"find":           {fn: h.cmdFind, private: true, limited: true},
		"keywords":       {fn: h.cmdKeywords, adminOnly: true},
		"webhook_off":    {fn: h.cmdWebhookOff, adminOnly: true},
		"webhook_status": {fn: h.cmdWebhookStatus},
	}
	return h
}

// Commands lists the registered command names.
func (h *Handler) Commands() []string {
	out := make([]string, 0, len(h.commands))
	for name := range h.commands {
		out = append(out, name)
	}
	return out
}

// IsAdmin reports whether userID may run admin commands.
func (h *Handler) IsAdmin(userID int64) bool {
	if len(h.admins) == 0 {
		return true
	}
	_, ok := h.admins[userID]
	return ok
}

func (h *Handler) allow(chatID int64) bool {
	if h.perMinute <= 0 {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[chatID]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(h.perMinute)), h.perMinute)
		h.limiters[chatID] = l
	}
	return l.Allow()
}

// Handle runs one command. Unknown commands are ignored and reported as
// handled=false.
func (h *Handler) Handle(ctx context.Context, req Request, out Responder) (handled bool, err error) {
	name := strings.ToLower(strings.TrimPrefix(req.Command, "/"))
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	cmd, ok := h.commands[name]
	if !ok {
		return false, nil
	}

	fields := map[string]any{"command": name, "chat_id": req.ChatID, "user_id": req.UserID}
	if cmd.private && !h.IsAdmin(req.UserID) {
		logger.WarnCF("bot", "private command refused", fields)
		return true, errors.Join(ErrUnauthorized, out.Reply(ctx, req.ChatID, Reply{Text: "⛔️ Private bot. Access denied."}))
	}
	if cmd.adminOnly && !h.IsAdmin(req.UserID) {
		logger.WarnCF("bot", "unauthorized command", fields)
		return true, errors.Join(ErrUnauthorized, out.Reply(ctx, req.ChatID, Reply{Text: "❌ Not authorized."}))
	}
	if cmd.limited && !h.allow(req.ChatID) {
		logger.DebugCF("bot", "chat rate limited", fields)
		return true, out.Reply(ctx, req.ChatID, Reply{Text: "⏳ Too many searches, try again in a minute."})
	}
	logger.DebugCF("bot", "command", fields)
	return true, cmd.fn(ctx, req, out)
}

func (h *Handler) cmdStart(ctx context.Context, req Request, out Responder) error {
	return out.Reply(ctx, req.ChatID, Reply{Text: "Hello 👋\n" + usage})
}

func (h *Handler) cmdHelp(ctx context.Context, req Request, out Responder) error {
	return out.Reply(ctx, req.ChatID, Reply{Text: usage})
}

const usage = `Commands:
/search <query> - find channels
/find <keyword> [country] - same, with an optional country
/keywords - show the active keyword configuration (admin)
/webhook_status - show webhook or polling mode
/webhook_off - remove the webhook (admin)`

func (h *Handler) cmdSearch(ctx context.Context, req Request, out Responder) error {
	query := strings.TrimSpace(req.Args)
	if query == "" {
		return out.Reply(ctx, req.ChatID, Reply{Text: "Format: /search <query>"})
	}
	return h.runSearch(ctx, req.ChatID, query, out)
}

// cmdFind takes a keyword and an optional country and searches for both.
func (h *Handler) cmdFind(ctx context.Context, req Request, out Responder) error {
	parts := strings.Fields(req.Args)
	if len(parts) == 0 {
		return out.Reply(ctx, req.ChatID, Reply{Text: "Format: /find keyword country(optional)"})
	}
	return h.runSearch(ctx, req.ChatID, strings.Join(parts, " "), out)
}

func (h *Handler) runSearch(ctx context.Context, chatID int64, query string, out Responder) error {
	if err := out.Reply(ctx, chatID, Reply{Text: "Searching 🔎..."}); err != nil {
		return err
	}
	res, err := h.svc.Search(ctx, scout.SearchRequest{Query: query})
	switch {
	case err == nil:
	case scout.IsQueueFull(err):
		return out.Reply(ctx, chatID, Reply{Text: fmt.Sprintf("⏳ Busy, retry in %ds.", h.svc.RetryAfterSeconds())})
	case errors.Is(err, directory.ErrNoDirectory):
		return out.Reply(ctx, chatID, Reply{Text: "⚠️ Channel directory is not configured."})
	default:
		logger.ErrorCF("bot", "search failed", map[string]any{"query": query, "error": err.Error()})
		return errors.Join(err, out.Reply(ctx, chatID, Reply{Text: "⚠️ Search failed, try again later."}))
	}
	return out.Reply(ctx, chatID, RenderResult(res))
}

func (h *Handler) cmdKeywords(ctx context.Context, req Request, out Responder) error {
	return out.Reply(ctx, req.ChatID, Reply{Text: DescribeFilter(h.svc.Filter()), HTML: true})
}

func (h *Handler) cmdWebhookOff(ctx context.Context, req Request, out Responder) error {
	if err := h.webhooks.DeleteWebhook(ctx); err != nil {
		return errors.Join(err, out.Reply(ctx, req.ChatID, Reply{Text: "⚠️ Could not delete the webhook."}))
	}
	logger.InfoCF("bot", "webhook deleted", map[string]any{"user_id": req.UserID})
	return out.Reply(ctx, req.ChatID, Reply{Text: "✅ Webhook deleted. The bot now runs with polling."})
}

func (h *Handler) cmdWebhookStatus(ctx context.Context, req Request, out Responder) error {
	url, err := h.webhooks.WebhookURL(ctx)
	if err != nil {
		return errors.Join(err, out.Reply(ctx, req.ChatID, Reply{Text: "⚠️ Could not read webhook info."}))
	}
	if url != "" {
		return out.Reply(ctx, req.ChatID, Reply{Text: "🔗 Webhook active:\n" + url})
	}
	return out.Reply(ctx, req.ChatID, Reply{Text: "ℹ️ No webhook set (polling)."})
}
