package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/sipeed/chanscout/pkg/logger"
)

var commandDescriptions = []telego.BotCommand{
	{Command: "search", Description: "Find channels matching a query"},
	{Command: "find", Description: "Find channels by keyword and optional country"},
	{Command: "keywords", Description: "Show the keyword configuration"},
	{Command: "webhook_status", Description: "Show webhook or polling mode"},
	{Command: "webhook_off", Description: "Delete the webhook"},
	{Command: "help", Description: "Show help"},
}

// Telegram connects a Handler to the Bot API over long polling.
type Telegram struct {
	bot     *telego.Bot
	handler *Handler
}

type telegoLogger struct{}

func (telegoLogger) Debugf(format string, args ...any) {
	logger.DebugC("telego", fmt.Sprintf(format, args...))
}

func (telegoLogger) Errorf(format string, args ...any) {
	logger.ErrorC("telego", fmt.Sprintf(format, args...))
}

func NewTelegram(token string) (*Telegram, error) {
	b, err := telego.NewBot(token, telego.WithLogger(telegoLogger{}))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{bot: b}, nil
}

// Reply sends r to chatID. Link previews are disabled so result lists stay
// compact.
func (t *Telegram) Reply(ctx context.Context, chatID int64, r Reply) error {
	params := tu.Message(tu.ID(chatID), r.Text).
		WithLinkPreviewOptions(&telego.LinkPreviewOptions{IsDisabled: true})
	if r.HTML {
		params = params.WithParseMode(telego.ModeHTML)
	}
	if len(r.Buttons) > 0 {
		rows := make([][]telego.InlineKeyboardButton, 0, len(r.Buttons))
		for _, b := range r.Buttons {
			rows = append(rows, tu.InlineKeyboardRow(tu.InlineKeyboardButton(b.Text).WithURL(b.URL)))
		}
		params = params.WithReplyMarkup(tu.InlineKeyboard(rows...))
	}
	_, err := t.bot.SendMessage(ctx, params)
	return err
}

// DeleteWebhook removes the webhook and drops updates queued for it.
func (t *Telegram) DeleteWebhook(ctx context.Context) error {
	return t.bot.DeleteWebhook(ctx, &telego.DeleteWebhookParams{DropPendingUpdates: true})
}

func (t *Telegram) WebhookURL(ctx context.Context) (string, error) {
	info, err := t.bot.GetWebhookInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// Run long polls until ctx is cancelled, dispatching commands to h.
func (t *Telegram) Run(ctx context.Context, h *Handler) error {
	t.handler = h

	me, err := t.bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	if err := t.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commandDescriptions}); err != nil {
		logger.WarnCF("bot", "cannot register command menu", map[string]any{"error": err.Error()})
	}

	updates, err := t.bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}
	bh, err := th.NewBotHandler(t.bot, updates)
	if err != nil {
		return fmt.Errorf("create update handler: %w", err)
	}
	bh.HandleMessage(t.onCommand, th.AnyCommand())

	go func() {
		<-ctx.Done()
		_ = bh.Stop()
	}()

	logger.InfoCF("bot", "polling started", map[string]any{"username": me.Username})
	return bh.Start()
}

func (t *Telegram) onCommand(c *th.Context, msg telego.Message) error {
	req, ok := ParseCommand(msg.Text)
	if !ok {
		return nil
	}
	req.ChatID = msg.Chat.ID
	if msg.From != nil {
		req.UserID = msg.From.ID
	}
	if _, err := t.handler.Handle(c, req, t); err != nil {
		logger.WarnCF("bot", "command failed", map[string]any{
			"command": req.Command,
			"chat_id": req.ChatID,
			"error":   err.Error(),
		})
	}
	return nil
}

// ParseCommand splits "/cmd@bot args..." into a Request with Command and
// Args set.
func ParseCommand(text string) (Request, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Request{}, false
	}
	name, args := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		name, args = text[:i], text[i:]
	}
	name = strings.TrimPrefix(name, "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return Request{}, false
	}
	return Request{Command: strings.ToLower(name), Args: strings.TrimSpace(args)}, true
}
