package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sipeed/chanscout/pkg/bot"
	"github.com/sipeed/chanscout/pkg/config"
	"github.com/sipeed/chanscout/pkg/digest"
	"github.com/sipeed/chanscout/pkg/httpapi"
	"github.com/sipeed/chanscout/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when BOT_TOKEN is set, the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger.InfoCF("serve", "starting", cfg.Summary())

	svc, err := newService(cfg, "")
	if err != nil {
		return err
	}
	if cfg.DirectoryURL == "" {
		logger.Warn("DIRECTORY_URL is not set; searches will report that no directory is configured")
	}

	if cfg.KeywordsFile != "" {
		w, err := config.NewKeywordWatcher(cfg, svc.SetFilter)
		if err != nil {
			return fmt.Errorf("keyword watcher: %w", err)
		}
		w.Start(ctx)
		defer w.Stop()
	}

	g, ctx := errgroup.WithContext(ctx)

	api := httpapi.New(svc, httpapi.WithRateLimit(cfg.HTTPRatePerSecond))
	g.Go(func() error {
		return api.ListenAndServe(ctx, cfg.ListenAddr())
	})

	if cfg.BotToken == "" {
		logger.Warn("BOT_TOKEN is not set; running the HTTP API only")
		return g.Wait()
	}

	lock, err := bot.AcquirePollingLock(cfg.LockDir, cfg.BotToken)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	admins, err := cfg.Admins()
	if err != nil {
		return err
	}
	tg, err := bot.NewTelegram(cfg.BotToken)
	if err != nil {
		return err
	}
	handler := bot.NewHandler(svc, tg, admins, bot.WithChatRate(cfg.ChatRatePerMinute))
	g.Go(func() error {
		return tg.Run(ctx, handler)
	})

	if cfg.DigestSchedule != "" {
		recipients := make([]int64, 0, len(admins))
		for id := range admins {
			recipients = append(recipients, id)
		}
		sched, err := digest.New(cfg.DigestSchedule, cfg.DigestQueries, recipients, svc, tg)
		if err != nil {
			logger.WarnCF("serve", "digest disabled", map[string]any{"error": err.Error()})
		} else {
			sched.Start(ctx)
			defer sched.Stop()
		}
	}

	return g.Wait()
}
