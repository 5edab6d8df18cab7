package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sipeed/chanscout/pkg/discovery"
	"github.com/sipeed/chanscout/pkg/logger"
)

const defaultReloadDebounce = time.Second

// KeywordWatcher rebuilds the filter whenever KEYWORDS_FILE changes and
// hands it to apply. A file that fails to compile is logged and the
// previous filter stays in effect.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename are still seen.
type KeywordWatcher struct {
	cfg    *Config
	path   string
	apply  func(*discovery.Filter)
	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup

	debounce time.Duration
}

type WatcherOption func(*KeywordWatcher)

func WithReloadDebounce(d time.Duration) WatcherOption {
	return func(w *KeywordWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewKeywordWatcher watches cfg.KeywordsFile. It fails when no keyword
// file is configured.
func NewKeywordWatcher(cfg *Config, apply func(*discovery.Filter), opts ...WatcherOption) (*KeywordWatcher, error) {
	if cfg.KeywordsFile == "" {
		return nil, errors.New("no keywords file configured")
	}
	path, err := filepath.Abs(cfg.KeywordsFile)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &KeywordWatcher{
		cfg:      cfg,
		path:     path,
		apply:    apply,
		fsw:      fsw,
		debounce: defaultReloadDebounce,
	}
	if cfg.ReloadDebounce > 0 {
		w.debounce = cfg.ReloadDebounce
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return w, nil
}

func (w *KeywordWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
}

// Stop cancels the watcher and waits for the loop to exit.
func (w *KeywordWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.fsw.Close()
}

func (w *KeywordWatcher) loop(ctx context.Context) {
	var timer *time.Timer
	reset := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
	}
	timerC := func() <-chan time.Time {
		if timer == nil {
			return nil
		}
		return timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(ev) {
				continue
			}
			reset()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.WarnCF("config", "keyword watcher error", map[string]any{"error": err.Error()})

		case <-timerC():
			timer = nil
			w.reload()
		}
	}
}

func (w *KeywordWatcher) reload() {
	f, err := w.cfg.BuildFilter()
	if err != nil {
		logger.WarnCF("config", "keyword reload rejected, keeping previous filter", map[string]any{
			"file":  w.path,
			"error": err.Error(),
		})
		return
	}
	w.apply(f)
	logger.InfoCF("config", "keywords reloaded", map[string]any{
		"file":    w.path,
		"include": len(f.Include()),
		"exclude": len(f.Exclude()),
		"classes": len(f.Classes()),
	})
}

func (w *KeywordWatcher) isRelevantEvent(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return name == w.path
}
