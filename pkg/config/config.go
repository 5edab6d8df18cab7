package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/caarlos0/env/v11"
)

// Config is the whole process configuration. It is parsed once at startup
// and passed explicitly to every component; nothing re-reads the
// environment afterwards.
type Config struct {
	BotToken string   `env:"BOT_TOKEN"`
	AdminIDs []string `env:"ADMIN_IDS" envSeparator:","`

	IncludeKeywords []string `env:"INCLUDE_KEYWORDS" envSeparator:","`
	ExcludeKeywords []string `env:"EXCLUDE_KEYWORDS" envSeparator:","`
	IncludeWeight   int      `env:"INCLUDE_WEIGHT" envDefault:"1"`
	KeywordsFile    string   `env:"KEYWORDS_FILE"`
	KeywordMaxGap   int      `env:"KEYWORD_MAX_GAP" envDefault:"3"`

	TopN         int `env:"TOP_N" envDefault:"10"`
	MaxTopN      int `env:"MAX_TOP_N" envDefault:"20"`
	SearchLimit  int `env:"SEARCH_LIMIT" envDefault:"50"`
	Workers      int `env:"WORKERS" envDefault:"4"`
	QueueSize    int `env:"QUEUE_SIZE" envDefault:"16"`
	Concurrency  int `env:"CONCURRENCY" envDefault:"3"`
	SnippetRunes int `env:"SNIPPET_RUNES" envDefault:"140"`

	DirectoryURL     string        `env:"DIRECTORY_URL"`
	DirectoryToken   string        `env:"DIRECTORY_TOKEN"`
	DirectoryRPS     float64       `env:"DIRECTORY_RPS" envDefault:"1"`
	DirectoryTimeout time.Duration `env:"DIRECTORY_TIMEOUT" envDefault:"15s"`
	IncludeGroups    bool          `env:"INCLUDE_GROUPS"`

	Host              string  `env:"HOST" envDefault:"0.0.0.0"`
	Port              int     `env:"PORT" envDefault:"8000"`
	HTTPRatePerSecond float64 `env:"HTTP_RATE_PER_SECOND" envDefault:"5"`
	ChatRatePerMinute int     `env:"CHAT_RATE_PER_MINUTE" envDefault:"6"`

	DigestSchedule string   `env:"DIGEST_SCHEDULE"`
	DigestQueries  []string `env:"DIGEST_QUERIES" envSeparator:","`

	LockDir        string        `env:"LOCK_DIR"`
	ReloadDebounce time.Duration `env:"RELOAD_DEBOUNCE" envDefault:"1s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses environ instead of the process environment when it is
// non-nil.
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.AdminIDs = cleanList(cfg.AdminIDs)
	cfg.IncludeKeywords = cleanList(cfg.IncludeKeywords)
	cfg.ExcludeKeywords = cleanList(cfg.ExcludeKeywords)
	cfg.DigestQueries = cleanList(cfg.DigestQueries)
	cfg.KeywordsFile = strings.TrimSpace(cfg.KeywordsFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// cleanList trims entries and drops the empty ones left by stray commas.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error
	if c.TopN <= 0 {
		errs = append(errs, fmt.Errorf("TOP_N must be positive, got %d", c.TopN))
	}
	if c.MaxTopN < c.TopN {
		errs = append(errs, fmt.Errorf("MAX_TOP_N (%d) must be >= TOP_N (%d)", c.MaxTopN, c.TopN))
	}
	if c.SearchLimit <= 0 {
		errs = append(errs, fmt.Errorf("SEARCH_LIMIT must be positive, got %d", c.SearchLimit))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.DirectoryRPS <= 0 {
		errs = append(errs, fmt.Errorf("DIRECTORY_RPS must be positive, got %v", c.DirectoryRPS))
	}
	if _, err := c.Admins(); err != nil {
		errs = append(errs, err)
	}
	if c.DigestSchedule != "" && !gronx.New().IsValid(c.DigestSchedule) {
		errs = append(errs, fmt.Errorf("DIGEST_SCHEDULE is not a valid cron expression: %q", c.DigestSchedule))
	}
	return errors.Join(errs...)
}

// Admins returns the admin user IDs as a set. An empty set means every
// user is treated as an admin.
func (c *Config) Admins() (map[int64]struct{}, error) {
	out := make(map[int64]struct{}, len(c.AdminIDs))
	for _, raw := range c.AdminIDs {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_IDS contains a non-numeric id %q", raw)
		}
		out[id] = struct{}{}
	}
	return out, nil
}

// ListenAddr is the HTTP API address.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Summary renders the configuration for startup logs with the token masked.
func (c *Config) Summary() map[string]any {
	token := c.BotToken
	if len(token) > 10 {
		token = token[:10] + "..."
	}
	return map[string]any{
		"bot_token":     token,
		"admins":        len(c.AdminIDs),
		"include":       len(c.IncludeKeywords),
		"exclude":       len(c.ExcludeKeywords),
		"keywords_file": c.KeywordsFile,
		"top_n":         c.TopN,
		"directory":     c.DirectoryURL,
		"groups":        c.IncludeGroups,
		"listen":        c.ListenAddr(),
		"digest":        c.DigestSchedule,
	}
}
