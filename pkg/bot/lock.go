package bot

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const pollingLockDirName = "chanscout-locks"

// PollingLock keeps a second process from long polling with the same bot
// token; Telegram rejects concurrent getUpdates calls.
type PollingLock struct {
	fl *flock.Flock
}

// AcquirePollingLock takes the lock for token under dir (os.TempDir when
// empty) without blocking.
func AcquirePollingLock(dir, token string) (*PollingLock, error) {
	if token == "" {
		return nil, errors.New("bot token is empty")
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), pollingLockDirName)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	sum := sha256.Sum256([]byte(token))
	path := filepath.Join(dir, fmt.Sprintf("polling-%x.lock", sum[:8]))
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire polling lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another polling instance is already running for this bot token (lock=%s)", path)
	}
	return &PollingLock{fl: fl}, nil
}

func (l *PollingLock) Path() string {
	if l == nil || l.fl == nil {
		return ""
	}
	return l.fl.Path()
}

func (l *PollingLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	err := l.fl.Unlock()
	l.fl = nil
	return err
}
