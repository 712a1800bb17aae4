// Package lockfile provides advisory, local-filesystem-scoped locks used to
// serialize manifest appends and result uploads across worker processes.
package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultStaleAfter is how old a lock file may get before it is
	// considered abandoned by a crashed holder and broken.
	DefaultStaleAfter = 10 * time.Minute

	// DefaultPollInterval is the wait between acquisition attempts.
	DefaultPollInterval = 100 * time.Millisecond
)

// ErrNotHeld is returned when unlocking a lock that is not held.
var ErrNotHeld = errors.New("lock not held")

// Lock is a named advisory lock backed by an exclusively-created file.
type Lock struct {
	path         string
	staleAfter   time.Duration
	pollInterval time.Duration
	held         bool
}

// Option customizes a Lock.
type Option func(*Lock)

// WithStaleAfter overrides the staleness threshold.
func WithStaleAfter(d time.Duration) Option {
	return func(l *Lock) { l.staleAfter = d }
}

// WithPollInterval overrides the acquisition poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(l *Lock) { l.pollInterval = d }
}

// New creates a lock stored at dir/name.lock.
func New(dir, name string, opts ...Option) *Lock {
	l := &Lock{
		path:         filepath.Join(dir, name+".lock"),
		staleAfter:   DefaultStaleAfter,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire blocks until the lock is obtained or ctx is done. A lock file
// older than the staleness threshold is assumed to belong to a crashed
// process and is removed.
func (l *Lock) Acquire(ctx context.Context) error {
	for {
		ok, err := l.tryAcquire()
		if err != nil {
			return err
		}
		if ok {
			l.held = true
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for lock %s: %w", l.path, ctx.Err())
		case <-time.After(l.pollInterval):
		}
	}
}

func (l *Lock) tryAcquire() (bool, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err == nil {
		fmt.Fprintf(f, "%d\n", os.Getpid())
		f.Close()
		return true, nil
	}
	if !os.IsExist(err) {
		return false, fmt.Errorf("failed to create lock file %s: %w", l.path, err)
	}

	// Lock exists. Break it if its holder appears to have crashed.
	info, statErr := os.Stat(l.path)
	if statErr != nil {
		// Raced with a release; retry on the next poll.
		return false, nil
	}
	if time.Since(info.ModTime()) > l.staleAfter {
		l.breakStale()
	}
	return false, nil
}

// breakStale removes an abandoned lock file. Removing by path directly
// would race other waiters: between judging the file stale and removing
// it, a rival may have broken the stale lock and acquired a fresh one at
// the same path. The file is instead renamed to a unique name, which at
// most one waiter can win, and re-checked on the claimed name; a fresh
// lock caught by the rename is handed back. Link refuses to clobber, so
// the hand-back never destroys a lock created in the meantime.
func (l *Lock) breakStale() {
	claimed := fmt.Sprintf("%s.stale.%d.%d", l.path, os.Getpid(), time.Now().UnixNano())
	if err := os.Rename(l.path, claimed); err != nil {
		// A rival waiter claimed it first.
		return
	}
	info, err := os.Stat(claimed)
	if err == nil && time.Since(info.ModTime()) <= l.staleAfter {
		if os.Link(claimed, l.path) == nil {
			os.Remove(claimed)
			return
		}
	}
	os.Remove(claimed)
}

// Release drops the lock. Releasing an unheld lock returns ErrNotHeld.
func (l *Lock) Release() error {
	if !l.held {
		return ErrNotHeld
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file %s: %w", l.path, err)
	}
	return nil
}

// WithLock runs fn while holding the lock.
func (l *Lock) WithLock(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
