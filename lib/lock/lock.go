package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ErrTimeout is returned when a lock could not be acquired in time.
var ErrTimeout = errors.New("timed out waiting for lock")

const retryInterval = 100 * time.Millisecond

// FileLock serialises writers of one file across processes using a
// sibling ".lock" file created exclusively.
type FileLock struct {
	path   string
	logger *slog.Logger
}

// ForFile returns the lock guarding target.
func ForFile(target string, logger *slog.Logger) *FileLock {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLock{
		path:   filepath.Clean(target) + ".lock",
		logger: logger,
	}
}

// Path is the lock file location.
func (fl *FileLock) Path() string {
	return fl.path
}

// Acquire waits up to timeout for the lock. A lock file older than twice
// the timeout is treated as left behind by a dead process and removed.
func (fl *FileLock) Acquire(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		// #nosec G304 - the path is derived from an operator-supplied output file
		file, err := os.OpenFile(fl.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, werr := fmt.Fprintf(file, "%d\n%d\n", time.Now().Unix(), os.Getpid())
			cerr := file.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(fl.path)
				return fmt.Errorf("failed to write lock file: %w", errors.Join(werr, cerr))
			}
			fl.logger.Debug("Acquired lock", slog.String("file", fl.path))
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		if fl.isStale(timeout * 2) {
			fl.logger.Warn("Removing stale lock file", slog.String("file", fl.path))
			if err := os.Remove(fl.path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove stale lock file: %w", err)
			}
			continue
		}

		if !time.Now().Before(deadline) {
			return ErrTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// Release removes the lock file. Releasing an unheld lock is a no-op.
func (fl *FileLock) Release() error {
	if err := os.Remove(fl.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	fl.logger.Debug("Released lock", slog.String("file", fl.path))
	return nil
}

func (fl *FileLock) isStale(age time.Duration) bool {
	info, err := os.Stat(fl.path)
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > age
}
