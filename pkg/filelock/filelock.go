// Package filelock serialises ingestion runs on one machine with an
// advisory lock file. It stands in for the Redis lock when Redis is off.
package filelock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
)

type Lock struct {
	path string
}

// New returns a Lock backed by the file at path. The file is created on the
// first Acquire.
func New(path string) *Lock {
	return &Lock{path: path}
}

func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock or fails with ErrLockHeld. It does not wait.
func (l *Lock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	fl := flock.New(l.path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", l.path, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: %w", l.path, apperrors.ErrLockHeld)
	}
	release := func(context.Context) error {
		if err := fl.Unlock(); err != nil {
			return fmt.Errorf("releasing lock %s: %w", l.path, err)
		}
		return nil
	}
	return release, nil
}
