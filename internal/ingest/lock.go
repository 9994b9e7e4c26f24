package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrBusy means another process holds the ingestion lock.
var ErrBusy = errors.New("another ingestion run is in progress")

// Lock is a cross-process guard so a CLI run and a server run never ingest
// into the same data dir at once.
type Lock struct {
	fl *flock.Flock
}

func NewLock(dataDir string) (*Lock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Lock{fl: flock.New(filepath.Join(dataDir, "ingest.lock"))}, nil
}

// TryAcquire takes the lock without blocking. It returns ErrBusy when it is
// held elsewhere.
func (l *Lock) TryAcquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("ingest lock: %w", err)
	}
	if !ok {
		return ErrBusy
	}
	return nil
}

func (l *Lock) Release() error { return l.fl.Unlock() }
