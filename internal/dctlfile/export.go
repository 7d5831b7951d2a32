package dctlfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	defaultLockTimeout = 10 * time.Second
	fileMode           = 0644
	dirMode            = 0755
)

// Exporter writes scripts so that readers never observe a partial file and
// concurrent exporters of the same path take turns
type Exporter struct {
	lockTimeout time.Duration
}

func NewExporter() *Exporter {
	return &Exporter{lockTimeout: defaultLockTimeout}
}

// SetLockTimeout bounds how long Export waits for another writer
func (e *Exporter) SetLockTimeout(d time.Duration) {
	e.lockTimeout = d
}

// Export replaces path with text
func (e *Exporter) Export(ctx context.Context, path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, e.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock within %v", e.lockTimeout)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to release lock on %s: %v\n", path, err)
		}
	}()

	return writeAtomic(path, []byte(text))
}

// Export writes with the default lock timeout
func Export(ctx context.Context, path, text string) error {
	return NewExporter().Export(ctx, path, text)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-dctl-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, fileMode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
