//go:build windows

package daemon

import (
	"fmt"
	"os"
	"path/filepath"
)

// AcquireSingleton takes an exclusive create-new-file lock: the
// O_EXCL create fails while the lock file exists, which keeps a second
// pohwd instance from starting against the same data directory. A lock
// file left behind by a process that did not run Cleanup also blocks
// startup until it is removed.
func (m *StateManager) AcquireSingleton() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(m.lockFile), 0o700); err != nil {
		return nil, fmt.Errorf("daemon: mkdir lock dir: %w", err)
	}
	f, err := os.OpenFile(m.lockFile, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("daemon: another pohwd instance holds the lock: %w", err)
	}
	return f, nil
}
