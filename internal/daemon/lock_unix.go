//go:build !windows

package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// AcquireSingleton takes an exclusive, non-blocking flock on the lock
// file so a second pohwd in the same data directory fails fast
// instead of racing the first for the IPC socket. The returned file
// must be kept open (and closed on shutdown) to hold the lock.
func (m *StateManager) AcquireSingleton() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(m.lockFile), 0o700); err != nil {
		return nil, fmt.Errorf("daemon: mkdir lock dir: %w", err)
	}
	f, err := os.OpenFile(m.lockFile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("daemon: open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("daemon: another pohwd instance holds the lock: %w", err)
	}
	return f, nil
}
