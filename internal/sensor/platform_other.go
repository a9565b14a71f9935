//go:build !linux

package sensor

import "runtime"

// DefaultBackend returns the reference backend for the running
// platform.
func DefaultBackend() Backend {
	return &StubBackend{OS: runtime.GOOS}
}
