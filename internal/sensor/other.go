//go:build !linux

package sensor

import "context"

// StubBackend covers Darwin and Windows. A full
// CGEventTap / SetWindowsHookEx implementation is out of scope for
// this core (it does not require privileged kernel code beyond
// user-group membership, and Linux is the fully specified reference
// backend); these platforms degrade to SensorUnavailable.
type StubBackend struct {
	OS string
}

func (b *StubBackend) Name() string { return "stub-" + b.OS }

func (b *StubBackend) Run(ctx context.Context, push Push, counter *HardwareEventCounter) error {
	return ErrUnavailable
}
