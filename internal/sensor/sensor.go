// Package sensor implements the Kinematic Sensor (C1): it reads raw
// pointer events from the OS input layer and posts them to the ring
// buffer, without ever persisting coordinates or keystroke content.
package sensor

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrUnavailable is returned by a Backend.Run that cannot access the
// input layer on the current platform at all (missing device,
// unsupported OS family).
var ErrUnavailable = errors.New("sensor: input backend unavailable")

// ErrPermissionDenied is returned when the device exists but the
// current user lacks access (commonly missing group membership on
// Linux evdev nodes).
var ErrPermissionDenied = errors.New("sensor: permission denied")

// Push is the non-blocking callback a Backend uses to post a captured
// sample toward the ring buffer.
type Push func(t int64, x, y int32, buttonMask uint8)

// HardwareEventCounter is the monotonic, coordinate-free tally of
// verified low-level events consulted by the Causality Validator. It
// is the only thing C4 is allowed to read from C1 — never samples.
type HardwareEventCounter struct {
	events      atomic.Uint64
	windowStart atomic.Int64
}

func NewHardwareEventCounter(nowNs int64) *HardwareEventCounter {
	h := &HardwareEventCounter{}
	h.windowStart.Store(nowNs)
	return h
}

func (h *HardwareEventCounter) Add(n uint64) {
	h.events.Add(n)
}

func (h *HardwareEventCounter) Events() uint64 {
	return h.events.Load()
}

func (h *HardwareEventCounter) WindowStartNs() int64 {
	return h.windowStart.Load()
}

// Backend captures raw input events on one OS thread and reports them
// through push. Run blocks until ctx is cancelled or a non-recoverable
// error occurs; it must not retry tight-loop on ErrPermissionDenied.
type Backend interface {
	Run(ctx context.Context, push Push, counter *HardwareEventCounter) error
	Name() string
}

// Sensor owns the platform backend and exposes the counter it feeds.
type Sensor struct {
	backend Backend
	counter *HardwareEventCounter
}

func New(backend Backend, nowNs int64) *Sensor {
	return &Sensor{
		backend: backend,
		counter: NewHardwareEventCounter(nowNs),
	}
}

func (s *Sensor) Counter() *HardwareEventCounter { return s.counter }

func (s *Sensor) Name() string { return s.backend.Name() }

// Run pins the caller's goroutine to input capture for the lifetime of
// ctx. Callers run this on a dedicated goroutine with
// runtime.LockOSThread held, matching the one-thread-per-C1 model.
func (s *Sensor) Run(ctx context.Context, push Push) error {
	return s.backend.Run(ctx, push, s.counter)
}
