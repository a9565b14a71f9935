//go:build linux

package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
)

// EBPFCounter attaches a tracepoint program counting kernel-side
// input-event delivery (sys_enter_read against evdev file
// descriptors) and feeds the tally directly into a
// HardwareEventCounter, independent of userspace accounting. This is
// the "second, optional verification channel" — when it cannot load
// (missing BTF, no CAP_BPF) the caller falls back to counting accepted
// evdev reads, which is still a real kernel-delivered tally, just
// without the independent cross-check this adds.
//
// Loading pattern (object load, tracepoint attach, periodic map read)
// follows the CO-RE loader shape used for syscall tracepoints
// elsewhere in the ecosystem; the program itself is not compiled in
// this tree, so LoadEBPFCounter only returns a usable *EBPFCounter
// when a prebuilt collection is supplied by the caller.
type EBPFCounter struct {
	coll     *ebpf.Collection
	link     link.Link
	countMap *ebpf.Map
	log      *slog.Logger
}

// LoadEBPFCounter loads a precompiled BPF object (produced out of
// tree by bpf2go) and attaches it to the sys_enter_read tracepoint.
// spec is nil-able: when the caller has no object available, this
// returns ErrUnavailable immediately so the daemon can log once and
// degrade to evdev-read counting.
func LoadEBPFCounter(spec *ebpf.CollectionSpec, log *slog.Logger) (*EBPFCounter, error) {
	if spec == nil {
		return nil, ErrUnavailable
	}
	coll, err := ebpf.NewCollection(spec)
	if err != nil {
		return nil, fmt.Errorf("sensor: ebpf collection: %w", err)
	}
	prog, ok := coll.Programs["trace_input_read"]
	if !ok {
		coll.Close()
		return nil, fmt.Errorf("sensor: ebpf: missing trace_input_read program")
	}
	lnk, err := link.Tracepoint("syscalls", "sys_enter_read", prog, nil)
	if err != nil {
		coll.Close()
		return nil, fmt.Errorf("sensor: ebpf: attach: %w", err)
	}
	m, ok := coll.Maps["event_count"]
	if !ok {
		lnk.Close()
		coll.Close()
		return nil, fmt.Errorf("sensor: ebpf: missing event_count map")
	}
	return &EBPFCounter{coll: coll, link: lnk, countMap: m, log: log}, nil
}

// Pump polls the kernel-side count map and adds deltas into counter
// until ctx is cancelled.
func (e *EBPFCounter) Pump(ctx context.Context, counter *HardwareEventCounter) {
	var key uint32
	var last uint64
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var cur uint64
			if err := e.countMap.Lookup(&key, &cur); err == nil && cur > last {
				counter.Add(cur - last)
				last = cur
			}
		}
	}
}

func (e *EBPFCounter) Close() error {
	if e.link != nil {
		e.link.Close()
	}
	if e.coll != nil {
		e.coll.Close()
	}
	return nil
}
