// Package ring implements the fixed-capacity, single-producer
// single-consumer sample store that sits between the kinematic sensor
// and the entropy engine.
package ring

import "sync/atomic"

// Sample is a single kinematic observation. It carries no json/gob
// struct tags and exposes no marshaling method: this is deliberate,
// not an oversight. Nothing in this tree may give a Sample a
// serialization path.
type Sample struct {
	T          int64 // monotonic nanoseconds
	X, Y       int32
	ButtonMask uint8
}

const DefaultCapacity = 2048

// Buffer is a wait-free SPSC ring over Sample. One goroutine calls
// Push, a different goroutine calls Snapshot; concurrent calls from
// more than one pusher or more than one snapshotter are not safe.
type Buffer struct {
	data []Sample
	cap  uint64
	head atomic.Uint64 // next write index, producer-owned
	tail atomic.Uint64 // oldest valid index, advanced by producer on overwrite
}

func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		data: make([]Sample, capacity),
		cap:  uint64(capacity),
	}
}

// Push appends a sample, overwriting the oldest entry when the buffer
// is full. Wait-free: bounded number of stores, no locks, no loops
// that can be blocked by the consumer.
func (b *Buffer) Push(s Sample) {
	head := b.head.Load()
	b.data[head%b.cap] = s
	newHead := head + 1
	b.head.Store(newHead)

	tail := b.tail.Load()
	if newHead-tail > b.cap {
		b.tail.Store(newHead - b.cap)
	}
}

// Snapshot copies up to n most recent samples, oldest first, into a
// freshly allocated slice. It never blocks the producer for more than
// the time to read the current head/tail indices.
func (b *Buffer) Snapshot(n int) []Sample {
	head := b.head.Load()
	tail := b.tail.Load()
	avail := head - tail
	if avail == 0 {
		return nil
	}
	want := uint64(n)
	if want == 0 || want > avail {
		want = avail
	}
	start := head - want
	out := make([]Sample, want)
	for i := uint64(0); i < want; i++ {
		out[i] = b.data[(start+i)%b.cap]
	}
	return out
}

// Len reports the number of samples currently retained.
func (b *Buffer) Len() int {
	head := b.head.Load()
	tail := b.tail.Load()
	return int(head - tail)
}

// Cap reports the fixed capacity of the buffer.
func (b *Buffer) Cap() int {
	return int(b.cap)
}
