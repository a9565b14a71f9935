package ring

import "testing"

func TestPushSnapshotFIFO(t *testing.T) {
	b := New(4)
	for i := 0; i < 4; i++ {
		b.Push(Sample{T: int64(i)})
	}
	snap := b.Snapshot(0)
	if len(snap) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(snap))
	}
	for i, s := range snap {
		if s.T != int64(i) {
			t.Fatalf("expected FIFO order, index %d has T=%d", i, s.T)
		}
	}
}

func TestPushOverwritesOldest(t *testing.T) {
	b := New(3)
	for i := 0; i < 5; i++ {
		b.Push(Sample{T: int64(i)})
	}
	snap := b.Snapshot(0)
	if len(snap) != 3 {
		t.Fatalf("expected 3 samples after overflow, got %d", len(snap))
	}
	want := []int64{2, 3, 4}
	for i, s := range snap {
		if s.T != want[i] {
			t.Fatalf("index %d: want T=%d got T=%d", i, want[i], s.T)
		}
	}
}

func TestSnapshotEmpty(t *testing.T) {
	b := New(8)
	if snap := b.Snapshot(10); snap != nil {
		t.Fatalf("expected nil snapshot on empty buffer, got %v", snap)
	}
}

func TestSnapshotPartialN(t *testing.T) {
	b := New(8)
	for i := 0; i < 6; i++ {
		b.Push(Sample{T: int64(i)})
	}
	snap := b.Snapshot(3)
	if len(snap) != 3 {
		t.Fatalf("expected 3, got %d", len(snap))
	}
	want := []int64{3, 4, 5}
	for i, s := range snap {
		if s.T != want[i] {
			t.Fatalf("index %d: want %d got %d", i, want[i], s.T)
		}
	}
}
