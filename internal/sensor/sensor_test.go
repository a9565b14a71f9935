package sensor

import "testing"

func TestHardwareEventCounterAdd(t *testing.T) {
	c := NewHardwareEventCounter(1000)
	if c.Events() != 0 {
		t.Fatalf("expected 0 events initially")
	}
	c.Add(5)
	c.Add(3)
	if got := c.Events(); got != 8 {
		t.Fatalf("expected 8 events, got %d", got)
	}
	if c.WindowStartNs() != 1000 {
		t.Fatalf("expected window start preserved")
	}
}

func TestDefaultBackendHasName(t *testing.T) {
	b := DefaultBackend()
	if b.Name() == "" {
		t.Fatalf("expected non-empty backend name")
	}
}
