package telemetry

import "testing"

func TestDecodeLineKnownAndUnknownTags(t *testing.T) {
	if _, ok := DecodeLine([]byte(`{"type":"heartbeat","timestamp_ms":1}`)); !ok {
		t.Fatalf("expected heartbeat to decode")
	}
	if _, ok := DecodeLine([]byte(`{"type":"some_future_tag"}`)); ok {
		t.Fatalf("expected unknown tag to be dropped")
	}
	if _, ok := DecodeLine([]byte(`not json`)); ok {
		t.Fatalf("expected malformed line to be dropped")
	}
}

func TestQualifierMultiplierBoundedToProductiveExtensions(t *testing.T) {
	q := NewQualifier([]string{".go"})
	if q.Multiplier() != 1.0 {
		t.Fatalf("expected 1.0 multiplier before any focus event")
	}
	goFile := "main.go"
	q.Apply(Event{Type: "focus_gained", FilePath: &goFile})
	if q.Multiplier() != MaxMultiplier {
		t.Fatalf("expected max multiplier on productive extension")
	}

	txtFile := "notes.txt"
	q.Apply(Event{Type: "focus_gained", FilePath: &txtFile})
	if q.Multiplier() != 1.0 {
		t.Fatalf("expected no boost on non-productive extension")
	}
}

func TestQualifierResetsOnFocusLost(t *testing.T) {
	q := NewQualifier([]string{".go"})
	goFile := "main.go"
	q.Apply(Event{Type: "focus_gained", FilePath: &goFile})
	q.Apply(Event{Type: "focus_lost"})
	if q.Multiplier() != 1.0 {
		t.Fatalf("expected multiplier reset after focus_lost")
	}
}
