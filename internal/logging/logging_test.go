package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: FormatJSON, Output: &buf, Component: "pohwd"})
	log.Info("hello")
	if !strings.Contains(buf.String(), `"component":"pohwd"`) {
		t.Fatalf("expected component field in JSON output, got %s", buf.String())
	}
}

func TestRateLimitedWarnerSuppressesBurst(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: FormatText, Output: &buf})
	w := NewRateLimitedWarner(log, time.Hour)

	w.Warn("sensor", "sensor unavailable")
	w.Warn("sensor", "sensor unavailable")
	w.Warn("sensor", "sensor unavailable")

	count := strings.Count(buf.String(), "sensor unavailable")
	if count != 1 {
		t.Fatalf("expected exactly 1 warning logged, got %d", count)
	}
}
