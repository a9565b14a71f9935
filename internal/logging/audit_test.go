package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAuditLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	a, err := NewAuditLogger(path, 50, 90, 10, false, "pohwd", nil)
	if err != nil {
		t.Fatal(err)
	}
	a.LogKeyAccess("sign_manifest", true)
	a.LogCommit("deadbeef", true, "")
	a.LogCommit("c0ffee", false, "InsufficientEnergy")
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 audit lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"event_type":"key_access"`) {
		t.Fatalf("expected key_access event, got %s", lines[0])
	}
	if !strings.Contains(lines[2], `"result":"denied"`) {
		t.Fatalf("expected denied result for rejected commit, got %s", lines[2])
	}
}

func TestAuditLoggerEmptyPathIsBestEffort(t *testing.T) {
	a, err := NewAuditLogger("", 0, 0, 0, false, "pohwd", nil)
	if err != nil {
		t.Fatal(err)
	}
	a.LogSessionStart("dev")
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
}
