package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestCrashHandlerRecoverSwallowsPanic(t *testing.T) {
	dir := t.TempDir()
	h := NewCrashHandler(dir, "pohwd", nil)

	panicked := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
			}
		}()
		h.Recover("test_task", func() {
			panic("boom")
		})
	}()
	if panicked {
		t.Fatalf("CrashHandler.Recover must not let the panic escape")
	}

	matches, err := filepath.Glob(filepath.Join(dir, "crash-test_task-*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one crash dump, got %d", len(matches))
	}
}

func TestCrashHandlerNoDirStillRecovers(t *testing.T) {
	h := NewCrashHandler("", "pohwd", nil)
	h.Recover("no_dump", func() {
		panic("boom")
	})
}

func TestCrashHandlerWritesValidJSON(t *testing.T) {
	dir := t.TempDir()
	h := NewCrashHandler(dir, "pohwd", nil)
	h.HandlePanic("manual", "explicit panic value")

	matches, err := filepath.Glob(filepath.Join(dir, "crash-manual-*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one crash dump, got %d", len(matches))
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty crash dump")
	}
	if !json.Valid(data) {
		t.Fatalf("expected crash dump to be valid JSON, got %s", data)
	}
}
