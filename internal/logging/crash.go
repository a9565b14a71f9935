package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// CrashReport captures the state of a recovered panic for postmortem
// debugging; one is written as JSON per recovered goroutine crash.
type CrashReport struct {
	Timestamp    time.Time `json:"timestamp"`
	Component    string    `json:"component"`
	Task         string    `json:"task"`
	GOOS         string    `json:"goos"`
	GOARCH       string    `json:"goarch"`
	NumGoroutine int       `json:"num_goroutine"`
	PanicValue   string    `json:"panic_value"`
	StackTrace   string    `json:"stack_trace"`
}

// CrashHandler recovers panics at task-goroutine boundaries, logs and
// dumps a CrashReport, and never lets a panic escape past it.
type CrashHandler struct {
	mu        sync.Mutex
	crashDir  string
	component string
	log       *slog.Logger
}

func NewCrashHandler(crashDir, component string, log *slog.Logger) *CrashHandler {
	if crashDir != "" {
		os.MkdirAll(crashDir, 0o750)
	}
	return &CrashHandler{crashDir: crashDir, component: component, log: log}
}

// Recover runs fn with panic recovery, converting any panic into a
// logged CrashReport instead of letting it unwind the goroutine.
// Callers combine this with their own state-recovery step (e.g.
// forcing the attention battery to Degraded) in the caller's own
// deferred recover, since CrashHandler has no domain state of its own.
func (h *CrashHandler) Recover(task string, fn func()) {
	defer h.recover(task)
	fn()
}

func (h *CrashHandler) recover(task string) {
	if r := recover(); r != nil {
		h.HandlePanic(task, r)
	}
}

// HandlePanic logs and persists a crash report for a recovered panic.
// Exported so callers that need to run their own deferred recover
// (to also react to the panic, not just report it) can still produce
// the same report.
func (h *CrashHandler) HandlePanic(task string, panicValue interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	report := CrashReport{
		Timestamp:    time.Now().UTC(),
		Component:    h.component,
		Task:         task,
		GOOS:         runtime.GOOS,
		GOARCH:       runtime.GOARCH,
		NumGoroutine: runtime.NumGoroutine(),
		PanicValue:   fmt.Sprintf("%v", panicValue),
		StackTrace:   string(debug.Stack()),
	}

	if h.log != nil {
		h.log.Error("recovered panic", "task", task, "panic", report.PanicValue)
	}
	h.writeCrashDump(report)
}

func (h *CrashHandler) writeCrashDump(report CrashReport) {
	if h.crashDir == "" {
		return
	}
	filename := fmt.Sprintf("crash-%s-%s.json", report.Task, report.Timestamp.Format("20060102-150405"))
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return
	}
	os.WriteFile(filepath.Join(h.crashDir, filename), data, 0o640)
}
