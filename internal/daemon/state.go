package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// RunState is the daemon's persisted {pid, started_at, state, balance}
// snapshot, rewritten to daemon.state after each periodic battery
// snapshot. pohwctl does not read it; it asks the daemon over IPC.
type RunState struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	State     string    `json:"state"`
	Balance   float64   `json:"balance"`
}

// StateManager owns the PID file, the run-state snapshot file, and the
// socket lock file that enforces one running daemon per data
// directory.
type StateManager struct {
	pidFile   string
	stateFile string
	lockFile  string
}

func NewStateManager(dataDir string) *StateManager {
	return &StateManager{
		pidFile:   filepath.Join(dataDir, "daemon.pid"),
		stateFile: filepath.Join(dataDir, "daemon.state"),
		lockFile:  filepath.Join(dataDir, "daemon.lock"),
	}
}

func (m *StateManager) WritePID() error {
	return os.WriteFile(m.pidFile, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (m *StateManager) ReadPID() (int, error) {
	data, err := os.ReadFile(m.pidFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("daemon: invalid pid file: %w", err)
	}
	return pid, nil
}

func (m *StateManager) WriteState(s RunState) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("daemon: marshal state: %w", err)
	}
	return os.WriteFile(m.stateFile, data, 0o600)
}

func (m *StateManager) ReadState() (RunState, error) {
	var s RunState
	data, err := os.ReadFile(m.stateFile)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("daemon: unmarshal state: %w", err)
	}
	return s, nil
}

func (m *StateManager) Cleanup() {
	os.Remove(m.pidFile)
	os.Remove(m.stateFile)
	os.Remove(m.lockFile)
}
