// Package telemetry implements the Editor Telemetry Protocol (C8): an
// optional, advisory channel from editors to the daemon. It never
// replaces C1's kinematic ground truth — focus_gained only boosts the
// effective CNS by a bounded multiplier on allow-listed extensions.
package telemetry

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
)

const MaxMultiplier = 1.15

type Event struct {
	Type string `json:"type"`

	FilePath   *string `json:"file_path,omitempty"`
	TimestampMs uint64 `json:"timestamp_ms"`
	CharsDelta  *int32 `json:"chars_delta,omitempty"`
	NavType     string `json:"nav_type,omitempty"`
}

// DecodeLine parses one line of the telemetry protocol. Malformed
// lines and unrecognized type tags are both reported via ok=false so
// the server can drop them silently: unknown tags are dropped rather
// than rejected, keeping the protocol forward-compatible with editor
// plugins newer than the daemon.
func DecodeLine(line []byte) (Event, bool) {
	var e Event
	if err := json.Unmarshal(line, &e); err != nil {
		return Event{}, false
	}
	switch e.Type {
	case "focus_gained", "focus_lost", "edit_burst", "navigation", "heartbeat", "disconnect":
		return e, true
	default:
		return Event{}, false
	}
}

// Qualifier tracks per-client focus state and turns it into a bounded
// CNS multiplier.
type Qualifier struct {
	mu                   sync.Mutex
	productiveExtensions map[string]bool
	focused              bool
	focusedExt           string
}

func NewQualifier(productiveExtensions []string) *Qualifier {
	set := make(map[string]bool, len(productiveExtensions))
	for _, e := range productiveExtensions {
		set[strings.ToLower(e)] = true
	}
	return &Qualifier{productiveExtensions: set}
}

func (q *Qualifier) Apply(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch e.Type {
	case "focus_gained":
		q.focused = true
		if e.FilePath != nil {
			q.focusedExt = strings.ToLower(filepath.Ext(*e.FilePath))
		} else {
			q.focusedExt = ""
		}
	case "focus_lost", "disconnect":
		q.focused = false
		q.focusedExt = ""
	}
}

// Multiplier returns the current bounded CNS multiplier: 1.0 when
// unfocused or focused on a non-productive extension, up to
// MaxMultiplier when focused on an allow-listed one.
func (q *Qualifier) Multiplier() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.focused && q.productiveExtensions[q.focusedExt] {
		return MaxMultiplier
	}
	return 1.0
}
