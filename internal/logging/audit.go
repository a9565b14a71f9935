package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// AuditEventType names a security-relevant event in the attestation
// daemon's lifecycle: identity key use, manifest verification, and
// commit-gate accept/reject decisions are the ones that matter for a
// provenance system, plus session/config bookkeeping.
type AuditEventType string

const (
	AuditEventSessionStart AuditEventType = "session_start"
	AuditEventSessionEnd   AuditEventType = "session_end"
	AuditEventConfigChange AuditEventType = "config_change"
	AuditEventKeyAccess    AuditEventType = "key_access"
	AuditEventVerification AuditEventType = "verification"
	AuditEventCommit       AuditEventType = "commit"
)

// AuditEvent is one line of the append-only audit trail.
type AuditEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	EventType AuditEventType         `json:"event_type"`
	Component string                 `json:"component"`
	Action    string                 `json:"action"`
	Resource  string                 `json:"resource,omitempty"`
	Result    string                 `json:"result"` // "success", "failure", "denied"
	Details   map[string]interface{} `json:"details,omitempty"`
}

// AuditLogger appends AuditEvents to a rotated, append-only JSON-lines
// file, independent of the daemon's operational slog output.
type AuditLogger struct {
	component string
	rotator   *FileRotator
	fallback  *slog.Logger

	mu sync.Mutex
}

// NewAuditLogger opens (or creates) the audit log at path with the
// given rotation policy. A zero path disables rotation and logs
// through fallback instead, so callers can leave audit logging
// best-effort when no path is configured.
func NewAuditLogger(path string, maxSizeMB int64, maxAgeDays, maxBackups int, compress bool, component string, fallback *slog.Logger) (*AuditLogger, error) {
	a := &AuditLogger{component: component, fallback: fallback}
	if path == "" {
		return a, nil
	}
	rotator, err := NewFileRotator(&RotatorConfig{
		FilePath:   path,
		MaxSize:    maxSizeMB,
		MaxAge:     maxAgeDays,
		MaxBackups: maxBackups,
		Compress:   compress,
	})
	if err != nil {
		return nil, fmt.Errorf("logging: open audit log: %w", err)
	}
	a.rotator = rotator
	return a, nil
}

// Log appends one audit event, filling in timestamp/component.
func (a *AuditLogger) Log(event AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Component == "" {
		event.Component = a.component
	}

	if a.rotator == nil {
		if a.fallback != nil {
			a.fallback.Info("audit", "event_type", event.EventType, "action", event.Action, "resource", event.Resource, "result", event.Result)
		}
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')
	if _, err := a.rotator.Write(data); err != nil && a.fallback != nil {
		a.fallback.Warn("audit log write failed", "error", err)
	}
}

func (a *AuditLogger) LogSessionStart(version string) {
	a.Log(AuditEvent{EventType: AuditEventSessionStart, Action: "daemon_started", Result: "success", Details: map[string]interface{}{"version": version}})
}

func (a *AuditLogger) LogSessionEnd(reason string) {
	a.Log(AuditEvent{EventType: AuditEventSessionEnd, Action: "daemon_stopped", Result: "success", Details: map[string]interface{}{"reason": reason}})
}

func (a *AuditLogger) LogConfigChange(path string) {
	a.Log(AuditEvent{EventType: AuditEventConfigChange, Action: "config_reloaded", Resource: path, Result: "success"})
}

// LogKeyAccess records a use of the node's signing key. The daemon
// calls it for manifest signing ("sign_manifest"); battery snapshot
// signing is not logged.
func (a *AuditLogger) LogKeyAccess(operation string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	a.Log(AuditEvent{EventType: AuditEventKeyAccess, Action: operation, Resource: "node-identity", Result: result})
}

// LogVerification records a pohwverify decision against a commit tree.
func (a *AuditLogger) LogVerification(treeHash string, valid bool, reason string) {
	result := "success"
	if !valid {
		result = "failure"
	}
	details := map[string]interface{}{}
	if reason != "" {
		details["reason"] = reason
	}
	a.Log(AuditEvent{EventType: AuditEventVerification, Action: "verify_work", Resource: treeHash, Result: result, Details: details})
}

// LogCommit records the commit gate's accept/reject decision for one
// tree hash, with the rejection kind when applicable.
func (a *AuditLogger) LogCommit(treeHash string, accepted bool, kind string) {
	result := "success"
	if !accepted {
		result = "denied"
	}
	details := map[string]interface{}{}
	if kind != "" {
		details["kind"] = kind
	}
	a.Log(AuditEvent{EventType: AuditEventCommit, Action: "verify_work", Resource: treeHash, Result: result, Details: details})
}

func (a *AuditLogger) Close() error {
	if a.rotator != nil {
		return a.rotator.Close()
	}
	return nil
}
