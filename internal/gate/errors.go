// Package gate implements the Commit Gate (C7): it computes commit
// cost, queries the battery over IPC, solves the SHA-256-prefix PoHW
// puzzle, and injects a signed provenance manifest as a commit
// trailer.
package gate

import "errors"

var (
	ErrInsufficientEnergy = errors.New("gate: insufficient energy")
	ErrCausalityBroken    = errors.New("gate: causality broken")
	ErrSensorUnavailable  = errors.New("gate: sensor unavailable")
	ErrPuzzleTimeout      = errors.New("gate: puzzle timeout")
	ErrDaemonUnreachable  = errors.New("gate: daemon unreachable")
)
