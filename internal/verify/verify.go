// Package verify implements the Verifier (C10): a pure function that
// re-derives everything from a commit's trailer and never trusts
// daemon state.
package verify

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"pohwd/internal/manifest"
)

type Result int

const (
	Valid Result = iota
	BadSignature
	BadPuzzle
	TreeMismatch
	SchemaError
)

func (r Result) String() string {
	switch r {
	case Valid:
		return "Valid"
	case BadSignature:
		return "BadSignature"
	case BadPuzzle:
		return "BadPuzzle"
	case TreeMismatch:
		return "TreeMismatch"
	case SchemaError:
		return "SchemaError"
	default:
		return "Unknown"
	}
}

var (
	ErrBadSignature = errors.New("verify: bad signature")
	ErrBadPuzzle    = errors.New("verify: bad puzzle")
	ErrTreeMismatch = errors.New("verify: tree mismatch")
	ErrSchemaError  = errors.New("verify: schema error")
)

// Verify extracts the trailer from commitMessage, parses and
// schema-validates the manifest, checks the Ed25519 signature, checks
// the SHA-256 puzzle, and compares commit_tree_hash against
// actualTreeHash (computed by the caller from the real commit, e.g.
// via `git show --format=%T`).
func Verify(commitMessage, actualTreeHash string) (Result, manifest.Manifest, error) {
	payload, err := manifest.ExtractTrailer(commitMessage)
	if err != nil {
		return SchemaError, manifest.Manifest{}, fmt.Errorf("%w: %v", ErrSchemaError, err)
	}

	m, err := manifest.Parse(payload)
	if err != nil {
		return SchemaError, manifest.Manifest{}, fmt.Errorf("%w: %v", ErrSchemaError, err)
	}

	ok, err := manifest.VerifySignature(m, ed25519.Verify)
	if err != nil {
		return SchemaError, m, fmt.Errorf("%w: %v", ErrSchemaError, err)
	}
	if !ok {
		return BadSignature, m, ErrBadSignature
	}

	if !manifest.CheckPuzzle(m) {
		return BadPuzzle, m, ErrBadPuzzle
	}

	if m.CommitTreeHash != actualTreeHash {
		return TreeMismatch, m, ErrTreeMismatch
	}

	return Valid, m, nil
}
