package gate

import (
	"time"

	"pohwd/internal/manifest"
)

// SolvePuzzle searches for a nonce satisfying m.DifficultyBits,
// iterating until found or maxDuration elapses. The iterate-until-
// budget-exhausted-or-target-found loop shape mirrors a time-bounded
// sequential-work computation; here the "work" is a hash-prefix nonce
// search rather than a fixed iteration count.
func SolvePuzzle(m manifest.Manifest, maxDuration time.Duration) (manifest.Manifest, error) {
	deadline := time.Now().Add(maxDuration)
	var nonce uint64
	for {
		m.Nonce = nonce
		if manifest.CheckPuzzle(m) {
			return m, nil
		}
		nonce++
		if nonce%4096 == 0 && time.Now().After(deadline) {
			return manifest.Manifest{}, ErrPuzzleTimeout
		}
	}
}
