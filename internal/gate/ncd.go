package gate

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/klauspost/compress/zstd"
)

// DiffNCD computes the Normalized Compression Distance between the
// added and removed blocks of a staged diff. A trivial, highly
// repetitive diff compresses to a small distance; a diff that
// interleaves unrelated content does not.
func DiffNCD(added, removed []byte) (float64, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return 0, err
	}
	defer enc.Close()

	cAdded := len(enc.EncodeAll(added, nil))
	cRemoved := len(enc.EncodeAll(removed, nil))
	joined := append(append([]byte{}, added...), removed...)
	cJoined := len(enc.EncodeAll(joined, nil))

	minC, maxC := cAdded, cRemoved
	if cRemoved < minC {
		minC = cRemoved
		maxC = cAdded
	}
	if maxC == 0 {
		return 0, nil
	}
	return float64(cJoined-minC) / float64(maxC), nil
}

// DiffHash fingerprints the staged diff for the verify-work request's
// diff_hash field without retaining the diff content itself.
func DiffHash(added, removed []byte) string {
	h := sha256.New()
	h.Write(added)
	h.Write([]byte{0})
	h.Write(removed)
	return hex.EncodeToString(h.Sum(nil))
}
