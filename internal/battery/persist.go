package battery

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

const (
	stateMagic   uint32 = 0x504f4857 // "POHW"
	stateVersion uint32 = 1
	stateSize           = 4 + 4 + 8 + 8 + 8 + 64
)

var ErrCorruptState = errors.New("battery: corrupt or unsigned state file")

// Persist writes the signed battery state file:
// [magic u32][version u32][balance f64][last_hw_counter u64][timestamp_ns u64][signature 64 bytes]
func Persist(path string, c Credits, timestampNs int64, sign func([]byte) []byte) error {
	buf := make([]byte, stateSize)
	binary.BigEndian.PutUint32(buf[0:4], stateMagic)
	binary.BigEndian.PutUint32(buf[4:8], stateVersion)
	binary.BigEndian.PutUint64(buf[8:16], math.Float64bits(c.Balance))
	binary.BigEndian.PutUint64(buf[16:24], c.LastHWCounter)
	binary.BigEndian.PutUint64(buf[24:32], uint64(timestampNs))

	sig := sign(buf[:32])
	if len(sig) != 64 {
		return fmt.Errorf("battery: signature must be 64 bytes, got %d", len(sig))
	}
	copy(buf[32:96], sig)

	return os.WriteFile(path, buf, 0o600)
}

// Load reads and verifies the battery state file against pub. An
// unsigned or mismatched file resets to Empty per spec: this returns
// ErrCorruptState rather than fabricating a Credits value, and the
// caller is responsible for logging the warning and using the zero
// Credits{}.
func Load(path string, pub ed25519.PublicKey) (Credits, int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Credits{}, 0, err
	}
	if len(raw) != stateSize {
		return Credits{}, 0, ErrCorruptState
	}
	magic := binary.BigEndian.Uint32(raw[0:4])
	version := binary.BigEndian.Uint32(raw[4:8])
	if magic != stateMagic || version != stateVersion {
		return Credits{}, 0, ErrCorruptState
	}
	balance := math.Float64frombits(binary.BigEndian.Uint64(raw[8:16]))
	hwCounter := binary.BigEndian.Uint64(raw[16:24])
	timestampNs := int64(binary.BigEndian.Uint64(raw[24:32]))
	sig := raw[32:96]

	if !ed25519.Verify(pub, raw[:32], sig) {
		return Credits{}, 0, ErrCorruptState
	}

	var sigArr [64]byte
	copy(sigArr[:], sig)

	return Credits{
		Balance:       balance,
		LastChargeNs:  timestampNs,
		LastHWCounter: hwCounter,
		Signature:     sigArr,
	}, timestampNs, nil
}
