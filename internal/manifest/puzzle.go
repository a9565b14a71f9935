package manifest

import "crypto/sha256"

// PuzzleDigest hashes the manifest's signing payload (which already
// embeds Nonce and DifficultyBits) with SHA-256, with the pubkey
// cleared as well as the signature: the nonce is searched before Sign
// fills in the pubkey. Both the Commit Gate (searching for a nonce)
// and the Verifier (re-checking one) hash the exact same bytes, so a
// puzzle solved for one manifest can never be replayed against another.
func PuzzleDigest(m Manifest) [32]byte {
	cp := m
	cp.Pubkey = ""
	return sha256.Sum256(SigningPayload(cp))
}

// LeadingZeroBits counts the number of leading zero bits in digest.
func LeadingZeroBits(digest [32]byte) int {
	count := 0
	for _, b := range digest {
		if b == 0 {
			count += 8
			continue
		}
		for mask := byte(0x80); mask != 0; mask >>= 1 {
			if b&mask != 0 {
				return count
			}
			count++
		}
	}
	return count
}

// CheckPuzzle reports whether m's embedded nonce satisfies its own
// DifficultyBits requirement.
func CheckPuzzle(m Manifest) bool {
	digest := PuzzleDigest(m)
	return LeadingZeroBits(digest) >= int(m.DifficultyBits)
}

// DifficultyForCNS linearly interpolates puzzle difficulty from CNS:
// CNS=100 -> minBits, CNS=50 -> maxBits. Below 50 it also returns
// maxBits; low-CNS commits are not refused, here or by the daemon's
// verify-work handler.
func DifficultyForCNS(cns uint8, minBits, maxBits uint8) uint8 {
	if cns >= 100 {
		return minBits
	}
	if cns <= 50 {
		return maxBits
	}
	// Linear interpolation between (cns=50 -> maxBits) and (cns=100 -> minBits).
	span := float64(maxBits) - float64(minBits)
	frac := float64(100-cns) / 50.0 // 0 at cns=100, 1 at cns=50
	bits := float64(minBits) + span*frac
	return uint8(bits + 0.5)
}
