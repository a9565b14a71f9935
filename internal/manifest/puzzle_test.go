package manifest

import "testing"

func TestDifficultyForCNSEndpoints(t *testing.T) {
	if d := DifficultyForCNS(100, 10, 22); d != 10 {
		t.Fatalf("expected 10 at cns=100, got %d", d)
	}
	if d := DifficultyForCNS(50, 10, 22); d != 22 {
		t.Fatalf("expected 22 at cns=50, got %d", d)
	}
	if d := DifficultyForCNS(30, 10, 22); d != 22 {
		t.Fatalf("expected refusal-level 22 below cns=50, got %d", d)
	}
}

func TestLeadingZeroBitsAllZero(t *testing.T) {
	var digest [32]byte
	if got := LeadingZeroBits(digest); got != 256 {
		t.Fatalf("expected 256 leading zero bits for all-zero digest, got %d", got)
	}
}

func TestCheckPuzzleFindsSatisfyingNonce(t *testing.T) {
	m := sampleManifest()
	m.DifficultyBits = 4
	for nonce := uint64(0); nonce < 1<<20; nonce++ {
		m.Nonce = nonce
		if CheckPuzzle(m) {
			return
		}
	}
	t.Fatalf("expected to find a satisfying nonce within the search bound")
}
