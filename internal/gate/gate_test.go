package gate

import (
	"testing"
)

func TestComputeCostEmptyDiffIsZero(t *testing.T) {
	c := ComputeCost(0, 0, 0.9)
	if c.TotalCost != 0 {
		t.Fatalf("expected zero cost for empty diff, got %f", c.TotalCost)
	}
}

func TestComputeCostFormula(t *testing.T) {
	c := ComputeCost(10, 2, 0.5)
	want := CostAlpha*0.5 + CostBeta*(10+2.0/2)
	if c.TotalCost != want {
		t.Fatalf("want %f got %f", want, c.TotalCost)
	}
}

func TestDiffHashStableForSameInput(t *testing.T) {
	a := DiffHash([]byte("added"), []byte("removed"))
	b := DiffHash([]byte("added"), []byte("removed"))
	if a != b {
		t.Fatalf("expected stable hash, got %s vs %s", a, b)
	}
	c := DiffHash([]byte("added"), []byte("different"))
	if a == c {
		t.Fatalf("expected different hash for different removed block")
	}
}

func TestDiffNCDIdenticalBlocksIsLow(t *testing.T) {
	block := []byte("the quick brown fox jumps over the lazy dog, repeated for compressibility, repeated for compressibility")
	ncd, err := DiffNCD(block, block)
	if err != nil {
		t.Fatal(err)
	}
	if ncd > 0.3 {
		t.Fatalf("expected low NCD for identical blocks, got %f", ncd)
	}
}
