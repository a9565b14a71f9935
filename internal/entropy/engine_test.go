package entropy

import (
	"math"
	"testing"

	"pohwd/internal/ring"
)

func jitteredSamples(n int) []ring.Sample {
	samples := make([]ring.Sample, n)
	var t int64
	var x, y int32
	seed := int32(1)
	for i := 0; i < n; i++ {
		t += int64(8*1e6) + int64(seed%5)*1e6 // ~8-12ms jitter
		seed = seed*1103515245 + 12345
		dx := int32(seed%7) - 3
		seed = seed*1103515245 + 12345
		dy := int32(seed%7) - 3
		x += dx + 2
		y += dy + 1
		samples[i] = ring.Sample{T: t, X: x, Y: y}
	}
	return samples
}

func linearSamples(n int) []ring.Sample {
	samples := make([]ring.Sample, n)
	for i := 0; i < n; i++ {
		t := int64(i) * 10 * 1e6
		samples[i] = ring.Sample{T: t, X: int32(i), Y: int32(i)}
	}
	return samples
}

func TestTickDegenerateTooFewSamples(t *testing.T) {
	e, err := NewEngine(64, 60)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	w := Window{Samples: linearSamples(10), DurationNs: 100}
	_, _, err = e.Tick(w)
	if err != ErrDegenerate {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
}

func TestTickLinearMotionLowCNS(t *testing.T) {
	e, err := NewEngine(64, 60)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	samples := linearSamples(600)
	w := Window{Samples: samples, DurationNs: samples[len(samples)-1].T - samples[0].T}
	_, _, err = e.Tick(w) // prime rolling NCD reference
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, cns, err := e.Tick(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cns > 30 {
		t.Fatalf("expected low CNS for perfectly linear motion, got %d", cns)
	}
}

func TestShannonEntropyBitsUniformIsMax(t *testing.T) {
	counts := []float64{10, 10, 10, 10}
	h := shannonEntropyBits(counts)
	if math.Abs(h-2.0) > 1e-9 {
		t.Fatalf("expected entropy 2 bits for uniform 4-bin dist, got %f", h)
	}
}

func TestBurstinessDirectionality(t *testing.T) {
	regular := []float64{0.01, 0.01, 0.01, 0.01}
	if b := burstiness(regular); b > -0.9 {
		t.Fatalf("expected burstiness near -1 for regular gaps, got %f", b)
	}
}
