// Package entropy implements the Entropy Engine (C3): it turns a
// window of kinematic samples into Kinematic Metrics and the
// aggregate Cognitive Noise Signature (CNS) score.
package entropy

import (
	"errors"

	"pohwd/internal/ring"
)

// ErrDegenerate is returned when a window cannot yield a metric
// (too few samples, or an undefined peak velocity). The caller must
// not charge the battery for a Degenerate tick.
var ErrDegenerate = errors.New("entropy: degenerate window")

const (
	DefaultMinSamples  = 64
	DefaultResampleHz  = 60.0
	LDLJHumanRangeLow  = -10.0
	LDLJHumanRangeHigh = -2.0
	BurstinessLo       = 0.1
	BurstinessHi       = 0.9
	NCDFloor           = 0.3
	NCDSpan            = 0.5
)

// Window is a contiguous slice of samples spanning a fixed duration.
// It is created fresh on every tick and discarded after metric
// extraction; like ring.Sample, it carries no serialization
// capability.
type Window struct {
	Samples    []ring.Sample
	DurationNs int64
}

// Snapshot copies the most recent n samples (0 = all available) out of
// the ring buffer into a Window.
func Snapshot(buf *ring.Buffer, n int) Window {
	samples := buf.Snapshot(n)
	var dur int64
	if len(samples) > 1 {
		dur = samples[len(samples)-1].T - samples[0].T
	}
	return Window{Samples: samples, DurationNs: dur}
}

// Metrics is the immutable output of one analysis tick.
type Metrics struct {
	LDLJ             float64
	SpectralEntropy  float64
	CurvatureEntropy float64
	Throughput       float64
	NCD              float64
	Burstiness       float64
	SampleCount      uint32
}
