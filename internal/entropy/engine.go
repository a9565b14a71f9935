package entropy

import (
	"fmt"
)

// Engine runs one analysis tick at a time. It is not safe for
// concurrent ticks; the daemon's cooperative scheduler calls Tick from
// a single goroutine.
type Engine struct {
	minSamples   int
	resampleHz   float64
	compressor   *ncdCompressor
	referenceGap []byte // previous tick's gap bytes, NCD's rolling reference
}

func NewEngine(minSamples int, resampleHz float64) (*Engine, error) {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	if resampleHz <= 0 {
		resampleHz = DefaultResampleHz
	}
	c, err := newNCDCompressor()
	if err != nil {
		return nil, fmt.Errorf("entropy: new compressor: %w", err)
	}
	return &Engine{minSamples: minSamples, resampleHz: resampleHz, compressor: c}, nil
}

func (e *Engine) Close() error {
	return e.compressor.Close()
}

// Tick runs the full eight-step analysis pipeline against the window
// and returns the metrics plus the CNS score. ErrDegenerate is
// returned (with a zero Metrics) when the window is too sparse or the
// peak velocity is undefined; callers must not charge the battery for
// that tick.
func (e *Engine) Tick(w Window) (Metrics, uint8, error) {
	if len(w.Samples) < e.minSamples {
		return Metrics{}, 0, ErrDegenerate
	}

	vel, dts := velocitySeries(w.Samples)
	if len(vel) == 0 {
		return Metrics{}, 0, ErrDegenerate
	}

	durationSec := float64(w.DurationNs) / 1e9
	ldlj, ok := computeLDLJ(vel, dts, durationSec)
	if !ok {
		return Metrics{}, 0, ErrDegenerate
	}

	specH := spectralEntropy(vel, dts, e.resampleHz)

	curvatures := curvatureSeries(w.Samples)
	curvHist := logSpacedHistogram(curvatures, curvatureBins)
	curvH := shannonEntropyBits(curvHist)

	burst := burstiness(dts)

	gapBytes := gapHistogramBytes(dts)
	var ncd float64
	if e.referenceGap != nil {
		ncd = e.compressor.ncd(gapBytes, e.referenceGap)
	}
	e.referenceGap = gapBytes

	var throughput float64
	if durationSec > 0 {
		throughput = float64(len(w.Samples)) / durationSec
	}

	m := Metrics{
		LDLJ:             ldlj,
		SpectralEntropy:  specH,
		CurvatureEntropy: curvH,
		Throughput:       throughput,
		NCD:              ncd,
		Burstiness:       burst,
		SampleCount:      uint32(len(w.Samples)),
	}

	specMax := maxSpectralEntropy(e.resampleHz)
	cns := cnsFromMetrics(m, specMax)
	return m, cns, nil
}

// maxSpectralEntropy is the theoretical ceiling for a resampled
// window's Shannon entropy: floor(log2) of the number of samples a
// full-length resample at resampleHz over the default 5s tick yields
// (60 Hz: 300 samples, 8 bits).
func maxSpectralEntropy(resampleHz float64) float64 {
	const defaultTickSec = 5.0
	n := int(resampleHz * defaultTickSec)
	if n < 2 {
		return 1
	}
	bits := 0.0
	for n > 1 {
		n >>= 1
		bits++
	}
	return bits
}
