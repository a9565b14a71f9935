package entropy

import "math"

const (
	curvatureBins  = 16
	burstinessMax  = 40.0
	spectralMax    = 35.0
	curvatureNCDMax = 25.0
)

// cnsFromMetrics aggregates kinematic metrics into the 0-100 CNS
// score. Curvature entropy is still reported in Metrics for operators
// and the verifier's re-derivation, but the aggregation formula only
// feeds the burstiness, spectral-entropy, and NCD terms into the
// score directly.
func cnsFromMetrics(m Metrics, specEntropyMax float64) uint8 {
	burstComponent := burstinessMax * clamp01((m.Burstiness-BurstinessLo)/(BurstinessHi-BurstinessLo))

	var specComponent float64
	if specEntropyMax > 0 {
		specComponent = spectralMax * clamp01(m.SpectralEntropy/specEntropyMax)
	}

	ncdComponent := curvatureNCDMax * clamp01((m.NCD-NCDFloor)/NCDSpan)

	total := burstComponent + specComponent + ncdComponent

	if m.LDLJ < LDLJHumanRangeLow || m.LDLJ > LDLJHumanRangeHigh {
		total *= 0.5
	}

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return uint8(math.Round(total))
}
