package entropy

import (
	"math"

	"pohwd/internal/ring"
)

type vec2 struct{ x, y float64 }

// velocitySeries returns per-sample velocity components from finite
// differences of (x,y) normalized by the inter-sample Δt (seconds).
// The first sample has no predecessor and is dropped, and pairs with a
// non-positive Δt are skipped, so the result has at most
// len(samples)-1 entries, each paired with the Δt that produced it.
func velocitySeries(samples []ring.Sample) (vel []vec2, dts []float64) {
	for i := 1; i < len(samples); i++ {
		dt := float64(samples[i].T-samples[i-1].T) / 1e9
		if dt <= 0 {
			continue
		}
		vx := float64(samples[i].X-samples[i-1].X) / dt
		vy := float64(samples[i].Y-samples[i-1].Y) / dt
		vel = append(vel, vec2{vx, vy})
		dts = append(dts, dt)
	}
	return vel, dts
}

func magnitude(v vec2) float64 {
	return math.Hypot(v.x, v.y)
}

// computeLDLJ integrates squared jerk over the window duration D,
// divides by peak velocity squared, and returns -ln of that quantity.
// An undefined (zero) peak velocity is reported via ok=false so the
// caller can emit Degenerate. A zero jerk integral (perfectly uniform
// motion) is floored at the smallest positive float64, which yields a
// large finite LDLJ (about 744), far outside the human range.
func computeLDLJ(vel []vec2, dts []float64, durationSec float64) (ldlj float64, ok bool) {
	if len(vel) < 3 || durationSec <= 0 {
		return 0, false
	}
	var peak float64
	for _, v := range vel {
		if m := magnitude(v); m > peak {
			peak = m
		}
	}
	if peak == 0 {
		return 0, false
	}

	// acceleration: first derivative of velocity
	accel := make([]vec2, 0, len(vel)-1)
	accelDts := make([]float64, 0, len(vel)-1)
	for i := 1; i < len(vel); i++ {
		dt := dts[i]
		if dt <= 0 {
			continue
		}
		ax := (vel[i].x - vel[i-1].x) / dt
		ay := (vel[i].y - vel[i-1].y) / dt
		accel = append(accel, vec2{ax, ay})
		accelDts = append(accelDts, dt)
	}
	if len(accel) < 2 {
		return 0, false
	}

	// jerk: first derivative of acceleration
	var jerkIntegral float64
	for i := 1; i < len(accel); i++ {
		dt := accelDts[i]
		if dt <= 0 {
			continue
		}
		jx := (accel[i].x - accel[i-1].x) / dt
		jy := (accel[i].y - accel[i-1].y) / dt
		j2 := jx*jx + jy*jy
		jerkIntegral += j2 * dt
	}

	d3 := durationSec * durationSec * durationSec
	arg := jerkIntegral * d3 / (peak * peak)
	if arg <= 0 {
		arg = math.SmallestNonzeroFloat64
	}
	return -math.Log(arg), true
}

// curvatureSeries computes unsigned curvature over consecutive sample
// triplets: κ = 4·Area / (|AB|·|BC|·|CA|).
func curvatureSeries(samples []ring.Sample) []float64 {
	var out []float64
	for i := 1; i+1 < len(samples); i++ {
		ax, ay := float64(samples[i-1].X), float64(samples[i-1].Y)
		bx, by := float64(samples[i].X), float64(samples[i].Y)
		cx, cy := float64(samples[i+1].X), float64(samples[i+1].Y)

		ab := math.Hypot(bx-ax, by-ay)
		bc := math.Hypot(cx-bx, cy-by)
		ca := math.Hypot(ax-cx, ay-cy)
		if ab == 0 || bc == 0 || ca == 0 {
			continue
		}
		// twice the signed area of triangle ABC
		cross := (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
		area := math.Abs(cross) / 2
		kappa := 4 * area / (ab * bc * ca)
		out = append(out, kappa)
	}
	return out
}

// shannonEntropyBits computes the base-2 Shannon entropy of a
// probability distribution that need not already sum to 1; zero-mass
// bins are skipped per the usual 0·log(0) = 0 convention.
func shannonEntropyBits(counts []float64) float64 {
	var total float64
	for _, c := range counts {
		total += c
	}
	if total <= 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}

// logSpacedHistogram buckets non-negative values into nBins
// log-spaced buckets spanning [max(min(values), eps), max(values)].
func logSpacedHistogram(values []float64, nBins int) []float64 {
	counts := make([]float64, nBins)
	if len(values) == 0 {
		return counts
	}
	const eps = 1e-9
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	lo = math.Max(lo, eps)
	hi = math.Max(hi, lo+eps)
	logLo, logHi := math.Log(lo), math.Log(hi)
	span := logHi - logLo
	if span <= 0 {
		span = eps
	}
	for _, v := range values {
		lv := math.Log(math.Max(v, eps))
		idx := int((lv - logLo) / span * float64(nBins))
		if idx < 0 {
			idx = 0
		}
		if idx >= nBins {
			idx = nBins - 1
		}
		counts[idx]++
	}
	return counts
}

// burstiness computes (σ−μ)/(σ+μ) of inter-sample gaps τ (seconds).
func burstiness(dts []float64) float64 {
	n := len(dts)
	if n == 0 {
		return 0
	}
	var sum float64
	for _, d := range dts {
		sum += d
	}
	mu := sum / float64(n)
	var variance float64
	for _, d := range dts {
		diff := d - mu
		variance += diff * diff
	}
	variance /= float64(n)
	sigma := math.Sqrt(variance)
	if sigma+mu == 0 {
		return 0
	}
	return (sigma - mu) / (sigma + mu)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
