package entropy

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// spectralEntropy resamples the velocity-magnitude series to a fixed
// rate, applies a Hann window, runs a real FFT, normalizes the power
// spectrum into a probability distribution, and returns its Shannon
// entropy in bits.
func spectralEntropy(vel []vec2, dts []float64, resampleHz float64) float64 {
	mags, ts := magnitudeTimeSeries(vel, dts)
	if len(mags) < 4 {
		return 0
	}
	resampled := resample(mags, ts, resampleHz)
	if len(resampled) < 4 {
		return 0
	}
	windowed := hann(resampled)

	fft := fourier.NewFFT(len(windowed))
	coeffs := fft.Coefficients(nil, windowed)

	power := make([]float64, len(coeffs))
	var total float64
	for i, c := range coeffs {
		p := real(c)*real(c) + imag(c)*imag(c)
		power[i] = p
		total += p
	}
	if total <= 0 {
		return 0
	}
	prob := make([]float64, len(power))
	for i, p := range power {
		prob[i] = p / total
	}
	h := stat.Entropy(prob) // natural log (nats)
	return h / math.Ln2     // bits
}

func magnitudeTimeSeries(vel []vec2, dts []float64) (mags, ts []float64) {
	mags = make([]float64, len(vel))
	ts = make([]float64, len(vel))
	var t float64
	for i, v := range vel {
		t += dts[i]
		mags[i] = magnitude(v)
		ts[i] = t
	}
	return mags, ts
}

// resample linearly interpolates an irregular (value, time) series
// onto a fixed-rate grid spanning [ts[0], ts[len-1]].
func resample(values, ts []float64, hz float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	start, end := ts[0], ts[len(ts)-1]
	span := end - start
	if span <= 0 {
		return nil
	}
	n := int(span * hz)
	if n < 4 {
		return nil
	}
	out := make([]float64, n)
	j := 0
	for i := 0; i < n; i++ {
		target := start + float64(i)/hz
		for j < len(ts)-2 && ts[j+1] < target {
			j++
		}
		t0, t1 := ts[j], ts[j+1]
		v0, v1 := values[j], values[j+1]
		if t1 == t0 {
			out[i] = v0
			continue
		}
		frac := (target - t0) / (t1 - t0)
		out[i] = v0 + frac*(v1-v0)
	}
	return out
}

func hann(samples []float64) []float64 {
	n := len(samples)
	out := make([]float64, n)
	if n == 1 {
		out[0] = samples[0]
		return out
	}
	for i, s := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		out[i] = s * w
	}
	return out
}
