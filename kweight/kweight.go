// Package kweight implements the ITU-R BS.1770-4 K-weighting filter: a
// shelving pre-filter cascaded with an RLB high-pass, applied
// independently per channel.
package kweight

import (
	"math"

	"github.com/cwbudde/algo-loudness/dsp/filter/biquad"
	"github.com/cwbudde/algo-loudness/frame"
)

// Stage A: shelving boost pre-filter.
const (
	shelfF0     = 1681.974450955533
	shelfQ      = 0.7071752369554196
	shelfHeight = 3.999843853973347
	shelfVbExp  = 0.4996667741545416
)

// Stage B: RLB high-pass.
const (
	highpassF0 = 38.13547087602444
	highpassQ  = 0.5003270373238773
)

// denormalThreshold is the magnitude below which a coefficient is
// flushed to zero, per spec §4.1's numerical note.
const denormalThreshold = 1e-15

// flushDenormal replaces tiny magnitudes with exact zero.
func flushDenormal(x float64) float64 {
	if x < denormalThreshold && x > -denormalThreshold {
		return 0
	}
	return x
}

// shelvingCoefficients derives Stage A's biquad coefficients at sampleRate.
func shelvingCoefficients(sampleRate float64) biquad.Coefficients {
	k := math.Tan(math.Pi * shelfF0 / sampleRate)
	a0 := 1 + k/shelfQ + k*k
	vh := math.Pow(10, shelfHeight/20)
	vb := math.Pow(vh, shelfVbExp)

	return biquad.Coefficients{
		B0: flushDenormal((vh + vb*k/shelfQ + k*k) / a0),
		B1: flushDenormal(2 * (k*k - vh) / a0),
		B2: flushDenormal((vh - vb*k/shelfQ + k*k) / a0),
		A1: flushDenormal(2 * (k*k - 1) / a0),
		A2: flushDenormal((1 - k/shelfQ + k*k) / a0),
	}
}

// highpassCoefficients derives Stage B's biquad coefficients at sampleRate.
func highpassCoefficients(sampleRate float64) biquad.Coefficients {
	k := math.Tan(math.Pi * highpassF0 / sampleRate)
	a0 := 1 + k/highpassQ + k*k

	return biquad.Coefficients{
		B0: 1,
		B1: -2,
		B2: 1,
		A1: flushDenormal(2 * (k*k - 1) / a0),
		A2: flushDenormal((1 - k/highpassQ + k*k) / a0),
	}
}

// Coefficients computes the two K-weighting stages for sampleRate, in
// processing order: shelving pre-filter, then RLB high-pass.
func Coefficients(sampleRate float64) [2]biquad.Coefficients {
	return [2]biquad.Coefficients{
		shelvingCoefficients(sampleRate),
		highpassCoefficients(sampleRate),
	}
}

// Filter applies the two-stage K-weighting cascade to every channel of a
// Frame independently. Each channel owns its own biquad.Chain so that
// filter state is never shared across channels.
type Filter struct {
	sampleRate float64
	chains     [frame.NumChannels]*biquad.Chain
}

// New returns a Filter configured for sampleRate, with all state zeroed.
func New(sampleRate float64) *Filter {
	coeffs := Coefficients(sampleRate)
	f := &Filter{sampleRate: sampleRate}
	for c := range f.chains {
		f.chains[c] = biquad.NewChain(coeffs[:])
	}
	return f
}

// SampleRate returns the sample rate the filter was constructed for.
func (f *Filter) SampleRate() float64 {
	return f.sampleRate
}

// Process filters one input frame and returns the K-weighted output.
// Deterministic, order-preserving; no delay line is exposed.
func (f *Filter) Process(in frame.Frame) frame.Frame {
	var out frame.Frame
	for c := range out {
		out[c] = f.chains[c].ProcessSample(in[c])
	}
	return out
}

// Reset restores all per-channel delay lines to zero.
func (f *Filter) Reset() {
	for c := range f.chains {
		f.chains[c].Reset()
	}
}
