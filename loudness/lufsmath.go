package loudness

import (
	"github.com/cwbudde/algo-loudness/dsp/core"
	"github.com/cwbudde/algo-loudness/frame"
)

// AbsThreshold is the fixed absolute gating threshold (eq. #4 relative
// to full scale), -70 LUFS per spec. Not user-configurable.
const AbsThreshold = -70.0

// RelativeOffset is the fixed relative-gating offset below the
// absolute-gated mean loudness, -10 LU per spec. Not user-configurable.
const RelativeOffset = -10.0

// denormalThreshold is the magnitude below which a value is flushed to
// zero, matching the K-filter's numerical note (§4.1) applied wherever
// repeated multiply-accumulate on tiny values occurs.
const denormalThreshold = 1e-15

// FlushDenormal replaces a magnitude below denormalThreshold with exact
// zero; otherwise returns x unchanged.
func FlushDenormal(x float64) float64 {
	if x < denormalThreshold && x > -denormalThreshold {
		return 0
	}
	return x
}

// ToLUFS converts a linear power value to LUFS: -0.691 + 10*log10(x).
// x == 0 yields -Inf.
func ToLUFS(x float64) float64 {
	return -0.691 + core.LinearPowerToDB(x)
}

// Loudness computes equation #4 of BS.1770-4: the weighted sum of a
// power frame's channels, converted to LUFS.
func Loudness(power, weights frame.Frame) float64 {
	return ToLUFS(power.Dot(weights))
}

// CanonicalWeights are the BS.1770-4 per-channel weights for L, R, C, LS,
// RS: surround channels carry a 1.41 multiplier.
var CanonicalWeights = frame.Frame{1.0, 1.0, 1.0, 1.41, 1.41}
