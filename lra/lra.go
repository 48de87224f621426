// Package lra implements EBU R128 §3.2 loudness range: the distribution
// spread of short-term loudness across a program, after the same
// two-stage absolute/relative gating idea as integrated loudness but
// with different thresholds and a percentile reduction instead of a
// mean.
//
// This supplements spec.md's Open Question on loudness range: the
// distilled pipeline spec anticipates the histogram-based statistics
// object but leaves the finalize path unimplemented; this package
// follows EBU R128 §3.2 verbatim.
package lra

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-loudness/frame"
	"github.com/cwbudde/algo-loudness/loudness"
)

// AbsThreshold is the EBU R128 §3.2 absolute gate for loudness range,
// identical to BS.1770-4's integrated-loudness absolute gate.
const AbsThreshold = -70.0

// RelativeOffset is the EBU R128 §3.2 relative-gate offset, -20 LU
// below the power-weighted mean loudness of the absolute-gated set.
const RelativeOffset = -20.0

// LowerPercentile and UpperPercentile bound the loudness range: the
// 10th and 95th percentile of the doubly-gated block loudnesses.
const (
	LowerPercentile = 0.10
	UpperPercentile = 0.95
)

// block is one gated short-term loudness measurement retained for the
// percentile pass.
type block struct {
	loudness float64
	power    frame.Frame
}

// Aggregator accumulates short-term gated block loudnesses and computes
// the EBU R128 loudness range (in LU) across them.
type Aggregator struct {
	weights frame.Frame

	absCount uint64
	absMean  frame.Frame

	blocks []block
}

// NewAggregator returns an Aggregator weighting channels by weights.
func NewAggregator(weights frame.Frame) *Aggregator {
	return &Aggregator{weights: weights}
}

// Push feeds one short-term gated power frame (EBU R128 uses the same
// 3 s window / 1 s hop as the Short-term gating) into the aggregator.
func (a *Aggregator) Push(power frame.Frame) {
	l := loudness.Loudness(power, a.weights)
	if l <= AbsThreshold {
		return
	}

	a.absCount++
	n := float64(a.absCount)
	delta := power.Sub(a.absMean)
	a.absMean = a.absMean.Add(delta.Scale(1 / n))

	a.blocks = append(a.blocks, block{loudness: l, power: power})
}

// Finalize computes the loudness range from all retained blocks. ok is
// false when fewer than two blocks survive the relative gate, since a
// percentile spread is undefined below that.
func (a *Aggregator) Finalize() (lu float64, ok bool) {
	if a.absCount == 0 {
		return 0, false
	}

	lAbs := loudness.Loudness(a.absMean, a.weights)
	relThresh := lAbs + RelativeOffset

	gated := make([]float64, 0, len(a.blocks))
	for _, b := range a.blocks {
		if b.loudness > relThresh {
			gated = append(gated, b.loudness)
		}
	}

	if len(gated) < 2 {
		return 0, false
	}

	sort.Float64s(gated)
	lower := stat.Quantile(LowerPercentile, stat.Empirical, gated, nil)
	upper := stat.Quantile(UpperPercentile, stat.Empirical, gated, nil)

	return upper - lower, true
}

// Reset clears the aggregator back to its just-constructed state.
func (a *Aggregator) Reset() {
	a.absCount = 0
	a.absMean = frame.Zero
	a.blocks = a.blocks[:0]
}
