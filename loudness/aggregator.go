// Package loudness implements the two-pass absolute/relative gating
// aggregator (ITU-R BS.1770-4 §4.3) that turns a stream of mean-square
// power frames into a single integrated LUFS value, plus the LUFS
// conversion math it shares with the rest of the pipeline.
package loudness

import "github.com/cwbudde/algo-loudness/frame"

// retained is one power frame that passed the absolute gate, paired
// with its per-frame loudness so the relative pass doesn't recompute it.
type retained struct {
	loudness float64
	power    frame.Frame
}

// Aggregator accumulates gated power frames and produces a single
// integrated LUFS value via two-pass absolute/relative gating.
type Aggregator struct {
	weights frame.Frame

	absCount uint64
	absMean  frame.Frame

	frames []retained
}

// NewAggregator returns an Aggregator that weights channels by weights
// (BS.1770-4 canonical values: CanonicalWeights).
func NewAggregator(weights frame.Frame) *Aggregator {
	return &Aggregator{weights: weights}
}

// Push feeds one mean-square power frame into the aggregator. Frames at
// or below AbsThreshold are discarded; frames above it are folded into
// the absolute-gated running mean and retained for the relative pass.
func (a *Aggregator) Push(power frame.Frame) {
	l := Loudness(power, a.weights)
	if l <= AbsThreshold {
		return
	}

	a.absCount++
	n := float64(a.absCount)
	delta := power.Sub(a.absMean)
	a.absMean = a.absMean.Add(delta.Scale(1 / n))

	a.frames = append(a.frames, retained{loudness: l, power: power})
}

// Finalize computes the integrated loudness from all retained frames,
// per the two-pass algorithm in §4.3. ok is false if no frame was ever
// retained, or if the relative-gated subset is empty — both are
// legitimate "no result" outcomes, not errors.
func (a *Aggregator) Finalize() (lufs float64, ok bool) {
	if a.absCount == 0 {
		return 0, false
	}

	lAbs := Loudness(a.absMean, a.weights)
	relThresh := lAbs + RelativeOffset

	var relCount uint64
	var relSum frame.Frame
	for _, r := range a.frames {
		if r.loudness > relThresh {
			relCount++
			relSum = relSum.Add(r.power)
		}
	}

	if relCount == 0 {
		return 0, false
	}

	relMean := relSum.Scale(1 / float64(relCount))
	return Loudness(relMean, a.weights), true
}

// Reset clears the aggregator back to its just-constructed state,
// without reallocating the retained-frames slice's backing array.
func (a *Aggregator) Reset() {
	a.absCount = 0
	a.absMean = frame.Zero
	a.frames = a.frames[:0]
}
