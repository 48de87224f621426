package pipeline

import (
	"github.com/cwbudde/algo-loudness/frame"
	"github.com/cwbudde/algo-loudness/gate"
	"github.com/cwbudde/algo-loudness/kweight"
	"github.com/cwbudde/algo-loudness/loudness"
	"github.com/cwbudde/algo-loudness/lra"
	"github.com/cwbudde/algo-loudness/runningstats"
)

// averageSlot pairs a gated power windower with the integrated-loudness
// aggregator it feeds.
type averageSlot struct {
	windower *gate.Windower
	agg      *loudness.Aggregator
}

// maximumSlot pairs a gated power windower with a running max of the
// per-window loudness it emits.
type maximumSlot struct {
	windower *gate.Windower
	weights  frame.Frame
	max      float64
	hasMax   bool
}

// rangeSlot pairs a gated power windower with an EBU R128 loudness
// range aggregator.
type rangeSlot struct {
	windower *gate.Windower
	agg      *lra.Aggregator
}

// PipelineLayer owns one K-filter instance plus every registered
// gating's windower/aggregator pair. A frame pushed into the layer
// passes through the K-filter once and then fans out to every
// registered measurement independently.
type PipelineLayer struct {
	weights frame.Frame

	kfilter *kweight.Filter
	peak    runningstats.PeakTracker

	averages map[gate.Gating]*averageSlot
	maxima   map[gate.Gating]*maximumSlot
	ranges   map[gate.Gating]*rangeSlot
}

func newLayer(sampleRate float64, weights frame.Frame, averageGatings, maximumGatings, rangeGatings []gate.Gating) (*PipelineLayer, error) {
	layer := &PipelineLayer{
		weights:  weights,
		kfilter:  kweight.New(sampleRate),
		averages: make(map[gate.Gating]*averageSlot, len(averageGatings)),
		maxima:   make(map[gate.Gating]*maximumSlot, len(maximumGatings)),
		ranges:   make(map[gate.Gating]*rangeSlot, len(rangeGatings)),
	}

	for _, g := range averageGatings {
		w, err := gate.NewWindower(g, sampleRate)
		if err != nil {
			return nil, err
		}
		layer.averages[g] = &averageSlot{windower: w, agg: loudness.NewAggregator(weights)}
	}
	for _, g := range maximumGatings {
		w, err := gate.NewWindower(g, sampleRate)
		if err != nil {
			return nil, err
		}
		layer.maxima[g] = &maximumSlot{windower: w, weights: weights}
	}
	for _, g := range rangeGatings {
		w, err := gate.NewWindower(g, sampleRate)
		if err != nil {
			return nil, err
		}
		layer.ranges[g] = &rangeSlot{windower: w, agg: lra.NewAggregator(weights)}
	}

	return layer, nil
}

// Push feeds one raw frame into the layer: the peak tracker observes
// the unfiltered frame directly (per §2's data flow, C6 taps the frame
// source), while the K-filtered frame fans out to every registered
// gating's windower and, on emission, its aggregator.
func (l *PipelineLayer) Push(f frame.Frame) {
	l.peak.Observe(f)

	kw := l.kfilter.Process(f)

	for _, slot := range l.averages {
		if p, emitted := slot.windower.Push(kw); emitted {
			slot.agg.Push(p)
		}
	}
	for _, slot := range l.maxima {
		p, emitted := slot.windower.Push(kw)
		if !emitted {
			continue
		}
		windowLoudness := loudness.Loudness(p, slot.weights)
		if !slot.hasMax || windowLoudness > slot.max {
			slot.max = windowLoudness
			slot.hasMax = true
		}
	}
	for _, slot := range l.ranges {
		if p, emitted := slot.windower.Push(kw); emitted {
			slot.agg.Push(p)
		}
	}
}

// Peak returns the per-channel absolute sample peak observed so far.
func (l *PipelineLayer) Peak() frame.Frame {
	return l.peak.Peak()
}

// LayerOutput is the result of finalizing (or popping) a PipelineLayer.
type LayerOutput struct {
	Averages map[gate.Gating]Measurement
	Maxima   map[gate.Gating]Measurement
	Ranges   map[gate.Gating]Measurement
	Peak     frame.Frame
}

// Finalize consumes the layer's accumulated state and produces its
// output. The layer itself remains usable afterward (Finalize does not
// reset state); callers that want fresh state call Reset explicitly.
func (l *PipelineLayer) Finalize() LayerOutput {
	out := LayerOutput{
		Averages: make(map[gate.Gating]Measurement, len(l.averages)),
		Maxima:   make(map[gate.Gating]Measurement, len(l.maxima)),
		Ranges:   make(map[gate.Gating]Measurement, len(l.ranges)),
		Peak:     l.peak.Peak(),
	}

	for g, slot := range l.averages {
		if v, ok := slot.agg.Finalize(); ok {
			out.Averages[g] = result(v)
		} else {
			out.Averages[g] = noResult()
		}
	}
	for g, slot := range l.maxima {
		if slot.hasMax {
			out.Maxima[g] = result(slot.max)
		} else {
			out.Maxima[g] = noResult()
		}
	}
	for g, slot := range l.ranges {
		if v, ok := slot.agg.Finalize(); ok {
			out.Ranges[g] = result(v)
		} else {
			out.Ranges[g] = noResult()
		}
	}

	return out
}

// Reset restores the layer to the state of a freshly built layer:
// K-filter state, every windower, every aggregator, and the peak
// tracker are all cleared, without reallocating the layer itself.
func (l *PipelineLayer) Reset() {
	l.kfilter.Reset()
	l.peak.Reset()

	for _, slot := range l.averages {
		slot.windower.Reset()
		slot.agg.Reset()
	}
	for _, slot := range l.maxima {
		slot.windower.Reset()
		slot.hasMax = false
		slot.max = 0
	}
	for _, slot := range l.ranges {
		slot.windower.Reset()
		slot.agg.Reset()
	}
}
