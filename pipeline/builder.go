package pipeline

import (
	"fmt"

	"github.com/cwbudde/algo-loudness/frame"
	"github.com/cwbudde/algo-loudness/gate"
	"github.com/cwbudde/algo-loudness/loudness"
)

// PipelineBuilder configures and constructs a Pipeline. Configuration
// errors (non-positive sample rate, no measurements registered, an
// invalid gating) are reported synchronously from Build; no Pipeline
// is produced in that case.
type PipelineBuilder struct {
	sampleRate float64
	weights    frame.Frame

	averages map[gate.Gating]struct{}
	maxima   map[gate.Gating]struct{}
	ranges   map[gate.Gating]struct{}
}

// NewBuilder returns a PipelineBuilder for sampleRate Hz, weighting
// channels per the BS.1770-4 canonical values.
func NewBuilder(sampleRate float64) *PipelineBuilder {
	return &PipelineBuilder{
		sampleRate: sampleRate,
		weights:    loudness.CanonicalWeights,
		averages:   make(map[gate.Gating]struct{}),
		maxima:     make(map[gate.Gating]struct{}),
		ranges:     make(map[gate.Gating]struct{}),
	}
}

// WithWeights overrides the per-channel G-weights used by the loudness
// formula (equation #4). Default is the BS.1770-4 canonical values.
func (b *PipelineBuilder) WithWeights(weights frame.Frame) *PipelineBuilder {
	b.weights = weights
	return b
}

// Average registers an integrated-loudness measurement for gating.
func (b *PipelineBuilder) Average(g gate.Gating) *PipelineBuilder {
	b.averages[g] = struct{}{}
	return b
}

// Maximum registers a window-loudness-maximum measurement for gating.
func (b *PipelineBuilder) Maximum(g gate.Gating) *PipelineBuilder {
	b.maxima[g] = struct{}{}
	return b
}

// Range registers an EBU R128 loudness-range measurement for gating
// (conventionally gate.ShortTerm).
func (b *PipelineBuilder) Range(g gate.Gating) *PipelineBuilder {
	b.ranges[g] = struct{}{}
	return b
}

// Build validates the configuration and returns an empty Pipeline (zero
// layers) onto which the caller pushes layers as needed.
func (b *PipelineBuilder) Build() (*Pipeline, error) {
	if b.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, b.sampleRate)
	}
	if len(b.averages)+len(b.maxima)+len(b.ranges) == 0 {
		return nil, ErrNoMeasurements
	}

	averageGatings := gatingSlice(b.averages)
	maximumGatings := gatingSlice(b.maxima)
	rangeGatings := gatingSlice(b.ranges)

	for _, g := range append(append(append([]gate.Gating{}, averageGatings...), maximumGatings...), rangeGatings...) {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGating, err)
		}
	}

	return &Pipeline{
		sampleRate:     b.sampleRate,
		weights:        b.weights,
		averageGatings: averageGatings,
		maximumGatings: maximumGatings,
		rangeGatings:   rangeGatings,
	}, nil
}

func gatingSlice(m map[gate.Gating]struct{}) []gate.Gating {
	out := make([]gate.Gating, 0, len(m))
	for g := range m {
		out = append(out, g)
	}
	return out
}
