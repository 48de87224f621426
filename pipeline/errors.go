package pipeline

import "errors"

// Sentinel errors for the conditions the builder and stack can detect
// synchronously. Config validation happens in PipelineBuilder.Build();
// an invalid configuration never produces a Pipeline.
var (
	// ErrInvalidSampleRate is returned when the configured sample rate
	// is not strictly positive.
	ErrInvalidSampleRate = errors.New("pipeline: sample rate must be > 0")

	// ErrNoMeasurements is returned when a builder has no averages,
	// maxima, or ranges registered: there would be nothing to measure.
	ErrNoMeasurements = errors.New("pipeline: no averages, maxima, or ranges registered")

	// ErrInvalidGating is returned when a registered Gating fails its
	// own validation (delta_len_ms == 0, or gate_len_ms not a multiple
	// of delta_len_ms).
	ErrInvalidGating = errors.New("pipeline: invalid gating")

	// ErrEmptyLayerStack is returned by PopLayer when the stack has no
	// layer to pop.
	ErrEmptyLayerStack = errors.New("pipeline: layer stack is empty")

	// ErrNoSuchLayer is returned by PeekLayer when there is no current
	// top layer.
	ErrNoSuchLayer = errors.New("pipeline: no current layer")
)
