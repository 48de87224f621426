// Package pipeline wires the K-filter, gated power windower, and
// loudness aggregator into the streaming orchestrator described in
// spec.md §4.5: a stack of PipelineLayers sharing one configuration,
// each independently accumulating the same broadcast frame stream.
package pipeline

import (
	"github.com/cwbudde/algo-loudness/frame"
	"github.com/cwbudde/algo-loudness/gate"
)

// Pipeline is a LIFO stack of PipelineLayers sharing the same sample
// rate, G-weights, and registered gating configuration. Pushing a frame
// broadcasts it to every layer currently on the stack; popping a layer
// finalizes and discards only the top one, leaving layers beneath it
// running. This is how per-track measurements are obtained while an
// album (root) layer keeps accumulating across tracks.
type Pipeline struct {
	sampleRate     float64
	weights        frame.Frame
	averageGatings []gate.Gating
	maximumGatings []gate.Gating
	rangeGatings   []gate.Gating

	layers []*PipelineLayer
}

// PushLayer constructs a fresh PipelineLayer with the pipeline's
// configuration and pushes it onto the top of the stack.
func (p *Pipeline) PushLayer() error {
	layer, err := newLayer(p.sampleRate, p.weights, p.averageGatings, p.maximumGatings, p.rangeGatings)
	if err != nil {
		return err
	}
	p.layers = append(p.layers, layer)
	return nil
}

// PopLayer finalizes and removes the top layer, returning its output.
// Layers beneath it on the stack are unaffected.
func (p *Pipeline) PopLayer() (LayerOutput, error) {
	if len(p.layers) == 0 {
		return LayerOutput{}, ErrEmptyLayerStack
	}

	top := p.layers[len(p.layers)-1]
	out := top.Finalize()
	p.layers = p.layers[:len(p.layers)-1]
	return out, nil
}

// PushFrame broadcasts f to every layer on the stack, top and all
// layers beneath it, so each accumulates independently.
func (p *Pipeline) PushFrame(f frame.Frame) {
	for _, layer := range p.layers {
		layer.Push(f)
	}
}

// Depth returns the number of layers currently on the stack.
func (p *Pipeline) Depth() int {
	return len(p.layers)
}

// PeekLayer returns the current top layer for direct inspection (e.g.
// mid-stream Reset), without popping it.
func (p *Pipeline) PeekLayer() (*PipelineLayer, error) {
	if len(p.layers) == 0 {
		return nil, ErrNoSuchLayer
	}
	return p.layers[len(p.layers)-1], nil
}

// Finalize finalizes every remaining layer on the stack, from top to
// bottom, without popping them, and returns their outputs in that
// order. Useful for draining a pipeline at end-of-stream without the
// push/pop ceremony of per-track processing.
func (p *Pipeline) Finalize() []LayerOutput {
	outs := make([]LayerOutput, len(p.layers))
	for i := len(p.layers) - 1; i >= 0; i-- {
		outs[len(p.layers)-1-i] = p.layers[i].Finalize()
	}
	return outs
}

// Reset restores every layer on the stack to fresh state, without
// changing the stack's depth.
func (p *Pipeline) Reset() {
	for _, layer := range p.layers {
		layer.Reset()
	}
}
