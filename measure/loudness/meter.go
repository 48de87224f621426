// Package loudness is a thin convenience facade over the core
// measurement packages (kweight, gate, loudness, runningstats) for
// callers that just want a single live BS.1770 meter instead of the
// full pipeline/layer stack.
package loudness

import (
	"github.com/cwbudde/algo-loudness/frame"
	"github.com/cwbudde/algo-loudness/gate"
	"github.com/cwbudde/algo-loudness/kweight"
	loudnesspkg "github.com/cwbudde/algo-loudness/loudness"
	"github.com/cwbudde/algo-loudness/runningstats"
)

// Meter implements ITU-R BS.1770-4 loudness metering: live momentary
// and short-term sliding-window loudness, plus integrated loudness
// accumulated from the momentary gating blocks.
type Meter struct {
	channels int

	kfilter   *kweight.Filter
	momentary *gate.Windower
	shortterm *gate.Windower
	integ     *loudnesspkg.Aggregator
	peak      runningstats.PeakTracker
}

// NewMeter creates a new loudness meter with the given options. An
// invalid sample rate or gating configuration is reported synchronously;
// no Meter is produced in that case.
func NewMeter(opts ...MeterOption) (*Meter, error) {
	cfg := ApplyMeterOptions(opts...)

	momentary, err := gate.NewWindower(gate.Momentary, cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	shortterm, err := gate.NewWindower(gate.ShortTerm, cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	return &Meter{
		channels:  cfg.Channels,
		kfilter:   kweight.New(cfg.SampleRate),
		momentary: momentary,
		shortterm: shortterm,
		integ:     loudnesspkg.NewAggregator(loudnesspkg.CanonicalWeights),
	}, nil
}

// frameFrom copies up to frame.NumChannels leading channels of samples
// into a Frame, zero-padding the rest.
func frameFrom(samples []float64) frame.Frame {
	var f frame.Frame
	n := len(samples)
	if n > len(f) {
		n = len(f)
	}
	copy(f[:n], samples[:n])
	return f
}

// ProcessSample processes a single multichannel sample (frame), given
// as one value per channel.
func (m *Meter) ProcessSample(samples []float64) {
	f := frameFrom(samples)

	m.peak.Observe(f)
	kw := m.kfilter.Process(f)

	if p, emitted := m.momentary.Push(kw); emitted {
		m.integ.Push(p)
	}
	m.shortterm.Push(kw)
}

// ProcessBlock processes a block of interleaved samples: one frame's
// channels after another. A trailing partial frame is ignored.
func (m *Meter) ProcessBlock(block []float64) {
	for i := 0; i+m.channels <= len(block); i += m.channels {
		m.ProcessSample(block[i : i+m.channels])
	}
}

// Momentary returns the current momentary loudness (400 ms sliding
// window) in LUFS. ok is false until the window has filled once.
func (m *Meter) Momentary() (lufs float64, ok bool) {
	p, ok := m.momentary.Current()
	if !ok {
		return 0, false
	}
	return loudnesspkg.Loudness(p, loudnesspkg.CanonicalWeights), true
}

// ShortTerm returns the current short-term loudness (3 s sliding
// window) in LUFS. ok is false until the window has filled once.
func (m *Meter) ShortTerm() (lufs float64, ok bool) {
	p, ok := m.shortterm.Current()
	if !ok {
		return 0, false
	}
	return loudnesspkg.Loudness(p, loudnesspkg.CanonicalWeights), true
}

// Integrated returns the integrated loudness accumulated so far, via
// the two-pass absolute/relative gating over momentary blocks. ok is
// false if no block has yet passed the absolute gate.
func (m *Meter) Integrated() (lufs float64, ok bool) {
	return m.integ.Finalize()
}

// Peaks returns the maximum absolute sample value per channel since
// the last Reset.
func (m *Meter) Peaks() []float64 {
	peak := m.peak.Peak()
	out := make([]float64, m.channels)
	n := m.channels
	if n > len(peak) {
		n = len(peak)
	}
	copy(out, peak[:n])
	return out
}

// Reset clears all integration, window, and peak state without
// reallocating the meter.
func (m *Meter) Reset() {
	m.kfilter.Reset()
	m.momentary.Reset()
	m.shortterm.Reset()
	m.integ.Reset()
	m.peak.Reset()
}
