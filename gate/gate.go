// Package gate implements the sliding gated power windower (ITU-R
// BS.1770-4 §4.2): it turns a stream of K-weighted frames into a stream
// of mean-square "power" frames, emitted every delta milliseconds once
// the window has filled.
package gate

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-loudness/frame"
)

// Gating is a (gate length, hop length) pair in milliseconds.
// gate_len_ms MUST be a positive multiple of delta_len_ms.
type Gating struct {
	GateMS  uint64
	DeltaMS uint64
}

// Predefined gatings per BS.1770-4/EBU R128.
var (
	Momentary = Gating{GateMS: 400, DeltaMS: 100}
	ShortTerm = Gating{GateMS: 3000, DeltaMS: 1000}
)

// Validate reports whether the gating's parameters satisfy the
// positive-multiple constraint.
func (g Gating) Validate() error {
	if g.DeltaMS == 0 {
		return fmt.Errorf("gating delta_len_ms must be > 0: %+v", g)
	}
	if g.GateMS == 0 || g.GateMS%g.DeltaMS != 0 {
		return fmt.Errorf("gating gate_len_ms must be a positive multiple of delta_len_ms: %+v", g)
	}
	return nil
}

// msToSamples converts a millisecond duration to a sample count at
// sampleRate, rounding half up.
func msToSamples(ms uint64, sampleRate float64) int {
	samples := float64(ms) * sampleRate / 1000
	return int(math.Floor(samples + 0.5))
}

// Windower is the per-gating sliding power window: a ring buffer of
// squared frames with a subtract-oldest/add-newest running sum.
type Windower struct {
	buf         []frame.Frame
	sum         frame.Frame
	writeIdx    int
	filled      int
	active      bool
	deltaFrames int
	i           int // emission-index counter, valid once active
}

// NewWindower constructs a Windower for gating at sampleRate.
func NewWindower(gating Gating, sampleRate float64) (*Windower, error) {
	if err := gating.Validate(); err != nil {
		return nil, err
	}

	gateFrames := msToSamples(gating.GateMS, sampleRate)
	deltaFrames := msToSamples(gating.DeltaMS, sampleRate)
	if gateFrames <= 0 || deltaFrames <= 0 {
		return nil, fmt.Errorf("gating produces non-positive frame counts at sample rate %v: %+v", sampleRate, gating)
	}

	return &Windower{
		buf:         make([]frame.Frame, gateFrames),
		deltaFrames: deltaFrames,
	}, nil
}

// GateFrames returns the window length in frames.
func (w *Windower) GateFrames() int {
	return len(w.buf)
}

// DeltaFrames returns the hop length in frames.
func (w *Windower) DeltaFrames() int {
	return w.deltaFrames
}

// Active reports whether the window has filled at least once.
func (w *Windower) Active() bool {
	return w.active
}

// Push squares in element-wise, folds it into the running sum, and
// reports the emitted mean-square power frame if any, per the emission
// rule in §4.2: nothing while filling, the just-filled window on the
// Filling->Active transition, then every deltaFrames samples thereafter.
func (w *Windower) Push(in frame.Frame) (power frame.Frame, emitted bool) {
	sq := in.Square()

	wasActive := w.active
	oldest := w.buf[w.writeIdx]
	w.buf[w.writeIdx] = sq
	w.writeIdx = (w.writeIdx + 1) % len(w.buf)

	w.sum = w.sum.Add(sq)
	if wasActive {
		w.sum = w.sum.Sub(oldest)
	} else {
		w.filled++
		if w.filled >= len(w.buf) {
			w.active = true
		}
	}

	nowActive := w.active
	if !nowActive {
		return frame.Zero, false
	}

	if !wasActive {
		w.i = 0
	} else {
		w.i = (w.i + 1) % w.deltaFrames
	}

	if w.i != 0 {
		return frame.Zero, false
	}

	n := float64(len(w.buf))
	return w.sum.Scale(1 / n), true
}

// Current returns the mean-square power over whatever is currently in
// the window, regardless of delta timing: ok is false until the window
// has filled at least once. Unlike Push's emission, this always
// reflects the most recently filled gate_frames of input, useful for
// live "instantaneous" monitoring between emission boundaries.
func (w *Windower) Current() (power frame.Frame, ok bool) {
	if !w.active {
		return frame.Zero, false
	}
	n := float64(len(w.buf))
	return w.sum.Scale(1 / n), true
}

// Reset restores the windower to its just-constructed state.
func (w *Windower) Reset() {
	for i := range w.buf {
		w.buf[i] = frame.Zero
	}
	w.sum = frame.Zero
	w.writeIdx = 0
	w.filled = 0
	w.active = false
	w.i = 0
}
