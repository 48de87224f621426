package kweight

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-loudness/frame"
)

func TestCoefficients_48kHz(t *testing.T) {
	coeffs := Coefficients(48000)

	shelf := coeffs[0]
	if shelf.B0 <= 1 {
		t.Errorf("shelving B0 = %v, want > 1 (boost)", shelf.B0)
	}

	hp := coeffs[1]
	if hp.B0 != 1 || hp.B1 != -2 || hp.B2 != 1 {
		t.Errorf("highpass numerator = (%v,%v,%v), want (1,-2,1)", hp.B0, hp.B1, hp.B2)
	}
}

func TestFilter_DCConvergesToZero(t *testing.T) {
	f := New(48000)
	in := frame.Frame{1, 1, 1, 1, 1}

	var out frame.Frame
	const n = 10 * 48000
	for i := 0; i < n; i++ {
		out = f.Process(in)
	}

	for c, v := range out {
		if math.Abs(v) >= 1e-6 {
			t.Errorf("channel %d DC output = %v, want magnitude < 1e-6", c, v)
		}
	}
}

func TestFilter_Reset(t *testing.T) {
	f := New(48000)
	in := frame.Frame{0.5, 0, 0, 0, 0}

	for i := 0; i < 100; i++ {
		f.Process(in)
	}

	f.Reset()
	fresh := New(48000)

	got := f.Process(in)
	want := fresh.Process(in)
	if got != want {
		t.Errorf("Process after Reset = %v, want %v", got, want)
	}
}

func TestFilter_SilenceStaysSilent(t *testing.T) {
	f := New(48000)
	out := f.Process(frame.Zero)
	if out != frame.Zero {
		t.Errorf("Process(Zero) = %v, want Zero", out)
	}
}
