// Package runningstats holds streaming accumulators over frames: an
// incremental, mergeable arithmetic mean, and a running per-channel peak
// tracker (used by the pipeline layers and the meter).
package runningstats

import "github.com/cwbudde/algo-loudness/frame"

// RunningMean is an incremental arithmetic mean of Frames. The zero value
// is ready to use: count 0, mean the silent frame.
type RunningMean struct {
	count uint64
	mean  frame.Frame
}

// Count returns the number of frames folded into the mean so far.
func (m *RunningMean) Count() uint64 {
	return m.count
}

// Mean returns the current mean. If Count is 0 this is the silent frame.
func (m *RunningMean) Mean() frame.Frame {
	return m.mean
}

// Add folds f into the running mean using the numerically stable
// incremental form: mean <- mean + (f - mean)/new_count.
func (m *RunningMean) Add(f frame.Frame) {
	m.count++
	n := float64(m.count)
	delta := f.Sub(m.mean)
	m.mean = m.mean.Add(delta.Scale(1 / n))
}

// Merge combines two means into a new RunningMean with the combined
// count and the frame-count-weighted average of the two means. A
// zero-count mean is the identity: Merge(empty, m) == m.
func Merge(a, b RunningMean) RunningMean {
	if a.count == 0 {
		return b
	}
	if b.count == 0 {
		return a
	}

	total := a.count + b.count
	na, nb := float64(a.count), float64(b.count)
	weighted := a.mean.Scale(na).Add(b.mean.Scale(nb)).Scale(1 / float64(total))

	return RunningMean{count: total, mean: weighted}
}

// PeakTracker maintains a running per-channel absolute maximum. The zero
// value starts at the silent frame.
type PeakTracker struct {
	peak frame.Frame
}

// Observe folds f into the tracker and returns f unchanged: the tracker
// is a pass-through on the stream, it never alters frames.
func (p *PeakTracker) Observe(f frame.Frame) frame.Frame {
	p.peak = p.peak.MaxAbs(f)
	return f
}

// Peak returns the current per-channel absolute maximum.
func (p *PeakTracker) Peak() frame.Frame {
	return p.peak
}

// Reset restores the tracker to the silent frame.
func (p *PeakTracker) Reset() {
	p.peak = frame.Zero
}
