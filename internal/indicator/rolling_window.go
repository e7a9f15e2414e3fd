package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// RollingWindow is a fixed-capacity ring buffer of the most recent values.
// Pushing into a full window evicts the oldest value in O(1).
type RollingWindow struct {
	values []float64
	start  int
	size   int
}

// NewRollingWindow creates an empty window holding at most capacity values.
func NewRollingWindow(capacity int) (*RollingWindow, error) {
	if capacity <= 0 {
		return nil, errors.NewInvalidParameterError("RollingWindow", "capacity", "must be a positive integer", capacity)
	}

	return &RollingWindow{
		values: make([]float64, capacity),
	}, nil
}

// Push appends v, evicting the oldest value when the window is full.
func (w *RollingWindow) Push(v float64) {
	capacity := len(w.values)
	if w.size < capacity {
		w.values[(w.start+w.size)%capacity] = v
		w.size++

		return
	}

	w.values[w.start] = v
	w.start = (w.start + 1) % capacity
}

// Len returns the number of values held.
func (w *RollingWindow) Len() int {
	return w.size
}

// Cap returns the capacity.
func (w *RollingWindow) Cap() int {
	return len(w.values)
}

// Full reports whether the window holds Cap values.
func (w *RollingWindow) Full() bool {
	return w.size == len(w.values)
}

// At returns the i-th value, oldest first.
func (w *RollingWindow) At(i int) float64 {
	return w.values[(w.start+i)%len(w.values)]
}

// Last returns the most recent value, or 0 when empty.
func (w *RollingWindow) Last() float64 {
	if w.size == 0 {
		return 0
	}

	return w.At(w.size - 1)
}

// Values copies the window contents, oldest first.
func (w *RollingWindow) Values() []float64 {
	out := make([]float64, w.size)
	for i := range out {
		out[i] = w.At(i)
	}

	return out
}

// Mean returns the arithmetic mean, or 0 when empty.
func (w *RollingWindow) Mean() float64 {
	if w.size == 0 {
		return 0
	}

	sum := 0.0
	for i := 0; i < w.size; i++ {
		sum += w.At(i)
	}

	return sum / float64(w.size)
}

// StdDev returns the population standard deviation, or 0 with fewer than two values.
// Recomputed from the stored values on every call.
func (w *RollingWindow) StdDev() float64 {
	if w.size < 2 {
		return 0
	}

	mean := w.Mean()
	variance := 0.0

	for i := 0; i < w.size; i++ {
		d := w.At(i) - mean
		variance += d * d
	}

	return math.Sqrt(variance / float64(w.size))
}

// ZScore returns (x - mean) / stddev, or 0 when the stddev is zero.
func (w *RollingWindow) ZScore(x float64) float64 {
	std := w.StdDev()
	if std == 0 {
		return 0
	}

	return (x - w.Mean()) / std
}

// Reset empties the window without reallocating.
func (w *RollingWindow) Reset() {
	w.start = 0
	w.size = 0
}
