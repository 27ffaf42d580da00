// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package synthetic

import (
	"golang.org/x/exp/constraints"
)

// Linspace returns num evenly spaced values from start to stop, both endpoints included.
//
// For num <= 0 it returns an empty slice, and for num == 1 it returns only start.
func Linspace[T constraints.Float](start, stop T, num int) []T {
	if num <= 0 {
		return []T{}
	}
	values := make([]T, num)
	if num == 1 {
		values[0] = start
		return values
	}
	step := (stop - start) / T(num-1)
	for ii := range values {
		values[ii] = start + T(ii)*step
	}
	// Avoid rounding errors on the last point.
	values[num-1] = stop
	return values
}

// RampWindow defines a range of sample indices, given as fractions of the number of samples,
// over which a linear ramp of noise from From to To is added.
type RampWindow struct {
	StartFraction, EndFraction float64
	From, To                   float64
}

// DefaultRampWindows used by NewPool: 20%-25% of the samples get a ramp from 0.2 to 0.4, and
// 70%-73% of the samples get a ramp from 0.2 to 0.5.
var DefaultRampWindows = []RampWindow{
	{StartFraction: 0.2, EndFraction: 0.25, From: 0.2, To: 0.4},
	{StartFraction: 0.7, EndFraction: 0.73, From: 0.2, To: 0.5},
}

// Range returns the index range [start, end) covered by the window for num samples,
// clipped to [0, num].
func (w RampWindow) Range(num int) (start, end int) {
	start = int(float64(num) * w.StartFraction)
	end = int(float64(num) * w.EndFraction)
	start = min(max(start, 0), num)
	end = min(max(end, start), num)
	return
}

// NoiseRamp returns a vector of length num, zero everywhere except within the given windows,
// where it holds a linearly spaced ramp. Later windows overwrite earlier ones if they overlap.
func NoiseRamp(num int, windows ...RampWindow) []float64 {
	ramp := make([]float64, num)
	for _, w := range windows {
		start, end := w.Range(num)
		copy(ramp[start:end], Linspace(w.From, w.To, end-start))
	}
	return ramp
}
