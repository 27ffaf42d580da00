// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package synthetic generates the measurements used by the parameter study: samples of the
// function `sin(x1) + 3 + cos(x2)`, perturbed by symmetric random noise and by a deterministic
// ramp over a couple of index windows, simulating sensor drift.
package synthetic

import (
	"math"
	"math/rand"
	"time"
)

// PerturbationScale is the maximum absolute value of the random perturbation added to
// each measurement. The perturbation itself is always strictly smaller.
const PerturbationScale = 0.25

// GroundTruth is the noise-free function the model learns.
func GroundTruth(x1, x2 float64) float64 {
	return math.Sin(x1) + 3 + math.Cos(x2)
}

// Source of random perturbations. It wraps a *rand.Rand, and it is not safe for concurrent use.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a Source seeded with seed. If seed is 0, it is seeded with the current
// time, and results are not reproducible across runs.
func NewSource(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Rand returns the underlying random number generator, shared with the dataset shuffling.
func (s *Source) Rand() *rand.Rand { return s.rng }

// Perturbation returns a value in the open interval (-PerturbationScale, PerturbationScale):
// a fair coin picks the sign and an independent uniform draw in [0, 1) the magnitude.
func (s *Source) Perturbation() float64 {
	sign := -1.0
	if s.rng.Float64() > 0.5 {
		sign = 1.0
	}
	return sign * s.rng.Float64() * PerturbationScale
}

// Noisy returns a measurement of GroundTruth(x1, x2) with a fresh perturbation.
func (s *Source) Noisy(x1, x2 float64) float64 {
	return GroundTruth(x1, x2) + s.Perturbation()
}
