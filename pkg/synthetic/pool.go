// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package synthetic

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultNumSamples is the number of samples in the pool used by the study.
const DefaultNumSamples = 100

// PoolConfig configures the sample pool.
type PoolConfig struct {
	// NumSamples in the pool.
	NumSamples int

	// X1Range and X2Range are the [min, max] values of each input, sampled with Linspace.
	X1Range, X2Range [2]float64

	// RampWindows where the noise ramp is added to the measurements.
	RampWindows []RampWindow
}

// DefaultPoolConfig returns the configuration of the study: 100 samples, x1 in [-2, 2],
// x2 in [6, 12] and the DefaultRampWindows.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumSamples:  DefaultNumSamples,
		X1Range:     [2]float64{-2, 2},
		X2Range:     [2]float64{6, 12},
		RampWindows: DefaultRampWindows,
	}
}

// Pool holds all the samples of the study. It is created once and not modified afterwards.
type Pool struct {
	// Rows hold (x1, x2, measurement) for each sample.
	Rows [][3]float64

	// Truth holds the GroundTruth for each sample, aligned with Rows.
	Truth []float64

	// Ramp is the noise ramp that was added to the measurements.
	Ramp []float64
}

// NewPool creates the sample pool: the i-th sample uses the i-th point of each input range,
// its measurement is a Source.Noisy draw plus the NoiseRamp.
func NewPool(cfg PoolConfig, src *Source) (*Pool, error) {
	if cfg.NumSamples <= 0 {
		return nil, errors.Errorf("invalid number of samples %d for the pool, it must be > 0", cfg.NumSamples)
	}
	num := cfg.NumSamples
	x1 := Linspace(cfg.X1Range[0], cfg.X1Range[1], num)
	x2 := Linspace(cfg.X2Range[0], cfg.X2Range[1], num)
	pool := &Pool{
		Rows:  make([][3]float64, num),
		Truth: make([]float64, num),
		Ramp:  NoiseRamp(num, cfg.RampWindows...),
	}
	for ii := range num {
		pool.Truth[ii] = GroundTruth(x1[ii], x2[ii])
		pool.Rows[ii] = [3]float64{x1[ii], x2[ii], src.Noisy(x1[ii], x2[ii])}
	}
	for ii, r := range pool.Ramp {
		pool.Rows[ii][2] += r
	}
	klog.V(1).Infof("Created pool of %d samples", num)
	return pool, nil
}

// Len returns the number of samples in the pool.
func (p *Pool) Len() int { return len(p.Rows) }

// Measurements returns a copy of the measurement column.
func (p *Pool) Measurements() []float64 {
	values := make([]float64, len(p.Rows))
	for ii, row := range p.Rows {
		values[ii] = row[2]
	}
	return values
}
