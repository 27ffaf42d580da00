// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package study runs the grid-search over hyperparameters: for each combination of
// initializer, loss, learning rate and batch size it trains a few models, keeps the lowest
// test error and appends it to a results log.
package study

import (
	"fmt"

	"github.com/gomlx/paramstudy/pkg/synthetic"
)

// Config is one hyperparameter combination of the grid.
type Config struct {
	Initializer  string
	Loss         string
	LearningRate float64
	BatchSize    int
}

// String implements fmt.Stringer.
func (c Config) String() string {
	return fmt.Sprintf("[init=%s, loss=%s, lr=%g, batch=%d]", c.Initializer, c.Loss, c.LearningRate, c.BatchSize)
}

// Grid lists the values of each hyperparameter. The grid is the Cartesian product of them.
type Grid struct {
	Initializers  []string
	Losses        []string
	LearningRates []float64
	BatchSizes    []int
}

// DefaultGrid returns the grid of the study: 2 initializers, 3 losses, 10 learning rates
// evenly spaced from 0.0001 to 0.1 and batch sizes from 3 to 6.
func DefaultGrid() Grid {
	return Grid{
		Initializers:  []string{"xavier", "random"},
		Losses:        []string{"absolute_difference", "hinge_loss", "sum_absolute_difference"},
		LearningRates: synthetic.Linspace(0.0001, 0.1, 10),
		BatchSizes:    []int{3, 4, 5, 6},
	}
}

// Size returns the number of combinations in the grid.
func (g Grid) Size() int {
	return len(g.Initializers) * len(g.Losses) * len(g.LearningRates) * len(g.BatchSizes)
}

// Configs enumerates all combinations of the grid. The initializer varies the slowest and the
// batch size the fastest.
func (g Grid) Configs() []Config {
	configs := make([]Config, 0, g.Size())
	for _, initializer := range g.Initializers {
		for _, loss := range g.Losses {
			for _, lr := range g.LearningRates {
				for _, batchSize := range g.BatchSizes {
					configs = append(configs, Config{
						Initializer:  initializer,
						Loss:         loss,
						LearningRate: lr,
						BatchSize:    batchSize,
					})
				}
			}
		}
	}
	return configs
}
