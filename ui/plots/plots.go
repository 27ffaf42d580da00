// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package plots draws the data of the study and its results: a Plotly HTML report, a PNG of the
// samples (with gonum/plot) and an SVG of the best error per learning rate (with margaid).
package plots

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/gomlx/paramstudy/pkg/study"
)

// Line is a series of points to plot, sorted by X.
type Line struct {
	Name string
	X, Y []float64
}

// lineKey identifies the lines of ErrorsByLearningRate.
type lineKey struct {
	initializer, loss string
	batchSize         int
}

// ErrorsByLearningRate groups the results in one line per (initializer, loss, batch size), with
// the best error as a function of the learning rate.
//
// Results with non-finite errors are skipped. Lines are sorted by name.
func ErrorsByLearningRate(results []study.Result) []Line {
	return groupByLearningRate(results, func(cfg study.Config) (lineKey, string) {
		key := lineKey{cfg.Initializer, cfg.Loss, cfg.BatchSize}
		return key, fmt.Sprintf("%s/%s/batch=%d", cfg.Initializer, cfg.Loss, cfg.BatchSize)
	})
}

// BestErrorByLoss returns one line per loss, with the lowest error over initializers and batch sizes
// as a function of the learning rate.
func BestErrorByLoss(results []study.Result) []Line {
	return groupByLearningRate(results, func(cfg study.Config) (lineKey, string) {
		return lineKey{loss: cfg.Loss}, cfg.Loss
	})
}

func groupByLearningRate(results []study.Result, keyFn func(cfg study.Config) (lineKey, string)) []Line {
	type point struct{ lr, err float64 }
	names := make(map[lineKey]string)
	points := make(map[lineKey]map[float64]float64)
	for _, r := range results {
		if math.IsNaN(r.BestError) || math.IsInf(r.BestError, 0) {
			continue
		}
		key, name := keyFn(r.Config)
		names[key] = name
		byLR, found := points[key]
		if !found {
			byLR = make(map[float64]float64)
			points[key] = byLR
		}
		if prev, found := byLR[r.Config.LearningRate]; !found || r.BestError < prev {
			byLR[r.Config.LearningRate] = r.BestError
		}
	}

	lines := make([]Line, 0, len(points))
	for key, byLR := range points {
		sorted := make([]point, 0, len(byLR))
		for lr, err := range byLR {
			sorted = append(sorted, point{lr, err})
		}
		slices.SortFunc(sorted, func(a, b point) int { return cmp.Compare(a.lr, b.lr) })
		line := Line{Name: names[key], X: make([]float64, len(sorted)), Y: make([]float64, len(sorted))}
		for ii, p := range sorted {
			line.X[ii], line.Y[ii] = p.lr, p.err
		}
		lines = append(lines, line)
	}
	slices.SortFunc(lines, func(a, b Line) int { return cmp.Compare(a.Name, b.Name) })
	return lines
}
