// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline contains the command line UI of the study: a progress bar for the sweep
// and tables of results.
package commandline

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/paramstudy/pkg/study"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	tableBorderColor = "#705090"
)

// newResultsTable with alternating row colors and numbers aligned to the right.
func newResultsTable(headers ...string) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		Headers(headers...).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row == lgtable.HeaderRow {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			// Columns 0 (rank) and from 3 on are numbers.
			if col == 0 || col >= 3 {
				return s.Align(lipgloss.Right)
			}
			return s.Align(lipgloss.Left)
		})
}

// SortResults returns a copy of results sorted by increasing BestError. NaN errors go last.
func SortResults(results []study.Result) []study.Result {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b study.Result) int {
		aNaN, bNaN := math.IsNaN(a.BestError), math.IsNaN(b.BestError)
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return 1
		case bNaN:
			return -1
		}
		return cmp.Compare(a.BestError, b.BestError)
	})
	return sorted
}

// ResultsTable returns a table with the top results (all if top <= 0), sorted by increasing error.
//
// Results read back from the log have no trials information: those columns are shown as "-".
func ResultsTable(results []study.Result, top int) string {
	sorted := SortResults(results)
	if top > 0 && top < len(sorted) {
		sorted = sorted[:top]
	}
	table := newResultsTable("#", "Initializer", "Loss", "Learning Rate", "Batch", "Error", "Truth Error", "Trials", "Time")
	for ii, r := range sorted {
		truthError, trials, elapsed := "-", "-", "-"
		if r.NumTrials > 0 {
			truthError = formatError(r.BestTruthError)
			trials = humanize.Comma(int64(r.NumTrials))
			elapsed = FormatDuration(r.Elapsed)
		}
		table.Row(
			strconv.Itoa(ii+1),
			r.Config.Initializer,
			r.Config.Loss,
			strconv.FormatFloat(r.Config.LearningRate, 'g', 4, 64),
			strconv.Itoa(r.Config.BatchSize),
			formatError(r.BestError),
			truthError, trials, elapsed)
	}
	return table.String()
}

func formatError(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
