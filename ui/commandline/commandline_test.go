// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gomlx/paramstudy/pkg/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1m23s", FormatDuration(83*time.Second+400*time.Millisecond))
	assert.Equal(t, "4.57s", FormatDuration(4567*time.Millisecond))
	assert.Equal(t, "12.35ms", FormatDuration(12345*time.Microsecond))
	assert.Equal(t, "3.00µs", FormatDuration(3*time.Microsecond))
	assert.Equal(t, "12ns", FormatDuration(12))
	assert.Equal(t, "-4.57s", FormatDuration(-4567*time.Millisecond))
}

func testResults() []study.Result {
	return []study.Result{
		{Config: study.Config{Initializer: "xavier", Loss: "hinge_loss", LearningRate: 0.0112, BatchSize: 3},
			BestError: 1.5, BestTruthError: 1.4, NumTrials: 5, Elapsed: 2 * time.Second},
		{Config: study.Config{Initializer: "random", Loss: "absolute_difference", LearningRate: 0.1, BatchSize: 6},
			BestError: math.NaN(), NumTrials: 5},
		{Config: study.Config{Initializer: "random", Loss: "sum_absolute_difference", LearningRate: 0.0001, BatchSize: 4},
			BestError: 0.25, BestTruthError: 0.2, NumTrials: 5, Elapsed: time.Second},
	}
}

func TestSortResults(t *testing.T) {
	results := testResults()
	sorted := SortResults(results)
	require.Equal(t, 0.25, sorted[0].BestError)
	require.Equal(t, 1.5, sorted[1].BestError)
	require.True(t, math.IsNaN(sorted[2].BestError))
	// Input is not modified.
	require.Equal(t, 1.5, results[0].BestError)
}

func TestResultsTable(t *testing.T) {
	table := ResultsTable(testResults(), 2)
	require.Contains(t, table, "sum_absolute_difference")
	require.Contains(t, table, "hinge_loss")
	require.NotContains(t, table, "NaN")
	require.Contains(t, table, "0.2500")
	require.Less(t, strings.Index(table, "sum_absolute_difference"), strings.Index(table, "hinge_loss"))

	// Results read from a log have no trials.
	table = ResultsTable([]study.Result{{Config: study.Config{Initializer: "xavier", Loss: "hinge_loss",
		LearningRate: 0.1, BatchSize: 3}, BestError: 2}}, 0)
	require.Contains(t, table, "2.0000")
	require.Contains(t, table, "-")
}

func TestSweepProgress(t *testing.T) {
	for _, plain := range []bool{true, false} {
		var buf bytes.Buffer
		p := NewSweepProgressWithWriter(&buf, 3, 5, plain)
		require.Nil(t, p.Best())
		for _, r := range testResults() {
			p.Observe(r)
		}
		p.Done()
		require.NotNil(t, p.Best())
		require.Equal(t, 0.25, p.Best().BestError)
		out := buf.String()
		require.Contains(t, out, "Sweep")
		require.Contains(t, out, "sum_absolute_difference")
		require.Contains(t, out, "15")
	}
}
