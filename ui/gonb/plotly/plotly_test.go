// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package plotly

import (
	"testing"

	"github.com/gomlx/paramstudy/pkg/study"
	"github.com/gomlx/paramstudy/pkg/synthetic"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestSweepPlot(t *testing.T) {
	pool := must.M1(synthetic.NewPool(synthetic.DefaultPoolConfig(), synthetic.NewSource(1)))
	sp := New(pool).Dynamic()
	titles, figs := sp.figures()
	require.Len(t, figs, 1)
	require.Equal(t, []string{"Samples"}, titles)

	for ii, cfg := range study.DefaultGrid().Configs()[:5] {
		sp.Observe(study.Result{Config: cfg, BestError: float64(ii + 1), NumTrials: 1})
	}
	require.Len(t, sp.Results(), 5)
	titles, figs = sp.figures()
	require.Len(t, figs, 2)
	require.Equal(t, "Errors (5 combinations)", titles[1])

	// Not running in a notebook: nothing is displayed.
	require.NoError(t, sp.Plot())
	sp.Done()
	sp.Done()

	titles, figs = New(nil).figures()
	require.Empty(t, titles)
	require.Empty(t, figs)
}
