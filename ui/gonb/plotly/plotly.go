// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package plotly displays the sweep plots in a GoNB notebook (see github.com/janpfeifer/gonb),
// optionally updating them as the results of each combination come in.
//
// Outside a notebook it only collects the results, and the display functions are no-ops.
//
// Example:
//
//	sweepPlot := plotly.New(pool).Dynamic()
//	driver.OnResult = sweepPlot.Observe
//	results, err := driver.Run(configs)
//	sweepPlot.Done()
package plotly

import (
	"fmt"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	"github.com/gomlx/paramstudy/pkg/study"
	"github.com/gomlx/paramstudy/pkg/synthetic"
	"github.com/gomlx/paramstudy/ui/plots"
	"github.com/janpfeifer/gonb/gonbui"
	"github.com/janpfeifer/gonb/gonbui/dom"
	gonbplotly "github.com/janpfeifer/gonb/gonbui/plotly"
	"k8s.io/klog/v2"
)

// MinResultsToPlot is the number of results needed before the dynamic plot is first drawn.
var MinResultsToPlot = 3

// SweepPlot holds the results of a sweep to plot. Create it with New.
type SweepPlot struct {
	pool    *synthetic.Pool
	results []study.Result

	// gonbId of the `<div>` tag of the transient dynamic plot.
	gonbId string
	done   bool
}

// New creates a SweepPlot for a sweep over the given pool of samples.
func New(pool *synthetic.Pool) *SweepPlot {
	return &SweepPlot{pool: pool}
}

// Dynamic makes Observe redraw the plots in a transient area of the notebook. Done replaces it
// with the final version.
//
// Not in a notebook this is a no-op.
func (sp *SweepPlot) Dynamic() *SweepPlot {
	if !gonbui.IsNotebook {
		return sp
	}
	sp.gonbId = gonbui.UniqueId()
	gonbui.UpdateHTML(sp.gonbId, "")
	return sp
}

// Results observed so far.
func (sp *SweepPlot) Results() []study.Result { return sp.results }

// Observe adds the result of one combination. It can be used as study.Driver.OnResult.
func (sp *SweepPlot) Observe(r study.Result) {
	sp.results = append(sp.results, r)
	if len(sp.results) >= MinResultsToPlot {
		sp.dynamicPlot()
	}
}

// figures to display, in order.
func (sp *SweepPlot) figures() (titles []string, figs []*grob.Fig) {
	if sp.pool != nil && sp.pool.Len() > 0 {
		titles = append(titles, "Samples")
		figs = append(figs, plots.DataFigure(sp.pool))
	}
	if len(sp.results) > 0 {
		titles = append(titles, fmt.Sprintf("Errors (%d combinations)", len(sp.results)))
		figs = append(figs, plots.ErrorsFigure(sp.results))
	}
	return
}

// Plot displays the figures with the current results.
// If not in a notebook, this is a no-op.
func (sp *SweepPlot) Plot() error {
	if !gonbui.IsNotebook {
		return nil
	}
	titles, figs := sp.figures()
	for ii, fig := range figs {
		gonbui.DisplayHtmlf("<p><b>%s</b></p>\n", titles[ii])
		if err := gonbplotly.DisplayFig(fig); err != nil {
			return err
		}
	}
	return nil
}

func (sp *SweepPlot) dynamicPlot() {
	if !gonbui.IsNotebook || sp.gonbId == "" || sp.done {
		return
	}
	elementId := gonbui.UniqueId()
	gonbui.UpdateHTML(sp.gonbId, fmt.Sprintf("<div id=%q></div>", elementId))
	titles, figs := sp.figures()
	for ii, fig := range figs {
		dom.Append(elementId, fmt.Sprintf("<p><b>%s</b></p>\n", titles[ii]))
		if err := gonbplotly.AppendFig(elementId, fig); err != nil {
			klog.Errorf("Failed to plot: %+v", err)
		}
	}
}

// Done clears the transient area, if Dynamic was used, and displays the final plots.
// It can be called only once.
func (sp *SweepPlot) Done() {
	if sp.done {
		return
	}
	sp.done = true
	if !gonbui.IsNotebook {
		return
	}
	if sp.gonbId != "" {
		gonbui.UpdateHTML(sp.gonbId, "")
	}
	if err := sp.Plot(); err != nil {
		klog.Errorf("Failed to plot: %+v", err)
	}
}
