// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package plots

import (
	"image/color"

	"github.com/gomlx/paramstudy/pkg/synthetic"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	truthColor    = color.RGBA{R: 0x20, G: 0x60, B: 0xC0, A: 0xFF}
	measuredColor = color.RGBA{R: 0xD0, G: 0x50, B: 0x20, A: 0xFF}
)

// DataPlot creates a gonum plot with the ground truth (line) and the noisy measurements (points) of
// the pool, by sample index.
func DataPlot(pool *synthetic.Pool) (*plot.Plot, error) {
	truth := make(plotter.XYs, pool.Len())
	measured := make(plotter.XYs, pool.Len())
	for ii, row := range pool.Rows {
		truth[ii].X, truth[ii].Y = float64(ii), pool.Truth[ii]
		measured[ii].X, measured[ii].Y = float64(ii), row[2]
	}

	p := plot.New()
	p.Title.Text = "sin(x1) + 3 + cos(x2)"
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "value"
	p.Add(plotter.NewGrid())

	truthLine, err := plotter.NewLine(truth)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ground truth line")
	}
	truthLine.LineStyle.Color = truthColor
	truthLine.LineStyle.Width = vg.Points(1.5)

	measuredPoints, err := plotter.NewScatter(measured)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create measurements scatter")
	}
	measuredPoints.GlyphStyle.Color = measuredColor

	p.Add(truthLine, measuredPoints)
	p.Legend.Add("ground truth", truthLine)
	p.Legend.Add("measured", measuredPoints)
	p.Legend.Top = true
	return p, nil
}

// SaveDataPNG saves the DataPlot of pool to fileName. The image format is taken from the file
// extension (usually ".png").
func SaveDataPNG(fileName string, pool *synthetic.Pool) error {
	if pool == nil || pool.Len() == 0 {
		return errors.New("no samples to plot")
	}
	p, err := DataPlot(pool)
	if err != nil {
		return err
	}
	if err = p.Save(12*vg.Inch, 6*vg.Inch, fileName); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", fileName)
	}
	return nil
}
