// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package plots

import (
	"io"
	"os"

	mg "github.com/erkkah/margaid"
	"github.com/gomlx/paramstudy/pkg/study"
	"github.com/pkg/errors"
)

// WriteErrorsSVG renders an SVG with the best error per learning rate for each loss (see
// BestErrorByLoss).
func WriteErrorsSVG(w io.Writer, results []study.Result, width, height int) error {
	lines := BestErrorByLoss(results)
	if len(lines) == 0 {
		return errors.New("no finite results to plot")
	}
	allSeries := make([]*mg.Series, 0, len(lines))
	allPoints := mg.NewSeries()
	for _, line := range lines {
		s := mg.NewSeries(mg.Titled(line.Name))
		for ii := range line.X {
			value := mg.MakeValue(line.X[ii], line.Y[ii])
			s.Add(value)
			allPoints.Add(value)
		}
		allSeries = append(allSeries, s)
	}

	diagram := mg.New(width, height,
		mg.WithAutorange(mg.XAxis, allSeries...),
		mg.WithProjection(mg.XAxis, mg.Lin),
		mg.WithAutorange(mg.YAxis, allSeries...),
		mg.WithProjection(mg.YAxis, mg.Lin),
		mg.WithInset(70),
		mg.WithPadding(2),
		mg.WithColorScheme(90),
		mg.WithBackgroundColor("#f8f8f8"),
	)
	for _, s := range allSeries {
		diagram.Line(s, mg.UsingAxes(mg.XAxis, mg.YAxis), mg.UsingMarker("square"), mg.UsingStrokeWidth(2))
	}
	diagram.Axis(allPoints, mg.XAxis, diagram.ValueTicker('f', 4, 10), false, "Learning rate")
	diagram.Axis(allPoints, mg.YAxis, diagram.ValueTicker('f', 3, 10), true, "Best error")
	diagram.Frame()
	diagram.Title("Best error by loss")
	diagram.Legend(mg.BottomLeft)
	if err := diagram.Render(w); err != nil {
		return errors.Wrap(err, "failed to render errors plot")
	}
	return nil
}

// SaveErrorsSVG saves WriteErrorsSVG to fileName.
func SaveErrorsSVG(fileName string, results []study.Result) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "failed to create file %q", fileName)
	}
	if err = WriteErrorsSVG(f, results, 1024, 400); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to close %q", fileName)
}
