// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package plots

import (
	"encoding/base64"
	"encoding/json"
	"html/template"
	"io"
	"os"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	ptypes "github.com/MetalBlueberry/go-plotly/pkg/types"
	"github.com/gomlx/paramstudy/pkg/study"
	"github.com/gomlx/paramstudy/pkg/synthetic"
	"github.com/janpfeifer/gonb/gonbui/plotly"
	"github.com/pkg/errors"
)

// DataFigure plots the ground truth, the noisy measurements and the noise ramp of the pool, by
// sample index.
func DataFigure(pool *synthetic.Pool) *grob.Fig {
	indices := make([]float64, pool.Len())
	for ii := range indices {
		indices[ii] = float64(ii)
	}
	fig := &grob.Fig{
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{
				Text: ptypes.S("sin(x1) + 3 + cos(x2): ground truth and measurements"),
			},
			Xaxis: &grob.LayoutXaxis{Showgrid: ptypes.B(true)},
			Yaxis: &grob.LayoutYaxis{Showgrid: ptypes.B(true)},
		},
	}
	fig.Data = append(fig.Data,
		&grob.Scatter{
			Name: ptypes.S("ground truth"),
			Line: &grob.ScatterLine{Shape: grob.ScatterLineShapeLinear},
			Mode: "lines",
			X:    ptypes.DataArray(indices),
			Y:    ptypes.DataArray(pool.Truth),
		},
		&grob.Scatter{
			Name: ptypes.S("measured"),
			Mode: "markers",
			X:    ptypes.DataArray(indices),
			Y:    ptypes.DataArray(pool.Measurements()),
		},
		&grob.Scatter{
			Name: ptypes.S("noise ramp"),
			Line: &grob.ScatterLine{Shape: grob.ScatterLineShapeLinear},
			Mode: "lines",
			X:    ptypes.DataArray(indices),
			Y:    ptypes.DataArray(pool.Ramp),
		})
	return fig
}

// ErrorsFigure plots the best error as a function of the learning rate (log scale), one line per
// (initializer, loss, batch size).
func ErrorsFigure(results []study.Result) *grob.Fig {
	fig := &grob.Fig{
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{
				Text: ptypes.S("Best test error by learning rate"),
			},
			Xaxis: &grob.LayoutXaxis{
				Showgrid: ptypes.B(true),
				Type:     grob.LayoutXaxisTypeLog,
			},
			Yaxis: &grob.LayoutYaxis{
				Showgrid: ptypes.B(true),
				Type:     grob.LayoutYaxisTypeLog,
			},
		},
	}
	for _, line := range ErrorsByLearningRate(results) {
		fig.Data = append(fig.Data, &grob.Scatter{
			Name: ptypes.S(line.Name),
			Line: &grob.ScatterLine{Shape: grob.ScatterLineShapeLinear},
			Mode: "lines+markers",
			X:    ptypes.DataArray(line.X),
			Y:    ptypes.DataArray(line.Y),
		})
	}
	return fig
}

var (
	singleFileHTML = `<!DOCTYPE html>
<html>
	<head>
		<meta charset="utf-8">
		<title>{{ .Title }}</title>
		<script src="{{ .CDN }}"></script>
	</head>
	<body>
		<h2>{{ .Title }}</h2>
{{- range $i, $f := .Figures }}
		<div id="plot{{ $i }}"></div>
{{- end }}
	<script>
{{- range $i, $f := .Figures }}
		Plotly.newPlot('plot{{ $i }}', JSON.parse(atob('{{ $f }}')));
{{- end }}
	</script>
	</body>
</html>`
	singleFileHTMLTmpl = template.Must(template.New("plotly").Parse(singleFileHTML))
)

// WriteHTML renders the Plotly figures to a self-contained HTML page (Plotly itself is loaded
// from its CDN).
func WriteHTML(w io.Writer, title string, figs ...*grob.Fig) error {
	data := &struct {
		Title   string
		CDN     string
		Figures []string
	}{
		Title: title,
		CDN:   plotly.PlotlySrc,
	}
	for ii, fig := range figs {
		figAsJSON, err := json.Marshal(fig)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal plotly figure #%d", ii)
		}
		data.Figures = append(data.Figures, base64.StdEncoding.EncodeToString(figAsJSON))
	}
	if err := singleFileHTMLTmpl.Execute(w, data); err != nil {
		return errors.Wrap(err, "failed to render plotly")
	}
	return nil
}

// WriteReport writes an HTML file with the plots of the pool data and of the results.
// Either can be nil (or empty), in which case its plot is omitted.
func WriteReport(fileName, title string, pool *synthetic.Pool, results []study.Result) error {
	var figs []*grob.Fig
	if pool != nil && pool.Len() > 0 {
		figs = append(figs, DataFigure(pool))
	}
	if len(results) > 0 {
		figs = append(figs, ErrorsFigure(results))
	}
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "failed to create file %q", fileName)
	}
	if err = WriteHTML(f, title, figs...); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to close %q", fileName)
}
