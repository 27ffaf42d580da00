// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// paramstudy runs a grid-search over initializer, loss, learning rate and batch size of a small
// feed-forward regressor, trained on noisy measurements of sin(x1) + 3 + cos(x2).
//
// Each combination is trained -n_times, on a fresh partition of the sample pool, and the lowest
// testing error is appended to the results log. Hyperparameters are set with -set, e.g.:
//
//	paramstudy -set="epochs=100;n_times=3;learning_rates=0.01,0.001;plots_dir=/tmp/sweep"
//
// With -report=<log file> it instead prints the best combinations found in a previous run.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/pkg/ml/context"
	gomlxcli "github.com/gomlx/gomlx/ui/commandline"
	"github.com/gomlx/paramstudy/pkg/regressor"
	"github.com/gomlx/paramstudy/pkg/study"
	"github.com/gomlx/paramstudy/pkg/synthetic"
	"github.com/gomlx/paramstudy/ui/commandline"
	nbplots "github.com/gomlx/paramstudy/ui/gonb/plotly"
	"github.com/gomlx/paramstudy/ui/plots"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	_ "github.com/gomlx/gomlx/backends/default"
)

var (
	flagReport = flag.String("report", "", "Path of a results log of a previous run: if set, prints its best results and exits.")
	flagTop    = flag.Int("top", 10, "Number of best results to print in the end. If <= 0, print all.")
	flagPlain  = flag.Bool("plain", false, "Report progress one line per combination, instead of a progress bar.")
)

func main() {
	ctx := study.CreateDefaultContext()
	settings := gomlxcli.CreateContextSettingsFlag(ctx, "")
	klog.InitFlags(nil)
	flag.Parse()
	paramsSet := must.M1(gomlxcli.ParseContextSettings(ctx, *settings))
	err := exceptions.TryCatch[error](func() {
		if *flagReport != "" {
			must.M(report(os.Stdout, *flagReport, *flagTop))
			return
		}
		must.M(run(os.Stdout, ctx, paramsSet, *flagTop, *flagPlain))
	})
	if err != nil {
		klog.Fatalf("Failed with error: %+v", err)
	}
}

// run the sweep configured in ctx. The results collected so far are printed even if a trial fails.
func run(w io.Writer, ctx *context.Context, paramsSet []string, top int, plain bool) error {
	s, err := study.SettingsFromContext(ctx)
	if err != nil {
		return err
	}
	if len(paramsSet) > 0 {
		_, _ = fmt.Fprintf(w, "Settings:\n%s\n", gomlxcli.SprintModifiedContextSettings(ctx, paramsSet))
	}

	src := synthetic.NewSource(s.Seed)
	pool, err := synthetic.NewPool(s.PoolConfig(), src)
	if err != nil {
		return err
	}
	backend, err := backends.New()
	if err != nil {
		return errors.Wrap(err, "failed to create backend")
	}
	defer backend.Finalize()

	trainer := regressor.New(backend, s.Epochs, src)
	trainer.ResampleNoise = s.ResampleNoise
	if err = trainer.ValidateGrid(s.Grid); err != nil {
		return err
	}
	log, err := study.OpenLog(s.LogFile)
	if err != nil {
		return err
	}

	driver := study.NewDriver(pool, s.Splits, s.Repeats, trainer, src.Rand())
	driver.Log = log
	progress := commandline.NewSweepProgressWithWriter(w, s.Grid.Size(), s.Repeats, plain)
	sweepPlot := nbplots.New(pool).Dynamic()
	driver.OnResult = func(r study.Result) {
		progress.Observe(r)
		sweepPlot.Observe(r)
	}
	klog.V(1).Infof("Sweep %s: backend %s, results appended to %q", driver.ID, backend.Name(), log.Path())
	results, runErr := driver.Run(s.Grid.Configs())
	progress.Done()
	sweepPlot.Done()

	if len(results) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", commandline.ResultsTable(results, top))
	}
	if runErr != nil {
		return runErr
	}
	if s.PlotsDir != "" {
		if err = savePlots(s.PlotsDir, "Sweep "+driver.ID, pool, results); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "Plots saved to %q\n", s.PlotsDir)
	}
	return nil
}

func savePlots(dir, title string, pool *synthetic.Pool, results []study.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create plots directory %q", dir)
	}
	if err := plots.WriteReport(filepath.Join(dir, "report.html"), title, pool, results); err != nil {
		return err
	}
	if err := plots.SaveDataPNG(filepath.Join(dir, "data.png"), pool); err != nil {
		return err
	}
	return plots.SaveErrorsSVG(filepath.Join(dir, "errors.svg"), results)
}

// report prints the top best results stored in the results log at path.
func report(w io.Writer, path string, top int) error {
	df, err := study.LoadResults(path)
	if err != nil {
		return err
	}
	results, err := study.ResultsFromDataFrame(study.BestResults(df, top))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%d results in %q\n%s\n", df.Nrow(), path, commandline.ResultsTable(results, top))
	return nil
}
