// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package study

import (
	"slices"

	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/paramstudy/pkg/partition"
	"github.com/gomlx/paramstudy/pkg/synthetic"
	"github.com/pkg/errors"
)

// Hyperparameters of the study, set in the context by CreateDefaultContext.
const (
	// ParamNumSamples is the number of samples in the pool.
	ParamNumSamples = "num_samples"

	// ParamEpochs is the number of passes over the training set per trial.
	ParamEpochs = "epochs"

	// ParamRepeats is the number of trials per hyperparameter combination.
	ParamRepeats = "n_times"

	// ParamTrainSplit, ParamTestSplit and ParamValidationSplit are the fractions of the pool in each set.
	ParamTrainSplit      = "train_split"
	ParamTestSplit       = "test_split"
	ParamValidationSplit = "validation_split"

	// ParamLogFile is the path of the results log.
	ParamLogFile = "log_file"

	// ParamSeed for the random source. If 0 the source is seeded with the clock.
	ParamSeed = "seed"

	// ParamResampleNoise makes the evaluation compare against a fresh noisy measurement of
	// each testing sample, instead of the one stored in the pool.
	ParamResampleNoise = "resample_noise"

	// ParamPlotsDir is a directory where to save plots of the data and of the results.
	// If empty, no plots are generated.
	ParamPlotsDir = "plots_dir"

	// ParamInitializers, ParamLosses, ParamLearningRates and ParamBatchSizes are the values of the grid.
	ParamInitializers  = "initializers"
	ParamLosses        = "losses"
	ParamLearningRates = "learning_rates"
	ParamBatchSizes    = "batch_sizes"
)

// CreateDefaultContext returns a context with the default hyperparameters of the study.
// They can be changed from the command line with commandline.ParseContextSettings.
func CreateDefaultContext() *context.Context {
	grid := DefaultGrid()
	ctx := context.New()
	ctx.SetParams(map[string]any{
		ParamNumSamples:      synthetic.DefaultNumSamples,
		ParamEpochs:          500,
		ParamRepeats:         5,
		ParamTrainSplit:      partition.DefaultSplits[0],
		ParamTestSplit:       partition.DefaultSplits[1],
		ParamValidationSplit: partition.DefaultSplits[2],
		ParamLogFile:         DefaultLogFile,
		ParamSeed:            0,
		ParamResampleNoise:   false,
		ParamPlotsDir:        "",
		ParamInitializers:    grid.Initializers,
		ParamLosses:          grid.Losses,
		ParamLearningRates:   grid.LearningRates,
		ParamBatchSizes:      grid.BatchSizes,
	})
	return ctx
}

// Settings of the study, read from the context.
type Settings struct {
	NumSamples    int
	Epochs        int
	Repeats       int
	Splits        partition.Splits
	LogFile       string
	Seed          int64
	ResampleNoise bool
	PlotsDir      string
	Grid          Grid
}

// SettingsFromContext reads and validates the study hyperparameters from ctx.
// Missing parameters take the values of CreateDefaultContext.
func SettingsFromContext(ctx *context.Context) (Settings, error) {
	grid := DefaultGrid()
	s := Settings{
		NumSamples: context.GetParamOr(ctx, ParamNumSamples, synthetic.DefaultNumSamples),
		Epochs:     context.GetParamOr(ctx, ParamEpochs, 500),
		Repeats:    context.GetParamOr(ctx, ParamRepeats, 5),
		Splits: partition.Splits{
			context.GetParamOr(ctx, ParamTrainSplit, partition.DefaultSplits[0]),
			context.GetParamOr(ctx, ParamTestSplit, partition.DefaultSplits[1]),
			context.GetParamOr(ctx, ParamValidationSplit, partition.DefaultSplits[2]),
		},
		LogFile:       context.GetParamOr(ctx, ParamLogFile, DefaultLogFile),
		Seed:          int64(context.GetParamOr(ctx, ParamSeed, 0)),
		ResampleNoise: context.GetParamOr(ctx, ParamResampleNoise, false),
		PlotsDir:      context.GetParamOr(ctx, ParamPlotsDir, ""),
		Grid: Grid{
			Initializers:  context.GetParamOr(ctx, ParamInitializers, grid.Initializers),
			Losses:        context.GetParamOr(ctx, ParamLosses, grid.Losses),
			LearningRates: context.GetParamOr(ctx, ParamLearningRates, grid.LearningRates),
			BatchSizes:    context.GetParamOr(ctx, ParamBatchSizes, grid.BatchSizes),
		},
	}
	if s.NumSamples <= 0 {
		return s, errors.Errorf("%q must be > 0, got %d", ParamNumSamples, s.NumSamples)
	}
	if s.Epochs <= 0 {
		return s, errors.Errorf("%q must be > 0, got %d", ParamEpochs, s.Epochs)
	}
	if s.Repeats <= 0 {
		return s, errors.Errorf("%q must be > 0, got %d", ParamRepeats, s.Repeats)
	}
	if s.LogFile == "" {
		return s, errors.Errorf("%q must be set", ParamLogFile)
	}
	if _, _, _, err := s.Splits.Cuts(s.NumSamples); err != nil {
		return s, err
	}
	if s.Grid.Size() == 0 {
		return s, errors.Errorf("empty grid: %q, %q, %q and %q must all have at least one value",
			ParamInitializers, ParamLosses, ParamLearningRates, ParamBatchSizes)
	}
	if slices.Contains(s.Grid.Initializers, "") || slices.Contains(s.Grid.Losses, "") {
		return s, errors.Errorf("empty names in %q=%v or %q=%v",
			ParamInitializers, s.Grid.Initializers, ParamLosses, s.Grid.Losses)
	}
	return s, nil
}

// PoolConfig returns the configuration of the sample pool for these settings.
func (s Settings) PoolConfig() synthetic.PoolConfig {
	cfg := synthetic.DefaultPoolConfig()
	cfg.NumSamples = s.NumSamples
	return cfg
}
