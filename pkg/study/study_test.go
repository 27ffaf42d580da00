// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package study

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/gomlx/paramstudy/pkg/partition"
	"github.com/gomlx/paramstudy/pkg/synthetic"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestGridConfigs(t *testing.T) {
	grid := DefaultGrid()
	require.Equal(t, 240, grid.Size())
	configs := grid.Configs()
	require.Len(t, configs, 240)

	// Product order: initializer varies the slowest, batch size the fastest.
	require.Equal(t, Config{"xavier", "absolute_difference", 0.0001, 3}, configs[0])
	require.Equal(t, Config{"xavier", "absolute_difference", 0.0001, 4}, configs[1])
	require.Equal(t, 0.1, configs[39].LearningRate)
	require.Equal(t, "hinge_loss", configs[40].Loss)
	require.Equal(t, "random", configs[120].Initializer)
	require.Equal(t, Config{"random", "sum_absolute_difference", 0.1, 6}, configs[239])

	seen := make(map[Config]bool)
	for _, cfg := range configs {
		require.False(t, seen[cfg], "duplicate %s", cfg)
		seen[cfg] = true
	}

	require.Empty(t, Grid{Initializers: []string{"xavier"}}.Configs())
}

func TestLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logRes")
	log := must.M1(OpenLog(path))
	require.Equal(t, path, log.Path())
	require.NoError(t, log.Append(Result{Config: Config{"xavier", "hinge_loss", 0.0112, 3}, BestError: 1.5}))
	require.NoError(t, log.Append(Result{Config: Config{"random", "absolute_difference", 0.1, 6}, BestError: 0.25}))

	// Reopening appends.
	log = must.M1(OpenLog(path))
	require.NoError(t, log.Append(Result{Config: Config{"random", "sum_absolute_difference", 0.0001, 4}, BestError: 3}))

	contents := string(must.M1(os.ReadFile(path)))
	require.Equal(t,
		"xavier,hinge_loss,0.0112,3,1.5\n"+
			"random,absolute_difference,0.1,6,0.25\n"+
			"random,sum_absolute_difference,0.0001,4,3\n",
		contents)

	_, err := OpenLog("")
	require.Error(t, err)
	_, err = OpenLog(filepath.Join(t.TempDir(), "missing_dir", "logRes"))
	require.Error(t, err)
}

func TestLoadResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logRes")
	log := must.M1(OpenLog(path))
	configs := DefaultGrid().Configs()[:5]
	for ii, cfg := range configs {
		require.NoError(t, log.Append(Result{Config: cfg, BestError: float64(10 - ii)}))
	}

	df := must.M1(LoadResults(path))
	require.Equal(t, 5, df.Nrow())
	require.Equal(t, 5, df.Ncol())

	best := BestResults(df, 2)
	require.Equal(t, 2, best.Nrow())
	results := must.M1(ResultsFromDataFrame(best))
	require.Len(t, results, 2)
	require.Equal(t, configs[4], results[0].Config)
	require.Equal(t, 6.0, results[0].BestError)
	require.Equal(t, configs[3], results[1].Config)

	all := must.M1(ResultsFromDataFrame(BestResults(df, 0)))
	require.Len(t, all, 5)

	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err := LoadResults(empty)
	require.Error(t, err)
	_, err = LoadResults(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func newTestPool(t *testing.T) *synthetic.Pool {
	return must.M1(synthetic.NewPool(synthetic.DefaultPoolConfig(), synthetic.NewSource(3)))
}

func TestDriverKeepsLowestNoisyError(t *testing.T) {
	pool := newTestPool(t)
	var numTrials int
	trainer := TrainerFn(func(cfg Config, sets *partition.Sets) (Evaluation, error) {
		require.Len(t, sets.Training, 70)
		require.Len(t, sets.Testing, 20)
		require.Len(t, sets.Validation, 10)
		numTrials++
		// Noisy errors cycle through 4, 3, 4, 5, 5. The truth error is lowest where the noisy one is highest.
		noisy := math.Abs(float64(numTrials%5-2)) + 3
		return Evaluation{NoisyError: noisy, TruthError: 10 - noisy}, nil
	})
	driver := NewDriver(pool, partition.DefaultSplits, 5, trainer, rand.New(rand.NewSource(1)))
	require.NotEmpty(t, driver.ID)
	path := filepath.Join(t.TempDir(), "logRes")
	driver.Log = must.M1(OpenLog(path))
	var observed []Result
	driver.OnResult = func(r Result) { observed = append(observed, r) }

	configs := DefaultGrid().Configs()[:3]
	results, err := driver.Run(configs)
	require.NoError(t, err)
	require.Equal(t, 15, numTrials)
	require.Len(t, results, 3)
	require.Equal(t, results, observed)
	for ii, r := range results {
		require.Equal(t, configs[ii], r.Config)
		require.Equal(t, 3.0, r.BestError)
		require.Equal(t, 7.0, r.BestTruthError)
		require.Equal(t, 5, r.NumTrials)
	}
	lines := strings.Split(strings.TrimSpace(string(must.M1(os.ReadFile(path)))), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "xavier,absolute_difference,0.0001,3,3", lines[0])
}

func TestDriverAllNaNTrials(t *testing.T) {
	pool := newTestPool(t)
	trainer := TrainerFn(func(cfg Config, sets *partition.Sets) (Evaluation, error) {
		return Evaluation{NoisyError: math.NaN(), TruthError: math.NaN()}, nil
	})
	driver := NewDriver(pool, partition.DefaultSplits, 3, trainer, rand.New(rand.NewSource(1)))
	path := filepath.Join(t.TempDir(), "logRes")
	driver.Log = must.M1(OpenLog(path))

	results, err := driver.Run(DefaultGrid().Configs()[:1])
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, math.IsInf(results[0].BestError, 1))
	require.True(t, math.IsInf(results[0].BestTruthError, 1))
	require.Equal(t, 3, results[0].NumTrials)
	require.Equal(t, "xavier,absolute_difference,0.0001,3,+Inf\n", string(must.M1(os.ReadFile(path))))
}

func TestDriverAbortsOnError(t *testing.T) {
	pool := newTestPool(t)
	var calls int
	trainer := TrainerFn(func(cfg Config, sets *partition.Sets) (Evaluation, error) {
		calls++
		if cfg.BatchSize == 5 {
			return Evaluation{}, errors.New("diverged")
		}
		return Evaluation{NoisyError: 1, TruthError: 1}, nil
	})
	driver := NewDriver(pool, partition.DefaultSplits, 2, trainer, rand.New(rand.NewSource(1)))
	path := filepath.Join(t.TempDir(), "logRes")
	driver.Log = must.M1(OpenLog(path))

	results, err := driver.Run(DefaultGrid().Configs())
	require.Error(t, err)
	require.ErrorContains(t, err, "diverged")
	require.Len(t, results, 2)
	require.Equal(t, 5, calls) // 2 combinations x 2 trials + first failed trial.

	// Results written before the failure are kept.
	lines := strings.Split(strings.TrimSpace(string(must.M1(os.ReadFile(path)))), "\n")
	require.Len(t, lines, 2)
}

func TestDriverValidation(t *testing.T) {
	pool := newTestPool(t)
	trainer := TrainerFn(func(cfg Config, sets *partition.Sets) (Evaluation, error) {
		t.Fatal("trainer should not be called")
		return Evaluation{}, nil
	})
	rng := rand.New(rand.NewSource(1))
	configs := DefaultGrid().Configs()

	_, err := NewDriver(pool, partition.Splits{0.7, 0.2, 0.001}, 1, trainer, rng).Run(configs)
	require.ErrorIs(t, err, partition.ErrInvalidSplits)
	_, err = NewDriver(pool, partition.DefaultSplits, 0, trainer, rng).Run(configs)
	require.Error(t, err)
	_, err = NewDriver(nil, partition.DefaultSplits, 1, trainer, rng).Run(configs)
	require.Error(t, err)
	_, err = NewDriver(pool, partition.DefaultSplits, 1, nil, rng).Run(configs)
	require.Error(t, err)
	_, err = NewDriver(pool, partition.DefaultSplits, 1, trainer, nil).Run(configs)
	require.Error(t, err)
}

func TestSettings(t *testing.T) {
	ctx := CreateDefaultContext()
	s := must.M1(SettingsFromContext(ctx))
	require.Equal(t, Settings{
		NumSamples: 100,
		Epochs:     500,
		Repeats:    5,
		Splits:     partition.Splits{0.7, 0.2, 0.1},
		LogFile:    "logRes",
		Grid:       DefaultGrid(),
	}, s)
	require.Equal(t, 100, s.PoolConfig().NumSamples)

	ctx = CreateDefaultContext()
	paramsSet := must.M1(commandline.ParseContextSettings(ctx, "epochs=3;n_times=2;seed=11;resample_noise=true"))
	require.Len(t, paramsSet, 4)
	s = must.M1(SettingsFromContext(ctx))
	require.Equal(t, 3, s.Epochs)
	require.Equal(t, 2, s.Repeats)
	require.Equal(t, int64(11), s.Seed)
	require.True(t, s.ResampleNoise)

	ctx = CreateDefaultContext()
	_ = must.M1(commandline.ParseContextSettings(ctx, "initializers=xavier;losses=hinge_loss,absolute_difference;learning_rates=0.01;batch_sizes=3,6"))
	s = must.M1(SettingsFromContext(ctx))
	require.Equal(t, Grid{
		Initializers:  []string{"xavier"},
		Losses:        []string{"hinge_loss", "absolute_difference"},
		LearningRates: []float64{0.01},
		BatchSizes:    []int{3, 6},
	}, s.Grid)
	require.Equal(t, 4, s.Grid.Size())

	for _, settings := range []string{
		"epochs=0",
		"n_times=-1",
		"num_samples=0",
		"validation_split=0.0",
		"train_split=0.9",
		"log_file=",
		"initializers=",
	} {
		ctx = CreateDefaultContext()
		_ = must.M1(commandline.ParseContextSettings(ctx, settings))
		_, err := SettingsFromContext(ctx)
		require.Errorf(t, err, "settings %q should be invalid", settings)
	}

	// Non-finite fractions can only be set programmatically.
	for _, fraction := range []float64{math.NaN(), math.Inf(1)} {
		ctx = CreateDefaultContext()
		ctx.SetParam(ParamTrainSplit, fraction)
		_, err := SettingsFromContext(ctx)
		require.ErrorIs(t, err, partition.ErrInvalidSplits)
	}
}
