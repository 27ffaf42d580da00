// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package study

import (
	"math"
	"math/rand"
	"time"

	"github.com/gomlx/paramstudy/pkg/partition"
	"github.com/gomlx/paramstudy/pkg/synthetic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Evaluation of one trained model over the testing set.
type Evaluation struct {
	// NoisyError is the mean absolute error against the noisy measurements.
	NoisyError float64

	// TruthError is the mean absolute error against the ground truth.
	TruthError float64
}

// Trainer trains and evaluates one model for the given configuration.
//
// Each call must use fresh model parameters: trials don't share weights.
type Trainer interface {
	Trial(cfg Config, sets *partition.Sets) (Evaluation, error)
}

// TrainerFn adapts a function to the Trainer interface.
type TrainerFn func(cfg Config, sets *partition.Sets) (Evaluation, error)

// Trial implements Trainer.
func (fn TrainerFn) Trial(cfg Config, sets *partition.Sets) (Evaluation, error) { return fn(cfg, sets) }

// Result of a hyperparameter combination.
type Result struct {
	Config Config

	// BestError is the lowest Evaluation.NoisyError among the trials. It is the only value logged.
	BestError float64

	// BestTruthError is the Evaluation.TruthError of the trial that achieved BestError.
	// It is informative only, the selection doesn't use it.
	BestTruthError float64

	// NumTrials run for this combination.
	NumTrials int

	// Elapsed time training and evaluating all trials.
	Elapsed time.Duration
}

// Driver runs the grid-search.
type Driver struct {
	// Pool of samples, partitioned anew for every trial.
	Pool *synthetic.Pool

	// Splits used to partition the pool.
	Splits partition.Splits

	// Repeats is the number of trials per combination.
	Repeats int

	// Trainer used for each trial.
	Trainer Trainer

	// Log where results are appended. Optional.
	Log *Log

	// Rand used to shuffle the partitions.
	Rand *rand.Rand

	// OnResult is called, if set, after each combination is logged.
	OnResult func(r Result)

	// ID of the sweep, used in log messages. Set by NewDriver.
	ID string
}

// NewDriver creates a Driver with a fresh sweep ID. Optional fields (Log, OnResult) can be set
// afterward.
func NewDriver(pool *synthetic.Pool, splits partition.Splits, repeats int, trainer Trainer, rng *rand.Rand) *Driver {
	return &Driver{
		Pool:    pool,
		Splits:  splits,
		Repeats: repeats,
		Trainer: trainer,
		Rand:    rng,
		ID:      uuid.NewString(),
	}
}

// validate checks the configuration before any training.
func (d *Driver) validate() error {
	if d.Pool == nil || d.Pool.Len() == 0 {
		return errors.New("study driver has no samples")
	}
	if d.Repeats <= 0 {
		return errors.Errorf("study driver needs at least one trial per combination, got Repeats=%d", d.Repeats)
	}
	if d.Trainer == nil {
		return errors.New("study driver has no Trainer")
	}
	if d.Rand == nil {
		return errors.New("study driver has no random number generator")
	}
	if _, _, _, err := d.Splits.Cuts(d.Pool.Len()); err != nil {
		return err
	}
	return nil
}

// Run trains Repeats models for each configuration, in order, and returns one Result per
// configuration.
//
// The first error aborts the sweep: the results returned and already logged are kept.
func (d *Driver) Run(configs []Config) ([]Result, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	klog.Infof("Sweep %s: %d combinations x %d trials", d.ID, len(configs), d.Repeats)
	results := make([]Result, 0, len(configs))
	for ii, cfg := range configs {
		klog.V(1).Infof("Sweep %s: combination %d of %d: %s", d.ID, ii+1, len(configs), cfg)
		r, err := d.RunConfig(cfg)
		if err != nil {
			return results, err
		}
		if d.Log != nil {
			if err = d.Log.Append(r); err != nil {
				return results, err
			}
		}
		results = append(results, r)
		if d.OnResult != nil {
			d.OnResult(r)
		}
	}
	klog.Infof("Sweep %s: finished", d.ID)
	return results, nil
}

// RunConfig runs the trials of one configuration and returns the best one.
func (d *Driver) RunConfig(cfg Config) (Result, error) {
	start := time.Now()
	r := Result{
		Config:         cfg,
		BestError:      math.Inf(1),
		BestTruthError: math.Inf(1),
	}
	for trial := range d.Repeats {
		sets, err := partition.Partition(d.Pool.Rows, d.Splits, d.Rand)
		if err != nil {
			return r, err
		}
		eval, err := d.Trainer.Trial(cfg, sets)
		if err != nil {
			return r, errors.WithMessagef(err, "trial %d of %s", trial, cfg)
		}
		r.NumTrials++
		klog.V(1).Infof("\t%s trial %d: noisy error=%g, truth error=%g", cfg, trial, eval.NoisyError, eval.TruthError)
		if eval.NoisyError < r.BestError {
			r.BestError = eval.NoisyError
			r.BestTruthError = eval.TruthError
		}
	}
	r.Elapsed = time.Since(start)
	return r, nil
}
