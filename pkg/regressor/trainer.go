// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package regressor

import (
	"math"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/datasets"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/gomlx/gomlx/pkg/ml/train/optimizers"
	"github.com/gomlx/paramstudy/pkg/partition"
	"github.com/gomlx/paramstudy/pkg/study"
	"github.com/gomlx/paramstudy/pkg/synthetic"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Trainer trains and evaluates one network per trial. It implements study.Trainer.
type Trainer struct {
	// Backend where the models are trained.
	Backend backends.Backend

	// Topology of the network, see DefaultTopology.
	Topology []int

	// Epochs is the number of passes over the training set.
	Epochs int

	// ResampleNoise makes the evaluation compare the predictions to a fresh noisy measurement
	// drawn from Source, instead of the measurement stored with the sample.
	ResampleNoise bool

	// Source of randomness for the variables initialization and, if ResampleNoise is set,
	// for the fresh measurements. If nil the initialization is seeded by GoMLX and
	// ResampleNoise can't be used.
	Source *synthetic.Source
}

var _ study.Trainer = (*Trainer)(nil)

// New returns a Trainer with the DefaultTopology.
func New(backend backends.Backend, epochs int, src *synthetic.Source) *Trainer {
	return &Trainer{
		Backend:  backend,
		Topology: slices.Clone(DefaultTopology),
		Epochs:   epochs,
		Source:   src,
	}
}

// ValidateConfig checks that the trainer can run trials of cfg.
func (t *Trainer) ValidateConfig(cfg study.Config) error {
	if t.Backend == nil {
		return errors.New("regressor.Trainer has no backend")
	}
	if t.Epochs <= 0 {
		return errors.Errorf("regressor.Trainer needs epochs > 0, got %d", t.Epochs)
	}
	if t.ResampleNoise && t.Source == nil {
		return errors.New("regressor.Trainer needs a Source to resample noise")
	}
	if err := CheckTopology(t.Topology); err != nil {
		return err
	}
	if err := CheckInitializer(cfg.Initializer); err != nil {
		return err
	}
	if _, err := LossByName(cfg.Loss); err != nil {
		return err
	}
	if !(cfg.LearningRate > 0) || math.IsInf(cfg.LearningRate, 1) {
		return errors.Errorf("learning rate must be finite and > 0, got %g", cfg.LearningRate)
	}
	if cfg.BatchSize <= 0 {
		return errors.Errorf("batch size must be > 0, got %d", cfg.BatchSize)
	}
	return nil
}

// ValidateGrid checks every value of the grid, so a sweep fails before any training.
func (t *Trainer) ValidateGrid(grid study.Grid) error {
	for _, cfg := range grid.Configs() {
		if err := t.ValidateConfig(cfg); err != nil {
			return errors.WithMessagef(err, "invalid combination %s", cfg)
		}
	}
	return nil
}

// Trial implements study.Trainer. It trains a freshly initialized network on sets.Training and
// returns its mean absolute errors on sets.Testing.
//
// Panics raised by GoMLX while building or running the graphs are returned as errors.
func (t *Trainer) Trial(cfg study.Config, sets *partition.Sets) (eval study.Evaluation, err error) {
	if err = t.ValidateConfig(cfg); err != nil {
		return
	}
	if len(sets.Training) == 0 || len(sets.Testing) == 0 {
		err = errors.Errorf("trial of %s needs training and testing samples, got %d and %d",
			cfg, len(sets.Training), len(sets.Testing))
		return
	}
	err = exceptions.TryCatch[error](func() { eval = t.trial(cfg, sets) })
	if err != nil {
		err = errors.WithMessagef(err, "training %s", cfg)
	}
	return
}

// trial panics on errors.
func (t *Trainer) trial(cfg study.Config, sets *partition.Sets) study.Evaluation {
	modelFn := must.M1(ModelGraph(t.Topology, cfg.Initializer))
	lossFn := must.M1(LossByName(cfg.Loss))

	// Fresh context: parameters are never shared across trials.
	ctx := context.New()
	defer ctx.Finalize()
	if t.Source != nil {
		ctx.RngStateFromSeed(t.Source.Rand().Int63())
	}
	modelCtx := ctx.In("model")

	inputs, labels := Tensors(sets.Training)
	ds := must.M1(datasets.InMemoryFromData(t.Backend, "training", []any{inputs}, []any{labels})).
		BatchSize(cfg.BatchSize, false)
	defer ds.FinalizeAll()

	trainer := train.NewTrainer(t.Backend, modelCtx, modelFn, lossFn,
		optimizers.Adam().LearningRate(cfg.LearningRate).Done(),
		nil, nil) // trainMetrics, evalMetrics
	loop := train.NewLoop(trainer)
	_ = must.M1(loop.RunEpochs(ds, t.Epochs))
	klog.V(2).Infof("\t%s: %d steps, median step %s", cfg, loop.LoopStep, loop.MedianTrainStepDuration())

	predictions := must.M1(t.Predict(modelCtx.Reuse(), modelFn, sets.Testing))
	return t.evaluate(sets.Testing, predictions)
}

// Predict runs the forward pass of modelFn over rows, using the trained variables in ctx.
func (t *Trainer) Predict(ctx *context.Context, modelFn train.ModelFn, rows [][3]float64) ([]float64, error) {
	exec, err := context.NewExec(t.Backend, ctx, func(ctx *context.Context, x *Node) *Node {
		return modelFn(ctx, nil, []*Node{x})[0]
	})
	if err != nil {
		return nil, errors.WithMessage(err, "creating prediction graph")
	}
	defer exec.Finalize()
	inputs, _ := Tensors(rows)
	output, err := exec.Exec1(inputs)
	if err != nil {
		return nil, errors.WithMessage(err, "running prediction graph")
	}
	defer output.FinalizeAll()
	values, ok := output.Value().([][]float32)
	if !ok {
		return nil, errors.Errorf("unexpected prediction shape %s", output.Shape())
	}
	predictions := make([]float64, len(values))
	for ii, v := range values {
		predictions[ii] = float64(v[0])
	}
	return predictions, nil
}

// evaluate returns the mean absolute errors of predictions against the noisy measurements and
// against the ground truth.
func (t *Trainer) evaluate(rows [][3]float64, predictions []float64) study.Evaluation {
	var noisySum, truthSum float64
	for ii, row := range rows {
		measured := row[2]
		if t.ResampleNoise {
			measured = t.Source.Noisy(row[0], row[1])
		}
		noisySum += math.Abs(measured - predictions[ii])
		truthSum += math.Abs(synthetic.GroundTruth(row[0], row[1]) - predictions[ii])
	}
	n := float64(len(rows))
	return study.Evaluation{NoisyError: noisySum / n, TruthError: truthSum / n}
}

// Tensors splits rows into model inputs, shaped [len(rows), 2] with (x1, x2), and labels, shaped
// [len(rows), 1] with the measurements.
func Tensors(rows [][3]float64) (inputs, labels [][]float32) {
	inputs = make([][]float32, len(rows))
	labels = make([][]float32, len(rows))
	for ii, row := range rows {
		inputs[ii] = []float32{float32(row[0]), float32(row[1])}
		labels[ii] = []float32{float32(row[2])}
	}
	return
}
