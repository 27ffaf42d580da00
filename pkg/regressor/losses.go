// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package regressor

import (
	"slices"
	"strings"

	. "github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/gomlx/gomlx/pkg/ml/train/losses"
	"github.com/pkg/errors"
)

// Names of the supported losses.
const (
	// LossAbsoluteDifference is the mean absolute error.
	LossAbsoluteDifference = "absolute_difference"

	// LossHinge is the hinge loss, see HingeLoss.
	LossHinge = "hinge_loss"

	// LossSumAbsoluteDifference is the sum of the absolute errors over the batch.
	LossSumAbsoluteDifference = "sum_absolute_difference"
)

var lossFunctions = map[string]train.LossFn{
	LossAbsoluteDifference:    losses.MeanAbsoluteError,
	LossHinge:                 HingeLoss,
	LossSumAbsoluteDifference: SumAbsoluteDifference,
}

// KnownLosses returns the sorted names of the supported losses.
func KnownLosses() []string {
	names := make([]string, 0, len(lossFunctions))
	for name := range lossFunctions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LossByName returns the loss function registered with name.
func LossByName(name string) (train.LossFn, error) {
	lossFn, found := lossFunctions[name]
	if !found {
		return nil, errors.Errorf("unknown loss %q, known losses are: %s",
			name, strings.Join(KnownLosses(), ", "))
	}
	return lossFn, nil
}

// checkLabelsAndPredictions returns the first labels and predictions, with labels converted to the
// predictions dtype. It panics if their shapes differ.
func checkLabelsAndPredictions(labels, predictions []*Node) (labels0, predictions0 *Node) {
	predictions0 = predictions[0]
	labels0 = labels[0]
	if labels0.DType() != predictions0.DType() {
		labels0 = ConvertDType(labels0, predictions0.DType())
	}
	if !labels0.Shape().Equal(predictions0.Shape()) {
		Panicf("labels[0] (%s) and predictions[0] (%s) must have same shape", labels0.Shape(), predictions0.Shape())
	}
	return
}

// HingeLoss maps the labels to {-1, +1} with 2*y-1 and returns the mean of max(0, 1 - y*prediction).
//
// Labels are expected to be 0 or 1. Real valued labels are accepted and mapped the same way.
func HingeLoss(labels, predictions []*Node) *Node {
	labels0, predictions0 := checkLabelsAndPredictions(labels, predictions)
	signed := AddScalar(MulScalar(labels0, 2), -1)
	return ReduceAllMean(MaxScalar(OneMinus(Mul(signed, predictions0)), 0))
}

// SumAbsoluteDifference returns the sum of the absolute differences between labels and predictions.
// Unlike losses.MeanAbsoluteError it scales with the batch size.
func SumAbsoluteDifference(labels, predictions []*Node) *Node {
	labels0, predictions0 := checkLabelsAndPredictions(labels, predictions)
	return ReduceAllSum(Abs(Sub(labels0, predictions0)))
}
