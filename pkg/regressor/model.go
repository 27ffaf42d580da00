// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package regressor builds, trains and evaluates the feed-forward regression network used by
// each trial of the study, using GoMLX.
package regressor

import (
	"slices"
	"strings"

	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/context/initializers"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// DefaultTopology is the number of units of each layer, starting with the 2 inputs (x1, x2) and
// ending with the single output.
var DefaultTopology = []int{2, 5, 10, 12, 14, 15, 12, 8, 5, 1}

// DType used for the model parameters and the data.
var DType = dtypes.Float32

// Names of the supported weight initializers.
const (
	// InitializerXavier is the Xavier (also known as Glorot) uniform initializer.
	InitializerXavier = "xavier"

	// InitializerRandom is a normal distribution with mean 0 and standard deviation RandomStddev.
	InitializerRandom = "random"
)

// RandomStddev is the standard deviation of the InitializerRandom weights.
const RandomStddev = 1.0

var initializerFactories = map[string]func(ctx *context.Context) initializers.VariableInitializer{
	InitializerXavier: func(ctx *context.Context) initializers.VariableInitializer {
		return initializers.XavierUniformFn(ctx)
	},
	InitializerRandom: func(ctx *context.Context) initializers.VariableInitializer {
		return initializers.RandomNormalFn(ctx, RandomStddev)
	},
}

// KnownInitializers returns the sorted names of the supported initializers.
func KnownInitializers() []string {
	names := make([]string, 0, len(initializerFactories))
	for name := range initializerFactories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CheckInitializer returns an error if name is not a known initializer.
func CheckInitializer(name string) error {
	if _, found := initializerFactories[name]; !found {
		return errors.Errorf("unknown initializer %q, known initializers are: %s",
			name, strings.Join(KnownInitializers(), ", "))
	}
	return nil
}

// CheckTopology returns an error if topology can't be used for a model with 2 inputs and 1 output.
func CheckTopology(topology []int) error {
	if len(topology) < 2 {
		return errors.Errorf("topology needs at least the input and output layers, got %v", topology)
	}
	for ii, units := range topology {
		if units <= 0 {
			return errors.Errorf("topology layer %d has %d units, it must be > 0", ii, units)
		}
	}
	if topology[0] != 2 {
		return errors.Errorf("topology must start with 2 inputs (x1, x2), got %d", topology[0])
	}
	if topology[len(topology)-1] != 1 {
		return errors.Errorf("topology must end with 1 output, got %d", topology[len(topology)-1])
	}
	return nil
}

// ModelGraph returns a train.ModelFn for a fully connected network with the given topology.
//
// Each layer i is created in scope "layer<i>", with weights initialized by the named
// initializer and biases initialized to zero. All layers but the last are followed by a sigmoid,
// the output is linear.
//
// The model takes one input of shape [batch_size, topology[0]] and returns predictions of shape
// [batch_size, 1].
func ModelGraph(topology []int, initializer string) (train.ModelFn, error) {
	if err := CheckTopology(topology); err != nil {
		return nil, err
	}
	if err := CheckInitializer(initializer); err != nil {
		return nil, err
	}
	topology = slices.Clone(topology)
	newInitializer := initializerFactories[initializer]
	return func(ctx *context.Context, spec any, inputs []*Node) []*Node {
		_ = spec
		ctx = ctx.WithInitializer(newInitializer(ctx))
		x := inputs[0]
		if x.DType() != DType {
			x = ConvertDType(x, DType)
		}
		numLayers := len(topology) - 1
		for ii := range numLayers {
			x = dense(ctx.Inf("layer%d", ii), x, topology[ii+1])
			if ii < numLayers-1 {
				x = Sigmoid(x)
			}
		}
		return []*Node{x}
	}, nil
}

// dense is a fully connected layer: x·W + b.
// W uses the initializer configured in ctx, b is initialized to zero.
func dense(ctx *context.Context, x *Node, outputDim int) *Node {
	g := x.Graph()
	inputDim := x.Shape().Dimensions[x.Rank()-1]
	w := ctx.VariableWithShape("W", shapes.Make(DType, inputDim, outputDim)).ValueGraph(g)
	b := ctx.WithInitializer(initializers.Zero).
		VariableWithShape("b", shapes.Make(DType, outputDim)).ValueGraph(g)
	return Add(Einsum("bi,io->bo", x, w), InsertAxes(b, 0))
}
