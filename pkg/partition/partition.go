// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package partition splits a pool of samples into training, testing and validation sets.
//
// Membership is deterministic: indices are selected with an evenly spaced midpoint rule, so
// the same split fractions always select the same samples. Only the order of the rows within
// each set is random.
package partition

import (
	"math"
	"math/rand"
	"slices"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrInvalidSplits is returned (wrapped with details) when the split fractions cannot be
// used to partition the pool.
var ErrInvalidSplits = errors.New("invalid split fractions")

// splitsSumTolerance allows for float rounding in fractions like 0.7+0.2+0.1.
const splitsSumTolerance = 1e-9

// Splits holds the fraction of the pool used for training, testing and validation, in this order.
type Splits [3]float64

// DefaultSplits used by the study: 70% training, 20% testing and 10% validation.
var DefaultSplits = Splits{0.7, 0.2, 0.1}

// Cuts returns the number of samples of each split for a pool of num samples: floor(fraction*num).
//
// It returns an error wrapping ErrInvalidSplits if any fraction is negative or not finite, if they sum to more
// than 1, or if any of the cuts is 0.
func (s Splits) Cuts(num int) (cut1, cut2, cut3 int, err error) {
	var sum float64
	for ii, fraction := range s {
		if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
			err = errors.Wrapf(ErrInvalidSplits, "split #%d is not finite (%g)", ii, fraction)
			return
		}
		if fraction < 0 {
			err = errors.Wrapf(ErrInvalidSplits, "split #%d is negative (%g)", ii, fraction)
			return
		}
		sum += fraction
	}
	if sum > 1.0+splitsSumTolerance {
		err = errors.Wrapf(ErrInvalidSplits, "splits %v sum to %g > 1.0", s, sum)
		return
	}
	cut1 = int(s[0] * float64(num))
	cut2 = int(s[1] * float64(num))
	cut3 = int(s[2] * float64(num))
	for ii, cut := range []int{cut1, cut2, cut3} {
		if cut == 0 {
			err = errors.Wrapf(ErrInvalidSplits, "split #%d (%g) selects 0 samples out of %d", ii, s[ii], num)
			return
		}
	}
	return
}

// EvenlySpaced selects count indices out of [0, poolSize), using the midpoint rule
// `i*poolSize/count + poolSize/(2*count)` with integer divisions.
//
// It panics if count is 0: callers validate it with Splits.Cuts.
func EvenlySpaced(poolSize, count int) []int {
	indices := make([]int, count)
	offset := poolSize / (2 * count)
	for ii := range indices {
		indices[ii] = ii*poolSize/count + offset
	}
	return indices
}

// complement returns the sorted elements of pool (assumed sorted) not in exclude.
func complement(pool, exclude []int) []int {
	excluded := make(map[int]bool, len(exclude))
	for _, idx := range exclude {
		excluded[idx] = true
	}
	rest := make([]int, 0, len(pool))
	for _, idx := range pool {
		if !excluded[idx] {
			rest = append(rest, idx)
		}
	}
	return rest
}

// Indices returns the sample indices of each split for a pool of num samples.
//
// Training indices are evenly spaced over the whole pool. Testing indices are evenly spaced
// over the remaining (sorted) indices, and validation takes whatever is left. The three sets
// are disjoint and their union is [0, num).
func Indices(num int, splits Splits) (training, testing, validation []int, err error) {
	cut1, cut2, _, err := splits.Cuts(num)
	if err != nil {
		return
	}
	if cut1+cut2 > num {
		err = errors.Wrapf(ErrInvalidSplits, "training (%d) and testing (%d) samples exceed pool size %d", cut1, cut2, num)
		return
	}
	all := make([]int, num)
	for ii := range all {
		all[ii] = ii
	}
	training = EvenlySpaced(num, cut1)
	rest := complement(all, training)
	testing = EvenlySpaced(len(rest), cut2)
	for ii, idx := range testing {
		testing[ii] = rest[idx]
	}
	validation = complement(rest, testing)
	return
}

// Sets holds the rows of each split.
type Sets struct {
	Training, Testing, Validation [][3]float64
}

// Partition splits rows into the training, testing and validation sets selected by Indices, and
// shuffles the order of the rows of each set independently using rng.
//
// The rows are copied: rows itself is not modified.
func Partition(rows [][3]float64, splits Splits, rng *rand.Rand) (*Sets, error) {
	training, testing, validation, err := Indices(len(rows), splits)
	if err != nil {
		return nil, err
	}
	sets := &Sets{
		Training:   gather(rows, training, rng),
		Testing:    gather(rows, testing, rng),
		Validation: gather(rows, validation, rng),
	}
	klog.V(2).Infof("Partitioned %d rows: training=%d, testing=%d, validation=%d",
		len(rows), len(sets.Training), len(sets.Testing), len(sets.Validation))
	return sets, nil
}

// gather copies the selected rows in a random order.
func gather(rows [][3]float64, indices []int, rng *rand.Rand) [][3]float64 {
	order := slices.Clone(indices)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	selected := make([][3]float64, len(order))
	for ii, idx := range order {
		selected[ii] = rows[idx]
	}
	return selected
}
