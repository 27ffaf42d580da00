// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package study

import (
	"bytes"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// Column names used when reading a results log into a dataframe.
const (
	ColInitializer  = "initializer"
	ColLoss         = "loss"
	ColLearningRate = "learning_rate"
	ColBatchSize    = "batch_size"
	ColBestError    = "best_error"
)

var (
	logColumns     = []string{ColInitializer, ColLoss, ColLearningRate, ColBatchSize, ColBestError}
	logColumnTypes = map[string]series.Type{
		ColInitializer:  series.String,
		ColLoss:         series.String,
		ColLearningRate: series.Float,
		ColBatchSize:    series.Int,
		ColBestError:    series.Float,
	}
)

// LoadResults reads a results log (see Log) into a dataframe with the columns
// ColInitializer, ColLoss, ColLearningRate, ColBatchSize and ColBestError.
func LoadResults(path string) (dataframe.DataFrame, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "failed to read results log %q", path)
	}
	if len(bytes.TrimSpace(contents)) == 0 {
		return dataframe.DataFrame{}, errors.Errorf("results log %q is empty", path)
	}
	df := dataframe.ReadCSV(bytes.NewReader(contents), dataframe.HasHeader(false),
		dataframe.Names(logColumns...), dataframe.WithTypes(logColumnTypes))
	if df.Err != nil {
		return df, errors.Wrapf(df.Err, "failed to parse results log %q", path)
	}
	return df, nil
}

// BestResults returns the n rows of df with the lowest error, sorted by error.
// If df has fewer than n rows, all of them are returned.
func BestResults(df dataframe.DataFrame, n int) dataframe.DataFrame {
	sorted := df.Arrange(dataframe.Sort(ColBestError))
	if n <= 0 || n >= sorted.Nrow() {
		return sorted
	}
	indices := make([]int, n)
	for ii := range indices {
		indices[ii] = ii
	}
	return sorted.Subset(indices)
}

// ResultsFromDataFrame converts the rows of a dataframe created by LoadResults back to results.
// Only Config and BestError are set.
func ResultsFromDataFrame(df dataframe.DataFrame) ([]Result, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	initializers := df.Col(ColInitializer).Records()
	lossNames := df.Col(ColLoss).Records()
	learningRates := df.Col(ColLearningRate).Float()
	bestErrors := df.Col(ColBestError).Float()
	batchSizes, err := df.Col(ColBatchSize).Int()
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %q column", ColBatchSize)
	}
	results := make([]Result, df.Nrow())
	for ii := range results {
		results[ii] = Result{
			Config: Config{
				Initializer:  initializers[ii],
				Loss:         lossNames[ii],
				LearningRate: learningRates[ii],
				BatchSize:    batchSizes[ii],
			},
			BestError: bestErrors[ii],
		}
	}
	return results, nil
}
