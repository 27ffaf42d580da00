// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package study

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// DefaultLogFile is the name of the results log used if none is configured.
const DefaultLogFile = "logRes"

// Log is an append-only file of results, one line per hyperparameter combination:
//
//	<initializer>,<loss>,<learning_rate>,<batch_size>,<best_error>
//
// There is no header. The file is opened (and created if needed) and closed for every record,
// so results already written survive an interrupted sweep.
type Log struct {
	mu   sync.Mutex
	path string
}

// OpenLog returns a Log appending to path. It checks that the file can be created or appended to.
func OpenLog(path string) (*Log, error) {
	if path == "" {
		return nil, errors.New("results log path is empty")
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open results log %q", path)
	}
	if err = f.Close(); err != nil {
		return nil, errors.Wrapf(err, "failed to close results log %q", path)
	}
	return &Log{path: path}, nil
}

// Path of the log file.
func (l *Log) Path() string { return l.path }

// FormatRecord returns the log line for result r, including the trailing new line.
func FormatRecord(r Result) string {
	return fmt.Sprintf("%s,%s,%s,%d,%s\n",
		r.Config.Initializer, r.Config.Loss,
		strconv.FormatFloat(r.Config.LearningRate, 'g', -1, 64),
		r.Config.BatchSize,
		strconv.FormatFloat(r.BestError, 'g', -1, 64))
}

// Append writes the record of r at the end of the log.
func (l *Log) Append(r Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to open results log %q", l.path)
	}
	_, err = f.WriteString(FormatRecord(r))
	if err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to append %s to results log %q", r.Config, l.path)
	}
	return errors.Wrapf(f.Close(), "failed to close results log %q", l.path)
}
