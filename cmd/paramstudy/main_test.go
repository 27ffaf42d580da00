// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomlx/gomlx/backends"
	gomlxcli "github.com/gomlx/gomlx/ui/commandline"
	"github.com/gomlx/paramstudy/pkg/study"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func init() {
	if _, found := os.LookupEnv(backends.ConfigEnvVar); !found {
		must.M(os.Setenv(backends.ConfigEnvVar, "go"))
	}
}

func TestRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping training in short mode")
		return
	}
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logRes")
	plotsDir := filepath.Join(dir, "plots")
	ctx := study.CreateDefaultContext()
	paramsSet := must.M1(gomlxcli.ParseContextSettings(ctx, fmt.Sprintf(
		"epochs=2;n_times=1;seed=5;initializers=xavier,random;losses=absolute_difference;"+
			"learning_rates=0.01,0.001;batch_sizes=3;log_file=%s;plots_dir=%s", logFile, plotsDir)))

	var out bytes.Buffer
	require.NoError(t, run(&out, ctx, paramsSet, 10, true))
	require.Contains(t, out.String(), "epochs")
	require.Contains(t, out.String(), "Truth Error")

	lines := strings.Split(strings.TrimSpace(string(must.M1(os.ReadFile(logFile)))), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "xavier,absolute_difference,0.01,3,"))
	require.True(t, strings.HasPrefix(lines[1], "xavier,absolute_difference,0.001,3,"))
	require.True(t, strings.HasPrefix(lines[2], "random,absolute_difference,0.01,3,"))
	for _, name := range []string{"report.html", "data.png", "errors.svg"} {
		_, err := os.Stat(filepath.Join(plotsDir, name))
		require.NoErrorf(t, err, "missing plot %q", name)
	}

	// A second run appends to the same log.
	require.NoError(t, run(&out, ctx, paramsSet, 10, true))
	lines = strings.Split(strings.TrimSpace(string(must.M1(os.ReadFile(logFile)))), "\n")
	require.Len(t, lines, 8)
}

func TestRunInvalid(t *testing.T) {
	dir := t.TempDir()
	for _, settings := range []string{
		"epochs=0",
		"losses=squared_difference",
		"initializers=orthogonal",
		"batch_sizes=0",
		"learning_rates=-0.1",
		"log_file=" + filepath.Join(dir, "missing", "logRes"),
	} {
		ctx := study.CreateDefaultContext()
		paramsSet := must.M1(gomlxcli.ParseContextSettings(ctx, settings))
		var out bytes.Buffer
		require.Errorf(t, run(&out, ctx, paramsSet, 10, true), "settings %q should fail", settings)
	}
	// Nothing is trained if the configuration is invalid.
	_, err := os.Stat(filepath.Join(dir, "logRes"))
	require.True(t, os.IsNotExist(err))
}

func TestReport(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logRes")
	require.NoError(t, os.WriteFile(logFile, []byte(
		"xavier,hinge_loss,0.0112,3,1.5\n"+
			"random,absolute_difference,0.1,6,0.25\n"+
			"random,sum_absolute_difference,0.0001,4,3\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, report(&out, logFile, 2))
	text := out.String()
	require.Contains(t, text, "3 results")
	require.Contains(t, text, "absolute_difference")
	require.Contains(t, text, "hinge_loss")
	require.NotContains(t, text, "sum_absolute_difference")
	require.Less(t, strings.Index(text, "0.2500"), strings.Index(text, "1.5000"))

	require.Error(t, report(&out, filepath.Join(t.TempDir(), "missing"), 2))
}
