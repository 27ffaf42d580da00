// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gomlx/ui/notebooks"
	"github.com/gomlx/paramstudy/pkg/study"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
// But it requires some of the graphical symbols to be supported.
var ProgressbarStyle = progressbar.ThemeASCII

var (
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
)

// SweepProgress displays the progress of a sweep: a progress bar over the combinations and a small
// table with the number of trials run and the best combination so far.
//
// Feed it with SweepProgress.Observe (for instance as study.Driver.OnResult) and call
// SweepProgress.Done at the end.
type SweepProgress struct {
	numConfigs, repeats int
	numObserved         int
	numTrials           int
	start               time.Time
	best                *study.Result
	last                study.Result

	w        io.Writer
	bar      *progressbar.ProgressBar
	termenv  *termenv.Output
	plain    bool
	numLines int // Lines printed by the last update, to be overwritten by the next.

	statsStyle lipgloss.Style
	statsTable *lgtable.Table
}

// NewSweepProgress creates a SweepProgress printing to the standard output, for a sweep of
// numConfigs combinations with repeats trials each.
//
// Inside a notebook the stats table is not redrawn in place: only the progress bar is updated.
func NewSweepProgress(numConfigs, repeats int) *SweepProgress {
	return NewSweepProgressWithWriter(os.Stdout, numConfigs, repeats, notebooks.IsNotebook())
}

// NewSweepProgressWithWriter creates a SweepProgress printing to w. If plain is true the stats are
// printed as a single line after the progress bar, and no terminal escape sequences are used.
func NewSweepProgressWithWriter(w io.Writer, numConfigs, repeats int, plain bool) *SweepProgress {
	p := &SweepProgress{
		numConfigs: numConfigs,
		repeats:    repeats,
		start:      time.Now(),
		w:          w,
		plain:      plain,
		statsStyle: lipgloss.NewStyle().PaddingLeft(8),
	}
	p.bar = progressbar.NewOptions(numConfigs,
		progressbar.OptionSetDescription("Sweep"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("combinations"),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionSetWriter(w),
	)
	if !plain {
		p.termenv = termenv.NewOutput(w)
		p.statsTable = lgtable.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
			StyleFunc(func(row, col int) lipgloss.Style {
				if col == 0 {
					return rightAlignedStyle
				}
				return normalStyle
			})
	}
	return p
}

// Best returns the result with the lowest error observed so far, or nil if none was observed.
func (p *SweepProgress) Best() *study.Result { return p.best }

// Observe the result of one combination and update the display.
func (p *SweepProgress) Observe(r study.Result) {
	p.numObserved++
	p.numTrials += r.NumTrials
	p.last = r
	if !math.IsNaN(r.BestError) && (p.best == nil || r.BestError < p.best.BestError) {
		best := r
		p.best = &best
	}
	if p.plain {
		_ = p.bar.Add(1)
		_, _ = fmt.Fprintf(p.w, "  [trials=%s] [best=%s]\n", humanize.Comma(int64(p.numTrials)), p.bestString())
		return
	}

	p.statsTable.Data(lgtable.NewStringData())
	p.statsTable.Row("Combinations", fmt.Sprintf("%s of %s",
		humanize.Comma(int64(p.numObserved)), humanize.Comma(int64(p.numConfigs))))
	p.statsTable.Row("Trials", fmt.Sprintf("%s of %s",
		humanize.Comma(int64(p.numTrials)), humanize.Comma(int64(p.numConfigs*p.repeats))))
	p.statsTable.Row("Best", p.bestString())
	p.statsTable.Row("Last", fmt.Sprintf("%s error=%s in %s",
		p.last.Config, formatError(p.last.BestError), FormatDuration(p.last.Elapsed)))
	p.statsTable.Row("Elapsed", FormatDuration(time.Since(p.start)))
	rendered := p.statsStyle.Render(p.statsTable.String())

	// Clear the previous lines that will be overwritten.
	p.termenv.HideCursor()
	if p.numLines > 0 {
		p.termenv.CursorPrevLine(p.numLines)
	}
	_, _ = fmt.Fprintln(p.w, rendered)
	_ = p.bar.Add(1) // Prints progress bar line.
	_, _ = fmt.Fprintln(p.w)
	p.termenv.ShowCursor()
	p.numLines = strings.Count(rendered, "\n") + 2
}

func (p *SweepProgress) bestString() string {
	if p.best == nil {
		return "-"
	}
	return fmt.Sprintf("%s error=%s", p.best.Config, formatError(p.best.BestError))
}

// Done finishes the progress bar, and restores the cursor.
func (p *SweepProgress) Done() {
	_ = p.bar.Finish()
	if p.termenv != nil {
		p.termenv.ShowCursor()
	}
	_, _ = fmt.Fprintln(p.w)
}
