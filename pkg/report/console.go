package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/rafaesapata/evo-qa/pkg/runner"
)

// boxWidth is the fixed inner width of the console summary box.
const boxWidth = 58

var (
	passColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed)
	errColor   = color.New(color.FgHiRed)
	skipColor  = color.New(color.FgYellow)
	frameColor = color.New(color.FgWhite)
)

// PrintSummary writes a fixed-width boxed summary of the suite result.
// Purely observational: no file I/O, no mutation of the input.
func PrintSummary(w io.Writer, res *runner.SuiteResult) {
	// pad plain text first, colorize after - ANSI codes inside the padding
	// would break the box alignment
	line := func(c *color.Color, format string, args ...any) {
		text := fmt.Sprintf(format, args...)
		if len(text) > boxWidth {
			text = text[:boxWidth-3] + "..."
		}
		padded := fmt.Sprintf("%-*s", boxWidth, text)
		if c != nil {
			padded = c.Sprint(padded)
		}
		fmt.Fprintf(w, "%s %s %s\n", frameColor.Sprint("│"), padded, frameColor.Sprint("│"))
	}
	rule := func(left, right string) {
		fmt.Fprintln(w, frameColor.Sprint(left+strings.Repeat("─", boxWidth+2)+right))
	}

	rule("┌", "┐")
	line(nil, "suite: %s", res.Name)
	line(nil, "finished %s in %s", humanize.Time(res.EndTime), fmtDuration(res.Duration))
	rule("├", "┤")
	line(nil, "total:   %d", res.Total)
	line(passColor, "passed:  %d", res.Passed)
	line(failColor, "failed:  %d", res.Failed)
	line(errColor, "errored: %d", res.Errored)
	line(skipColor, "skipped: %d", res.Skipped)
	rule("└", "┘")

	// failed and errored cases listed below the box with their errors
	for _, tr := range res.Results {
		if tr.Status != runner.StatusFailed && tr.Status != runner.StatusErrored {
			continue
		}
		marker := failColor.Sprint("✗")
		if tr.Status == runner.StatusErrored {
			marker = errColor.Sprint("!")
		}
		fmt.Fprintf(w, "%s %s (%s): %s\n", marker, tr.Case.Name, tr.Case.ID, tr.Error)
		for _, sr := range tr.Steps {
			if sr.Status != runner.StatusFailed {
				continue
			}
			fmt.Fprintf(w, "    step %q: %s (%s)\n", sr.Step.Name, sr.Error, sr.Duration.Round(time.Millisecond))
		}
	}
}
