// Package progress provides timestamped run logging to file and stdout with
// color support. One Logger is constructed per suite run - no package-level
// state beyond the color palette.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/rafaesapata/evo-qa/pkg/runner"
)

// phase colors using fatih/color.
var (
	setupColor     = color.New(color.FgCyan)
	stepColor      = color.New(color.FgGreen)
	teardownColor  = color.New(color.FgYellow)
	reportColor    = color.New(color.FgMagenta)
	warnColor      = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed)
	timestampColor = color.New(color.FgWhite)
)

// phaseColors maps pipeline phases to their color functions.
var phaseColors = map[runner.Phase]*color.Color{
	runner.PhaseSetup:    setupColor,
	runner.PhaseStep:     stepColor,
	runner.PhaseTeardown: teardownColor,
	runner.PhaseReport:   reportColor,
}

// Logger writes timestamped output to both the run log file and stdout.
type Logger struct {
	file      *os.File
	stdout    io.Writer
	startTime time.Time
	phase     runner.Phase
}

// Config holds logger configuration.
type Config struct {
	SuiteName string // suite name written into the log header
	BaseURL   string // target dashboard URL for the header
	LogDir    string // directory for the run log file, "." when empty
	NoColor   bool   // disable color output (sets color.NoColor globally)
}

// timestampFormat is the format for timestamps: YY-MM-DD HH:MM:SS
const timestampFormat = "06-01-02 15:04:05"

// NewLogger creates a logger writing to both a run log file and stdout.
// The log filename carries the suite name and start time so consecutive
// runs never clobber each other.
func NewLogger(cfg Config) (*Logger, error) {
	if cfg.NoColor {
		color.NoColor = true
	}

	dir := cfg.LogDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	start := time.Now()
	logPath := filepath.Join(dir, runLogFilename(cfg.SuiteName, start))

	f, err := os.Create(logPath) //nolint:gosec // path derived from configured log dir
	if err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}

	l := &Logger{
		file:      f,
		stdout:    os.Stdout,
		startTime: start,
		phase:     runner.PhaseSetup,
	}

	l.writeFile("# EVO-QA Run Log\n")
	l.writeFile("Suite: %s\n", cfg.SuiteName)
	l.writeFile("Target: %s\n", cfg.BaseURL)
	l.writeFile("Started: %s\n", start.Format("2006-01-02 15:04:05"))
	l.writeFile("%s\n\n", strings.Repeat("-", 60))

	return l, nil
}

// Path returns the run log file path.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// SetPhase sets the current pipeline phase for color coding.
func (l *Logger) SetPhase(phase runner.Phase) {
	l.phase = phase
}

// Print writes a timestamped message to both file and stdout.
func (l *Logger) Print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	l.writeFile("[%s] %s\n", timestamp, msg)

	phaseColor := phaseColors[l.phase]
	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	msgStr := phaseColor.Sprint(msg)
	l.writeStdout("%s %s\n", tsStr, msgStr)
}

// Section writes a visual section separator for a test case boundary.
func (l *Logger) Section(label string) {
	l.writeFile("\n--- %s ---\n", label)

	phaseColor := phaseColors[l.phase]
	l.writeStdout("\n%s\n", phaseColor.Sprintf("--- %s ---", label))
}

// Error writes an error message in red.
func (l *Logger) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	l.writeFile("[%s] ERROR: %s\n", timestamp, msg)

	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	errStr := errorColor.Sprintf("ERROR: %s", msg)
	l.writeStdout("%s %s\n", tsStr, errStr)
}

// Warn writes a warning message in yellow.
func (l *Logger) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	l.writeFile("[%s] WARN: %s\n", timestamp, msg)

	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	warnStr := warnColor.Sprintf("WARN: %s", msg)
	l.writeStdout("%s %s\n", tsStr, warnStr)
}

// PrintAligned writes multi-line content with the timestamp on the first
// line and continuation lines indented to align, wrapped to terminal width.
func (l *Logger) PrintAligned(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}

	timestamp := time.Now().Format(timestampFormat)
	phaseColor := phaseColors[l.phase]
	tsPrefix := timestampColor.Sprintf("[%s]", timestamp)
	indent := strings.Repeat(" ", 20) // aligns with "[YY-MM-DD HH:MM:SS] "

	width := getTerminalWidth()

	var lines []string
	for line := range strings.SplitSeq(text, "\n") {
		if len(line) > width {
			for wrapped := range strings.SplitSeq(wrapText(line, width), "\n") {
				lines = append(lines, wrapped)
			}
		} else {
			lines = append(lines, line)
		}
	}

	for i, line := range lines {
		if line == "" {
			l.writeFile("\n")
			l.writeStdout("\n")
			continue
		}
		if i == 0 {
			l.writeFile("[%s] %s\n", timestamp, line)
			l.writeStdout("%s %s\n", tsPrefix, phaseColor.Sprint(line))
		} else {
			l.writeFile("%s%s\n", indent, line)
			l.writeStdout("%s%s\n", indent, phaseColor.Sprint(line))
		}
	}
}

// Elapsed returns formatted elapsed time since the run started.
func (l *Logger) Elapsed() string {
	return humanize.RelTime(l.startTime, time.Now(), "", "")
}

// Close writes the footer and closes the run log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	l.writeFile("\n%s\n", strings.Repeat("-", 60))
	l.writeFile("Completed: %s (%s)\n", time.Now().Format("2006-01-02 15:04:05"), l.Elapsed())

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close run log: %w", err)
	}
	return nil
}

func (l *Logger) writeFile(format string, args ...any) {
	if l.file != nil {
		fmt.Fprintf(l.file, format, args...)
	}
}

func (l *Logger) writeStdout(format string, args ...any) {
	fmt.Fprintf(l.stdout, format, args...)
}

// runLogFilename derives the log filename from suite name and start time.
func runLogFilename(suiteName string, start time.Time) string {
	stem := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(suiteName), " ", "-"))
	if stem == "" {
		stem = "run"
	}
	return fmt.Sprintf("run-%s-%s.log", stem, start.Format("20060102-150405"))
}

// getTerminalWidth returns content width (terminal width minus the timestamp
// prefix), using COLUMNS env var or syscall. Defaults to 60 if detection fails.
func getTerminalWidth() int {
	const minWidth = 40

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			return max(w-20, minWidth)
		}
	}

	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return max(w-20, minWidth)
	}

	return 80 - 20
}

// wrapText wraps text to specified width, breaking on word boundaries.
func wrapText(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0

	for i, word := range strings.Fields(text) {
		wordLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wordLen
			continue
		}

		if lineLen+1+wordLen <= width {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wordLen
		} else {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wordLen
		}
	}

	return result.String()
}
