package progress

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaesapata/evo-qa/pkg/runner"
)

func newTestLogger(t *testing.T) (*Logger, *strings.Builder) {
	t.Helper()
	l, err := NewLogger(Config{
		SuiteName: "dashboard smoke",
		BaseURL:   "https://evo.example.com",
		LogDir:    t.TempDir(),
		NoColor:   true,
	})
	require.NoError(t, err)

	var stdout strings.Builder
	l.stdout = &stdout
	t.Cleanup(func() { _ = l.Close() })
	return l, &stdout
}

func readLogFile(t *testing.T, l *Logger) string {
	t.Helper()
	data, err := os.ReadFile(l.Path()) //nolint:gosec // test temp dir
	require.NoError(t, err)
	return string(data)
}

func TestNewLogger(t *testing.T) {
	t.Run("writes header and derives filename", func(t *testing.T) {
		l, _ := newTestLogger(t)

		name := filepath.Base(l.Path())
		assert.True(t, strings.HasPrefix(name, "run-dashboard-smoke-"), name)
		assert.True(t, strings.HasSuffix(name, ".log"), name)

		content := readLogFile(t, l)
		assert.Contains(t, content, "# EVO-QA Run Log")
		assert.Contains(t, content, "Suite: dashboard smoke")
		assert.Contains(t, content, "Target: https://evo.example.com")
	})

	t.Run("empty suite name falls back", func(t *testing.T) {
		assert.Equal(t, "run-run-20260830-100000.log",
			runLogFilename("", time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)))
	})
}

func TestLogger_Print(t *testing.T) {
	l, stdout := newTestLogger(t)

	l.SetPhase(runner.PhaseStep)
	l.Print("step %q passed", "open login")

	assert.Contains(t, stdout.String(), `step "open login" passed`)
	assert.Contains(t, readLogFile(t, l), `step "open login" passed`)
	// timestamped prefix on both outputs
	assert.Regexp(t, `\[\d{2}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\]`, stdout.String())
}

func TestLogger_WarnAndError(t *testing.T) {
	l, stdout := newTestLogger(t)

	l.Warn("flaky widget: %s", "costs")
	l.Error("session start: %v", "target unreachable")

	out := stdout.String()
	assert.Contains(t, out, "WARN: flaky widget: costs")
	assert.Contains(t, out, "ERROR: session start: target unreachable")

	content := readLogFile(t, l)
	assert.Contains(t, content, "WARN: flaky widget: costs")
	assert.Contains(t, content, "ERROR: session start: target unreachable")
}

func TestLogger_Section(t *testing.T) {
	l, stdout := newTestLogger(t)

	l.Section("case 1/3: login works [auth/critical]")

	assert.Contains(t, stdout.String(), "--- case 1/3: login works [auth/critical] ---")
	assert.Contains(t, readLogFile(t, l), "--- case 1/3: login works [auth/critical] ---")
}

func TestLogger_PrintAligned(t *testing.T) {
	l, stdout := newTestLogger(t)

	l.PrintAligned("first line\nsecond line")

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first line")
	// continuation line indented to align under the message column
	assert.True(t, strings.HasPrefix(lines[1], strings.Repeat(" ", 20)), lines[1])
	assert.Contains(t, lines[1], "second line")
}

func TestLogger_Close(t *testing.T) {
	l, err := NewLogger(Config{SuiteName: "s", LogDir: t.TempDir(), NoColor: true})
	require.NoError(t, err)
	var stdout strings.Builder
	l.stdout = &stdout

	path := l.Path()
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path) //nolint:gosec // test temp dir
	require.NoError(t, err)
	assert.Contains(t, string(data), "Completed:")
}

func TestWrapText(t *testing.T) {
	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "short", wrapText("short", 40))
	})

	t.Run("breaks on word boundaries", func(t *testing.T) {
		wrapped := wrapText("one two three four five six seven eight nine ten", 20)
		for _, line := range strings.Split(wrapped, "\n") {
			assert.LessOrEqual(t, len(line), 20, line)
		}
		assert.Equal(t, "one two three four five six seven eight nine ten",
			strings.ReplaceAll(wrapped, "\n", " "))
	})

	t.Run("zero width untouched", func(t *testing.T) {
		assert.Equal(t, "anything", wrapText("anything", 0))
	})
}
