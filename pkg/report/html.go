package report

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/rafaesapata/evo-qa/pkg/runner"
)

//go:embed templates
var content embed.FS

// WriteHTML renders the suite result as a static, self-contained HTML
// document (inline CSS, no external assets) and writes it to path, creating
// parent directories as needed.
func WriteHTML(res *runner.SuiteResult, path string) error {
	tmpl, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
		"fmtDuration": fmtDuration,
		"fmtTime":     func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
		"passRate":    passRate,
	}).ParseFS(content, "templates/report.html.tmpl")
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // path comes from user config
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}

	if err := tmpl.Execute(f, res); err != nil {
		f.Close()
		return fmt.Errorf("render html report: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close html report: %w", err)
	}
	return nil
}

// passRate returns the percentage of passed cases, 0 for an empty suite.
func passRate(res *runner.SuiteResult) int {
	if res.Total == 0 {
		return 0
	}
	return res.Passed * 100 / res.Total
}

// fmtDuration renders a duration with sensible precision for display.
func fmtDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return d.Round(time.Second).String()
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}
