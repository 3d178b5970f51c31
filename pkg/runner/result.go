package runner

import (
	"time"

	"github.com/rafaesapata/evo-qa/pkg/client"
	"github.com/rafaesapata/evo-qa/pkg/suite"
)

// Status classifies a step or case outcome.
type Status string

// Status values. Errored is distinct from Failed: it marks a case whose
// infrastructure (session start, setup hook) broke before any step could be
// judged, so "never attempted" is not conflated with "attempted and failed".
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusErrored Status = "errored"
)

// StepResult records one step execution. Created once, never mutated.
type StepResult struct {
	Step     suite.Step     `json:"step"`
	Status   Status         `json:"status"`
	Outcome  client.Outcome `json:"outcome"`
	Duration time.Duration  `json:"duration"`
	Error    string         `json:"error,omitempty"`
}

// TestResult aggregates the step results of one case run.
type TestResult struct {
	Case        suite.Case    `json:"case"`
	Status      Status        `json:"status"`
	Duration    time.Duration `json:"duration"`
	Steps       []StepResult  `json:"steps"`
	Error       string        `json:"error,omitempty"`
	Screenshots []string      `json:"screenshots,omitempty"`
}

// SuiteResult is the terminal artifact of one suite invocation, consumed
// only by reporting. Counts always satisfy
// Passed+Failed+Errored+Skipped == Total == len(Results).
type SuiteResult struct {
	Name      string        `json:"name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Errored   int           `json:"errored"`
	Skipped   int           `json:"skipped"`
	Results   []TestResult  `json:"results"`
}

// HasFailures reports whether the suite had any failed or errored cases.
func (r *SuiteResult) HasFailures() bool {
	return r.Failed > 0 || r.Errored > 0
}

// append records a finished case result and updates the counters.
func (r *SuiteResult) append(tr TestResult) {
	r.Results = append(r.Results, tr)
	r.Total++
	switch tr.Status {
	case StatusPassed:
		r.Passed++
	case StatusFailed:
		r.Failed++
	case StatusErrored:
		r.Errored++
	case StatusSkipped:
		r.Skipped++
	}
}
