// Package runner executes test suites: one dedicated automation session per
// case, strictly sequential steps, strictly sequential cases, results
// aggregated bottom-up into an immutable suite result.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rafaesapata/evo-qa/pkg/client"
	"github.com/rafaesapata/evo-qa/pkg/suite"
)

// DefaultStepTimeout bounds steps that declare no timeout of their own.
const DefaultStepTimeout = 30 * time.Second

//go:generate moq -out mocks/actor.go -pkg mocks -skip-ensure -fmt goimports . Actor
//go:generate moq -out mocks/logger.go -pkg mocks -skip-ensure -fmt goimports . Logger

// Actor is the action surface the runner drives. *client.Client implements it.
type Actor interface {
	Start(ctx context.Context) error
	Act(ctx context.Context, instruction string) client.Outcome
	ActWithSchema(ctx context.Context, instruction string, shape map[string]string) client.Outcome
	Verify(ctx context.Context, question string) client.Outcome
	Screenshot(name string) (string, error)
	Stop() error
}

// Logger provides run logging.
type Logger interface {
	SetPhase(phase Phase)
	Print(format string, args ...any)
	PrintAligned(text string)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Section(label string)
}

// Phase tags log output by pipeline stage for color coding.
type Phase string

// Phase constants for pipeline stages.
const (
	PhaseSetup    Phase = "setup"    // session start and setup hooks (cyan)
	PhaseStep     Phase = "step"     // step execution (green)
	PhaseTeardown Phase = "teardown" // teardown hooks and session stop (yellow)
	PhaseReport   Phase = "report"   // aggregation and reporting (magenta)
)

// Config holds runner policy.
type Config struct {
	StopOnFailure       bool          // halt remaining steps in a case after a non-optional failure
	ScreenshotOnFailure bool          // capture a screenshot after each failed step
	ScreenshotOnSuccess bool          // capture a screenshot after each passed step
	DefaultStepTimeout  time.Duration // per-step deadline when the step declares none
}

// Runner runs suites. A fresh Actor is created and started per case so no
// browser state leaks between cases.
type Runner struct {
	cfg         Config
	log         Logger
	newActor    func() (Actor, error)
	stepTimeout time.Duration
}

// New creates a runner. newActor produces one Actor per test case.
func New(cfg Config, log Logger, newActor func() (Actor, error)) *Runner {
	timeout := cfg.DefaultStepTimeout
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	return &Runner{cfg: cfg, log: log, newActor: newActor, stepTimeout: timeout}
}

// Run executes the cases sequentially and returns the aggregated result.
// A failing case never stops subsequent cases - failure isolation is
// case-scoped. Context cancellation stops the run after the current case.
func (r *Runner) Run(ctx context.Context, name string, cases []suite.Case) *SuiteResult {
	res := &SuiteResult{Name: name, StartTime: time.Now()}

	for i, tc := range cases {
		if ctx.Err() != nil {
			r.log.Warn("run cancelled, %d of %d cases executed", i, len(cases))
			break
		}

		r.log.Section(fmt.Sprintf("case %d/%d: %s [%s/%s]", i+1, len(cases), tc.Name, tc.Category, tc.Priority))
		tr := r.runCase(ctx, tc)
		res.append(tr)

		r.log.SetPhase(PhaseReport)
		r.log.Print("case %s: %s (%d steps, %s)", tc.ID, tr.Status, len(tr.Steps), tr.Duration.Round(time.Millisecond))
	}

	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)
	return res
}

// runCase runs setup, steps and teardown for one case against a dedicated
// session. Teardown and session stop always run, whatever happened before.
func (r *Runner) runCase(ctx context.Context, tc suite.Case) TestResult {
	res := TestResult{Case: tc, Status: StatusPassed}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	actor, err := r.newActor()
	if err != nil {
		res.Status = StatusErrored
		res.Error = fmt.Sprintf("create session: %v", err)
		r.log.Error("%s", res.Error)
		return res
	}

	// stop is unconditional, even after a partially failed start
	defer func() {
		r.log.SetPhase(PhaseTeardown)
		if stopErr := actor.Stop(); stopErr != nil {
			r.log.Warn("stop session: %v", stopErr)
		}
	}()

	r.log.SetPhase(PhaseSetup)
	if err := actor.Start(ctx); err != nil {
		res.Status = StatusErrored
		res.Error = err.Error()
		r.log.Error("session start: %v", err)
		r.runTeardown(ctx, tc, actor)
		return res
	}

	if err := r.runSetup(ctx, tc, actor); err != nil {
		// setup broke before any step ran: errored, not failed
		res.Status = StatusErrored
		res.Error = fmt.Sprintf("setup: %v", err)
		r.log.Error("%s", res.Error)
		r.runTeardown(ctx, tc, actor)
		return res
	}

	for _, step := range tc.Steps {
		r.log.SetPhase(PhaseStep)
		sr := r.runStep(ctx, actor, step)
		r.captureStepScreenshot(actor, step, sr.Status, &res)
		res.Steps = append(res.Steps, sr)

		switch sr.Status {
		case StatusPassed:
			r.log.Print("step %q passed (%s)", step.Name, sr.Duration.Round(time.Millisecond))
			if strings.Contains(sr.Outcome.Response, "\n") {
				r.log.PrintAligned(sr.Outcome.Response)
			}
		case StatusSkipped:
			r.log.Warn("step %q skipped (optional): %s", step.Name, sr.Error)
		case StatusFailed:
			r.log.Error("step %q failed: %s", step.Name, sr.Error)
		}

		if sr.Status == StatusFailed && !step.Optional {
			res.Status = StatusFailed
			res.Error = fmt.Sprintf("step %q: %s", step.Name, sr.Error)
			if r.cfg.StopOnFailure {
				r.log.Warn("stopping case %s on first failure", tc.ID)
				break
			}
		}
	}

	r.runTeardown(ctx, tc, actor)
	return res
}

// runSetup executes the case setup hook, recovering a panic into an error so
// a broken hook is recorded as a case-level error, never a crashed run.
func (r *Runner) runSetup(ctx context.Context, tc suite.Case, actor Actor) (err error) {
	if tc.Setup == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return tc.Setup(ctx, actor)
}

// runTeardown executes the case teardown hook, recording but never
// propagating its failure.
func (r *Runner) runTeardown(ctx context.Context, tc suite.Case, actor Actor) {
	if tc.Teardown == nil {
		return
	}
	r.log.SetPhase(PhaseTeardown)
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn("teardown panic: %v", p)
		}
	}()
	if err := tc.Teardown(ctx, actor); err != nil {
		r.log.Warn("teardown: %v", err)
	}
}

// captureStepScreenshot applies the screenshot policy after a step and
// appends the path to the case result. Capture failures are logged only -
// a missing artifact never changes a verdict.
func (r *Runner) captureStepScreenshot(actor Actor, step suite.Step, status Status, res *TestResult) {
	want := (status == StatusFailed && r.cfg.ScreenshotOnFailure) ||
		(status == StatusPassed && r.cfg.ScreenshotOnSuccess)
	if !want {
		return
	}

	path, err := actor.Screenshot(step.Name)
	if err != nil {
		r.log.Warn("screenshot after step %q: %v", step.Name, err)
		return
	}
	res.Screenshots = append(res.Screenshots, path)
}
