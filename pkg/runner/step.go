package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rafaesapata/evo-qa/pkg/client"
	"github.com/rafaesapata/evo-qa/pkg/suite"
)

// runStep executes one step against a live actor and classifies the result.
// The per-step deadline travels inside the context so a timed-out action is
// actively cancelled rather than abandoned in flight.
//
// Classification order:
//  1. deadline exceeded -> failed with a timeout error
//  2. outcome not successful -> skipped if the step is optional, else failed
//  3. expected substring missing from the response -> failed, regardless of
//     the action's own success flag
//  4. otherwise passed
func (r *Runner) runStep(ctx context.Context, actor Actor, step suite.Step) StepResult {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = r.stepTimeout
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out := r.invoke(sctx, actor, step)
	duration := time.Since(start)

	res := StepResult{Step: step, Outcome: out, Duration: duration}

	if errors.Is(sctx.Err(), context.DeadlineExceeded) && !out.Success {
		res.Status = StatusFailed
		res.Error = fmt.Sprintf("timed out after %s", timeout)
		return res
	}

	if !out.Success {
		res.Error = out.Error
		if step.Optional {
			res.Status = StatusSkipped
		} else {
			res.Status = StatusFailed
		}
		return res
	}

	if step.Expect != "" && !strings.Contains(strings.ToLower(out.Response), strings.ToLower(step.Expect)) {
		res.Status = StatusFailed
		res.Error = fmt.Sprintf("response does not contain %q", step.Expect)
		return res
	}

	res.Status = StatusPassed
	return res
}

// invoke dispatches to the right actor call: schema-aware action, vision
// verification, or a plain action.
func (r *Runner) invoke(ctx context.Context, actor Actor, step suite.Step) client.Outcome {
	switch {
	case len(step.Schema) > 0:
		return actor.ActWithSchema(ctx, step.Action, step.Schema)
	case step.Verify != "" && step.Action == "":
		return actor.Verify(ctx, step.Verify)
	case step.Verify != "":
		// action first, then the vision check on the resulting state
		out := actor.Act(ctx, step.Action)
		if !out.Success {
			return out
		}
		verified := actor.Verify(ctx, step.Verify)
		verified.Response = strings.TrimSpace(out.Response + "\n" + verified.Response)
		return verified
	default:
		return actor.Act(ctx, step.Action)
	}
}
