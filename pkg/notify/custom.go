package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// scriptChannel delivers the suite summary to a user-supplied executable.
// The script gets the Result JSON on stdin, plus EVOQA_SUITE and
// EVOQA_STATUS in its environment so simple scripts can branch on the
// outcome without parsing the payload.
type scriptChannel struct {
	path string
}

func newScriptChannel(path string) *scriptChannel {
	return &scriptChannel{path: path}
}

// send runs the script and waits for it to exit. A non-zero exit is an
// error; whatever the script wrote to stderr is folded into it.
func (c *scriptChannel) send(ctx context.Context, r Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode suite summary: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.path) //nolint:gosec // path comes from operator config, not user input
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(os.Environ(),
		"EVOQA_SUITE="+r.Suite,
		"EVOQA_STATUS="+r.Status,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err = cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("notify script %s: %w, stderr: %s", c.path, err, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("notify script %s: %w", c.path, err)
	}
	return nil
}
