package notify

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script test")
	}
	path := filepath.Join(t.TempDir(), "notify.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+content), 0o700)) //nolint:gosec // test script must be executable
	return path
}

func TestScriptChannel_Send(t *testing.T) {
	t.Run("pipes result json to stdin", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "captured.json")
		script := writeScript(t, "cat > "+out+"\n")

		ch := newScriptChannel(script)
		require.NoError(t, ch.send(context.Background(), failedResult()))

		data, err := os.ReadFile(out) //nolint:gosec // test temp dir
		require.NoError(t, err)

		var r Result
		require.NoError(t, json.Unmarshal(data, &r))
		assert.Equal(t, "failure", r.Status)
		assert.Equal(t, "dashboard smoke", r.Suite)
		assert.Equal(t, 1, r.Errored)
	})

	t.Run("exposes suite and status in environment", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "env.txt")
		script := writeScript(t, "echo \"$EVOQA_SUITE/$EVOQA_STATUS\" > "+out+"\n")

		ch := newScriptChannel(script)
		require.NoError(t, ch.send(context.Background(), failedResult()))

		data, err := os.ReadFile(out) //nolint:gosec // test temp dir
		require.NoError(t, err)
		assert.Equal(t, "dashboard smoke/failure", strings.TrimSpace(string(data)))
	})

	t.Run("script failure includes stderr", func(t *testing.T) {
		script := writeScript(t, "echo 'hook rejected payload' >&2\nexit 3\n")

		ch := newScriptChannel(script)
		err := ch.send(context.Background(), passedResult())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hook rejected payload")
	})

	t.Run("missing script", func(t *testing.T) {
		ch := newScriptChannel("/nonexistent/notify.sh")
		err := ch.send(context.Background(), passedResult())
		require.Error(t, err)
	})
}

func TestService_Send_CustomChannel(t *testing.T) {
	out := filepath.Join(t.TempDir(), "captured.json")
	script := writeScript(t, "cat > "+out+"\n")

	svc, err := New(Params{Channels: []string{"custom"}, OnComplete: true, CustomScript: script}, &capturingLogger{})
	require.NoError(t, err)
	require.NotNil(t, svc)

	svc.Send(context.Background(), passedResult())
	assert.FileExists(t, out)
}
