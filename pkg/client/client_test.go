package client

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine is an in-memory Engine for exercising the client without a browser.
type fakeEngine struct {
	response  string
	actErr    error
	actCalls  []string
	shotErr   error
	id        string
	startErr  error
	stopCount int
}

func (f *fakeEngine) Start(context.Context) error { return f.startErr }

func (f *fakeEngine) Act(_ context.Context, instruction string) (string, error) {
	f.actCalls = append(f.actCalls, instruction)
	return f.response, f.actErr
}

func (f *fakeEngine) Screenshot(_ context.Context, path string) error {
	if f.shotErr != nil {
		return f.shotErr
	}
	return os.WriteFile(path, []byte("png"), 0o600)
}

func (f *fakeEngine) SessionID() string { return f.id }
func (f *fakeEngine) Stop() error       { f.stopCount++; return nil }

func TestNew(t *testing.T) {
	t.Run("requires base url", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base url")
	})

	t.Run("defaults to playwright engine", func(t *testing.T) {
		c, err := New(Config{BaseURL: "https://evo.example.com"})
		require.NoError(t, err)
		assert.NotNil(t, c.engine)
	})

	t.Run("nova engine requires nova url", func(t *testing.T) {
		_, err := New(Config{BaseURL: "https://evo.example.com", Engine: "nova"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nova url")
	})

	t.Run("rejects unknown engine", func(t *testing.T) {
		_, err := New(Config{BaseURL: "https://evo.example.com", Engine: "selenium"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown engine")
	})

	t.Run("vision enabled only when configured", func(t *testing.T) {
		c, err := New(Config{BaseURL: "https://evo.example.com"})
		require.NoError(t, err)
		assert.Nil(t, c.vision)

		c, err = New(Config{BaseURL: "https://evo.example.com", VisionURL: "https://vision.example.com/check"})
		require.NoError(t, err)
		assert.NotNil(t, c.vision)
	})
}

func TestClient_Act(t *testing.T) {
	t.Run("fails before start without a go error", func(t *testing.T) {
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, &fakeEngine{})
		out := c.Act(context.Background(), "click login")
		assert.False(t, out.Success)
		assert.Equal(t, ErrSessionNotStarted.Error(), out.Error)
		assert.Equal(t, 1, out.Meta.Step)
	})

	t.Run("successful action carries response and metadata", func(t *testing.T) {
		eng := &fakeEngine{response: "clicked", id: "sess-42"}
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, eng)
		require.NoError(t, c.Start(context.Background()))

		out := c.Act(context.Background(), "click login")
		assert.True(t, out.Success)
		assert.Equal(t, "clicked", out.Response)
		assert.Empty(t, out.Error)
		assert.Equal(t, "sess-42", out.Meta.SessionID)
		assert.Equal(t, "click login", out.Meta.Instruction)
		assert.Equal(t, []string{"click login"}, eng.actCalls)
	})

	t.Run("engine error folds into the outcome", func(t *testing.T) {
		eng := &fakeEngine{actErr: errors.New("element not found: #login")}
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, eng)
		require.NoError(t, c.Start(context.Background()))

		out := c.Act(context.Background(), "click #login")
		assert.False(t, out.Success)
		assert.Contains(t, out.Error, "element not found")
	})

	t.Run("step counter increments across actions", func(t *testing.T) {
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, &fakeEngine{})
		require.NoError(t, c.Start(context.Background()))

		first := c.Act(context.Background(), "one")
		second := c.Act(context.Background(), "two")
		assert.Equal(t, 1, first.Meta.Step)
		assert.Equal(t, 2, second.Meta.Step)
	})
}

func TestClient_ActWithSchema(t *testing.T) {
	shape := map[string]string{"total": "number", "items": "array"}

	t.Run("valid json matching shape", func(t *testing.T) {
		eng := &fakeEngine{response: `the api returned {"total": 3, "items": [1, 2, 3]}`}
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, eng)
		require.NoError(t, c.Start(context.Background()))

		out := c.ActWithSchema(context.Background(), "fetch costs", shape)
		assert.True(t, out.Success)
		require.NotNil(t, out.Parsed)
		assert.InDelta(t, 3.0, out.Parsed["total"], 0.001)
	})

	t.Run("response without json fails", func(t *testing.T) {
		eng := &fakeEngine{response: "no structured data here"}
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, eng)
		require.NoError(t, c.Start(context.Background()))

		out := c.ActWithSchema(context.Background(), "fetch costs", shape)
		assert.False(t, out.Success)
		assert.Contains(t, out.Error, "schema:")
		assert.Equal(t, "no structured data here", out.Response) // raw response kept for diagnostics
	})

	t.Run("shape mismatch fails and keeps parsed data", func(t *testing.T) {
		eng := &fakeEngine{response: `{"total": "three", "items": []}`}
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, eng)
		require.NoError(t, c.Start(context.Background()))

		out := c.ActWithSchema(context.Background(), "fetch costs", shape)
		assert.False(t, out.Success)
		assert.Contains(t, out.Error, "total")
		assert.NotNil(t, out.Parsed)
	})

	t.Run("engine failure short-circuits validation", func(t *testing.T) {
		eng := &fakeEngine{actErr: errors.New("timeout")}
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, eng)
		require.NoError(t, c.Start(context.Background()))

		out := c.ActWithSchema(context.Background(), "fetch costs", shape)
		assert.False(t, out.Success)
		assert.Contains(t, out.Error, "timeout")
		assert.Nil(t, out.Parsed)
	})
}

func TestClient_Verify(t *testing.T) {
	t.Run("without vision oracle assumes ok", func(t *testing.T) {
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com", ScreenshotDir: t.TempDir()}, &fakeEngine{})
		require.NoError(t, c.Start(context.Background()))

		out := c.Verify(context.Background(), "is the dashboard visible?")
		assert.True(t, out.Success)
		assert.Contains(t, out.Response, "not configured")
		assert.NotEmpty(t, out.Screenshot)
	})

	t.Run("screenshot failure still assumes ok", func(t *testing.T) {
		eng := &fakeEngine{shotErr: errors.New("page gone")}
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com", ScreenshotDir: t.TempDir()}, eng)
		require.NoError(t, c.Start(context.Background()))

		out := c.Verify(context.Background(), "is the dashboard visible?")
		assert.True(t, out.Success)
		assert.Contains(t, out.Response, "assuming ok")
	})

	t.Run("fails before start", func(t *testing.T) {
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, &fakeEngine{})
		out := c.Verify(context.Background(), "anything?")
		assert.False(t, out.Success)
		assert.Equal(t, ErrSessionNotStarted.Error(), out.Error)
	})
}

func TestClient_Screenshot(t *testing.T) {
	t.Run("errors before start", func(t *testing.T) {
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, &fakeEngine{})
		_, err := c.Screenshot("login page")
		require.ErrorIs(t, err, ErrSessionNotStarted)
	})

	t.Run("names files by sequence and slug", func(t *testing.T) {
		dir := t.TempDir()
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com", ScreenshotDir: dir}, &fakeEngine{})
		require.NoError(t, c.Start(context.Background()))

		first, err := c.Screenshot("Login Page!")
		require.NoError(t, err)
		second, err := c.Screenshot("")
		require.NoError(t, err)

		assert.Contains(t, first, "-001-login-page.png")
		assert.Contains(t, second, "-002-screenshot.png")
		assert.FileExists(t, first)
		assert.FileExists(t, second)
	})
}

func TestClient_StartStop(t *testing.T) {
	t.Run("double start rejected", func(t *testing.T) {
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, &fakeEngine{})
		require.NoError(t, c.Start(context.Background()))
		require.Error(t, c.Start(context.Background()))
	})

	t.Run("start failure propagates", func(t *testing.T) {
		eng := &fakeEngine{startErr: errors.New("browser missing")}
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, eng)
		err := c.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start session")
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		eng := &fakeEngine{}
		c := NewWithEngine(Config{BaseURL: "https://evo.example.com"}, eng)
		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.Stop())
		require.NoError(t, c.Stop())
		assert.Equal(t, 2, eng.stopCount)

		out := c.Act(context.Background(), "click")
		assert.False(t, out.Success) // actions after stop fail like before start
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "login", "login"},
		{"spaces to dashes", "login page check", "login-page-check"},
		{"mixed case and punctuation", "Check TOTAL: $42!", "check-total-42"},
		{"empty falls back", "!!!", "step"},
		{"trims surrounding dashes", " -login- ", "login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}
