// Package client provides the browser automation client used by the test runner.
// A Client owns exactly one live session (local Playwright or remote Nova-style
// automation API) and exposes a small vocabulary of instructed actions.
package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotStarted is returned when an action is attempted before Start or after Stop.
var ErrSessionNotStarted = errors.New("session not started")

// Engine drives one automation session. Implementations: playwrightEngine (local
// browser via playwright-go) and novaEngine (remote instruction-driven API).
type Engine interface {
	Start(ctx context.Context) error
	Act(ctx context.Context, instruction string) (response string, err error)
	Screenshot(ctx context.Context, path string) error
	SessionID() string
	Stop() error
}

// Meta holds diagnostic metadata for one instructed action.
type Meta struct {
	SessionID   string        `json:"session_id,omitempty"`
	Step        int           `json:"step"`
	Instruction string        `json:"instruction"`
	Duration    time.Duration `json:"duration"`
}

// Outcome is the result of one instructed action. Action methods never return
// Go errors - failures are folded into Success:false with Error populated,
// so the runner only inspects and classifies.
type Outcome struct {
	Success    bool           `json:"success"`
	Response   string         `json:"response,omitempty"`
	Parsed     map[string]any `json:"parsed,omitempty"`
	Meta       Meta           `json:"meta"`
	Screenshot string         `json:"screenshot,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Config holds client configuration.
type Config struct {
	BaseURL       string // dashboard URL the session opens on start
	Engine        string // "playwright" (default) or "nova"
	NovaURL       string // remote automation API base URL (nova engine)
	VisionURL     string // LLM vision oracle endpoint, empty disables
	Headless      bool   // run browser headless (playwright engine)
	SlowMoMs      int    // slow down actions for visual observation (playwright engine)
	ScreenshotDir string // directory for captured screenshots
	HTTPRetries   int    // retry count for nova/vision HTTP calls
}

// Client owns one automation session and a per-run screenshot sequence.
// Construct one per test case - nothing here is shared process state.
type Client struct {
	cfg     Config
	engine  Engine
	vision  *Vision
	runID   string
	started bool
	shots   int // screenshot sequence, scoped to this client
	steps   int // action sequence, scoped to this client
}

// New creates a client for the configured engine. The session is not live
// until Start is called.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url required")
	}

	c := &Client{cfg: cfg, runID: uuid.New().String()[:8]}

	switch cfg.Engine {
	case "", "playwright":
		c.engine = newPlaywrightEngine(cfg)
	case "nova":
		if cfg.NovaURL == "" {
			return nil, errors.New("nova engine requires nova url")
		}
		c.engine = newNovaEngine(cfg)
	default:
		return nil, fmt.Errorf("unknown engine: %q", cfg.Engine)
	}

	if cfg.VisionURL != "" {
		c.vision = NewVision(cfg.VisionURL, cfg.HTTPRetries)
	}

	return c, nil
}

// NewWithEngine creates a client with a custom engine (for testing).
func NewWithEngine(cfg Config, engine Engine) *Client {
	return &Client{cfg: cfg, runID: uuid.New().String()[:8], engine: engine}
}

// Start acquires the session resource. Must be called before any action.
// Unlike action methods it returns a real error - a session that cannot
// start is an infrastructure failure, not a failed instruction.
func (c *Client) Start(ctx context.Context) error {
	if c.started {
		return errors.New("session already started")
	}

	if c.cfg.ScreenshotDir != "" {
		if err := os.MkdirAll(c.cfg.ScreenshotDir, 0o750); err != nil {
			return fmt.Errorf("create screenshot dir: %w", err)
		}
	}

	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	c.started = true
	return nil
}

// Stop releases session resources. Safe to call multiple times and after a
// partially failed Start - engines tolerate teardown of what never came up.
func (c *Client) Stop() error {
	c.started = false
	if err := c.engine.Stop(); err != nil {
		return fmt.Errorf("stop session: %w", err)
	}
	return nil
}

// Act sends one instruction to the engine and returns the outcome.
// Never returns a Go error: engine failures come back as Success:false.
func (c *Client) Act(ctx context.Context, instruction string) Outcome {
	c.steps++
	out := Outcome{Meta: Meta{
		SessionID:   c.sessionID(),
		Step:        c.steps,
		Instruction: instruction,
	}}

	if !c.started {
		out.Error = ErrSessionNotStarted.Error()
		return out
	}

	start := time.Now()
	resp, err := c.engine.Act(ctx, instruction)
	out.Meta.Duration = time.Since(start)
	out.Meta.SessionID = c.sessionID()
	out.Response = resp

	if err != nil {
		out.Error = err.Error()
		return out
	}

	out.Success = true
	return out
}

// ActWithSchema runs Act and additionally parses the response as JSON,
// validating it against the expected shape. Parse or validation failure
// flips the outcome to failed while keeping the raw response for diagnostics.
func (c *Client) ActWithSchema(ctx context.Context, instruction string, shape map[string]string) Outcome {
	out := c.Act(ctx, instruction)
	if !out.Success {
		return out
	}

	parsed, err := extractJSON(out.Response)
	if err != nil {
		out.Success = false
		out.Error = fmt.Sprintf("schema: %v", err)
		return out
	}

	if err := validateShape(parsed, shape); err != nil {
		out.Success = false
		out.Error = fmt.Sprintf("schema: %v", err)
		out.Parsed = parsed
		return out
	}

	out.Parsed = parsed
	return out
}

// Verify asks the vision oracle an open-ended question about the current
// visual state. The oracle is best-effort: if it is unconfigured or the call
// fails, the check is assumed to pass so flaky infrastructure never fails a run.
func (c *Client) Verify(ctx context.Context, question string) Outcome {
	c.steps++
	out := Outcome{Meta: Meta{
		SessionID:   c.sessionID(),
		Step:        c.steps,
		Instruction: "verify: " + question,
	}}

	if !c.started {
		out.Error = ErrSessionNotStarted.Error()
		return out
	}

	start := time.Now()
	defer func() { out.Meta.Duration = time.Since(start) }()

	path, err := c.Screenshot("verify")
	if err != nil {
		out.Success = true
		out.Response = fmt.Sprintf("vision check unavailable (screenshot: %v), assuming ok", err)
		return out
	}
	out.Screenshot = path

	if c.vision == nil {
		out.Success = true
		out.Response = "vision oracle not configured, assuming ok"
		return out
	}

	data, err := os.ReadFile(path) //nolint:gosec // path built from configured screenshot dir
	if err != nil {
		out.Success = true
		out.Response = fmt.Sprintf("vision check unavailable (read screenshot: %v), assuming ok", err)
		return out
	}

	res, err := c.vision.Check(ctx, base64.StdEncoding.EncodeToString(data), question)
	if err != nil {
		out.Success = true
		out.Response = fmt.Sprintf("vision check unavailable (%v), assuming ok", err)
		return out
	}

	out.Success = res.Found
	out.Response = res.Details
	if !res.Found {
		out.Error = fmt.Sprintf("vision check failed: %s", res.Details)
	}
	return out
}

// Screenshot captures the current visual state to a uniquely named file under
// the configured directory and returns the path. Fails only when the session
// is not live.
func (c *Client) Screenshot(name string) (string, error) {
	if !c.started {
		return "", ErrSessionNotStarted
	}

	c.shots++
	if name == "" {
		name = "screenshot"
	}
	filename := fmt.Sprintf("%s-%03d-%s.png", c.runID, c.shots, slugify(name))
	path := filepath.Join(c.cfg.ScreenshotDir, filename)

	if err := c.engine.Screenshot(context.Background(), path); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return path, nil
}

// sessionID returns the engine session id, or the local run id when the
// engine has no remote session concept.
func (c *Client) sessionID() string {
	if id := c.engine.SessionID(); id != "" {
		return id
	}
	return c.runID
}

// slugify converts a free-form name into a safe filename fragment.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune('-')
		}
	}
	res := strings.Trim(b.String(), "-")
	if res == "" {
		return "step"
	}
	if len(res) > 60 {
		res = res[:60]
	}
	return res
}
