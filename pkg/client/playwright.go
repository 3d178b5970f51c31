package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// defaultActionTimeout bounds individual page operations when the caller's
// context carries no deadline.
const defaultActionTimeout = 30 * time.Second

// playwrightEngine drives a local Chromium instance through playwright-go.
// Instructions use a small imperative DSL parsed by parseInstruction.
type playwrightEngine struct {
	cfg     Config
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
}

func newPlaywrightEngine(cfg Config) *playwrightEngine {
	return &playwrightEngine{cfg: cfg}
}

// Start launches the browser, opens a fresh context and navigates to the
// base URL. An unreachable target fails the start - a session that cannot
// see the dashboard is useless to every step that follows.
func (e *playwrightEngine) Start(ctx context.Context) error {
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("run playwright: %w", err)
	}
	e.pw = pw

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(e.cfg.Headless),
	}
	if !e.cfg.Headless && e.cfg.SlowMoMs > 0 {
		opts.SlowMo = playwright.Float(float64(e.cfg.SlowMoMs))
	}

	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	e.browser = browser

	bctx, err := browser.NewContext()
	if err != nil {
		return fmt.Errorf("create browser context: %w", err)
	}
	e.bctx = bctx

	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	e.page = page

	if _, err := page.Goto(e.cfg.BaseURL, playwright.PageGotoOptions{Timeout: e.timeout(ctx)}); err != nil {
		return fmt.Errorf("open %s: %w", e.cfg.BaseURL, err)
	}

	return nil
}

// Act parses and executes one DSL instruction against the live page.
func (e *playwrightEngine) Act(ctx context.Context, instruction string) (string, error) {
	if e.page == nil {
		return "", ErrSessionNotStarted
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cmd, err := parseInstruction(instruction)
	if err != nil {
		return "", err
	}

	timeout := e.timeout(ctx)

	switch cmd.verb {
	case "navigate":
		target := e.resolveURL(cmd.target)
		if _, err := e.page.Goto(target, playwright.PageGotoOptions{Timeout: timeout}); err != nil {
			return "", fmt.Errorf("navigate %s: %w", target, err)
		}
		return "navigated to " + target, nil

	case "click":
		if err := e.page.Locator(cmd.target).Click(playwright.LocatorClickOptions{Timeout: timeout}); err != nil {
			return "", fmt.Errorf("click %s: %w", cmd.target, err)
		}
		return "clicked " + cmd.target, nil

	case "fill":
		if err := e.page.Locator(cmd.target).Fill(cmd.value, playwright.LocatorFillOptions{Timeout: timeout}); err != nil {
			return "", fmt.Errorf("fill %s: %w", cmd.target, err)
		}
		return fmt.Sprintf("filled %s with %q", cmd.target, cmd.value), nil

	case "press":
		if err := e.page.Locator(cmd.target).Press(cmd.value, playwright.LocatorPressOptions{Timeout: timeout}); err != nil {
			return "", fmt.Errorf("press %s on %s: %w", cmd.value, cmd.target, err)
		}
		return fmt.Sprintf("pressed %s on %s", cmd.value, cmd.target), nil

	case "wait":
		return e.wait(cmd.target, timeout)

	case "text":
		text, err := e.page.Locator(cmd.target).TextContent(playwright.LocatorTextContentOptions{Timeout: timeout})
		if err != nil {
			return "", fmt.Errorf("text %s: %w", cmd.target, err)
		}
		return strings.TrimSpace(text), nil

	case "title":
		title, err := e.page.Title()
		if err != nil {
			return "", fmt.Errorf("title: %w", err)
		}
		return title, nil
	}

	return "", fmt.Errorf("unhandled instruction verb: %s", cmd.verb)
}

// wait blocks on a load state (load, domcontentloaded, networkidle) or on a
// selector becoming visible.
func (e *playwrightEngine) wait(target string, timeout *float64) (string, error) {
	var state *playwright.LoadState
	switch target {
	case "load":
		state = playwright.LoadStateLoad
	case "domcontentloaded":
		state = playwright.LoadStateDomcontentloaded
	case "networkidle", "":
		state = playwright.LoadStateNetworkidle
	}

	if state != nil {
		if err := e.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: state, Timeout: timeout}); err != nil {
			return "", fmt.Errorf("wait %s: %w", target, err)
		}
		return "page reached " + string(*state) + " state", nil
	}

	err := e.page.Locator(target).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: timeout,
	})
	if err != nil {
		return "", fmt.Errorf("wait for %s: %w", target, err)
	}
	return target + " is visible", nil
}

func (e *playwrightEngine) Screenshot(_ context.Context, path string) error {
	if e.page == nil {
		return ErrSessionNotStarted
	}
	_, err := e.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("capture page: %w", err)
	}
	return nil
}

// SessionID returns empty - a local browser has no remote session identity.
func (e *playwrightEngine) SessionID() string { return "" }

// Stop tears down page, context, browser and the playwright driver,
// tolerating whatever Start never brought up.
func (e *playwrightEngine) Stop() error {
	if e.page != nil {
		_ = e.page.Close()
		e.page = nil
	}
	if e.bctx != nil {
		_ = e.bctx.Close()
		e.bctx = nil
	}
	if e.browser != nil {
		_ = e.browser.Close()
		e.browser = nil
	}
	if e.pw != nil {
		err := e.pw.Stop()
		e.pw = nil
		if err != nil {
			return fmt.Errorf("stop playwright: %w", err)
		}
	}
	return nil
}

// timeout converts the context deadline to a playwright timeout in ms so a
// step deadline actively bounds the in-flight page operation.
func (e *playwrightEngine) timeout(ctx context.Context) *float64 {
	d := defaultActionTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < d {
			d = remaining
		}
	}
	if d < 0 {
		d = 0
	}
	return playwright.Float(float64(d / time.Millisecond))
}

// resolveURL joins a path-only target with the configured base URL.
func (e *playwrightEngine) resolveURL(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	base, err := url.Parse(e.cfg.BaseURL)
	if err != nil {
		return target
	}
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	return base.ResolveReference(ref).String()
}

// instruction is one parsed DSL command.
type instruction struct {
	verb   string // navigate, click, fill, press, wait, text, title
	target string // url path, selector or load state
	value  string // fill value or key name
}

// parseInstruction splits a DSL instruction into verb, target and value.
// Grammar: "navigate <path>", "click <selector>", "fill <selector> <value...>",
// "press <selector> <key>", "wait [state|selector]", "text <selector>", "title".
func parseInstruction(s string) (instruction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return instruction{}, fmt.Errorf("empty instruction")
	}

	parts := strings.SplitN(s, " ", 2)
	verb := strings.ToLower(parts[0])
	rest := ""
	if len(parts) > 1 {
		rest = strings.TrimSpace(parts[1])
	}

	switch verb {
	case "title":
		return instruction{verb: verb}, nil

	case "wait":
		return instruction{verb: verb, target: rest}, nil

	case "navigate", "click", "text":
		if rest == "" {
			return instruction{}, fmt.Errorf("%s requires a target", verb)
		}
		return instruction{verb: verb, target: rest}, nil

	case "fill", "press":
		sub := strings.SplitN(rest, " ", 2)
		if len(sub) < 2 || sub[0] == "" {
			return instruction{}, fmt.Errorf("%s requires a selector and a value", verb)
		}
		return instruction{verb: verb, target: sub[0], value: strings.TrimSpace(sub[1])}, nil
	}

	return instruction{}, fmt.Errorf("unknown instruction %q (expected navigate|click|fill|press|wait|text|title)", verb)
}
