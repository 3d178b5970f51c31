// Package main provides evoqa - end-to-end test execution for the EVO dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/rafaesapata/evo-qa/pkg/client"
	"github.com/rafaesapata/evo-qa/pkg/config"
	"github.com/rafaesapata/evo-qa/pkg/notify"
	"github.com/rafaesapata/evo-qa/pkg/progress"
	"github.com/rafaesapata/evo-qa/pkg/render"
	"github.com/rafaesapata/evo-qa/pkg/report"
	"github.com/rafaesapata/evo-qa/pkg/runner"
	"github.com/rafaesapata/evo-qa/pkg/suite"
)

// opts holds all command-line options.
type opts struct {
	URL           string `short:"u" long:"url" description:"target dashboard URL (overrides config)"`
	Engine        string `short:"e" long:"engine" choice:"playwright" choice:"nova" description:"automation engine"`
	Category      string `long:"category" description:"run only cases in this category"`
	Priority      string `long:"priority" description:"run only cases with this priority"`
	Tag           string `long:"tag" description:"run only cases carrying this tag"`
	StopOnFailure bool   `long:"stop-on-failure" description:"halt remaining steps in a case after a failure"`
	Headed        bool   `long:"headed" description:"run the browser with a visible window"`
	List          bool   `short:"l" long:"list" description:"list test cases and exit without running"`
	Watch         bool   `short:"w" long:"watch" description:"re-run the suite when its files change"`
	ReportDir     string `long:"report-dir" description:"directory for json/html reports (overrides config)"`
	NoColor       bool   `long:"no-color" description:"disable color output"`
	Debug         bool   `short:"d" long:"debug" description:"enable debug logging"`
	Version       bool   `short:"v" long:"version" description:"print version and exit"`

	SuitePath string `positional-arg-name:"suite" description:"suite file or directory (defaults to configured suites dir)"`
}

var revision = "unknown"

// errSuiteFailed signals a completed run with failed or errored cases,
// distinguishing exit code 1 from genuine tool errors.
var errSuiteFailed = errors.New("suite completed with failures")

func main() {
	fmt.Printf("evoqa %s\n", revision)

	var o opts
	parser := flags.NewParser(&o, flags.Default)
	parser.Usage = "[OPTIONS] [suite]"

	args, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if o.Version {
		os.Exit(0)
	}

	// handle positional argument
	if len(args) > 0 {
		o.SuitePath = args[0]
	}

	// setup context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, o); err != nil {
		if errors.Is(err, errSuiteFailed) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o opts) error {
	cfg, err := config.Load("") // empty string uses default location
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(cfg, o)

	suitePath, err := resolveSuitePath(o.SuitePath, cfg.SuitesDir)
	if err != nil {
		return err
	}

	s, err := loadSuite(suitePath)
	if err != nil {
		return err
	}

	filter := suite.Filter{Category: suite.Category(o.Category), Priority: suite.Priority(o.Priority), Tag: o.Tag}
	cases := filter.Apply(s.Cases)
	if len(cases) == 0 {
		return fmt.Errorf("no test cases matched in %s", suitePath)
	}

	if o.List {
		return listCases(s, cases, o.NoColor)
	}

	if o.Watch {
		return watchAndRun(ctx, o, cfg, suitePath)
	}

	return runOnce(ctx, o, cfg, s.Name, cases)
}

// runOnce executes the cases, writes reports and sends notifications.
// returns errSuiteFailed when any case failed or errored.
func runOnce(ctx context.Context, o opts, cfg *config.Config, suiteName string, cases []suite.Case) error {
	log, err := progress.NewLogger(progress.Config{
		SuiteName: suiteName,
		BaseURL:   cfg.BaseURL,
		LogDir:    cfg.ReportDir,
		NoColor:   o.NoColor,
	})
	if err != nil {
		return fmt.Errorf("create progress logger: %w", err)
	}
	defer log.Close()
	log.Print("run log: %s", log.Path())

	notifier, err := notify.New(notifyParams(cfg), log)
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}

	log.Print("suite %s: %d cases against %s (%s engine)", suiteName, len(cases), cfg.BaseURL, cfg.Engine)
	if o.Debug {
		log.Print("config: headless=%v slow_mo=%dms step_timeout=%dms stop_on_failure=%v reports=%s",
			cfg.Headless, cfg.SlowMoMs, cfg.StepTimeoutMs, cfg.StopOnFailure, cfg.ReportDir)
	}

	r := runner.New(runner.Config{
		StopOnFailure:       cfg.StopOnFailure,
		ScreenshotOnFailure: cfg.ScreenshotOnFailure,
		ScreenshotOnSuccess: cfg.ScreenshotOnSuccess,
		DefaultStepTimeout:  time.Duration(cfg.StepTimeoutMs) * time.Millisecond,
	}, log, func() (runner.Actor, error) {
		return client.New(client.Config{
			BaseURL:       cfg.BaseURL,
			Engine:        cfg.Engine,
			NovaURL:       cfg.NovaURL,
			VisionURL:     cfg.VisionURL,
			Headless:      cfg.Headless,
			SlowMoMs:      cfg.SlowMoMs,
			ScreenshotDir: cfg.ScreenshotDir,
			HTTPRetries:   cfg.HTTPRetryCount,
		})
	})

	res := r.Run(ctx, suiteName, cases)

	log.SetPhase(runner.PhaseReport)
	jsonPath, htmlPath, err := writeReports(cfg.ReportDir, res)
	if err != nil {
		return err
	}
	log.Print("reports written: %s, %s", jsonPath, htmlPath)

	report.PrintSummary(os.Stdout, res)

	status := "success"
	if res.HasFailures() {
		status = "failure"
	}
	notifier.Send(ctx, notify.Result{
		Status:     status,
		Suite:      suiteName,
		Target:     cfg.BaseURL,
		Total:      res.Total,
		Passed:     res.Passed,
		Failed:     res.Failed,
		Errored:    res.Errored,
		Skipped:    res.Skipped,
		Duration:   res.Duration.Round(time.Second).String(),
		ReportHTML: htmlPath,
		ReportJSON: jsonPath,
	})

	if res.HasFailures() {
		return errSuiteFailed
	}
	return nil
}

// watchAndRun runs the suite once, then re-runs it whenever suite files change.
// exits only on context cancellation; run failures don't stop the watch.
func watchAndRun(ctx context.Context, o opts, cfg *config.Config, suitePath string) error {
	watchDir := suitePath
	if fi, statErr := os.Stat(suitePath); statErr == nil && !fi.IsDir() {
		watchDir = filepath.Dir(suitePath)
	}

	rerun := func() {
		s, err := loadSuite(suitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reload suite: %v\n", err)
			return
		}
		filter := suite.Filter{Category: suite.Category(o.Category), Priority: suite.Priority(o.Priority), Tag: o.Tag}
		cases := filter.Apply(s.Cases)
		if len(cases) == 0 {
			fmt.Fprintf(os.Stderr, "no test cases matched in %s\n", suitePath)
			return
		}
		if err := runOnce(ctx, o, cfg, s.Name, cases); err != nil && !errors.Is(err, errSuiteFailed) {
			fmt.Fprintf(os.Stderr, "run: %v\n", err)
		}
	}

	rerun()
	fmt.Printf("watching %s for changes, ctrl-c to stop\n", watchDir)
	if err := suite.Watch(ctx, watchDir, rerun); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// applyOverrides folds CLI flags into the loaded config. Flags win over
// config file values.
func applyOverrides(cfg *config.Config, o opts) {
	if o.URL != "" {
		cfg.BaseURL = o.URL
	}
	if o.Engine != "" {
		cfg.Engine = o.Engine
	}
	if o.StopOnFailure {
		cfg.StopOnFailure = true
	}
	if o.Headed {
		cfg.Headless = false
	}
	if o.ReportDir != "" {
		cfg.ReportDir = o.ReportDir
	}
}

// resolveSuitePath picks the suite file or directory to run.
func resolveSuitePath(arg, suitesDir string) (string, error) {
	path := arg
	if path == "" {
		path = suitesDir
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("suite not found: %s", path)
	}
	return path, nil
}

// loadSuite loads a single suite file or merges all suite files in a directory.
func loadSuite(path string) (*suite.Suite, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat suite: %w", err)
	}
	if fi.IsDir() {
		return suite.LoadDir(path)
	}
	return suite.Load(path)
}

// listCases prints the filtered cases as rendered markdown and exits.
func listCases(s *suite.Suite, cases []suite.Case, noColor bool) error {
	listing := &suite.Suite{Name: s.Name, Description: s.Description, Cases: cases}
	out, err := render.Markdown(render.SuiteMarkdown(listing), noColor)
	if err != nil {
		return fmt.Errorf("render suite listing: %w", err)
	}
	fmt.Print(out)
	return nil
}

// writeReports writes the json and html reports into dir, named by the run
// start time so consecutive runs never overwrite each other.
func writeReports(dir string, res *runner.SuiteResult) (jsonPath, htmlPath string, err error) {
	stamp := res.StartTime.Format("20060102-150405")
	jsonPath = filepath.Join(dir, fmt.Sprintf("report-%s.json", stamp))
	htmlPath = filepath.Join(dir, fmt.Sprintf("report-%s.html", stamp))

	if err = report.WriteJSON(res, jsonPath); err != nil {
		return "", "", fmt.Errorf("write json report: %w", err)
	}
	if err = report.WriteHTML(res, htmlPath); err != nil {
		return "", "", fmt.Errorf("write html report: %w", err)
	}
	return jsonPath, htmlPath, nil
}

func notifyParams(cfg *config.Config) notify.Params {
	return notify.Params{
		Channels:      cfg.NotifyChannels,
		OnError:       cfg.NotifyOnError,
		OnComplete:    cfg.NotifyOnComplete,
		TimeoutMs:     cfg.NotifyTimeoutMs,
		TelegramToken: cfg.NotifyTelegramToken,
		TelegramChat:  cfg.NotifyTelegramChat,
		SlackToken:    cfg.NotifySlackToken,
		SlackChannel:  cfg.NotifySlackChannel,
		WebhookURLs:   cfg.NotifyWebhookURLs,
		CustomScript:  cfg.NotifyCustomScript,
	}
}
