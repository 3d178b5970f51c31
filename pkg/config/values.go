package config

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// Values holds scalar configuration values.
// Fields ending in *Set track whether that field was explicitly set in a
// config file. This distinguishes explicit false/0 from "not set", enabling
// proper merge behavior where local config can override global config with
// zero values.
type Values struct {
	BaseURL                string
	Engine                 string
	NovaURL                string
	VisionURL              string
	Headless               bool
	HeadlessSet            bool // tracks if headless was explicitly set
	SlowMoMs               int
	SuitesDir              string
	ScreenshotDir          string
	ReportDir              string
	StepTimeoutMs          int
	StepTimeoutMsSet       bool // tracks if step_timeout_ms was explicitly set
	StopOnFailure          bool
	StopOnFailureSet       bool // tracks if stop_on_failure was explicitly set
	ScreenshotOnFailure    bool
	ScreenshotOnFailureSet bool // tracks if screenshot_on_failure was explicitly set
	ScreenshotOnSuccess    bool
	ScreenshotOnSuccessSet bool // tracks if screenshot_on_success was explicitly set
	HTTPRetryCount         int
	HTTPRetryCountSet      bool // tracks if http_retry_count was explicitly set

	NotifyChannels      []string
	NotifyOnError       bool
	NotifyOnComplete    bool
	NotifyTimeoutMs     int
	NotifyTelegramToken string
	NotifyTelegramChat  string
	NotifySlackToken    string
	NotifySlackChannel  string
	NotifyWebhookURLs   []string
	NotifyCustomScript  string
}

// valuesLoader implements config loading with embedded filesystem fallback.
type valuesLoader struct {
	embedFS embed.FS
}

func newValuesLoader(embedFS embed.FS) *valuesLoader {
	return &valuesLoader{embedFS: embedFS}
}

// Load loads values with fallback chain: local → global → embedded.
// localConfigPath and globalConfigPath are full paths to config files.
func (vl *valuesLoader) Load(localConfigPath, globalConfigPath string) (Values, error) {
	embedded, err := vl.parseFromEmbedded()
	if err != nil {
		return Values{}, fmt.Errorf("parse embedded defaults: %w", err)
	}

	global, err := vl.parseFromFile(globalConfigPath)
	if err != nil {
		return Values{}, fmt.Errorf("parse global config: %w", err)
	}

	local, err := vl.parseFromFile(localConfigPath)
	if err != nil {
		return Values{}, fmt.Errorf("parse local config: %w", err)
	}

	// merge: embedded → global → local (local wins)
	result := embedded
	result.mergeFrom(&global)
	result.mergeFrom(&local)

	return result, nil
}

// parseFromFile reads a config file and parses it into Values.
// returns empty Values (not error) if the file doesn't exist or contains
// only comments/whitespace, falling back to embedded defaults.
func (vl *valuesLoader) parseFromFile(path string) (Values, error) {
	if path == "" {
		return Values{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return Values{}, nil
		}
		return Values{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if strings.TrimSpace(stripComments(string(data))) == "" {
		return Values{}, nil
	}

	return vl.parseFromBytes(data)
}

func (vl *valuesLoader) parseFromEmbedded() (Values, error) {
	data, err := vl.embedFS.ReadFile("defaults/config")
	if err != nil {
		return Values{}, fmt.Errorf("read embedded defaults: %w", err)
	}
	return vl.parseFromBytes(data)
}

// parseFromBytes parses configuration from a byte slice into Values.
func (vl *valuesLoader) parseFromBytes(data []byte) (Values, error) {
	// ignoreInlineComment prevents # from being treated as inline comment marker
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return Values{}, fmt.Errorf("parse config: %w", err)
	}

	var values Values
	section := cfg.Section("") // default section, no section header

	if key, err := section.GetKey("base_url"); err == nil {
		values.BaseURL = key.String()
	}
	if key, err := section.GetKey("engine"); err == nil {
		values.Engine = key.String()
	}
	if key, err := section.GetKey("nova_url"); err == nil {
		values.NovaURL = key.String()
	}
	if key, err := section.GetKey("vision_url"); err == nil {
		values.VisionURL = key.String()
	}
	if key, err := section.GetKey("headless"); err == nil {
		values.Headless, _ = key.Bool()
		values.HeadlessSet = true
	}
	if key, err := section.GetKey("slow_mo_ms"); err == nil {
		values.SlowMoMs, _ = key.Int()
	}
	if key, err := section.GetKey("suites_dir"); err == nil {
		values.SuitesDir = key.String()
	}
	if key, err := section.GetKey("screenshot_dir"); err == nil {
		values.ScreenshotDir = key.String()
	}
	if key, err := section.GetKey("report_dir"); err == nil {
		values.ReportDir = key.String()
	}
	if key, err := section.GetKey("step_timeout_ms"); err == nil {
		values.StepTimeoutMs, _ = key.Int()
		values.StepTimeoutMsSet = true
	}
	if key, err := section.GetKey("stop_on_failure"); err == nil {
		values.StopOnFailure, _ = key.Bool()
		values.StopOnFailureSet = true
	}
	if key, err := section.GetKey("screenshot_on_failure"); err == nil {
		values.ScreenshotOnFailure, _ = key.Bool()
		values.ScreenshotOnFailureSet = true
	}
	if key, err := section.GetKey("screenshot_on_success"); err == nil {
		values.ScreenshotOnSuccess, _ = key.Bool()
		values.ScreenshotOnSuccessSet = true
	}
	if key, err := section.GetKey("http_retry_count"); err == nil {
		values.HTTPRetryCount, _ = key.Int()
		values.HTTPRetryCountSet = true
	}

	if key, err := section.GetKey("notify"); err == nil {
		values.NotifyChannels = splitList(key.String())
	}
	if key, err := section.GetKey("notify_on_error"); err == nil {
		values.NotifyOnError, _ = key.Bool()
	}
	if key, err := section.GetKey("notify_on_complete"); err == nil {
		values.NotifyOnComplete, _ = key.Bool()
	}
	if key, err := section.GetKey("notify_timeout_ms"); err == nil {
		values.NotifyTimeoutMs, _ = key.Int()
	}
	if key, err := section.GetKey("notify_telegram_token"); err == nil {
		values.NotifyTelegramToken = key.String()
	}
	if key, err := section.GetKey("notify_telegram_chat"); err == nil {
		values.NotifyTelegramChat = key.String()
	}
	if key, err := section.GetKey("notify_slack_token"); err == nil {
		values.NotifySlackToken = key.String()
	}
	if key, err := section.GetKey("notify_slack_channel"); err == nil {
		values.NotifySlackChannel = key.String()
	}
	if key, err := section.GetKey("notify_webhook_urls"); err == nil {
		values.NotifyWebhookURLs = splitList(key.String())
	}
	if key, err := section.GetKey("notify_custom_script"); err == nil {
		values.NotifyCustomScript = key.String()
	}

	return values, nil
}

// mergeFrom overlays non-zero values from other onto v. *Set fields let an
// explicit false/0 in a more local file override a true/non-zero default.
func (v *Values) mergeFrom(other *Values) {
	if other.BaseURL != "" {
		v.BaseURL = other.BaseURL
	}
	if other.Engine != "" {
		v.Engine = other.Engine
	}
	if other.NovaURL != "" {
		v.NovaURL = other.NovaURL
	}
	if other.VisionURL != "" {
		v.VisionURL = other.VisionURL
	}
	if other.HeadlessSet {
		v.Headless = other.Headless
		v.HeadlessSet = true
	}
	if other.SlowMoMs != 0 {
		v.SlowMoMs = other.SlowMoMs
	}
	if other.SuitesDir != "" {
		v.SuitesDir = other.SuitesDir
	}
	if other.ScreenshotDir != "" {
		v.ScreenshotDir = other.ScreenshotDir
	}
	if other.ReportDir != "" {
		v.ReportDir = other.ReportDir
	}
	if other.StepTimeoutMsSet {
		v.StepTimeoutMs = other.StepTimeoutMs
		v.StepTimeoutMsSet = true
	}
	if other.StopOnFailureSet {
		v.StopOnFailure = other.StopOnFailure
		v.StopOnFailureSet = true
	}
	if other.ScreenshotOnFailureSet {
		v.ScreenshotOnFailure = other.ScreenshotOnFailure
		v.ScreenshotOnFailureSet = true
	}
	if other.ScreenshotOnSuccessSet {
		v.ScreenshotOnSuccess = other.ScreenshotOnSuccess
		v.ScreenshotOnSuccessSet = true
	}
	if other.HTTPRetryCountSet {
		v.HTTPRetryCount = other.HTTPRetryCount
		v.HTTPRetryCountSet = true
	}

	if len(other.NotifyChannels) > 0 {
		v.NotifyChannels = other.NotifyChannels
	}
	if other.NotifyOnError {
		v.NotifyOnError = true
	}
	if other.NotifyOnComplete {
		v.NotifyOnComplete = true
	}
	if other.NotifyTimeoutMs != 0 {
		v.NotifyTimeoutMs = other.NotifyTimeoutMs
	}
	if other.NotifyTelegramToken != "" {
		v.NotifyTelegramToken = other.NotifyTelegramToken
	}
	if other.NotifyTelegramChat != "" {
		v.NotifyTelegramChat = other.NotifyTelegramChat
	}
	if other.NotifySlackToken != "" {
		v.NotifySlackToken = other.NotifySlackToken
	}
	if other.NotifySlackChannel != "" {
		v.NotifySlackChannel = other.NotifySlackChannel
	}
	if len(other.NotifyWebhookURLs) > 0 {
		v.NotifyWebhookURLs = other.NotifyWebhookURLs
	}
	if other.NotifyCustomScript != "" {
		v.NotifyCustomScript = other.NotifyCustomScript
	}
}

// stripComments removes full-line comments, used to detect template files
// that contain nothing but commented-out examples.
func stripComments(s string) string {
	var b strings.Builder
	for line := range strings.SplitSeq(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// splitList splits a comma-separated config value into trimmed entries.
func splitList(s string) []string {
	var res []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
