// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for mle-tui.
//
// Configuration sources (later ones win):
//   - Built-in defaults
//   - ~/.mle-tui/config.toml (or the path given with --config)
//   - .env in the working directory and in ~/.mle-tui
//   - MLE_* environment variables
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/mle-tui/internal/report"
	"github.com/jeranaias/mle-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete mle-tui configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend connection
	Server ServerConfig `toml:"server" json:"server"`

	// Chat session defaults
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Report form defaults and polling
	Report ReportConfig `toml:"report" json:"report"`

	// Terminal presentation
	UI UIConfig `toml:"ui" json:"ui"`
}

// ServerConfig describes how to reach the agent backend.
type ServerConfig struct {
	// BaseURL is the backend origin, e.g. http://localhost:8000
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds report requests; 0 disables the bound. Chat streams
	// are never bounded.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// ChatConfig holds chat session defaults.
type ChatConfig struct {
	// Project tags every chat message.
	Project string `toml:"project" json:"project"`
	// Greeting is the content of the seed message of a fresh session.
	Greeting string `toml:"greeting" json:"greeting"`
}

// ReportConfig holds report form defaults and polling behaviour.
type ReportConfig struct {
	Repo      string `toml:"repo" json:"repo"`
	Username  string `toml:"username" json:"username"`
	Token     string `toml:"token" json:"token"`
	OKR       string `toml:"okr" json:"okr"`
	DateRange string `toml:"date_range" json:"date_range"`
	Recurring string `toml:"recurring" json:"recurring"`
	// AdditionalSources are extra inputs forwarded with every request.
	AdditionalSources []string `toml:"additional_sources" json:"additional_sources"`

	// RefreshAfterSecs is the pause before polling for an accepted job.
	RefreshAfterSecs int `toml:"refresh_after_secs" json:"refresh_after_secs"`
	// PollIntervalSecs is the minimum spacing between polls.
	PollIntervalSecs int `toml:"poll_interval_secs" json:"poll_interval_secs"`
	// MaxPolls bounds how often the latest report is polled after a job.
	MaxPolls int `toml:"max_polls" json:"max_polls"`

	// OutputDir is where saved reports and transcripts go.
	OutputDir string `toml:"output_dir" json:"output_dir"`
}

// UIConfig contains terminal presentation settings.
type UIConfig struct {
	// Theme selects the Markdown style: auto, dark, light or notty.
	Theme string `toml:"theme" json:"theme"`
	// WordWrap is the render width; 0 follows the terminal.
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
	// CodeStyle is the chroma style for code messages.
	CodeStyle string `toml:"code_style" json:"code_style"`
	// RenderCacheSize is the number of rendered documents kept.
	RenderCacheSize int `toml:"render_cache_size" json:"render_cache_size"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			BaseURL:     "http://localhost:8000",
			TimeoutSecs: 0,
		},
		Chat: ChatConfig{
			Project: "test2",
		},
		Report: ReportConfig{
			Recurring:        string(report.DefaultRecurrence),
			RefreshAfterSecs: 5,
			PollIntervalSecs: 10,
			MaxPolls:         6,
			OutputDir:        ".",
		},
		UI: UIConfig{
			Theme:           "auto",
			WordWrap:        0,
			CodeStyle:       "monokai",
			RenderCacheSize: 128,
		},
	}
}

// Timeout returns the report request bound.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// RefreshAfter returns the pause before the first poll.
func (r ReportConfig) RefreshAfter() time.Duration {
	return time.Duration(r.RefreshAfterSecs) * time.Second
}

// PollInterval returns the spacing between polls.
func (r ReportConfig) PollInterval() time.Duration {
	return time.Duration(r.PollIntervalSecs) * time.Second
}

// Request builds a report request pre-filled from the configured defaults.
func (r ReportConfig) Request() report.Request {
	req := report.NewRequest(r.Repo, r.Username, r.Token)
	req.OKR = r.OKR
	req.DateRange = report.DateRange(r.DateRange)
	if r.Recurring != "" {
		req.RecurringReports = report.Recurrence(r.Recurring)
	}
	if len(r.AdditionalSources) > 0 {
		req.AdditionalSources = append([]string{}, r.AdditionalSources...)
	}
	return req
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the mle-tui configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".mle-tui"), nil
}

// ConfigPath returns the path to the default TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the path of the TUI log file.
func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mle-tui.log"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file.
// A missing file is not an error; defaults are used.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from path with full validation.
// A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, statErr)
	}

	dotenv := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		dotenv = append(dotenv, filepath.Join(dir, ".env"))
	}
	if err := LoadDotEnv(dotenv...); err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg and fills in missing values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Missing
// files are skipped and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = defaults.Server.BaseURL
	}
	if cfg.Chat.Project == "" {
		cfg.Chat.Project = defaults.Chat.Project
	}
	if cfg.Report.PollIntervalSecs == 0 {
		cfg.Report.PollIntervalSecs = defaults.Report.PollIntervalSecs
	}
	if cfg.Report.MaxPolls == 0 {
		cfg.Report.MaxPolls = defaults.Report.MaxPolls
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = defaults.Report.OutputDir
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.CodeStyle == "" {
		cfg.UI.CodeStyle = defaults.UI.CodeStyle
	}
	if cfg.UI.RenderCacheSize == 0 {
		cfg.UI.RenderCacheSize = defaults.UI.RenderCacheSize
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path. The file may hold a token, so it is created
// owner read/write only.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# mle-tui configuration file\n")
	buf.WriteString("# Generated by mle-tui - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validThemes = map[string]bool{"auto": true, "dark": true, "light": true, "notty": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Server
	if u, err := url.Parse(c.Server.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Server.BaseURL),
		})
	}
	if c.Server.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "server.timeout_secs", Message: "must not be negative"})
	}

	// Chat
	if strings.TrimSpace(c.Chat.Project) == "" {
		errs = append(errs, ValidationError{Field: "chat.project", Message: "must not be empty"})
	}

	// Report
	if c.Report.DateRange != "" && !report.DateRange(c.Report.DateRange).Valid() {
		errs = append(errs, ValidationError{
			Field:   "report.date_range",
			Message: fmt.Sprintf("invalid value '%s', must be one of: lastDay, lastWeek, lastMonth", c.Report.DateRange),
		})
	}
	if c.Report.Recurring != "" && !report.Recurrence(c.Report.Recurring).Valid() {
		errs = append(errs, ValidationError{
			Field:   "report.recurring",
			Message: fmt.Sprintf("invalid value '%s', must be one of: daily, weekly, monthly, never", c.Report.Recurring),
		})
	}
	if c.Report.RefreshAfterSecs < 0 {
		errs = append(errs, ValidationError{Field: "report.refresh_after_secs", Message: "must not be negative"})
	}
	if c.Report.PollIntervalSecs < 1 {
		errs = append(errs, ValidationError{Field: "report.poll_interval_secs", Message: "must be at least 1"})
	}
	if c.Report.MaxPolls < 1 || c.Report.MaxPolls > 1000 {
		errs = append(errs, ValidationError{Field: "report.max_polls", Message: "must be between 1 and 1000"})
	}

	// UI
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light, notty", c.UI.Theme),
		})
	}
	if c.UI.WordWrap != 0 && (c.UI.WordWrap < 20 || c.UI.WordWrap > 400) {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must be 0 or between 20 and 400"})
	}
	if c.UI.RenderCacheSize < 1 || c.UI.RenderCacheSize > 10000 {
		errs = append(errs, ValidationError{Field: "ui.render_cache_size", Message: "must be between 1 and 10000"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - MLE_BASE_URL: overrides server.base_url
//   - MLE_TIMEOUT: overrides server.timeout_secs
//   - MLE_PROJECT: overrides chat.project
//   - MLE_GITHUB_REPO: overrides report.repo
//   - MLE_GITHUB_USERNAME: overrides report.username
//   - MLE_GITHUB_TOKEN: overrides report.token
//   - MLE_REPORT_DIR: overrides report.output_dir
//   - MLE_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MLE_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("MLE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("MLE_PROJECT"); v != "" {
		c.Chat.Project = v
	}
	if v := os.Getenv("MLE_GITHUB_REPO"); v != "" {
		c.Report.Repo = v
	}
	if v := os.Getenv("MLE_GITHUB_USERNAME"); v != "" {
		c.Report.Username = v
	}
	if v := os.Getenv("MLE_GITHUB_TOKEN"); v != "" {
		c.Report.Token = v
	}
	if v := os.Getenv("MLE_REPORT_DIR"); v != "" {
		c.Report.OutputDir = v
	}
	if v := os.Getenv("MLE_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a value by its TOML key path, e.g. "server.base_url".
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value given as a string by its TOML key path.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected an integer, got '%s'", key, value)
		}
		field.SetInt(int64(n))
	case reflect.Slice:
		var parts []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		field.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("%s: cannot be set from the command line", key)
	}
	return nil
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()

	for i, part := range parts {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("'%s' is not a section", strings.Join(parts[:i], "."))
		}
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown key: %s", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	if v.Kind() == reflect.Struct {
		return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
	}
	return v, nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if strings.EqualFold(t.Field(i).Tag.Get("toml"), name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Keys returns every settable key path in declaration order.
func Keys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := prefix + f.Tag.Get("toml")
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, name+".")
				continue
			}
			keys = append(keys, name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Report.AdditionalSources = append([]string(nil), c.Report.AdditionalSources...)
	return &clone
}

// String returns the configuration as JSON with the token redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Report.Token != "" {
		safe.Report.Token = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
