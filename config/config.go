package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/masmgr/git-bard/internal/apply"
	"github.com/masmgr/git-bard/internal/generate"
	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/hint"
	"github.com/masmgr/git-bard/internal/logger"
	"github.com/masmgr/git-bard/internal/redact"
)

// FileName is the configuration file looked up in the repository and in the
// home directory.
const FileName = ".git-bard.json"

// Config is the root configuration structure.
type Config struct {
	Generation GenerationConfig `json:"generation"`
	Retry      RetryConfig      `json:"retry"`
	Diff       DiffConfig       `json:"diff"`
	Rewrite    RewriteConfig    `json:"rewrite"`
	Hints      HintConfig       `json:"hints"`
	Filters    FilterConfig     `json:"filters"`
	Redact     RedactConfig     `json:"redact"`
	Log        logger.LogConfig `json:"log"`
}

// GenerationConfig selects the backend and shapes each request.
type GenerationConfig struct {
	Provider    string   `json:"provider"` // gemini, openai or anthropic
	Model       string   `json:"model"`    // empty selects the provider default
	Timeout     Duration `json:"timeout"`  // per request
	MaxTokens   int      `json:"maxTokens"`
	Temperature float32  `json:"temperature"`
}

// RetryConfig is the backoff applied to rate-limited requests.
type RetryConfig struct {
	Attempts int      `json:"attempts"` // total calls, including the first
	Base     Duration `json:"base"`
	Max      Duration `json:"max"`
	Factor   float64  `json:"factor"`
}

// DiffConfig bounds the diff text sent per commit.
type DiffConfig struct {
	MaxFileBytes  int `json:"maxFileBytes"`
	MaxTotalBytes int `json:"maxTotalBytes"`
}

// RewriteConfig controls how messages are applied.
type RewriteConfig struct {
	Applier           string   `json:"applier"`           // cmsg or native
	Delay             Duration `json:"delay"`             // pause between commits
	RequestsPerMinute int      `json:"requestsPerMinute"` // 0 means unlimited
	CmsgCommand       string   `json:"cmsgCommand"`       // executable for the cmsg applier
}

// HintConfig holds the commit type hint rules.
type HintConfig struct {
	Enabled  bool                `json:"enabled"`
	Patterns map[string][]string `json:"patterns"` // type -> message regexps
	Paths    map[string][]string `json:"paths"`    // type -> path globs
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// RedactConfig lists files whose content never leaves the machine.
type RedactConfig struct {
	Paths []string `json:"paths"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	gen := generate.DefaultOptions()
	return &Config{
		Generation: GenerationConfig{
			Provider:    generate.ProviderGemini,
			Timeout:     Duration(gen.Timeout),
			MaxTokens:   gen.MaxTokens,
			Temperature: gen.Temperature,
		},
		Retry: RetryConfig{
			Attempts: gen.Backoff.Attempts,
			Base:     Duration(gen.Backoff.Base),
			Max:      Duration(gen.Backoff.Max),
			Factor:   gen.Backoff.Factor,
		},
		Diff: DiffConfig{
			MaxFileBytes:  git.DefaultMaxFileBytes,
			MaxTotalBytes: git.DefaultMaxTotalBytes,
		},
		Rewrite: RewriteConfig{
			Applier:     apply.NameCmsg,
			Delay:       Duration(defaultDelay),
			CmsgCommand: apply.NameCmsg,
		},
		Hints: HintConfig{
			Enabled:  true,
			Patterns: hint.DefaultPatterns(),
			Paths:    hint.DefaultPathRules(),
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Redact: RedactConfig{
			Paths: append([]string(nil), redact.DefaultPaths...),
		},
		Log: logger.DefaultLogConfig(),
	}
}

// Validate checks values that would otherwise fail late in a run.
func (c *Config) Validate() error {
	provider := generate.NormalizeProvider(c.Generation.Provider)
	if generate.DefaultModel(provider) == "" {
		return fmt.Errorf("%w: %q (expected one of %s)", generate.ErrUnknownProvider, c.Generation.Provider, strings.Join(generate.Providers(), ", "))
	}
	if c.Generation.Timeout < 0 {
		return fmt.Errorf("generation.timeout must not be negative")
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature %.2f out of range [0, 2]", c.Generation.Temperature)
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1, got %d", c.Retry.Attempts)
	}
	if c.Diff.MaxFileBytes < 0 || c.Diff.MaxTotalBytes < 0 {
		return fmt.Errorf("diff limits must not be negative")
	}
	if c.Rewrite.Delay < 0 {
		return fmt.Errorf("rewrite.delay must not be negative")
	}
	if c.Rewrite.RequestsPerMinute < 0 {
		return fmt.Errorf("rewrite.requestsPerMinute must not be negative")
	}
	switch strings.ToLower(c.Rewrite.Applier) {
	case "", apply.NameCmsg, apply.NameNative:
	default:
		return fmt.Errorf("unknown applier %q (expected %s)", c.Rewrite.Applier, strings.Join(apply.Names(), " or "))
	}
	return c.Log.Validate()
}

// GeneratorOptions converts the generation settings for generate.New.
func (c *Config) GeneratorOptions() generate.Options {
	return generate.Options{
		Timeout: c.Generation.Timeout.Std(),
		Backoff: generate.Backoff{
			Attempts: c.Retry.Attempts,
			Base:     c.Retry.Base.Std(),
			Max:      c.Retry.Max.Std(),
			Factor:   c.Retry.Factor,
		},
		RedactPaths: c.Redact.Paths,
		MaxTokens:   c.Generation.MaxTokens,
		Temperature: c.Generation.Temperature,
	}
}

// DiffOptions converts the diff and filter settings for the extractor.
func (c *Config) DiffOptions() git.DiffOptions {
	return git.DiffOptions{
		MaxFileBytes:  c.Diff.MaxFileBytes,
		MaxTotalBytes: c.Diff.MaxTotalBytes,
		Include:       c.Filters.Include,
		Exclude:       c.Filters.Exclude,
	}
}

// Hinter builds the type hinter, or returns nil when hints are disabled.
func (c *Config) Hinter() (*hint.Hinter, error) {
	if !c.Hints.Enabled {
		return nil, nil
	}
	h, err := hint.New(c.Hints.Patterns, c.Hints.Paths)
	if err != nil {
		return nil, fmt.Errorf("invalid hint pattern: %w", err)
	}
	return h, nil
}

// LoadConfig loads configuration from a file, merging with defaults. An
// empty path searches repoPath, then the home directory.
func LoadConfig(path, repoPath string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{filepath.Join(repoPath, FileName)}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, FileName))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, FileName))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}
