package generate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Provider identifiers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Backend sends one prompt to a text generation service.
//
// Implementations return *RateLimitError when throttled and *GenerationError
// for every other failure.
type Backend interface {
	Complete(ctx context.Context, p Prompt) (string, error)
	Name() string
}

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

// Providers lists the supported provider ids.
func Providers() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[NormalizeProvider(provider)]
}

// NormalizeProvider maps aliases to provider ids.
func NormalizeProvider(provider string) string {
	switch p := strings.ToLower(strings.TrimSpace(provider)); p {
	case "google":
		return ProviderGemini
	case "claude":
		return ProviderAnthropic
	default:
		return p
	}
}

// NewBackend creates the backend for provider. An empty model selects the
// provider default.
func NewBackend(ctx context.Context, provider, model, apiKey string) (Backend, error) {
	provider = NormalizeProvider(provider)
	if model == "" {
		model = DefaultModel(provider)
	}
	switch provider {
	case ProviderGemini:
		return NewGemini(ctx, model, apiKey)
	case ProviderOpenAI:
		return NewOpenAI(ctx, model, apiKey)
	case ProviderAnthropic:
		return NewAnthropic(ctx, model, apiKey)
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownProvider, provider, strings.Join(Providers(), ", "))
	}
}

var rateLimitText = regexp.MustCompile(`(?i)\b429\b|rate[ _-]?limit|resource[ _]exhausted|too many requests|overloaded`)

// classify turns a transport error into RateLimitError or GenerationError
// based on its text. Used by backends whose SDK errors carry no typed status.
func classify(provider string, err error) error {
	if rateLimitText.MatchString(err.Error()) {
		return &RateLimitError{Provider: provider, Err: err}
	}
	return &GenerationError{Reason: provider + " request failed", Err: err}
}
