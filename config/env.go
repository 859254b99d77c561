package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/masmgr/git-bard/internal/generate"
	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service holding API keys, one entry per
// provider id.
const KeyringService = "git-bard"

// Environment variables read by ApplyEnv.
const (
	EnvProvider = "GIT_BARD_PROVIDER"
	EnvModel    = "GIT_BARD_MODEL"
)

// ErrMissingCredential is returned when no API key is configured for the
// selected provider.
var ErrMissingCredential = errors.New("missing API credential")

// credentialEnv lists the variables checked per provider, in order.
var credentialEnv = map[string][]string{
	generate.ProviderGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	generate.ProviderOpenAI:    {"OPENAI_API_KEY"},
	generate.ProviderAnthropic: {"ANTHROPIC_API_KEY"},
}

// CredentialEnv returns the environment variables that can hold the key for
// provider.
func CredentialEnv(provider string) []string {
	return credentialEnv[generate.NormalizeProvider(provider)]
}

// SetProvider switches the generation provider. A model configured for a
// different provider is dropped so the new provider's default applies.
func (c *Config) SetProvider(provider string) {
	if generate.NormalizeProvider(provider) != generate.NormalizeProvider(c.Generation.Provider) {
		c.Generation.Model = ""
	}
	c.Generation.Provider = provider
}

// ApplyEnv overrides the provider and model from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvProvider)); v != "" {
		c.SetProvider(v)
	}
	if v := strings.TrimSpace(getenv(EnvModel)); v != "" {
		c.Generation.Model = v
	}
}

// LoadDotEnv loads repoPath/.env into the process environment. Variables
// that are already set keep their values. A missing file is not an error.
func LoadDotEnv(repoPath string) error {
	path := filepath.Join(repoPath, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// KeyringGet matches keyring.Get.
type KeyringGet func(service, user string) (string, error)

// SystemKeyring reads from the OS keyring.
func SystemKeyring(service, user string) (string, error) {
	return keyring.Get(service, user)
}

// ResolveAPIKey finds the API key for provider: the provider's environment
// variables first, then the OS keyring. A nil keyringGet skips the keyring.
func ResolveAPIKey(provider string, getenv func(string) string, keyringGet KeyringGet) (string, error) {
	provider = generate.NormalizeProvider(provider)
	vars, ok := credentialEnv[provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", generate.ErrUnknownProvider, provider)
	}
	for _, name := range vars {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v, nil
		}
	}

	if keyringGet != nil {
		v, err := keyringGet(KeyringService, provider)
		switch {
		case err == nil && strings.TrimSpace(v) != "":
			return strings.TrimSpace(v), nil
		case err != nil && !errors.Is(err, keyring.ErrNotFound):
			return "", fmt.Errorf("%w for %s: set %s (keyring lookup failed: %v)",
				ErrMissingCredential, provider, strings.Join(vars, " or "), err)
		}
	}

	return "", fmt.Errorf("%w for %s: set %s or store it in the OS keyring (service %q, user %q)",
		ErrMissingCredential, provider, strings.Join(vars, " or "), KeyringService, provider)
}
