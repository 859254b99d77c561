package redact

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const placeholder = "[REDACTED]"

// DefaultPaths are files whose whole content is never sent.
var DefaultPaths = []string{"**/.env", "**/.env.*", "**/*.pem", "**/*.key", "**/id_rsa*"}

var secretPatterns = []*regexp.Regexp{
	// Generic API keys
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// AWS secret access keys
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	// Google API keys
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	// Secrets, tokens and passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Slack tokens
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	// Anthropic keys before the broader OpenAI pattern
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{20,}`),
	// Database URLs with inline credentials
	regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://[^\s:/@]+:[^\s@/]+@[^\s]+`),
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result, _ := SecretsCount(text)
	return result
}

// SecretsCount is Secrets that also reports how many matches were replaced.
func SecretsCount(text string) (string, int) {
	n := 0
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllStringFunc(result, func(string) string {
			n++
			return placeholder
		})
	}
	return result, n
}

// ShouldRedactPath reports whether path matches any of the glob patterns.
// Patterns starting with "**/" also match files at the repository root.
func ShouldRedactPath(path string, patterns []string) bool {
	path = strings.ReplaceAll(path, "\\", "/")
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
		if trimmed := strings.TrimPrefix(pattern, "**/"); trimmed != pattern {
			if matched, err := doublestar.Match(trimmed, path); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// Content redacts a file's patch. Files matching redactPaths lose their
// content entirely; everything else is scanned for secrets.
func Content(content, path string, redactPaths []string) string {
	if ShouldRedactPath(path, redactPaths) {
		return placeholder + " (file content redacted by path policy)\n"
	}
	return Secrets(content)
}
