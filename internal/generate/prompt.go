package generate

import (
	"fmt"
	"strings"
)

// SystemPrompt fixes the output grammar for every backend.
var SystemPrompt = fmt.Sprintf(`You are a strict code reviewer writing commit messages.
Analyze the git commit shown by the user and write a single Conventional Commit message for it.

Format:
<type>(<optional scope>): <description>

<optional body>

Rules:
1. type is one of: %s.
2. Use the imperative mood and lowercase for the description.
3. Keep the first line at most %d characters.
4. Do not end the first line with a period.
5. Add "!" after the type or scope only for a breaking change.
6. Add a body, separated by a blank line, only when the change is large; wrap it at 72 characters.
7. Return ONLY the commit message. No markdown, no code fences, no quotes, no preamble.`,
	strings.Join(Types, ", "), MaxSummaryLength)

// Prompt is one request to a backend.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// PromptInput is what the user prompt is built from.
type PromptInput struct {
	Diff            string
	OriginalMessage string
	Hint            string
	Scope           string // directory holding most of the change
	Shape           string // one-line size summary
	Root            bool
	Truncated       bool
}

// BuildUserPrompt assembles the per-commit prompt.
func BuildUserPrompt(in PromptInput) string {
	var b strings.Builder

	if in.Root {
		b.WriteString("This is the initial commit of the repository; every file is new.\n")
	}
	if in.Truncated {
		b.WriteString("Some file diffs were truncated to fit; rely on the file list for the full scope.\n")
	}
	if orig := strings.TrimSpace(in.OriginalMessage); orig != "" {
		b.WriteString("The original message was:\n")
		b.WriteString(orig)
		b.WriteString("\nUse it only as context; it may be wrong or uninformative.\n")
	}
	if in.Shape != "" {
		fmt.Fprintf(&b, "Change size: %s.\n", in.Shape)
	}
	if in.Hint != "" {
		fmt.Fprintf(&b, "A heuristic suggests the type %q; override it if the diff disagrees.\n", in.Hint)
	}
	if in.Scope != "" {
		fmt.Fprintf(&b, "Most of the change is in %q; use it as the scope if it names the affected area.\n", in.Scope)
	}
	b.WriteString("\nCOMMIT:\n")
	b.WriteString(in.Diff)
	return b.String()
}
