package generate

import (
	"testing"

	"github.com/masmgr/git-bard/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUserPrompt(t *testing.T) {
	tests := []struct {
		name     string
		in       PromptInput
		contains []string
		excludes []string
	}{
		{
			name:     "Minimal",
			in:       PromptInput{Diff: "diff --git a/x b/x"},
			contains: []string{"COMMIT:\ndiff --git a/x b/x"},
			excludes: []string{"initial commit", "original message", "heuristic", "scope", "truncated"},
		},
		{
			name:     "Root commit",
			in:       PromptInput{Diff: "d", Root: true},
			contains: []string{"initial commit"},
		},
		{
			name:     "Truncated",
			in:       PromptInput{Diff: "d", Truncated: true},
			contains: []string{"truncated"},
		},
		{
			name:     "Blank original message",
			in:       PromptInput{Diff: "d", OriginalMessage: "  \n"},
			excludes: []string{"original message"},
		},
		{
			name: "All context",
			in: PromptInput{
				Diff:            "d",
				OriginalMessage: "wip\n",
				Hint:            "feat",
				Scope:           "redact",
				Shape:           "2 file(s) in 1 directory, +3/-0 lines, focused on a few files",
			},
			contains: []string{
				"The original message was:\nwip\n",
				`suggests the type "feat"`,
				`Most of the change is in "redact"`,
				"Change size: 2 file(s) in 1 directory",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildUserPrompt(tt.in)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestGenerator_PromptCarriesScope(t *testing.T) {
	backend := NewScriptedBackend()
	g := New(backend, nil, DefaultOptions())
	p := &git.DiffPayload{
		Commit: git.CommitInfo{SHA: "0123456789abcdef0123456789abcdef01234567", Message: "update", Parents: 1},
		Files: []git.FileDiff{
			{Path: "internal/redact/redact.go", Kind: git.ChangeKindModified, LinesAdded: 20, Patch: "diff --git a/internal/redact/redact.go b/internal/redact/redact.go\n+x\n"},
			{Path: "go.mod", Kind: git.ChangeKindModified, LinesAdded: 1, Patch: "diff --git a/go.mod b/go.mod\n+y\n"},
		},
	}

	prompt := g.BuildPrompt(p)

	assert.Contains(t, prompt.User, `Most of the change is in "redact"`)
	assert.Contains(t, prompt.User, "Change size: 2 file(s) in 2 directories, +21/-0 lines")
	assert.NotContains(t, prompt.User, "heuristic", "nil hinter disables type hints")
	require.Equal(t, DefaultOptions().MaxTokens, prompt.MaxTokens)
}
