package aggregation

import (
	"strings"
	"testing"

	"github.com/masmgr/git-bard/internal/git"
)

func payload(files ...git.FileDiff) *git.DiffPayload {
	return &git.DiffPayload{Files: files}
}

func TestChangeShape_TotalChurn(t *testing.T) {
	tests := []struct {
		name     string
		added    int
		deleted  int
		expected int
	}{
		{name: "Both positive", added: 10, deleted: 5, expected: 15},
		{name: "Only added", added: 10, deleted: 0, expected: 10},
		{name: "Both zero", added: 0, deleted: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ChangeShape{LinesAdded: tt.added, LinesDeleted: tt.deleted}
			if got := s.TotalChurn(); got != tt.expected {
				t.Errorf("TotalChurn() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestShape_Counts(t *testing.T) {
	s := Shape(payload(
		git.FileDiff{Path: "internal/git/diff.go", LinesAdded: 10, LinesDeleted: 2},
		git.FileDiff{Path: "internal/git/models.go", LinesAdded: 3},
		git.FileDiff{Path: "cmd/root.go", LinesDeleted: 1},
		git.FileDiff{Path: "README.md", LinesAdded: 1},
	))

	if s.FileCount != 4 {
		t.Errorf("FileCount = %d, expected 4", s.FileCount)
	}
	if s.DirectoryCount != 3 { // internal/git, cmd, root
		t.Errorf("DirectoryCount = %d, expected 3", s.DirectoryCount)
	}
	if s.SubsystemCount != 3 { // internal, cmd, root
		t.Errorf("SubsystemCount = %d, expected 3", s.SubsystemCount)
	}
	if s.LinesAdded != 14 || s.LinesDeleted != 3 {
		t.Errorf("lines = +%d/-%d, expected +14/-3", s.LinesAdded, s.LinesDeleted)
	}
	if s.Scope != "git" {
		t.Errorf("Scope = %q, expected git (15 of 17 lines)", s.Scope)
	}
}

func TestShape_Scope(t *testing.T) {
	tests := []struct {
		name     string
		files    []git.FileDiff
		expected string
	}{
		{
			name:     "Single package",
			files:    []git.FileDiff{{Path: "internal/redact/redact.go", LinesAdded: 5}},
			expected: "redact",
		},
		{
			name: "Evenly split",
			files: []git.FileDiff{
				{Path: "cmd/root.go", LinesAdded: 10},
				{Path: "config/config.go", LinesAdded: 10},
			},
			expected: "",
		},
		{
			name:     "Generic directories only",
			files:    []git.FileDiff{{Path: "src/main/App.java", LinesAdded: 5}},
			expected: "",
		},
		{
			name:     "Generic parent skipped",
			files:    []git.FileDiff{{Path: "pkg/auth/token.go", LinesAdded: 5}},
			expected: "auth",
		},
		{
			name:     "Root files",
			files:    []git.FileDiff{{Path: "go.mod", LinesAdded: 1}, {Path: "go.sum", LinesAdded: 30}},
			expected: "",
		},
		{
			name:     "Unusable name",
			files:    []git.FileDiff{{Path: "My Module/x.txt", LinesAdded: 1}},
			expected: "",
		},
		{
			name:     "Case folded",
			files:    []git.FileDiff{{Path: "Docs/guide.md", LinesAdded: 3}},
			expected: "docs",
		},
		{
			name:     "Rename without churn",
			files:    []git.FileDiff{{Path: "api/v2.go", OldPath: "api/v1.go", Kind: git.ChangeKindRenamed}},
			expected: "api",
		},
		{name: "No files", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shape(payload(tt.files...)).Scope; got != tt.expected {
				t.Errorf("Scope = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestChangeShape_Summary(t *testing.T) {
	single := Shape(payload(git.FileDiff{Path: "cmd/root.go", LinesAdded: 4, LinesDeleted: 1}))
	if got := single.Summary(); got != "1 file(s) in 1 directory, +4/-1 lines, single file" {
		t.Errorf("Summary() = %q", got)
	}

	spread := Shape(payload(
		git.FileDiff{Path: "a/x.go", LinesAdded: 5},
		git.FileDiff{Path: "b/y.go", LinesAdded: 5},
	))
	if got := spread.Summary(); !strings.Contains(got, "2 directories") || !strings.Contains(got, "spread across directories") {
		t.Errorf("Summary() = %q", got)
	}
	if got := spread.Summary(); !strings.HasSuffix(got, "touching 2 top-level areas") {
		t.Errorf("Summary() = %q, expected subsystem count", got)
	}
}

func TestChangeShape_Spread(t *testing.T) {
	tests := []struct {
		name     string
		files    []git.FileDiff
		expected string
	}{
		{
			name:     "Single file",
			files:    []git.FileDiff{{Path: "cmd/root.go", LinesAdded: 9}},
			expected: "single file",
		},
		{
			name: "Even across directories",
			files: []git.FileDiff{
				{Path: "cmd/root.go", LinesAdded: 10},
				{Path: "config/config.go", LinesAdded: 10},
			},
			expected: "spread across directories",
		},
		{
			name: "Even within one directory",
			files: []git.FileDiff{
				{Path: "internal/git/diff.go", LinesAdded: 10},
				{Path: "internal/git/models.go", LinesAdded: 10},
			},
			expected: "spread across files",
		},
		{
			name: "One directory dominates",
			files: []git.FileDiff{
				{Path: "internal/git/diff.go", LinesAdded: 100},
				{Path: "README.md", LinesAdded: 1},
			},
			expected: "focused on a few files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Shape(payload(tt.files...))
			if got := s.Spread(); got != tt.expected {
				t.Errorf("Spread() = %q, expected %q (dir entropy %.2f, file entropy %.2f)",
					got, tt.expected, s.DirectoryEntropy, s.FileEntropy)
			}
		})
	}
}

func TestExtractPathComponents(t *testing.T) {
	tests := []struct {
		name              string
		path              string
		expectedDir       string
		expectedSubsystem string
	}{
		{name: "Normal path", path: "src/pkg/main.go", expectedDir: "src/pkg", expectedSubsystem: "src"},
		{name: "Root file", path: "main.go", expectedDir: "", expectedSubsystem: ""},
		{name: "Single directory", path: "cmd/app.go", expectedDir: "cmd", expectedSubsystem: "cmd"},
		{name: "Deep nesting", path: "a/b/c/d/e.go", expectedDir: "a/b/c/d", expectedSubsystem: "a"},
		{name: "Windows path", path: "src\\pkg\\main.go", expectedDir: "src/pkg", expectedSubsystem: "src"},
		{name: "Empty path", path: "", expectedDir: "", expectedSubsystem: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, subsystem := extractPathComponents(tt.path)
			if dir != tt.expectedDir {
				t.Errorf("extractPathComponents(%q) dir = %q, expected %q", tt.path, dir, tt.expectedDir)
			}
			if subsystem != tt.expectedSubsystem {
				t.Errorf("extractPathComponents(%q) subsystem = %q, expected %q", tt.path, subsystem, tt.expectedSubsystem)
			}
		})
	}
}
