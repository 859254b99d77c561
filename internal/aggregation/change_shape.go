// Package aggregation summarizes the files of one commit: how many, where,
// and how concentrated the churn is.
package aggregation

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/masmgr/git-bard/internal/entropy"
	"github.com/masmgr/git-bard/internal/git"
)

const (
	// scopeShare is the share of churn one directory must hold to be
	// suggested as the scope.
	scopeShare = 0.75
	// focusedEntropy is the entropy below which churn counts as concentrated.
	focusedEntropy = 0.5
)

// Directory names too generic to be a scope on their own.
var genericDirs = map[string]bool{
	"src": true, "lib": true, "pkg": true, "internal": true, "app": true,
	"source": true, "main": true, "java": true, "go": true,
}

var scopeToken = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ChangeShape holds the diffusion and size of one commit.
type ChangeShape struct {
	FileCount        int
	DirectoryCount   int
	SubsystemCount   int // top-level directories; root files count as one
	LinesAdded       int
	LinesDeleted     int
	FileEntropy      float64 // normalized entropy of churn across files
	DirectoryEntropy float64 // normalized entropy of churn across directories
	Scope            string  // suggested scope, empty when the change is spread out
}

// TotalChurn returns the total lines changed (added + deleted).
func (s ChangeShape) TotalChurn() int {
	return s.LinesAdded + s.LinesDeleted
}

// Spread describes the entropy in words. Even churn across directories
// outranks even churn across files.
func (s ChangeShape) Spread() string {
	switch {
	case s.FileCount <= 1:
		return "single file"
	case s.DirectoryCount > 1 && s.DirectoryEntropy >= focusedEntropy:
		return "spread across directories"
	case s.FileEntropy < focusedEntropy:
		return "focused on a few files"
	default:
		return "spread across files"
	}
}

// Summary renders the shape as one line for the prompt.
func (s ChangeShape) Summary() string {
	line := fmt.Sprintf("%d file(s) in %d director%s, +%d/-%d lines, %s",
		s.FileCount, s.DirectoryCount, plural(s.DirectoryCount, "y", "ies"),
		s.LinesAdded, s.LinesDeleted, s.Spread())
	if s.SubsystemCount > 1 {
		line += fmt.Sprintf(", touching %d top-level areas", s.SubsystemCount)
	}
	return line
}

// Shape computes the ChangeShape of a diff payload. Files withheld by a path
// filter still count; their stats are known.
func Shape(p *git.DiffPayload) ChangeShape {
	directories := make(map[string]int)
	subsystems := make(map[string]struct{})
	var added, deleted int

	for _, f := range p.Files {
		added += f.LinesAdded
		deleted += f.LinesDeleted

		dir, subsystem := extractPathComponents(f.Path)
		directories[strings.ToLower(dir)] += churnWeight(f)
		subsystems[strings.ToLower(subsystem)] = struct{}{}
	}

	return ChangeShape{
		FileCount:        len(p.Files),
		DirectoryCount:   len(directories),
		SubsystemCount:   len(subsystems),
		LinesAdded:       added,
		LinesDeleted:     deleted,
		FileEntropy:      entropy.OfFiles(p.Files),
		DirectoryEntropy: entropy.OfGroups(directories),
		Scope:            suggestScope(directories),
	}
}

// churnWeight counts a pure rename or mode change as one line so it still
// pulls weight toward its directory.
func churnWeight(f git.FileDiff) int {
	if c := f.Churn(); c > 0 {
		return c
	}
	return 1
}

// suggestScope returns the last component of the directory holding most of
// the churn, when it holds enough of it and makes a usable scope.
func suggestScope(directories map[string]int) string {
	if len(directories) == 0 {
		return ""
	}

	total := 0
	dirs := make([]string, 0, len(directories))
	for d, w := range directories {
		total += w
		dirs = append(dirs, d)
	}
	// Deterministic choice between equal weights.
	sort.Strings(dirs)

	best := dirs[0]
	for _, d := range dirs[1:] {
		if directories[d] > directories[best] {
			best = d
		}
	}
	if best == "" || float64(directories[best]) < scopeShare*float64(total) {
		return ""
	}

	// Walk up past generic names: internal/git -> git, src/main -> "".
	for d := best; d != "." && d != "/" && d != ""; d = path.Dir(d) {
		name := path.Base(d)
		if genericDirs[name] {
			continue
		}
		if scopeToken.MatchString(name) {
			return name
		}
		return ""
	}
	return ""
}

// extractPathComponents extracts directory path and subsystem from a file path.
// Subsystem is the first directory component (e.g., "src", "tests", "docs").
func extractPathComponents(p string) (directory, subsystem string) {
	if p == "" {
		return "", ""
	}

	normalized := strings.ReplaceAll(p, "\\", "/")

	lastSlash := strings.LastIndex(normalized, "/")
	if lastSlash <= 0 {
		// File is in root directory
		return "", ""
	}

	directory = normalized[:lastSlash]
	subsystem, _, _ = strings.Cut(directory, "/")
	return directory, subsystem
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
