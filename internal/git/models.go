package git

import (
	"strings"
	"time"
)

// CommitRef identifies a single commit by its full hex hash.
type CommitRef string

// Short returns the abbreviated form used in progress output.
func (r CommitRef) Short() string {
	if len(r) > 7 {
		return string(r[:7])
	}
	return string(r)
}

func (r CommitRef) String() string {
	return string(r)
}

// RangeEntry is one commit of a resolved range.
type RangeEntry struct {
	Ref CommitRef
	// Position is the index of the commit on the first-parent chain, root = 0.
	Position int
	// TipOffset is the number of first-parent steps from the branch tip.
	// It stays valid after earlier entries are rewritten, while Ref does not.
	TipOffset int
}

// CommitRange is an ordered, oldest-first set of commits to rewrite.
type CommitRange struct {
	Spec    string
	Entries []RangeEntry
	// ChainLength is the length of the tip's first-parent chain at resolution time.
	ChainLength int
}

// Len returns the number of commits in the range.
func (r CommitRange) Len() int {
	return len(r.Entries)
}

// Refs returns the original identifiers, oldest first.
func (r CommitRange) Refs() []CommitRef {
	refs := make([]CommitRef, len(r.Entries))
	for i, e := range r.Entries {
		refs[i] = e.Ref
	}
	return refs
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

func (a AuthorInfo) String() string {
	return a.Name + " <" + a.Email + ">"
}

// CommitInfo represents the metadata of a commit shown to the generator.
type CommitInfo struct {
	SHA     CommitRef
	When    time.Time
	Author  AuthorInfo
	Message string
	Parents int
}

// Subject returns the first line of the commit message.
func (c CommitInfo) Subject() string {
	msg := strings.TrimSpace(c.Message)
	if idx := strings.IndexByte(msg, '\n'); idx != -1 {
		return strings.TrimSpace(msg[:idx])
	}
	return msg
}

// IsRoot reports whether the commit has no parent.
func (c CommitInfo) IsRoot() bool {
	return c.Parents == 0
}

// ChangeKind represents the type of change.
type ChangeKind int

const (
	ChangeKindAdded ChangeKind = iota
	ChangeKindModified
	ChangeKindDeleted
	ChangeKindRenamed
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeKindAdded:
		return "added"
	case ChangeKindModified:
		return "modified"
	case ChangeKindDeleted:
		return "deleted"
	case ChangeKindRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileDiff is the diff of one file within a commit.
type FileDiff struct {
	Path         string
	OldPath      string // For renames
	Kind         ChangeKind
	LinesAdded   int
	LinesDeleted int
	Binary       bool
	Patch        string
	// Truncated is set when Patch was shortened to fit the size limits.
	Truncated bool
	// Omitted is set when the file matched the exclude filters; Patch is empty.
	Omitted bool
}

// Churn returns total lines changed (added + deleted).
func (f FileDiff) Churn() int {
	return f.LinesAdded + f.LinesDeleted
}

// DiffPayload is everything the message generator learns about a commit.
type DiffPayload struct {
	Commit CommitInfo
	Files  []FileDiff
}

// Paths returns the paths of all changed files, including omitted ones.
func (p *DiffPayload) Paths() []string {
	paths := make([]string, len(p.Files))
	for i, f := range p.Files {
		paths[i] = f.Path
	}
	return paths
}

// Truncated reports whether any file was shortened or dropped for size.
func (p *DiffPayload) Truncated() bool {
	for _, f := range p.Files {
		if f.Truncated {
			return true
		}
	}
	return false
}

// TotalChurn returns the added plus deleted line count over all files.
func (p *DiffPayload) TotalChurn() int {
	total := 0
	for _, f := range p.Files {
		total += f.Churn()
	}
	return total
}
