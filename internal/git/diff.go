package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

const (
	// DefaultMaxFileBytes bounds the patch text kept per file.
	DefaultMaxFileBytes = 8000
	// DefaultMaxTotalBytes bounds the patch text kept per commit.
	DefaultMaxTotalBytes = 50000

	truncationMarker = "\n... [diff truncated]\n"
	// minUsefulPatch is the smallest remainder worth spending on a patch once
	// the commit budget is nearly exhausted.
	minUsefulPatch = 256
)

// DiffOptions configures diff extraction.
type DiffOptions struct {
	MaxFileBytes  int      // 0 disables the per-file limit
	MaxTotalBytes int      // 0 disables the per-commit limit
	Include       []string // Glob patterns to include
	Exclude       []string // Glob patterns to exclude
}

// DiffExtractor produces the diff of a single commit against its first
// parent, or against the empty tree for a root commit.
type DiffExtractor struct {
	repo *Repository
	opts DiffOptions
}

// NewDiffExtractor creates an extractor over repo.
func NewDiffExtractor(repo *Repository, opts DiffOptions) *DiffExtractor {
	return &DiffExtractor{repo: repo, opts: opts}
}

// Extract reads the commit named by ref and returns its diff payload.
func (e *DiffExtractor) Extract(ctx context.Context, ref CommitRef) (*DiffPayload, error) {
	c, err := e.repo.repo.CommitObject(plumbing.NewHash(string(ref)))
	if err != nil {
		return nil, &UnreadableCommitError{Ref: ref, Err: err}
	}

	tree, err := c.Tree()
	if err != nil {
		return nil, &UnreadableCommitError{Ref: ref, Err: fmt.Errorf("read tree: %w", err)}
	}

	// A nil parent tree diffs against the empty tree: every file is added.
	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, &UnreadableCommitError{Ref: ref, Err: fmt.Errorf("read parent: %w", err)}
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, &UnreadableCommitError{Ref: ref, Err: fmt.Errorf("read parent tree: %w", err)}
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, &UnreadableCommitError{Ref: ref, Err: fmt.Errorf("diff trees: %w", err)}
	}

	files := make([]FileDiff, 0, len(changes))
	for _, change := range changes {
		fd, err := e.fileDiff(ctx, change)
		if err != nil {
			return nil, &UnreadableCommitError{Ref: ref, Err: err}
		}
		files = append(files, fd)
	}

	return &DiffPayload{
		Commit: CommitInfo{
			SHA:     CommitRef(c.Hash.String()),
			When:    c.Author.When,
			Author:  AuthorInfo{Name: c.Author.Name, Email: c.Author.Email},
			Message: c.Message,
			Parents: c.NumParents(),
		},
		Files: limitPatches(files, e.opts.MaxFileBytes, e.opts.MaxTotalBytes),
	}, nil
}

func (e *DiffExtractor) fileDiff(ctx context.Context, change *object.Change) (FileDiff, error) {
	action, err := change.Action()
	if err != nil {
		return FileDiff{}, err
	}

	var fd FileDiff
	switch action {
	case merkletrie.Insert:
		fd.Path = change.To.Name
		fd.Kind = ChangeKindAdded
	case merkletrie.Delete:
		fd.Path = change.From.Name
		fd.Kind = ChangeKindDeleted
	default:
		fd.Path = change.To.Name
		fd.Kind = ChangeKindModified
		if change.From.Name != change.To.Name {
			fd.OldPath = change.From.Name
			fd.Kind = ChangeKindRenamed
		}
	}

	patch, err := change.PatchContext(ctx)
	if err != nil {
		return FileDiff{}, fmt.Errorf("patch %s: %w", fd.Path, err)
	}
	for _, st := range patch.Stats() {
		fd.LinesAdded += st.Addition
		fd.LinesDeleted += st.Deletion
	}
	for _, fp := range patch.FilePatches() {
		if fp.IsBinary() {
			fd.Binary = true
		}
	}

	if !matchesFilters(fd.Path, e.opts.Include, e.opts.Exclude) {
		fd.Omitted = true
		return fd, nil
	}
	fd.Patch = patch.String()
	return fd, nil
}

// limitPatches truncates patches per file and across the commit. Files are
// never dropped, so the generator still sees every path that changed.
func limitPatches(files []FileDiff, maxFile, maxTotal int) []FileDiff {
	used := 0
	for i := range files {
		f := &files[i]
		if f.Patch == "" {
			continue
		}
		if maxFile > 0 && len(f.Patch) > maxFile {
			f.Patch = truncateAtLine(f.Patch, maxFile)
			f.Truncated = true
		}
		if maxTotal > 0 && used+len(f.Patch) > maxTotal {
			remaining := maxTotal - used
			if remaining >= minUsefulPatch {
				f.Patch = truncateAtLine(f.Patch, remaining)
			} else {
				f.Patch = ""
			}
			f.Truncated = true
		}
		used += len(f.Patch)
	}
	return files
}

// truncateAtLine cuts s to at most limit bytes on a line boundary and appends
// a marker.
func truncateAtLine(s string, limit int) string {
	limit -= len(truncationMarker)
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if idx := strings.LastIndexByte(cut, '\n'); idx > 0 {
		cut = cut[:idx]
	}
	return cut + truncationMarker
}

// matchesFilters checks if a path matches the include/exclude filters.
func matchesFilters(path string, include, exclude []string) bool {
	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
	}

	if len(include) == 0 {
		return true
	}

	for _, pattern := range include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}
