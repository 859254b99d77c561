package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// Repository wraps a go-git repository opened from a working directory.
type Repository struct {
	repo *gogit.Repository
	path string
}

// OpenRepository opens the repository containing path, walking up to find
// the .git directory.
func OpenRepository(path string) (*Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Repository{repo: repo, path: root}, nil
}

// Refresh reopens the repository so objects and packs written by external
// tools become visible.
func (r *Repository) Refresh() error {
	repo, err := gogit.PlainOpenWithOptions(r.path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("reopen repository %s: %w", r.path, err)
	}
	r.repo = repo
	return nil
}

// Git exposes the underlying go-git repository.
func (r *Repository) Git() *gogit.Repository {
	return r.repo
}

// Path returns the working tree root.
func (r *Repository) Path() string {
	return r.path
}

// GitDir returns the directory holding the repository metadata.
func (r *Repository) GitDir() string {
	if fs, ok := r.repo.Storer.(*filesystem.Storage); ok {
		return fs.Filesystem().Root()
	}
	return filepath.Join(r.path, gogit.GitDirName)
}

// Tip returns the commit HEAD points to.
func (r *Repository) Tip() (*object.Commit, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoCommits
		}
		return nil, err
	}
	return r.repo.CommitObject(ref.Hash())
}

// FirstParentChain returns the commits on the tip's first-parent history,
// root first.
func (r *Repository) FirstParentChain(ctx context.Context) ([]CommitRef, error) {
	commits, err := r.firstParentCommits(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]CommitRef, len(commits))
	for i, c := range commits {
		refs[i] = CommitRef(c.Hash.String())
	}
	return refs, nil
}

func (r *Repository) firstParentCommits(ctx context.Context) ([]*object.Commit, error) {
	c, err := r.Tip()
	if err != nil {
		return nil, err
	}

	var chain []*object.Commit
	for {
		if len(chain)%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		chain = append(chain, c)
		if len(c.ParentHashes) == 0 {
			break
		}
		parent, err := r.repo.CommitObject(c.ParentHashes[0])
		if err != nil {
			return nil, fmt.Errorf("read parent of %s: %w", c.Hash, err)
		}
		c = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// reachable returns every commit reachable from start through any parent.
func (r *Repository) reachable(ctx context.Context, start plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	seen := map[plumbing.Hash]struct{}{start: {}}
	queue := []plumbing.Hash{start}
	for len(queue) > 0 {
		if len(seen)%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		h := queue[0]
		queue = queue[1:]
		c, err := r.repo.CommitObject(h)
		if err != nil {
			return nil, fmt.Errorf("read commit %s: %w", h, err)
		}
		for _, p := range c.ParentHashes {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return seen, nil
}
