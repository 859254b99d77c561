// Package gittest builds throwaway Git repositories for tests.
package gittest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a temporary repository with a worktree.
type Repo struct {
	t    *testing.T
	Dir  string
	Git  *gogit.Repository
	wt   *gogit.Worktree
	when time.Time
}

// New initializes an empty repository in a temp dir.
func New(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &Repo{
		t:    t,
		Dir:  dir,
		Git:  repo,
		wt:   wt,
		when: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Write creates or overwrites a file and stages it.
func (r *Repo) Write(rel, content string) {
	r.t.Helper()
	full := filepath.Join(r.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := r.wt.Add(rel); err != nil {
		r.t.Fatalf("Add: %v", err)
	}
}

// Remove deletes a file and stages the deletion.
func (r *Repo) Remove(rel string) {
	r.t.Helper()
	if _, err := r.wt.Remove(rel); err != nil {
		r.t.Fatalf("Remove: %v", err)
	}
}

// Commit records the staged changes. Each commit is one hour after the last.
func (r *Repo) Commit(msg string) string {
	r.t.Helper()
	r.when = r.when.Add(time.Hour)
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: r.when}
	h, err := r.wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig, AllowEmptyCommits: true})
	if err != nil {
		r.t.Fatalf("Commit: %v", err)
	}
	return h.String()
}

// Linear creates n commits, each touching its own file, and returns their
// hashes oldest first.
func (r *Repo) Linear(n int) []string {
	r.t.Helper()
	hashes := make([]string, n)
	for i := 0; i < n; i++ {
		name := filepath.Join("src", string(rune('a'+i%26))+".txt")
		r.Write(name, fmt.Sprintf("content %d\n", i))
		hashes[i] = r.Commit("change " + name)
	}
	return hashes
}

// Branch creates a branch at the given commit.
func (r *Repo) Branch(name, hash string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), plumbing.NewHash(hash))
	if err := r.Git.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("SetReference: %v", err)
	}
}

// Tag creates a lightweight tag at the given commit.
func (r *Repo) Tag(name, hash string) {
	r.t.Helper()
	if _, err := r.Git.CreateTag(name, plumbing.NewHash(hash), nil); err != nil {
		r.t.Fatalf("CreateTag: %v", err)
	}
}

// Head returns the hash HEAD points to.
func (r *Repo) Head() string {
	r.t.Helper()
	ref, err := r.Git.Head()
	if err != nil {
		r.t.Fatalf("Head: %v", err)
	}
	return ref.Hash().String()
}

// CommitObject reads a commit by hash.
func (r *Repo) CommitObject(hash string) *object.Commit {
	r.t.Helper()
	c, err := r.Git.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		r.t.Fatalf("CommitObject(%s): %v", hash, err)
	}
	return c
}

// FirstParentLog returns the first-parent history from HEAD, root first.
func (r *Repo) FirstParentLog() []*object.Commit {
	r.t.Helper()
	c := r.CommitObject(r.Head())
	var log []*object.Commit
	for {
		log = append([]*object.Commit{c}, log...)
		if len(c.ParentHashes) == 0 {
			return log
		}
		c = r.CommitObject(c.ParentHashes[0].String())
	}
}

// Detached records a commit on top of parent without moving any ref. The new
// commit reuses parent's tree.
func (r *Repo) Detached(parent, msg string) string {
	r.t.Helper()
	p := r.CommitObject(parent)
	r.when = r.when.Add(time.Hour)
	sig := object.Signature{Name: "Test", Email: "test@example.com", When: r.when}
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg,
		TreeHash:     p.TreeHash,
		ParentHashes: []plumbing.Hash{p.Hash},
	}
	obj := r.Git.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		r.t.Fatalf("Encode: %v", err)
	}
	h, err := r.Git.Storer.SetEncodedObject(obj)
	if err != nil {
		r.t.Fatalf("SetEncodedObject: %v", err)
	}
	return h.String()
}

// Merge records a merge commit of HEAD and other on the current branch.
func (r *Repo) Merge(msg, other string) string {
	r.t.Helper()
	r.when = r.when.Add(time.Hour)
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: r.when}
	h, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: true,
		Parents:           []plumbing.Hash{plumbing.NewHash(r.Head()), plumbing.NewHash(other)},
	})
	if err != nil {
		r.t.Fatalf("Merge commit: %v", err)
	}
	return h.String()
}

// Detach points HEAD directly at a commit.
func (r *Repo) Detach(hash string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.HEAD, plumbing.NewHash(hash))
	if err := r.Git.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("SetReference: %v", err)
	}
}
