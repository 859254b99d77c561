package apply

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/logger"
	"github.com/sirupsen/logrus"
)

// OrigHead records the tip before the latest native rewrite, so
// `git reset --hard ORIG_HEAD` undoes one step.
const OrigHead plumbing.ReferenceName = "ORIG_HEAD"

// Native rewrites history with go-git: the target commit is re-encoded with
// the new message and every commit reachable from the branch tip that
// descends from it is re-encoded with remapped parents. Trees, authors and
// committers are kept; signatures are dropped because they no longer verify.
type Native struct {
	repo *git.Repository
}

// NewNative creates a native applier for repo.
func NewNative(repo *git.Repository) *Native {
	return &Native{repo: repo}
}

// Name implements Applier.
func (n *Native) Name() string { return NameNative }

// Check refuses a detached HEAD, which has no branch to move.
func (n *Native) Check() error {
	_, err := n.branch()
	return err
}

func (n *Native) branch() (*plumbing.Reference, error) {
	head, err := n.repo.Git().Storer.Reference(plumbing.HEAD)
	if err != nil {
		return nil, &ApplyError{Tool: NameNative, Err: fmt.Errorf("read HEAD: %w", err)}
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return nil, &ApplyError{Tool: NameNative, Err: errors.New("HEAD is detached; check out a branch first")}
	}
	tip, err := n.repo.Git().Reference(head.Target(), true)
	if err != nil {
		return nil, &ApplyError{Tool: NameNative, Err: fmt.Errorf("read %s: %w", head.Target().Short(), err)}
	}
	return tip, nil
}

// ApplyMessage implements Applier. Only target.Ref is used.
func (n *Native) ApplyMessage(ctx context.Context, target Target, message string) (git.CommitRef, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tip, err := n.branch()
	if err != nil {
		return "", err
	}
	ref := target.Ref
	fail := func(err error) error {
		return &ApplyError{Ref: ref, Tool: NameNative, Err: err}
	}

	hash := plumbing.NewHash(ref.String())
	if _, err := n.repo.Git().CommitObject(hash); err != nil {
		return "", fail(fmt.Errorf("read commit: %w", err))
	}

	order, err := n.postorder(tip.Hash())
	if err != nil {
		return "", fail(err)
	}

	rewritten := make(map[plumbing.Hash]plumbing.Hash)
	found := false
	for _, c := range order {
		parents := make([]plumbing.Hash, len(c.ParentHashes))
		changed := false
		for i, p := range c.ParentHashes {
			parents[i] = p
			if np, ok := rewritten[p]; ok {
				parents[i] = np
				changed = true
			}
		}

		msg := c.Message
		if c.Hash == hash {
			msg = strings.TrimRight(message, "\n") + "\n"
			changed = true
			found = true
		}
		if !changed {
			continue
		}

		h, err := n.store(c, parents, msg)
		if err != nil {
			return "", fail(fmt.Errorf("write replacement for %s: %w", git.CommitRef(c.Hash.String()).Short(), err))
		}
		rewritten[c.Hash] = h
	}
	if !found {
		return "", fail(fmt.Errorf("commit is not reachable from %s", tip.Name().Short()))
	}

	newTip := rewritten[tip.Hash()]
	storer := n.repo.Git().Storer
	if err := storer.SetReference(plumbing.NewHashReference(OrigHead, tip.Hash())); err != nil {
		return "", fail(fmt.Errorf("record %s: %w", OrigHead, err))
	}
	if err := storer.CheckAndSetReference(plumbing.NewHashReference(tip.Name(), newTip), tip); err != nil {
		return "", fail(fmt.Errorf("move %s: %w", tip.Name().Short(), err))
	}

	logger.WithComponent("apply").WithFields(logrus.Fields{
		"commit":    ref.Short(),
		"rewritten": len(rewritten),
		"tip":       newTip.String()[:7],
	}).Debug("native rewrite done")
	return git.CommitRef(rewritten[hash].String()), nil
}

func (n *Native) store(c *object.Commit, parents []plumbing.Hash, msg string) (plumbing.Hash, error) {
	nc := &object.Commit{
		Author:       c.Author,
		Committer:    c.Committer,
		MergeTag:     c.MergeTag,
		Message:      msg,
		TreeHash:     c.TreeHash,
		ParentHashes: parents,
		Encoding:     c.Encoding,
	}
	obj := n.repo.Git().Storer.NewEncodedObject()
	if err := nc.Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	return n.repo.Git().Storer.SetEncodedObject(obj)
}

// postorder lists every commit reachable from tip with parents before
// children.
func (n *Native) postorder(tip plumbing.Hash) ([]*object.Commit, error) {
	type frame struct {
		c    *object.Commit
		next int
	}

	var order []*object.Commit
	visited := map[plumbing.Hash]bool{tip: true}

	root, err := n.repo.Git().CommitObject(tip)
	if err != nil {
		return nil, err
	}
	stack := []*frame{{c: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.c.ParentHashes) {
			p := top.c.ParentHashes[top.next]
			top.next++
			if visited[p] {
				continue
			}
			visited[p] = true
			pc, err := n.repo.Git().CommitObject(p)
			if err != nil {
				return nil, fmt.Errorf("read commit %s: %w", p, err)
			}
			stack = append(stack, &frame{c: pc})
			continue
		}
		order = append(order, top.c)
		stack = stack[:len(stack)-1]
	}
	return order, nil
}
