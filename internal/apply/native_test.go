package apply

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/gittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, fx *gittest.Repo) *git.Repository {
	t.Helper()
	repo, err := git.OpenRepository(fx.Dir)
	require.NoError(t, err)
	return repo
}

func TestNative_RewritesTargetAndDescendants(t *testing.T) {
	fx := gittest.New(t)
	c := fx.Linear(3)
	before := fx.FirstParentLog()
	applier := NewNative(open(t, fx))

	require.NoError(t, applier.Check())
	newRef, err := applier.ApplyMessage(context.Background(), Target{Ref: git.CommitRef(c[1]), TipOffset: 1}, "feat: add b")
	require.NoError(t, err)

	after := fx.FirstParentLog()
	require.Len(t, after, 3)

	assert.Equal(t, c[0], after[0].Hash.String(), "ancestor must be untouched")
	assert.NotEqual(t, c[1], after[1].Hash.String())
	assert.NotEqual(t, c[2], after[2].Hash.String())

	assert.Equal(t, after[1].Hash.String(), newRef.String())
	assert.Equal(t, "feat: add b\n", after[1].Message)
	assert.Equal(t, before[2].Message, after[2].Message)
	for i := range after {
		assert.Equal(t, before[i].TreeHash, after[i].TreeHash, "tree %d changed", i)
		assert.Equal(t, before[i].Author.Email, after[i].Author.Email)
		assert.True(t, before[i].Author.When.Equal(after[i].Author.When))
	}

	orig, err := fx.Git.Reference(OrigHead, false)
	require.NoError(t, err)
	assert.Equal(t, c[2], orig.Hash().String())
}

func TestNative_RootCommit(t *testing.T) {
	fx := gittest.New(t)
	c := fx.Linear(2)
	applier := NewNative(open(t, fx))

	newRef, err := applier.ApplyMessage(context.Background(), Target{Ref: git.CommitRef(c[0]), TipOffset: 1}, "chore: initial import")
	require.NoError(t, err)

	after := fx.FirstParentLog()
	require.Len(t, after, 2)
	assert.Empty(t, after[0].ParentHashes)
	assert.Equal(t, "chore: initial import\n", after[0].Message)
	assert.Equal(t, after[0].Hash.String(), newRef.String())
	assert.Equal(t, after[0].Hash, after[1].ParentHashes[0])
}

func TestNative_RemapsMergeParents(t *testing.T) {
	fx := gittest.New(t)
	c := fx.Linear(2)
	side := fx.Detached(c[1], "side work")
	fx.Write("main.txt", "main\n")
	fx.Commit("main work")
	fx.Merge("merge side", side)
	applier := NewNative(open(t, fx))

	_, err := applier.ApplyMessage(context.Background(), Target{Ref: git.CommitRef(c[1]), TipOffset: 2}, "fix: patch b")
	require.NoError(t, err)

	after := fx.FirstParentLog()
	merge := after[len(after)-1]
	require.Len(t, merge.ParentHashes, 2)
	newSide := fx.CommitObject(merge.ParentHashes[1].String())
	assert.NotEqual(t, side, newSide.Hash.String(), "side commit descends from the target")
	assert.Equal(t, after[1].Hash, newSide.ParentHashes[0])
}

func TestNative_DetachedHead(t *testing.T) {
	fx := gittest.New(t)
	c := fx.Linear(2)
	fx.Detach(c[1])
	applier := NewNative(open(t, fx))

	err := applier.Check()
	var applyErr *ApplyError
	require.True(t, errors.As(err, &applyErr), "error = %v", err)

	_, err = applier.ApplyMessage(context.Background(), Target{Ref: git.CommitRef(c[0]), TipOffset: 1}, "feat: x")
	require.Error(t, err)
	assert.Equal(t, c[1], fx.Head(), "history must be untouched")
}

func TestNative_UnreachableCommit(t *testing.T) {
	fx := gittest.New(t)
	c := fx.Linear(2)
	dangling := fx.Detached(c[0], "dangling")
	applier := NewNative(open(t, fx))

	_, err := applier.ApplyMessage(context.Background(), Target{Ref: git.CommitRef(dangling)}, "feat: x")

	var applyErr *ApplyError
	require.True(t, errors.As(err, &applyErr), "error = %v", err)
	assert.Equal(t, c[1], fx.Head())
}

func TestNative_CancelledBeforeStart(t *testing.T) {
	fx := gittest.New(t)
	c := fx.Linear(1)
	applier := NewNative(open(t, fx))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := applier.ApplyMessage(ctx, Target{Ref: git.CommitRef(c[0])}, "feat: x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, c[0], fx.Head())

	_, err = fx.Git.Reference(OrigHead, false)
	assert.ErrorIs(t, err, plumbing.ErrReferenceNotFound)
}
