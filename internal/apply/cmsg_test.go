package apply

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/gittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCmsg writes a shell script that records its arguments and working
// directory, then exits with code.
func fakeCmsg(t *testing.T, code int) (bin, record string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub requires a POSIX shell")
	}
	dir := t.TempDir()
	record = filepath.Join(dir, "calls.txt")
	bin = filepath.Join(dir, "cmsg")
	script := "#!/bin/sh\npwd > " + record + "\nprintf '%s\\n' \"$@\" >> " + record + "\n"
	if code != 0 {
		script += "echo 'could not apply' >&2\n"
	}
	script += "exit " + strconv.Itoa(code) + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, record
}

func TestCmsg_Apply(t *testing.T) {
	fx := gittest.New(t)
	c := fx.Linear(1)
	bin, record := fakeCmsg(t, 0)

	applier := NewCmsg(open(t, fx))
	applier.Command = bin
	require.NoError(t, applier.Check())

	newRef, err := applier.ApplyMessage(context.Background(), Target{Ref: git.CommitRef(c[0])}, "feat: add a\n\nbody")
	require.NoError(t, err)
	assert.Equal(t, git.CommitRef(c[0]), newRef, "the stub leaves history as it was")

	data, err := os.ReadFile(record)
	require.NoError(t, err)
	lines := strings.SplitN(string(data), "\n", 2)
	wantDir, _ := filepath.EvalSymlinks(fx.Dir)
	gotDir, _ := filepath.EvalSymlinks(lines[0])
	assert.Equal(t, wantDir, gotDir)
	assert.Equal(t, "-c\n"+c[0]+"\n-m\nfeat: add a\n\nbody\n", lines[1])
}

func TestCmsg_Failure(t *testing.T) {
	fx := gittest.New(t)
	c := fx.Linear(1)
	bin, _ := fakeCmsg(t, 3)

	applier := NewCmsg(open(t, fx))
	applier.Command = bin

	_, err := applier.ApplyMessage(context.Background(), Target{Ref: git.CommitRef(c[0])}, "feat: x")

	var applyErr *ApplyError
	require.True(t, errors.As(err, &applyErr), "error = %v", err)
	assert.Equal(t, git.CommitRef(c[0]), applyErr.Ref)
	assert.Contains(t, applyErr.Output, "could not apply")
	assert.Contains(t, err.Error(), "could not apply")
}

func TestCmsg_CheckMissingTool(t *testing.T) {
	fx := gittest.New(t)
	fx.Linear(1)
	applier := NewCmsg(open(t, fx))
	applier.Command = "git-bard-no-such-tool"

	err := applier.Check()

	var applyErr *ApplyError
	require.True(t, errors.As(err, &applyErr), "error = %v", err)
	assert.Contains(t, err.Error(), "is not usable")
}

func TestNew(t *testing.T) {
	fx := gittest.New(t)
	repo := open(t, fx)

	a, err := New("", repo)
	require.NoError(t, err)
	assert.Equal(t, NameCmsg, a.Name())

	a, err = New("Native", repo)
	require.NoError(t, err)
	assert.Equal(t, NameNative, a.Name())

	_, err = New("rebase", repo)
	assert.Error(t, err)
}
