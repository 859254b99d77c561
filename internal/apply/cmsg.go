package apply

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/logger"
)

// Cmsg delegates the rewrite to the cmsg tool
// (https://github.com/ogpourya/cmsg), which runs a scripted rebase.
type Cmsg struct {
	repo *git.Repository
	// Command is the executable name or path; defaults to "cmsg".
	Command string
}

// NewCmsg creates a cmsg applier for repo.
func NewCmsg(repo *git.Repository) *Cmsg {
	return &Cmsg{repo: repo, Command: NameCmsg}
}

// Name implements Applier.
func (c *Cmsg) Name() string { return NameCmsg }

// Check verifies that the tool is on PATH.
func (c *Cmsg) Check() error {
	if _, err := exec.LookPath(c.Command); err != nil {
		return &ApplyError{Tool: c.Command, Err: err,
			Output: "install it from https://github.com/ogpourya/cmsg or use --applier native"}
	}
	return nil
}

// ApplyMessage runs `cmsg -c <hash> -m <message>` in the working tree and
// reads the new identifier back from the first-parent chain.
//
// The process is not tied to ctx: a rebase killed half-way leaves the
// repository mid-rebase, so cancellation is only honoured before starting.
func (c *Cmsg) ApplyMessage(ctx context.Context, target Target, message string) (git.CommitRef, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := target.Ref

	cmd := exec.Command(c.Command, "-c", ref.String(), "-m", message)
	cmd.Dir = c.repo.Path()
	out, err := cmd.CombinedOutput()

	log := logger.WithComponent("apply").WithField("commit", ref.Short())
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.WithField("exit", exitErr.ExitCode()).Error("cmsg failed")
		}
		return "", &ApplyError{Ref: ref, Tool: c.Command, Output: string(out), Err: err}
	}
	log.Debug("cmsg finished")

	if err := c.repo.Refresh(); err != nil {
		return "", &ApplyError{Ref: ref, Tool: c.Command, Err: err}
	}
	chain, err := c.repo.FirstParentChain(context.WithoutCancel(ctx))
	if err != nil {
		return "", &ApplyError{Ref: ref, Tool: c.Command, Err: fmt.Errorf("read rewritten history: %w", err)}
	}
	if target.TipOffset >= len(chain) {
		return "", &ApplyError{Ref: ref, Tool: c.Command, Err: fmt.Errorf("history has %d commits after rewrite, expected more than %d", len(chain), target.TipOffset)}
	}
	return chain[len(chain)-1-target.TipOffset], nil
}
