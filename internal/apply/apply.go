// Package apply replaces the message of one historical commit. The new
// history is visible to the caller once Apply returns.
package apply

import (
	"context"
	"fmt"
	"strings"

	"github.com/masmgr/git-bard/internal/git"
)

// Target addresses the commit to rewrite. TipOffset is its distance from the
// branch tip, which the rewrite does not change.
type Target struct {
	Ref       git.CommitRef
	TipOffset int
}

// Applier replaces the message of one commit, rewriting its descendants, and
// returns the commit's new identifier. Implementations must leave the
// repository untouched when they fail before the branch is moved.
type Applier interface {
	ApplyMessage(ctx context.Context, target Target, message string) (git.CommitRef, error)
	Name() string
}

// Checker is implemented by appliers with preconditions that can be verified
// before any commit is touched.
type Checker interface {
	Check() error
}

// Applier names accepted by New.
const (
	NameCmsg   = "cmsg"
	NameNative = "native"
)

// ApplyError reports a failed rewrite. Output holds whatever the external
// tool printed.
type ApplyError struct {
	Ref    git.CommitRef
	Tool   string
	Output string
	Err    error
}

func (e *ApplyError) Error() string {
	msg := fmt.Sprintf("%s could not rewrite %s", e.Tool, e.Ref.Short())
	if e.Ref == "" {
		msg = e.Tool + " is not usable"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ApplyError) Unwrap() error { return e.Err }

// New creates the applier with the given name.
func New(name string, repo *git.Repository) (Applier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameCmsg:
		return NewCmsg(repo), nil
	case NameNative:
		return NewNative(repo), nil
	default:
		return nil, fmt.Errorf("unknown applier %q (expected %s or %s)", name, NameCmsg, NameNative)
	}
}

// Names lists the accepted applier names.
func Names() []string {
	return []string{NameCmsg, NameNative}
}
