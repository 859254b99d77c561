package git

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLocked is returned when another run holds the repository lock.
var ErrLocked = errors.New("repository is locked by another git-bard run")

// ErrNoCommits is returned when the repository has no commit on HEAD yet.
var ErrNoCommits = errors.New("repository has no commits")

// InvalidRangeError reports a range specifier that cannot be parsed or
// that selects no commit.
type InvalidRangeError struct {
	Spec   string
	Reason string
	Err    error
}

func (e *InvalidRangeError) Error() string {
	msg := fmt.Sprintf("invalid range %q: %s", e.Spec, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidRangeError) Unwrap() error { return e.Err }

// AmbiguousReferenceError reports a named endpoint that does not resolve to
// exactly one commit. Candidates is empty when nothing matched.
type AmbiguousReferenceError struct {
	Name       string
	Candidates []CommitRef
	Err        error
}

func (e *AmbiguousReferenceError) Error() string {
	if len(e.Candidates) == 0 {
		msg := fmt.Sprintf("reference %q does not name a commit", e.Name)
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	}
	short := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		short[i] = c.Short()
	}
	return fmt.Sprintf("reference %q is ambiguous: matches %s", e.Name, strings.Join(short, ", "))
}

func (e *AmbiguousReferenceError) Unwrap() error { return e.Err }

// UnreadableCommitError reports a commit whose objects cannot be read.
type UnreadableCommitError struct {
	Ref CommitRef
	Err error
}

func (e *UnreadableCommitError) Error() string {
	return fmt.Sprintf("cannot read commit %s: %v", e.Ref.Short(), e.Err)
}

func (e *UnreadableCommitError) Unwrap() error { return e.Err }
