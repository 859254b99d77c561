package rewrite

import (
	"fmt"
	"time"

	"github.com/masmgr/git-bard/internal/git"
)

// State is the driver's position in its state machine.
type State int

const (
	StatePending State = iota
	StateInProgress
	StateSucceeded
	StateAborted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInProgress:
		return "in-progress"
	case StateSucceeded:
		return "succeeded"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Status is the outcome of one commit.
type Status string

const (
	StatusRewritten Status = "rewritten"
	StatusDryRun    Status = "dry-run"
	StatusFailed    Status = "failed"
)

// Stage names the per-commit step that failed.
type Stage string

const (
	StageAddress  Stage = "address"
	StageExtract  Stage = "extract"
	StageGenerate Stage = "generate"
	StageApply    Stage = "apply"
	StageCancel   Stage = "cancel"
)

// Result is the outcome of one commit of the range.
type Result struct {
	// Position is the 0-based index within the range.
	Position int
	// Original is the identifier at resolution time.
	Original git.CommitRef
	// Target is the identifier the commit had when it was processed.
	Target git.CommitRef
	// New is the identifier after rewriting; empty unless rewritten.
	New             git.CommitRef
	OriginalSubject string
	Message         string
	Status          Status
	Error           string
	Duration        time.Duration
}

// Report summarizes one run.
type Report struct {
	RunID      string
	Spec       string
	Backend    string
	Applier    string
	DryRun     bool
	State      State
	Total      int
	Rewritten  int
	Results    []Result
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed returns the run's wall-clock duration.
func (r *Report) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunError reports an aborted run: which commit failed, at which stage, and
// how many commits before it were already rewritten.
type RunError struct {
	Position  int
	Total     int
	Original  git.CommitRef
	Target    git.CommitRef
	Rewritten int
	Stage     Stage
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("commit %d/%d (%s) failed during %s; %d of %d commits were already rewritten: %v",
		e.Position+1, e.Total, e.Original.Short(), e.Stage, e.Rewritten, e.Total, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Observer receives progress notifications. Calls happen on the driver's
// goroutine, in order.
type Observer interface {
	OnStart(r *Report)
	OnStep(position int, entry git.RangeEntry, target git.CommitRef)
	OnResult(res Result)
	OnFinish(r *Report)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) OnStart(*Report)                           {}
func (NopObserver) OnStep(int, git.RangeEntry, git.CommitRef) {}
func (NopObserver) OnResult(Result)                           {}
func (NopObserver) OnFinish(*Report)                          {}
