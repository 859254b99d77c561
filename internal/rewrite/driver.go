// Package rewrite drives a run: for each commit of a range, oldest first,
// extract its diff, generate a message and apply it.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/masmgr/git-bard/internal/apply"
	"github.com/masmgr/git-bard/internal/generate"
	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/logger"
	"github.com/masmgr/git-bard/internal/pacing"
	"github.com/sirupsen/logrus"
)

// ErrHistoryChanged is wrapped when the first-parent history no longer has
// the shape it had at resolution time.
var ErrHistoryChanged = errors.New("history changed underneath the run")

// MessageGenerator produces a validated message for one commit.
type MessageGenerator interface {
	Generate(ctx context.Context, p *git.DiffPayload) (generate.Message, error)
}

var _ MessageGenerator = (*generate.Generator)(nil)

// Options configures a Driver.
type Options struct {
	DryRun    bool
	StepDelay time.Duration  // pause between commits
	Pacer     *pacing.Window // caps generation requests; nil for none
	RunID     string         // generated when empty
	Backend   string         // reported only
	Observer  Observer
}

// Driver runs the rewrite state machine over one CommitRange.
type Driver struct {
	chain     git.ChainReader
	extractor git.Extractor
	generator MessageGenerator
	applier   apply.Applier
	opts      Options
	sleep     func(context.Context, time.Duration) error
	now       func() time.Time
	requests  []time.Time
}

// New creates a Driver.
func New(chain git.ChainReader, extractor git.Extractor, generator MessageGenerator, applier apply.Applier, opts Options) *Driver {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	return &Driver{
		chain:     chain,
		extractor: extractor,
		generator: generator,
		applier:   applier,
		opts:      opts,
		sleep:     sleepContext,
		now:       time.Now,
	}
}

// RunID returns the identifier attached to logs and the report.
func (d *Driver) RunID() string {
	return d.opts.RunID
}

// Run processes rng oldest first and stops at the first failure.
//
// Each commit is addressed by its distance from the tip, re-read before every
// step, because rewriting a commit changes the identifiers of all its
// descendants. Cancellation is honoured between commits; an apply that has
// started always runs to completion. Commits rewritten before a failure stay
// rewritten.
func (d *Driver) Run(ctx context.Context, rng git.CommitRange) (*Report, error) {
	report := &Report{
		RunID:     d.opts.RunID,
		Spec:      rng.Spec,
		Backend:   d.opts.Backend,
		DryRun:    d.opts.DryRun,
		State:     StatePending,
		Total:     rng.Len(),
		Results:   make([]Result, 0, rng.Len()),
		StartedAt: time.Now(),
	}
	if d.applier != nil {
		report.Applier = d.applier.Name()
	}
	log := logger.WithRun("rewrite", d.opts.RunID)

	if rng.Len() == 0 {
		return report, &git.InvalidRangeError{Spec: rng.Spec, Reason: "selects zero commits"}
	}

	report.State = StateInProgress
	d.opts.Observer.OnStart(report)
	log.WithFields(logrus.Fields{"range": rng.Spec, "total": rng.Len(), "dryRun": d.opts.DryRun}).Info("run started")

	for i, entry := range rng.Entries {
		res, stage, err := d.step(ctx, rng, i, entry, report.Rewritten)
		if err != nil {
			res.Status = StatusFailed
			res.Error = err.Error()
			report.Results = append(report.Results, res)
			d.opts.Observer.OnResult(res)

			runErr := &RunError{
				Position:  i,
				Total:     rng.Len(),
				Original:  entry.Ref,
				Target:    res.Target,
				Rewritten: report.Rewritten,
				Stage:     stage,
				Err:       err,
			}
			d.finish(report, StateAborted)
			log.WithError(err).WithFields(logrus.Fields{"position": i, "stage": stage}).Error("run aborted")
			return report, runErr
		}

		if res.Status == StatusRewritten {
			report.Rewritten++
		}
		report.Results = append(report.Results, res)
		d.opts.Observer.OnResult(res)
		log.WithFields(logrus.Fields{"position": i, "commit": entry.Ref.Short(), "status": res.Status}).Info("commit done")
	}

	d.finish(report, StateSucceeded)
	log.WithFields(logrus.Fields{
		"rewritten":     report.Rewritten,
		"peakPerMinute": pacing.Peak(d.requests, time.Minute),
	}).Info("run finished")
	return report, nil
}

func (d *Driver) finish(report *Report, state State) {
	report.State = state
	report.FinishedAt = time.Now()
	d.opts.Observer.OnFinish(report)
}

func (d *Driver) step(ctx context.Context, rng git.CommitRange, i int, entry git.RangeEntry, rewritten int) (Result, Stage, error) {
	started := time.Now()
	res := Result{Position: i, Original: entry.Ref}
	done := func(stage Stage, err error) (Result, Stage, error) {
		res.Duration = time.Since(started)
		return res, stage, err
	}

	if err := ctx.Err(); err != nil {
		return done(StageCancel, err)
	}
	if i > 0 && d.opts.StepDelay > 0 {
		if err := d.sleep(ctx, d.opts.StepDelay); err != nil {
			return done(StageCancel, err)
		}
	}

	target, err := d.address(ctx, rng, entry, rewritten)
	if err != nil {
		return done(StageAddress, err)
	}
	res.Target = target
	d.opts.Observer.OnStep(i, entry, target)

	payload, err := d.extractor.Extract(ctx, target)
	if err != nil {
		return done(StageExtract, err)
	}
	res.OriginalSubject = payload.Commit.Subject()

	if wait := d.opts.Pacer.Reserve(d.now()); wait > 0 {
		if err := d.sleep(ctx, wait); err != nil {
			return done(StageCancel, err)
		}
	}
	d.requests = append(d.requests, d.now())

	msg, err := d.generator.Generate(ctx, payload)
	if err != nil {
		return done(StageGenerate, err)
	}
	res.Message = msg.String()

	if d.opts.DryRun {
		res.Status = StatusDryRun
		return done("", nil)
	}

	// The apply is not cancellable once started.
	newRef, err := d.applier.ApplyMessage(context.WithoutCancel(ctx), apply.Target{Ref: target, TipOffset: entry.TipOffset}, res.Message)
	if err != nil {
		return done(StageApply, err)
	}
	res.New = newRef
	res.Status = StatusRewritten
	return done("", nil)
}

// address finds the current identifier of entry. Until something has been
// rewritten it must equal the original one.
func (d *Driver) address(ctx context.Context, rng git.CommitRange, entry git.RangeEntry, rewritten int) (git.CommitRef, error) {
	chain, err := d.chain.FirstParentChain(ctx)
	if err != nil {
		return "", fmt.Errorf("read history: %w", err)
	}
	if len(chain) != rng.ChainLength {
		return "", fmt.Errorf("%w: first-parent history had %d commits, now %d", ErrHistoryChanged, rng.ChainLength, len(chain))
	}
	if entry.TipOffset < 0 || entry.TipOffset >= len(chain) {
		return "", fmt.Errorf("%w: tip offset %d outside history of %d commits", ErrHistoryChanged, entry.TipOffset, len(chain))
	}

	target := chain[len(chain)-1-entry.TipOffset]
	if rewritten == 0 && target != entry.Ref {
		return "", fmt.Errorf("%w: expected %s at tip offset %d, found %s", ErrHistoryChanged, entry.Ref.Short(), entry.TipOffset, target.Short())
	}
	return target, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
