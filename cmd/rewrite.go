package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/masmgr/git-bard/internal/apply"
	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/output"
	"github.com/masmgr/git-bard/internal/pacing"
	"github.com/masmgr/git-bard/internal/rewrite"
	"github.com/urfave/cli/v2"
)

// errDeclined is returned when the operator answers no at the prompt.
var errDeclined = errors.New("aborted by user; nothing was changed")

// abortError marks a run that stopped part-way through the range.
type abortError struct {
	run     *rewrite.RunError
	applier string
}

func (e *abortError) Error() string { return e.run.Error() }

func (e *abortError) Unwrap() error { return e.run }

// hint tells the operator how to inspect or undo a partial rewrite.
func (e *abortError) hint() string {
	if e.run.Rewritten == 0 {
		return "No commit was rewritten."
	}
	lines := []string{
		fmt.Sprintf("Commits 1-%d of the range were rewritten and remain so.", e.run.Rewritten),
		"Inspect the previous branch positions with `git reflog`.",
	}
	switch e.applier {
	case apply.NameNative:
		lines = append(lines, "The branch before the last rewritten commit is recorded in ORIG_HEAD.")
	case apply.NameCmsg:
		lines = append(lines, "If a rebase is still in progress, run `git rebase --abort`.")
	}
	return strings.Join(lines, "\n")
}

func rewriteAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc, err := NewCommandContext(ctx, c)
	if err != nil {
		return err
	}
	defer cc.Close()

	out := cc.Output.ProgressWriter(c.App.Writer, c.App.ErrWriter)
	rng, err := git.NewResolver(cc.Repo).Resolve(ctx, cc.Spec)
	if err != nil {
		return err
	}
	output.WritePlan(out, rng, subjects(cc.Repo, rng))

	if !cc.DryRun && !c.Bool("yes") {
		if err := confirm(c.App.Reader, out, rng.Len()); err != nil {
			return err
		}
	}

	driver := rewrite.New(cc.Repo, cc.Extractor, cc.Generator, cc.Applier, rewrite.Options{
		DryRun:    cc.DryRun,
		StepDelay: cc.Config.Rewrite.Delay.Std(),
		Pacer:     pacing.PerMinute(cc.Config.Rewrite.RequestsPerMinute),
		Backend:   cc.Generator.Backend().Name(),
		Observer:  output.NewConsoleProgress(out),
	})
	report, runErr := driver.Run(ctx, rng)

	if err := writeRunReport(cc.Output, report); err != nil {
		if runErr == nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(c.App.ErrWriter, "failed to write report: %v\n", err)
	}

	var re *rewrite.RunError
	if errors.As(runErr, &re) {
		return &abortError{run: re, applier: report.Applier}
	}
	return runErr
}

// confirm asks before history is rewritten. Without a terminal there is no
// one to ask, so --yes is required.
func confirm(in io.Reader, out io.Writer, n int) error {
	if in == os.Stdin && !stdinIsTerminal() {
		return errors.New("refusing to rewrite history without confirmation; pass --yes to run non-interactively")
	}
	fmt.Fprintf(out, "%s Rewrite %d commit(s)? This changes history. [y/N] ",
		color.YellowString("?"), n)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errDeclined
	}
}

// subjects reads the current subject of every commit in rng for the plan.
func subjects(repo *git.Repository, rng git.CommitRange) map[git.CommitRef]string {
	m := make(map[git.CommitRef]string, rng.Len())
	for _, e := range rng.Entries {
		c, err := repo.Git().CommitObject(plumbing.NewHash(e.Ref.String()))
		if err != nil {
			continue
		}
		m[e.Ref] = git.CommitInfo{Message: c.Message}.Subject()
	}
	return m
}
