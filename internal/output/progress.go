package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/rewrite"
)

// ConsoleProgress prints one line per commit as a run advances.
type ConsoleProgress struct {
	out   io.Writer
	total int
}

// NewConsoleProgress creates a progress printer writing to out.
func NewConsoleProgress(out io.Writer) *ConsoleProgress {
	return &ConsoleProgress{out: out}
}

// OnStart prints the run header.
func (p *ConsoleProgress) OnStart(r *rewrite.Report) {
	p.total = r.Total
	verb := "Rewriting"
	if r.DryRun {
		verb = "Generating (dry run)"
	}
	color.New(color.FgCyan).Fprintf(p.out, "%s %d commit(s)\n", verb, r.Total)
}

// OnStep prints which commit is being processed.
func (p *ConsoleProgress) OnStep(position int, entry git.RangeEntry, target git.CommitRef) {
	label := entry.Ref.Short()
	if target != entry.Ref {
		label = fmt.Sprintf("%s (now %s)", entry.Ref.Short(), target.Short())
	}
	fmt.Fprintf(p.out, "[%d/%d] %s ... ", position+1, p.total, label)
}

// OnResult completes the line started by OnStep.
func (p *ConsoleProgress) OnResult(res rewrite.Result) {
	switch res.Status {
	case rewrite.StatusFailed:
		if res.Target == "" {
			// Addressing failed, so OnStep never started a line.
			fmt.Fprintf(p.out, "[%d/%d] %s ... ", res.Position+1, p.total, res.Original.Short())
		}
		fmt.Fprintln(p.out, color.RedString("failed"))
	case rewrite.StatusDryRun:
		fmt.Fprintln(p.out, color.YellowString(summaryLine(res.Message)))
	default:
		fmt.Fprintf(p.out, "%s %s\n", color.GreenString(res.New.Short()), summaryLine(res.Message))
	}
}

// OnFinish prints a one-line summary.
func (p *ConsoleProgress) OnFinish(r *rewrite.Report) {
	paint := getStateColor(r.State)
	fmt.Fprintln(p.out, paint("%s: %d of %d rewritten", r.State, r.Rewritten, r.Total))
}

// WritePlan lists the commits a run is about to touch, oldest first.
func WritePlan(out io.Writer, rng git.CommitRange, subjects map[git.CommitRef]string) {
	color.New(color.FgGreen).Fprintf(out, "%d commit(s) selected by %s\n", rng.Len(), displaySpec(rng.Spec))
	for _, e := range rng.Entries {
		subject := strings.TrimSpace(subjects[e.Ref])
		fmt.Fprintf(out, "  %s  %s\n", e.Ref.Short(), truncateMessage(subject, 72))
	}
}
