package output

import (
	"fmt"
	"strings"

	"github.com/masmgr/git-bard/internal/rewrite"
)

// MarkdownRunWriter writes run reports as Markdown.
type MarkdownRunWriter struct{}

// Write outputs the run report as Markdown.
func (w *MarkdownRunWriter) Write(report *rewrite.Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	// Header
	fmt.Fprintln(out, "# Commit Message Rewrite")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Range:** `%s`\n\n", displaySpec(report.Spec))
	fmt.Fprintf(out, "**Run:** `%s`\n\n", report.RunID)
	if report.Backend != "" {
		fmt.Fprintf(out, "**Backend:** %s\n\n", report.Backend)
	}
	mode := report.Applier
	if report.DryRun {
		mode = "dry run"
	}
	if mode != "" {
		fmt.Fprintf(out, "**Mode:** %s\n\n", mode)
	}
	fmt.Fprintf(out, "**State:** %s (%d of %d rewritten)\n\n", report.State, report.Rewritten, report.Total)

	// Table
	fmt.Fprintln(out, "## Commits")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| # | Original | New | Status | Before | After |")
	fmt.Fprintln(out, "|---|----------|-----|--------|--------|-------|")
	for _, res := range report.Results {
		after := escapeMarkdown(summaryLine(res.Message))
		if res.Status == rewrite.StatusFailed {
			after = escapeMarkdown(res.Error)
		}
		fmt.Fprintf(out, "| %d | `%s` | `%s` | %s %s | %s | %s |\n",
			res.Position+1, shortRef(res.Original), shortRef(res.New),
			getStatusEmoji(res.Status), res.Status,
			escapeMarkdown(res.OriginalSubject), after)
	}

	if options.Bodies {
		var bodies []rewrite.Result
		for _, res := range report.Results {
			if res.Message != "" {
				bodies = append(bodies, res)
			}
		}
		if len(bodies) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "## Messages")
			for _, res := range bodies {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "### %d. `%s`\n\n", res.Position+1, shortRef(res.Original))
				fmt.Fprintln(out, "```")
				fmt.Fprintln(out, strings.TrimRight(res.Message, "\n"))
				fmt.Fprintln(out, "```")
			}
		}
	}

	if pending := report.Total - len(report.Results); pending > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "**Not processed:** %d commit(s)\n", pending)
	}
	return nil
}
