package output

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/masmgr/git-bard/internal/rewrite"
)

// ConsoleRunWriter writes run reports to the console.
type ConsoleRunWriter struct{}

// Write outputs the run report as a table.
func (w *ConsoleRunWriter) Write(report *rewrite.Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	title := "Rewrite Results"
	if report.DryRun {
		title = "Rewrite Results (dry run)"
	}
	color.New(color.FgGreen).Fprintln(out, title)
	fmt.Fprintf(out, "Range: %s\n", displaySpec(report.Spec))
	if report.Backend != "" {
		fmt.Fprintf(out, "Backend: %s\n", report.Backend)
	}
	if report.Applier != "" && !report.DryRun {
		fmt.Fprintf(out, "Applier: %s\n", report.Applier)
	}
	fmt.Fprintf(out, "State: %s\n", getStateColor(report.State)(report.State.String()))
	fmt.Fprintf(out, "Rewritten: %d of %d (%s)\n\n", report.Rewritten, report.Total, report.Elapsed().Round(time.Millisecond))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tOriginal\tNew\tStatus\tMessage")
	for _, res := range report.Results {
		msg := summaryLine(res.Message)
		if res.Status == rewrite.StatusFailed {
			msg = res.Error
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			res.Position+1,
			shortRef(res.Original),
			shortRef(res.New),
			getStatusColor(res.Status)(string(res.Status)),
			truncateMessage(msg, 72),
		)
		if options.Bodies {
			if body := bodyOf(res.Message); body != "" {
				for _, line := range strings.Split(body, "\n") {
					fmt.Fprintf(tw, "\t\t\t\t  %s\n", line)
				}
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if pending := report.Total - len(report.Results); pending > 0 {
		fmt.Fprintf(out, "\n%s\n", color.YellowString("%d commit(s) not processed", pending))
	}
	return nil
}

func displaySpec(spec string) string {
	if spec == "" {
		return "(all history)"
	}
	return spec
}
