package cmd

import (
	"github.com/masmgr/git-bard/internal/output"
	"github.com/masmgr/git-bard/internal/rewrite"
)

func writeRunReport(opts output.OutputOptions, report *rewrite.Report) error {
	writer := output.NewRunReportWriter(opts.Format)
	return writer.Write(report, opts)
}
