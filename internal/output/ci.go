package output

import (
	"github.com/masmgr/git-bard/internal/rewrite"
)

// CIRunWriter writes run reports as NDJSON (one JSON object per line) for CI pipelines.
type CIRunWriter struct{}

// CISummary is the first line of CI output.
type CISummary struct {
	Type      string `json:"type"`
	RunID     string `json:"runId"`
	Range     string `json:"range"`
	State     string `json:"state"`
	DryRun    bool   `json:"dryRun"`
	Total     int    `json:"total"`
	Rewritten int    `json:"rewritten"`
	Failed    int    `json:"failed"`
	Pending   int    `json:"pending"`
}

// CICommitEntry is one commit line of CI output.
type CICommitEntry struct {
	Type string `json:"type"`
	JSONRunCommit
}

// Write outputs the run report as NDJSON.
func (w *CIRunWriter) Write(report *rewrite.Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	var failed int
	for _, res := range report.Results {
		if res.Status == rewrite.StatusFailed {
			failed++
		}
	}

	summary := CISummary{
		Type:      "summary",
		RunID:     report.RunID,
		Range:     report.Spec,
		State:     report.State.String(),
		DryRun:    report.DryRun,
		Total:     report.Total,
		Rewritten: report.Rewritten,
		Failed:    failed,
		Pending:   report.Total - len(report.Results),
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, res := range report.Results {
		entry := CICommitEntry{Type: "commit", JSONRunCommit: toJSONRunCommit(res)}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}
	return nil
}
