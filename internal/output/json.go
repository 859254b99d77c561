package output

import (
	"github.com/masmgr/git-bard/internal/rewrite"
)

// JSONRunWriter writes run reports as JSON.
type JSONRunWriter struct{}

// JSONRunReport is the JSON output structure for a run.
type JSONRunReport struct {
	RunID      string          `json:"runId"`
	Range      string          `json:"range"`
	Backend    string          `json:"backend,omitempty"`
	Applier    string          `json:"applier,omitempty"`
	DryRun     bool            `json:"dryRun"`
	State      string          `json:"state"`
	Total      int             `json:"total"`
	Rewritten  int             `json:"rewritten"`
	StartedAt  string          `json:"startedAt"`
	FinishedAt string          `json:"finishedAt,omitempty"`
	ElapsedMs  int64           `json:"elapsedMs"`
	Results    []JSONRunCommit `json:"results"`
}

// JSONRunCommit is the JSON output structure for one commit.
type JSONRunCommit struct {
	Position        int    `json:"position"`
	Original        string `json:"original"`
	Target          string `json:"target,omitempty"`
	New             string `json:"new,omitempty"`
	OriginalSubject string `json:"originalSubject,omitempty"`
	Message         string `json:"message,omitempty"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
	DurationMs      int64  `json:"durationMs"`
}

// Write outputs the run report as JSON.
func (w *JSONRunWriter) Write(report *rewrite.Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}
	return writeJSON(out, toJSONRunReport(report))
}

func toJSONRunReport(report *rewrite.Report) JSONRunReport {
	commits := make([]JSONRunCommit, len(report.Results))
	for i, res := range report.Results {
		commits[i] = toJSONRunCommit(res)
	}

	jr := JSONRunReport{
		RunID:     report.RunID,
		Range:     report.Spec,
		Backend:   report.Backend,
		Applier:   report.Applier,
		DryRun:    report.DryRun,
		State:     report.State.String(),
		Total:     report.Total,
		Rewritten: report.Rewritten,
		StartedAt: report.StartedAt.Format(reportDateTimeLayout),
		ElapsedMs: report.Elapsed().Milliseconds(),
		Results:   commits,
	}
	if !report.FinishedAt.IsZero() {
		jr.FinishedAt = report.FinishedAt.Format(reportDateTimeLayout)
	}
	return jr
}

func toJSONRunCommit(res rewrite.Result) JSONRunCommit {
	return JSONRunCommit{
		Position:        res.Position,
		Original:        res.Original.String(),
		Target:          res.Target.String(),
		New:             res.New.String(),
		OriginalSubject: res.OriginalSubject,
		Message:         res.Message,
		Status:          string(res.Status),
		Error:           res.Error,
		DurationMs:      res.Duration.Milliseconds(),
	}
}
