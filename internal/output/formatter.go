package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/masmgr/git-bard/internal/rewrite"
)

// Compile-time interface conformance checks.
var (
	_ RunReportWriter = (*ConsoleRunWriter)(nil)
	_ RunReportWriter = (*JSONRunWriter)(nil)
	_ RunReportWriter = (*MarkdownRunWriter)(nil)
	_ RunReportWriter = (*CIRunWriter)(nil)

	_ rewrite.Observer = (*ConsoleProgress)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// Formats lists the accepted --format values.
var Formats = []OutputFormat{FormatConsole, FormatJSON, FormatMarkdown, FormatCI}

// ParseFormat validates a --format value. Empty means console.
func ParseFormat(s string) (OutputFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatConsole, nil
	}
	if s == "md" {
		return FormatMarkdown, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of console, json, markdown, ci)", s)
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	OutputPath string
	// Stdout receives the report when OutputPath is empty; nil means os.Stdout.
	Stdout io.Writer
	// Bodies includes message bodies in console and Markdown tables.
	Bodies bool
}

// OwnsStdout reports whether the report alone must occupy stdout, so that
// it stays machine-readable.
func (o OutputOptions) OwnsStdout() bool {
	return o.OutputPath == "" && o.Format != "" && o.Format != FormatConsole
}

// ProgressWriter picks where human-facing lines go: stdout, unless the
// report owns it.
func (o OutputOptions) ProgressWriter(stdout, stderr io.Writer) io.Writer {
	if o.OwnsStdout() {
		return stderr
	}
	return stdout
}

// RunReportWriter writes the summary of a rewrite run.
type RunReportWriter interface {
	Write(report *rewrite.Report, options OutputOptions) error
}

// NewRunReportWriter creates a run report writer for the specified format.
func NewRunReportWriter(format OutputFormat) RunReportWriter {
	switch format {
	case FormatJSON:
		return &JSONRunWriter{}
	case FormatMarkdown:
		return &MarkdownRunWriter{}
	case FormatCI:
		return &CIRunWriter{}
	default:
		return &ConsoleRunWriter{}
	}
}
