package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/rewrite"
)

const reportDateTimeLayout = "2006-01-02T15:04:05"

func openOutputWriter(options OutputOptions) (io.Writer, *os.File, error) {
	if options.OutputPath == "" {
		if options.Stdout != nil {
			return options.Stdout, nil, nil
		}
		return os.Stdout, nil, nil
	}
	file, err := os.Create(options.OutputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

func writeJSON(out io.Writer, data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// truncateMessage shortens msg to maxLen characters, ellipsis included.
func truncateMessage(msg string, maxLen int) string {
	if utf8.RuneCountInString(msg) <= maxLen {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:maxLen-3]) + "..."
}

// summaryLine returns the first line of a commit message.
func summaryLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}

// bodyOf returns everything after the summary and its blank line.
func bodyOf(msg string) string {
	_, body, ok := strings.Cut(msg, "\n\n")
	if !ok {
		return ""
	}
	return strings.TrimSpace(body)
}

func shortRef(ref git.CommitRef) string {
	if ref == "" {
		return "-"
	}
	return ref.Short()
}

func getStatusColor(status rewrite.Status) func(string, ...interface{}) string {
	switch status {
	case rewrite.StatusFailed:
		return color.RedString
	case rewrite.StatusDryRun:
		return color.YellowString
	default:
		return color.GreenString
	}
}

func getStateColor(state rewrite.State) func(string, ...interface{}) string {
	switch state {
	case rewrite.StateAborted:
		return color.RedString
	case rewrite.StateSucceeded:
		return color.GreenString
	default:
		return color.YellowString
	}
}

func getStatusEmoji(status rewrite.Status) string {
	switch status {
	case rewrite.StatusFailed:
		return "🔴"
	case rewrite.StatusDryRun:
		return "🟡"
	default:
		return "🟢"
	}
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
