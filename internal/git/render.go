package git

import (
	"fmt"
	"strings"
	"time"
)

// Render formats the payload like `git show`: a metadata header followed by
// one section per file. Omitted or size-dropped files keep their header line
// so file boundaries survive truncation.
func (p *DiffPayload) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "commit %s\n", p.Commit.SHA)
	fmt.Fprintf(&b, "Author: %s\n", p.Commit.Author)
	fmt.Fprintf(&b, "Date:   %s\n", p.Commit.When.Format(time.RFC1123Z))
	if p.Commit.IsRoot() {
		b.WriteString("Root:   yes (initial commit, all files added)\n")
	}
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(p.Commit.Message, "\n"), "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, f := range p.Files {
		fmt.Fprintf(&b, " %s | %s +%d -%d\n", f.Path, f.Kind, f.LinesAdded, f.LinesDeleted)
	}
	b.WriteString("\n")

	for _, f := range p.Files {
		switch {
		case f.Omitted:
			fmt.Fprintf(&b, "diff --git a/%s b/%s\n(content omitted by path filter)\n", f.oldOrPath(), f.Path)
		case f.Patch == "" && f.Truncated:
			fmt.Fprintf(&b, "diff --git a/%s b/%s\n(content omitted: diff size limit reached)\n", f.oldOrPath(), f.Path)
		case f.Patch == "":
			fmt.Fprintf(&b, "diff --git a/%s b/%s\n(no textual changes)\n", f.oldOrPath(), f.Path)
		default:
			b.WriteString(f.Patch)
			if !strings.HasSuffix(f.Patch, "\n") {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func (f FileDiff) oldOrPath() string {
	if f.OldPath != "" {
		return f.OldPath
	}
	return f.Path
}
