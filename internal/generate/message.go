package generate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSummaryLength bounds the first line of a generated message.
const MaxSummaryLength = 72

// Types is the closed Conventional Commit type vocabulary.
var Types = []string{"feat", "fix", "docs", "style", "refactor", "perf", "test", "build", "ci", "chore", "revert"}

// ErrMalformedMessage is wrapped by every ParseMessage failure.
var ErrMalformedMessage = errors.New("malformed conventional commit message")

var summaryPattern = regexp.MustCompile(`^([a-z]+)(?:\(([^()\s]+)\))?(!)?: (\S.*)$`)

// Message is a parsed Conventional Commit message.
type Message struct {
	Type        string
	Scope       string
	Breaking    bool
	Description string
	Body        string
}

// Summary renders the first line: type(scope)!: description.
func (m Message) Summary() string {
	var b strings.Builder
	b.WriteString(m.Type)
	if m.Scope != "" {
		b.WriteString("(" + m.Scope + ")")
	}
	if m.Breaking {
		b.WriteString("!")
	}
	b.WriteString(": ")
	b.WriteString(m.Description)
	return b.String()
}

// String renders the full message, with the body separated by a blank line.
func (m Message) String() string {
	if m.Body == "" {
		return m.Summary()
	}
	return m.Summary() + "\n\n" + m.Body
}

// IsType reports whether typ belongs to the vocabulary.
func IsType(typ string) bool {
	for _, t := range Types {
		if t == typ {
			return true
		}
	}
	return false
}

// ParseMessage validates s against the Conventional Commit grammar.
func ParseMessage(s string) (Message, error) {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n ")
	if strings.TrimSpace(s) == "" {
		return Message{}, fmt.Errorf("%w: empty", ErrMalformedMessage)
	}

	summary, rest, hasRest := strings.Cut(s, "\n")
	if n := utf8.RuneCountInString(summary); n > MaxSummaryLength {
		return Message{}, fmt.Errorf("%w: summary is %d characters, limit %d", ErrMalformedMessage, n, MaxSummaryLength)
	}
	m := summaryPattern.FindStringSubmatch(summary)
	if m == nil {
		return Message{}, fmt.Errorf("%w: summary %q is not type(scope): description", ErrMalformedMessage, summary)
	}
	if !IsType(m[1]) {
		return Message{}, fmt.Errorf("%w: unknown type %q", ErrMalformedMessage, m[1])
	}
	desc := strings.TrimSpace(m[4])
	if desc == "" {
		return Message{}, fmt.Errorf("%w: empty description", ErrMalformedMessage)
	}
	if strings.HasSuffix(desc, ".") {
		return Message{}, fmt.Errorf("%w: summary ends with a period", ErrMalformedMessage)
	}
	if strings.Contains(desc, "`") || strings.Contains(desc, "**") || strings.HasPrefix(desc, "#") {
		return Message{}, fmt.Errorf("%w: summary contains markdown", ErrMalformedMessage)
	}

	msg := Message{Type: m[1], Scope: m[2], Breaking: m[3] == "!", Description: desc}
	if hasRest {
		if !strings.HasPrefix(rest, "\n") {
			return Message{}, fmt.Errorf("%w: body must follow a blank line", ErrMalformedMessage)
		}
		msg.Body = strings.TrimSpace(rest)
	}
	return msg, nil
}
