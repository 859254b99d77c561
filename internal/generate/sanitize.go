package generate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*\\s*\n(.*?)\n?```\\s*$")
	labelPattern = regexp.MustCompile(`(?i)^\**\s*(suggested\s+)?commit\s+message\s*\**\s*:\s*\**\s*`)
	typePattern  = regexp.MustCompile(`^([A-Za-z]+)(\([^()]*\))?(!)?:\s*`)
)

// Sanitize removes the decoration models commonly wrap around an answer.
// The result still has to pass ParseMessage.
func Sanitize(raw string) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	s = labelPattern.ReplaceAllString(s, "")
	s = trimQuotes(strings.TrimSpace(s))

	lines := strings.Split(s, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return ""
	}

	summary := cleanSummary(lines[0])
	body := strings.TrimSpace(strings.Join(lines[1:], "\n"))
	if body == "" {
		return summary
	}
	return summary + "\n\n" + body
}

func cleanSummary(line string) string {
	line = strings.ReplaceAll(trimQuotes(strings.TrimSpace(line)), "`", "")
	line = strings.TrimRight(line, ". ")

	loc := typePattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return line
	}
	typ := strings.ToLower(line[loc[2]:loc[3]])
	scope := ""
	if loc[4] != -1 {
		scope = line[loc[4]:loc[5]]
	}
	bang := ""
	if loc[6] != -1 {
		bang = "!"
	}
	return typ + scope + bang + ": " + lowerFirst(line[loc[1]:])
}

// lowerFirst lowercases the first letter unless the first word looks like an
// acronym (API, HTTP).
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsUpper(r) {
		return s
	}
	if next, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsUpper(next) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func trimQuotes(s string) string {
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first != last || (first != '"' && first != '\'' && first != '`') {
			return s
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
