// Package hint guesses a Conventional Commit type for a commit from its
// original message and the paths it touches. The guess is only a prompt hint;
// the generator is free to ignore it.
package hint

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/masmgr/git-bard/internal/git"
)

// priority is the order in which message rules are tried. Narrow types come
// before broad ones so "fix typo in docs" is not reported as feat.
var priority = []string{"revert", "fix", "perf", "refactor", "docs", "test", "ci", "build", "style", "feat", "chore"}

// DefaultPatterns returns the message rules used when none are configured.
func DefaultPatterns() map[string][]string {
	return map[string][]string{
		"revert":   {`^revert\b`},
		"fix":      {`\bfix(ed|es)?\b`, `\bbug\b`, `\bhotfix\b`, `\bpatch\b`},
		"perf":     {`\bperf(ormance)?\b`, `\boptimi[sz](e|ed|es|ation)\b`, `\bspeed ?up\b`},
		"refactor": {`\brefactor(ed|ing)?\b`, `\bclean ?up\b`, `\brestructure\b`},
		"docs":     {`\bdocs?\b`, `\breadme\b`, `\bdocument(ed|ation)?\b`},
		"test":     {`\btests?\b`, `\bspecs?\b`},
		"ci":       {`\bci\b`, `\bworkflows?\b`, `\bpipeline\b`},
		"build":    {`\bbump\b`, `\bdep(s|endenc(y|ies))\b`, `\bmakefile\b`},
		"style":    {`\bformat(ting)?\b`, `\blint\b`, `\bwhitespace\b`},
		"feat":     {`\badd(ed|s)?\b`, `\bimplement(ed|s)?\b`, `\bintroduce[ds]?\b`, `\bsupport\b`},
		"chore":    {`\bwip\b`, `\bchore\b`},
	}
}

// DefaultPathRules maps a type to globs; when every changed file matches one
// rule, that type wins over message rules.
func DefaultPathRules() map[string][]string {
	return map[string][]string{
		"docs": {"**/*.md", "**/*.rst", "**/*.txt", "docs/**", "**/LICENSE*"},
		"test": {"**/*_test.go", "**/test/**", "**/tests/**", "**/*.test.*", "**/*.spec.*", "**/testdata/**"},
		"ci":   {".github/**", ".gitlab-ci.yml", ".circleci/**", "**/Jenkinsfile"},
	}
}

var conventionalPrefix = regexp.MustCompile(`^([a-z]+)(\([^)]*\))?!?:\s`)

// Hinter holds compiled message rules and path rules.
type Hinter struct {
	patterns map[string][]*regexp.Regexp
	paths    map[string][]string
}

// New compiles the given message patterns, case-insensitively. Unknown types
// are ignored. Returns an error if any pattern fails to compile.
func New(patterns, paths map[string][]string) (*Hinter, error) {
	compiled := make(map[string][]*regexp.Regexp, len(patterns))
	for typ, list := range patterns {
		for _, p := range list {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if !strings.HasPrefix(p, "(?i)") {
				p = "(?i)" + p
			}
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, err
			}
			compiled[typ] = append(compiled[typ], re)
		}
	}
	return &Hinter{patterns: compiled, paths: paths}, nil
}

// Default returns a Hinter built from DefaultPatterns and DefaultPathRules.
func Default() *Hinter {
	h, err := New(DefaultPatterns(), DefaultPathRules())
	if err != nil {
		panic(err)
	}
	return h
}

// Suggest returns a type for the payload, or "" when nothing matched.
// An original message that already carries a known conventional prefix keeps
// its type.
func (h *Hinter) Suggest(p *git.DiffPayload) string {
	msg := strings.TrimSpace(p.Commit.Message)

	if m := conventionalPrefix.FindStringSubmatch(strings.ToLower(msg)); m != nil && known(m[1]) {
		return m[1]
	}
	if typ := h.byPaths(p.Paths()); typ != "" {
		return typ
	}
	return h.ByMessage(msg)
}

// ByMessage applies only the message rules.
func (h *Hinter) ByMessage(message string) string {
	for _, typ := range priority {
		for _, re := range h.patterns[typ] {
			if re.MatchString(message) {
				return typ
			}
		}
	}
	return ""
}

func (h *Hinter) byPaths(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	for _, typ := range priority {
		globs := h.paths[typ]
		if len(globs) == 0 {
			continue
		}
		all := true
		for _, p := range paths {
			if !matchAny(p, globs) {
				all = false
				break
			}
		}
		if all {
			return typ
		}
	}
	return ""
}

func matchAny(path string, globs []string) bool {
	path = strings.ReplaceAll(path, "\\", "/")
	for _, g := range globs {
		if matched, _ := doublestar.Match(g, path); matched {
			return true
		}
	}
	return false
}

func known(typ string) bool {
	for _, t := range priority {
		if t == typ {
			return true
		}
	}
	return false
}
