package git

import (
	"regexp"
	"strconv"
	"strings"
)

// RangeKind classifies a parsed range specifier.
type RangeKind int

const (
	// RangeAll selects the whole first-parent history.
	RangeAll RangeKind = iota
	// RangeHead selects only the tip commit.
	RangeHead
	// RangeLast selects the last Count commits.
	RangeLast
	// RangeBetween selects commits reachable from To but not from From.
	RangeBetween
)

// FullHistoryToken explicitly requests the whole history.
const FullHistoryToken = "all"

// RangeSpec is the parsed form of a user-supplied range specifier.
type RangeSpec struct {
	Raw   string
	Kind  RangeKind
	From  string // empty means "none", i.e. the root
	To    string // never empty for RangeBetween
	Count int    // for RangeLast
}

var headRelativePattern = regexp.MustCompile(`(?i)^HEAD(?:~(\d*)|(\^+))?$`)

// headOffset reports how many first-parent steps below the tip ref points
// to, for refs of the form HEAD, HEAD~N, HEAD~ and HEAD^^^.
func headOffset(ref string) (int, bool) {
	m := headRelativePattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, false
	}
	switch {
	case m[2] != "":
		return len(m[2]), true
	case strings.Contains(ref, "~"):
		if m[1] == "" {
			return 1, true
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, true
	}
}

// ParseRangeSpec parses a range specifier. It only checks syntax; whether the
// named references exist is decided by the Resolver.
//
// Supported forms, in precedence order:
//
//	""  / "all"        whole history
//	"head"             the tip commit (case-insensitive)
//	"A..B" "A.." "..B" reachable from B (default HEAD) but not from A
//	"HEAD~N" "HEAD^^"  the last N commits
//	"R"                everything reachable from R
func ParseRangeSpec(spec string) (RangeSpec, error) {
	raw := spec
	spec = strings.TrimSpace(spec)

	if spec == "" || strings.EqualFold(spec, FullHistoryToken) {
		return RangeSpec{Raw: raw, Kind: RangeAll}, nil
	}
	if strings.EqualFold(spec, "head") {
		return RangeSpec{Raw: raw, Kind: RangeHead, Count: 1}, nil
	}

	if strings.Contains(spec, "...") {
		return RangeSpec{}, &InvalidRangeError{Spec: raw, Reason: "symmetric difference (A...B) is not supported, use A..B"}
	}

	if idx := strings.Index(spec, ".."); idx != -1 {
		from := spec[:idx]
		to := spec[idx+2:]
		if strings.Contains(to, "..") {
			return RangeSpec{}, &InvalidRangeError{Spec: raw, Reason: "more than one '..' separator"}
		}
		if from == "" && to == "" {
			return RangeSpec{}, &InvalidRangeError{Spec: raw, Reason: "both endpoints are empty"}
		}
		if err := validateRefName(raw, from); err != nil {
			return RangeSpec{}, err
		}
		if err := validateRefName(raw, to); err != nil {
			return RangeSpec{}, err
		}
		if to == "" {
			to = "HEAD"
		}
		return RangeSpec{Raw: raw, Kind: RangeBetween, From: from, To: to}, nil
	}

	if err := validateRefName(raw, spec); err != nil {
		return RangeSpec{}, err
	}

	if n, ok := headOffset(spec); ok {
		if n == 0 {
			return RangeSpec{}, &InvalidRangeError{Spec: raw, Reason: "selects zero commits"}
		}
		return RangeSpec{Raw: raw, Kind: RangeLast, Count: n}, nil
	}
	if len(spec) > 5 && strings.EqualFold(spec[:5], "head~") {
		return RangeSpec{}, &InvalidRangeError{Spec: raw, Reason: "expected HEAD~N with a non-negative integer N"}
	}

	return RangeSpec{Raw: raw, Kind: RangeBetween, To: spec}, nil
}

func validateRefName(raw, name string) error {
	if name == "" {
		return nil
	}
	if strings.HasPrefix(name, "-") {
		return &InvalidRangeError{Spec: raw, Reason: "reference may not start with '-'"}
	}
	for _, r := range name {
		if r <= ' ' || r == 0x7f || r == ':' || r == '\\' || r == '?' || r == '*' || r == '[' {
			return &InvalidRangeError{Spec: raw, Reason: "reference contains an invalid character"}
		}
	}
	return nil
}
