package git

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/masmgr/git-bard/internal/gittest"
	"pgregory.net/rapid"
)

// --- Generators ---

func genRefName() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z][a-z0-9/_-]{0,12}`)
}

// --- Property Tests ---

func TestRapidParseRangeSpec_NeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		spec := rapid.String().Draw(t, "spec")

		rs, err := ParseRangeSpec(spec)
		if err != nil {
			var rangeErr *InvalidRangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("ParseRangeSpec(%q) returned %T, expected *InvalidRangeError", spec, err)
			}
			return
		}
		if rs.Kind == RangeBetween && rs.To == "" {
			t.Fatalf("ParseRangeSpec(%q) produced a range with no upper endpoint", spec)
		}
	})
}

func TestRapidParseRangeSpec_LastN(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10000).Draw(t, "n")

		rs, err := ParseRangeSpec(fmt.Sprintf("HEAD~%d", n))
		if err != nil {
			t.Fatalf("HEAD~%d: %v", n, err)
		}
		if rs.Kind != RangeLast || rs.Count != n {
			t.Fatalf("HEAD~%d parsed as kind %v count %d", n, rs.Kind, rs.Count)
		}
	})
}

func TestRapidParseRangeSpec_TwoDotEndpoints(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := genRefName().Draw(t, "from")
		to := genRefName().Draw(t, "to")

		rs, err := ParseRangeSpec(from + ".." + to)
		if err != nil {
			t.Fatalf("%s..%s: %v", from, to, err)
		}
		if rs.Kind != RangeBetween || rs.From != from || rs.To != to {
			t.Fatalf("%s..%s parsed as %+v", from, to, rs)
		}
	})
}

func TestRapidResolve_LastNClamps(t *testing.T) {
	const size = 7
	fx := gittest.New(t)
	hashes := fx.Linear(size)
	resolver := NewResolver(openFixture(t, fx))

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 3*size).Draw(t, "n")
		useRange := rapid.Bool().Draw(t, "useRange")

		spec := fmt.Sprintf("HEAD~%d", n)
		if useRange {
			spec += "..HEAD"
		}
		rng, err := resolver.Resolve(context.Background(), spec)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", spec, err)
		}

		want := min(n, size)
		if rng.Len() != want {
			t.Fatalf("Resolve(%q) selected %d commits, expected %d", spec, rng.Len(), want)
		}
		refs := rng.Refs()
		for i, ref := range refs {
			if string(ref) != hashes[size-want+i] {
				t.Fatalf("entry %d = %s, expected %s", i, ref, hashes[size-want+i])
			}
		}
	})
}

func TestRapidResolve_OrderedAndUnique(t *testing.T) {
	const size = 6
	fx := gittest.New(t)
	hashes := fx.Linear(size)
	resolver := NewResolver(openFixture(t, fx))

	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.IntRange(0, size-2).Draw(t, "lo")
		hi := rapid.IntRange(lo+1, size-1).Draw(t, "hi")

		rng, err := resolver.Resolve(context.Background(), hashes[lo]+".."+hashes[hi])
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if rng.Len() != hi-lo {
			t.Fatalf("selected %d commits, expected %d", rng.Len(), hi-lo)
		}
		seen := make(map[CommitRef]bool)
		prev := -1
		for _, e := range rng.Entries {
			if seen[e.Ref] {
				t.Fatalf("duplicate entry %s", e.Ref)
			}
			seen[e.Ref] = true
			if e.Position <= prev {
				t.Fatalf("positions out of order: %d after %d", e.Position, prev)
			}
			prev = e.Position
			if e.Position+e.TipOffset != size-1 {
				t.Fatalf("position %d and tip offset %d disagree", e.Position, e.TipOffset)
			}
		}
	})
}
