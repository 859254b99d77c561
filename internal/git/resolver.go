package git

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var abbrevHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{4,40}$`)

// Resolver turns range specifiers into ordered commit ranges.
type Resolver struct {
	repo *Repository
}

// NewResolver creates a resolver over repo.
func NewResolver(repo *Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve parses spec and returns the commits it selects, oldest first.
//
// Only commits on the tip's first-parent history can be rewritten, because
// they are addressed by their distance from the tip once rewriting starts.
// A range selecting anything else fails with InvalidRangeError; this
// includes full history when HEAD has merged side branches. HEAD~N alone
// counts first-parent steps and head is the tip alone, so both stay usable
// on merge histories.
func (r *Resolver) Resolve(ctx context.Context, spec string) (CommitRange, error) {
	rs, err := ParseRangeSpec(spec)
	if err != nil {
		return CommitRange{}, err
	}

	chain, err := r.repo.FirstParentChain(ctx)
	if err != nil {
		if errors.Is(err, ErrNoCommits) {
			return CommitRange{}, &InvalidRangeError{Spec: spec, Reason: "selects zero commits", Err: err}
		}
		return CommitRange{}, err
	}

	positions := make([]int, 0, len(chain))
	switch rs.Kind {
	case RangeAll:
		// Full history is "..HEAD": side-branch commits fail it the same way.
		positions, err = r.between(ctx, RangeSpec{Raw: spec, Kind: RangeBetween, To: "HEAD"}, chain)
		if err != nil {
			return CommitRange{}, err
		}
	case RangeHead:
		positions = append(positions, len(chain)-1)
	case RangeLast:
		n := min(rs.Count, len(chain))
		for i := len(chain) - n; i < len(chain); i++ {
			positions = append(positions, i)
		}
	case RangeBetween:
		positions, err = r.between(ctx, rs, chain)
		if err != nil {
			return CommitRange{}, err
		}
	}

	if len(positions) == 0 {
		return CommitRange{}, &InvalidRangeError{Spec: spec, Reason: "selects zero commits"}
	}

	entries := make([]RangeEntry, len(positions))
	for i, pos := range positions {
		entries[i] = RangeEntry{
			Ref:       chain[pos],
			Position:  pos,
			TipOffset: len(chain) - 1 - pos,
		}
	}
	return CommitRange{Spec: spec, Entries: entries, ChainLength: len(chain)}, nil
}

// between computes the ancestry set difference To \ From and maps it onto
// first-parent chain positions.
func (r *Resolver) between(ctx context.Context, rs RangeSpec, chain []CommitRef) ([]int, error) {
	to, err := r.resolveEndpoint(rs.To, chain)
	if err != nil {
		return nil, err
	}
	include, err := r.repo.reachable(ctx, to)
	if err != nil {
		return nil, err
	}

	if rs.From != "" {
		if n, ok := headOffset(rs.From); !ok || n < len(chain) {
			from, err := r.resolveEndpoint(rs.From, chain)
			if err != nil {
				return nil, err
			}
			exclude, err := r.repo.reachable(ctx, from)
			if err != nil {
				return nil, err
			}
			for h := range exclude {
				delete(include, h)
			}
		}
		// HEAD~N past the root is clamped: nothing is excluded.
	}

	index := make(map[CommitRef]int, len(chain))
	for i, ref := range chain {
		index[ref] = i
	}

	positions := make([]int, 0, len(include))
	for h := range include {
		pos, ok := index[CommitRef(h.String())]
		if !ok {
			return nil, &InvalidRangeError{
				Spec:   rs.Raw,
				Reason: fmt.Sprintf("commit %s is not on the first-parent history of HEAD", CommitRef(h.String()).Short()),
			}
		}
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions, nil
}

// resolveEndpoint resolves one side of a range to a commit hash.
func (r *Resolver) resolveEndpoint(name string, chain []CommitRef) (plumbing.Hash, error) {
	if n, ok := headOffset(name); ok {
		if n >= len(chain) {
			return plumbing.ZeroHash, &AmbiguousReferenceError{
				Name: name,
				Err:  fmt.Errorf("history has only %d commits", len(chain)),
			}
		}
		return plumbing.NewHash(string(chain[len(chain)-1-n])), nil
	}

	// A branch or tag and a hash prefix of the same name compete on equal
	// terms; any disagreement is ambiguous.
	candidates := r.namedRefs(name)
	if abbrevHashPattern.MatchString(name) {
		matches, err := r.matchHashPrefix(strings.ToLower(name))
		if err != nil {
			return plumbing.ZeroHash, err
		}
		candidates = appendUnique(candidates, matches...)
	}
	var h plumbing.Hash
	switch len(candidates) {
	case 0:
		resolved, err := r.repo.repo.ResolveRevision(plumbing.Revision(name))
		if err != nil {
			return plumbing.ZeroHash, &AmbiguousReferenceError{Name: name, Err: err}
		}
		h = *resolved
	case 1:
		h = plumbing.NewHash(string(candidates[0]))
	default:
		return plumbing.ZeroHash, &AmbiguousReferenceError{Name: name, Candidates: candidates}
	}
	if _, err := r.repo.repo.CommitObject(h); err != nil {
		return plumbing.ZeroHash, &AmbiguousReferenceError{Name: name, Err: fmt.Errorf("not a commit: %w", err)}
	}
	return h, nil
}

// matchHashPrefix lists all commits whose hash starts with prefix.
func (r *Resolver) matchHashPrefix(prefix string) ([]CommitRef, error) {
	iter, err := r.repo.repo.CommitObjects()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var matches []CommitRef
	err = iter.ForEach(func(c *object.Commit) error {
		if strings.HasPrefix(c.Hash.String(), prefix) {
			matches = append(matches, CommitRef(c.Hash.String()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i] < matches[j] })
	return matches, nil
}

// namedRefs returns the distinct commits a branch and a tag called name
// point to, branch first.
func (r *Resolver) namedRefs(name string) []CommitRef {
	var refs []CommitRef
	for _, ref := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(name),
		plumbing.NewTagReferenceName(name),
	} {
		if h, err := r.peel(ref); err == nil {
			refs = appendUnique(refs, CommitRef(h.String()))
		}
	}
	return refs
}

func appendUnique(refs []CommitRef, more ...CommitRef) []CommitRef {
	for _, m := range more {
		if !slices.Contains(refs, m) {
			refs = append(refs, m)
		}
	}
	return refs
}

func (r *Resolver) peel(name plumbing.ReferenceName) (plumbing.Hash, error) {
	ref, err := r.repo.repo.Reference(name, true)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if tag, err := r.repo.repo.TagObject(ref.Hash()); err == nil {
		c, err := tag.Commit()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return c.Hash, nil
	}
	return ref.Hash(), nil
}
