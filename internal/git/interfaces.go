package git

import "context"

// RangeResolver resolves range specifiers into commit ranges.
type RangeResolver interface {
	Resolve(ctx context.Context, spec string) (CommitRange, error)
}

// Extractor produces the diff payload of a single commit.
// This abstraction lets the rewrite driver run against canned diffs in tests.
type Extractor interface {
	Extract(ctx context.Context, ref CommitRef) (*DiffPayload, error)
}

// ChainReader reads the current first-parent history, root first.
type ChainReader interface {
	FirstParentChain(ctx context.Context) ([]CommitRef, error)
}

// Compile-time interface conformance checks.
var (
	_ RangeResolver = (*Resolver)(nil)
	_ Extractor     = (*DiffExtractor)(nil)
	_ ChainReader   = (*Repository)(nil)
	_ Extractor     = (*MockExtractor)(nil)
)
