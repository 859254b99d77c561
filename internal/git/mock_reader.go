package git

import (
	"context"
	"sync"
)

// MockExtractor is a test double for DiffExtractor.
// It returns a canned payload for every ref and can fail on chosen refs.
type MockExtractor struct {
	mu       sync.Mutex
	Payloads map[CommitRef]*DiffPayload
	Errors   map[CommitRef]error
	Calls    []CommitRef
}

// NewMockExtractor creates a MockExtractor with no canned data.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{
		Payloads: make(map[CommitRef]*DiffPayload),
		Errors:   make(map[CommitRef]error),
	}
}

// Extract returns the configured payload or error for ref. Refs without a
// canned payload get a minimal one naming the ref.
func (m *MockExtractor) Extract(_ context.Context, ref CommitRef) (*DiffPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, ref)

	if err, ok := m.Errors[ref]; ok {
		return nil, err
	}
	if p, ok := m.Payloads[ref]; ok {
		return p, nil
	}
	return &DiffPayload{
		Commit: CommitInfo{SHA: ref, Message: "update " + ref.Short(), Parents: 1},
		Files:  []FileDiff{{Path: "file.txt", Kind: ChangeKindModified, LinesAdded: 1, Patch: "+x\n"}},
	}, nil
}
