package generate

import (
	"context"
	"sync"
)

// Reply is one scripted backend answer.
type Reply struct {
	Text string
	Err  error
}

// ScriptedBackend is a test double that replays a fixed list of replies and
// then repeats Fallback.
type ScriptedBackend struct {
	mu       sync.Mutex
	Replies  []Reply
	Fallback Reply
	Prompts  []Prompt
}

// NewScriptedBackend creates a backend answering with replies in order.
func NewScriptedBackend(replies ...Reply) *ScriptedBackend {
	return &ScriptedBackend{Replies: replies, Fallback: Reply{Text: "chore: update files"}}
}

// Name implements Backend.
func (s *ScriptedBackend) Name() string { return "scripted" }

// Complete implements Backend.
func (s *ScriptedBackend) Complete(ctx context.Context, p Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, p)

	r := s.Fallback
	if len(s.Replies) > 0 {
		r = s.Replies[0]
		s.Replies = s.Replies[1:]
	}
	return r.Text, r.Err
}

// Calls returns how many prompts were received.
func (s *ScriptedBackend) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}
