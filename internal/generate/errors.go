package generate

import (
	"errors"
	"fmt"
)

// ErrUnknownProvider is returned by NewBackend for an unsupported provider id.
var ErrUnknownProvider = errors.New("unknown provider")

// GenerationError reports a backend failure or output that is not a valid
// Conventional Commit message. Output holds the raw text when there was any.
type GenerationError struct {
	Reason string
	Output string
	Err    error
}

func (e *GenerationError) Error() string {
	msg := "message generation failed: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// RateLimitError reports throttling by the backend. After the retry budget is
// spent, Attempts holds the number of calls made.
type RateLimitError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *RateLimitError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("%s rate limit exceeded after %d attempts: %v", e.Provider, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s rate limit exceeded: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }
