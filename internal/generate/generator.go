// Package generate turns commit diffs into Conventional Commit messages using
// a text generation backend.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/masmgr/git-bard/internal/aggregation"
	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/hint"
	"github.com/masmgr/git-bard/internal/logger"
	"github.com/masmgr/git-bard/internal/redact"
	"github.com/sirupsen/logrus"
)

// Options configures a Generator.
type Options struct {
	Timeout     time.Duration // per backend call; 0 disables
	Backoff     Backoff
	RedactPaths []string
	MaxTokens   int
	Temperature float32
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		Timeout:     60 * time.Second,
		Backoff:     DefaultBackoff(),
		RedactPaths: redact.DefaultPaths,
		MaxTokens:   defaultMaxTokens,
		Temperature: 0.2,
	}
}

// Generator produces one validated message per diff payload.
type Generator struct {
	backend Backend
	hinter  *hint.Hinter
	opts    Options
	sleep   func(context.Context, time.Duration) error
	log     *logrus.Entry
}

// New creates a Generator. A nil hinter disables type hints.
func New(backend Backend, hinter *hint.Hinter, opts Options) *Generator {
	if opts.Backoff.Attempts < 1 {
		opts.Backoff.Attempts = 1
	}
	return &Generator{
		backend: backend,
		hinter:  hinter,
		opts:    opts,
		sleep:   sleepContext,
		log:     logger.WithComponent("generate").WithField("backend", backend.Name()),
	}
}

// Backend returns the backend in use.
func (g *Generator) Backend() Backend {
	return g.backend
}

// Generate asks the backend for a message describing p, retrying while the
// backend reports throttling.
func (g *Generator) Generate(ctx context.Context, p *git.DiffPayload) (Message, error) {
	prompt := g.BuildPrompt(p)
	log := g.log.WithField("commit", p.Commit.SHA.Short())

	for attempt := 1; ; attempt++ {
		raw, err := g.complete(ctx, prompt)
		if err == nil {
			msg, perr := ParseMessage(Sanitize(raw))
			if perr != nil {
				return Message{}, &GenerationError{Reason: "backend output is not a conventional commit", Output: raw, Err: perr}
			}
			log.WithField("attempt", attempt).Debug("message generated")
			return msg, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return Message{}, ctxErr
		}
		var rl *RateLimitError
		if !errors.As(err, &rl) {
			var ge *GenerationError
			if errors.As(err, &ge) {
				return Message{}, err
			}
			return Message{}, &GenerationError{Reason: "backend call failed", Err: err}
		}
		if attempt >= g.opts.Backoff.Attempts {
			return Message{}, &RateLimitError{Provider: rl.Provider, Attempts: attempt, Err: rl.Err}
		}

		delay := g.opts.Backoff.Delay(attempt)
		log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).Warn("rate limited, backing off")
		if err := g.sleep(ctx, delay); err != nil {
			return Message{}, err
		}
	}
}

func (g *Generator) complete(ctx context.Context, p Prompt) (string, error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}
	out, err := g.backend.Complete(ctx, p)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		var ge *GenerationError
		if !errors.As(err, &ge) {
			err = &GenerationError{Reason: fmt.Sprintf("no response within %s", g.opts.Timeout), Err: err}
		}
	}
	return out, err
}

// BuildPrompt redacts p and renders the prompt sent to the backend.
func (g *Generator) BuildPrompt(p *git.DiffPayload) Prompt {
	scrubbed, redactions := g.redact(p)
	if redactions > 0 {
		g.log.WithField("commit", p.Commit.SHA.Short()).Infof("redacted %d secret(s) from diff", redactions)
	}

	typeHint := ""
	if g.hinter != nil {
		typeHint = g.hinter.Suggest(p)
	}

	shape := aggregation.Shape(p)

	return Prompt{
		System: SystemPrompt,
		User: BuildUserPrompt(PromptInput{
			Diff:            scrubbed.Render(),
			OriginalMessage: scrubbed.Commit.Message,
			Hint:            typeHint,
			Scope:           shape.Scope,
			Shape:           shape.Summary(),
			Root:            p.Commit.IsRoot(),
			Truncated:       p.Truncated(),
		}),
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	}
}

func (g *Generator) redact(p *git.DiffPayload) (*git.DiffPayload, int) {
	out := *p
	out.Files = make([]git.FileDiff, len(p.Files))
	total := 0

	var n int
	out.Commit.Message, n = redact.SecretsCount(p.Commit.Message)
	total += n

	for i, f := range p.Files {
		if f.Patch != "" {
			if redact.ShouldRedactPath(f.Path, g.opts.RedactPaths) {
				f.Patch = fmt.Sprintf("diff --git a/%s b/%s\n", f.Path, f.Path) + redact.Content(f.Patch, f.Path, g.opts.RedactPaths)
				total++
			} else {
				f.Patch, n = redact.SecretsCount(f.Patch)
				total += n
			}
		}
		out.Files[i] = f
	}
	return &out, total
}
