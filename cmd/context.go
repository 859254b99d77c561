package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/masmgr/git-bard/config"
	"github.com/masmgr/git-bard/internal/apply"
	"github.com/masmgr/git-bard/internal/generate"
	"github.com/masmgr/git-bard/internal/git"
	"github.com/masmgr/git-bard/internal/logger"
	"github.com/masmgr/git-bard/internal/output"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

// Replaced in tests.
var (
	newBackend      = generate.NewBackend
	keyringGet      = config.KeyringGet(config.SystemKeyring)
	stdinIsTerminal = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

// CommandContext holds the state shared by one invocation. Everything that
// can fail before history is touched is set up here.
type CommandContext struct {
	Config    *config.Config
	RepoPath  string
	Spec      string
	DryRun    bool
	Output    output.OutputOptions
	Repo      *git.Repository
	Extractor *git.DiffExtractor
	Generator *generate.Generator
	Applier   apply.Applier // nil in dry-run mode
	lock      *git.RepoLock
}

// NewCommandContext creates a context from CLI flags: configuration,
// credentials, logging, repository, lock and applier, in that order.
func NewCommandContext(ctx context.Context, c *cli.Context) (*CommandContext, error) {
	if c.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one range argument, got %d", c.NArg())
	}

	repoPath, err := filepath.Abs(c.String("repo"))
	if err != nil {
		return nil, fmt.Errorf("invalid repository path: %w", err)
	}

	format, err := output.ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(c, repoPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Log.Init(c.App.ErrWriter); err != nil {
		return nil, err
	}

	apiKey, err := config.ResolveAPIKey(cfg.Generation.Provider, os.Getenv, keyringGet)
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(ctx, cfg.Generation.Provider, cfg.Generation.Model, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend: %w", cfg.Generation.Provider, err)
	}
	hinter, err := cfg.Hinter()
	if err != nil {
		return nil, err
	}

	repo, err := git.OpenRepository(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	cc := &CommandContext{
		Config:    cfg,
		RepoPath:  repoPath,
		Spec:      c.Args().First(),
		DryRun:    c.Bool("dry-run"),
		Output:    output.OutputOptions{Format: format, OutputPath: c.String("output"), Stdout: c.App.Writer, Bodies: c.Bool("bodies")},
		Repo:      repo,
		Extractor: git.NewDiffExtractor(repo, cfg.DiffOptions()),
		Generator: generate.New(backend, hinter, cfg.GeneratorOptions()),
	}

	if cc.DryRun {
		return cc, nil
	}

	cc.lock, err = repo.Lock()
	if err != nil {
		return nil, err
	}

	applier, err := apply.New(cfg.Rewrite.Applier, repo)
	if err != nil {
		cc.Close()
		return nil, err
	}
	if cmsg, ok := applier.(*apply.Cmsg); ok && cfg.Rewrite.CmsgCommand != "" {
		cmsg.Command = cfg.Rewrite.CmsgCommand
	}
	if checker, ok := applier.(apply.Checker); ok {
		if err := checker.Check(); err != nil {
			cc.Close()
			return nil, err
		}
	}
	cc.Applier = applier

	logger.WithComponent("cmd").WithField("repo", repoPath).Debug("run context ready")
	return cc, nil
}

// Close releases the repository lock.
func (cc *CommandContext) Close() {
	if err := cc.lock.Release(); err != nil {
		logger.WithComponent("cmd").WithError(err).Warn("failed to remove lock file")
	}
}
