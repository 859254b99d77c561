package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/masmgr/git-bard/config"
	"github.com/masmgr/git-bard/internal/apply"
	"github.com/masmgr/git-bard/internal/generate"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "0.3.0"

const rangeHelp = `RANGE selects the commits to rewrite, oldest first:

   (none) or all    every commit reachable from HEAD
   head             the last commit only
   HEAD~N           the last N commits (clamped to the history length)
   A..B             commits after A up to and including B
   A.. / ..B        open ranges (B defaults to HEAD; ..B starts at the root)
   REF              everything up to and including REF

Only commits on HEAD's first-parent line can be selected.`

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                   "git-bard",
		Usage:                  "Rewrite commit messages as Conventional Commits with an LLM",
		UsageText:              "git-bard [options] [range]",
		ArgsUsage:              "[range]",
		Description:            rangeHelp,
		Version:                Version,
		Flags:                  rewriteFlags(),
		Action:                 rewriteAction,
		UseShortOptionHandling: true,
		HideHelpCommand:        true,
	}
}

func rewriteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file (default: " + config.FileName + " in the repository, then the home directory)",
		},
		&cli.StringFlag{
			Name:    "provider",
			Aliases: []string{"p"},
			Usage:   "Generation provider (" + strings.Join(generate.Providers(), ", ") + ")",
		},
		&cli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "Model name (default depends on the provider)",
		},
		&cli.StringFlag{
			Name:  "applier",
			Usage: "How messages are written back (" + strings.Join(apply.Names(), ", ") + ")",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "Generate and show messages without rewriting anything",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Skip the confirmation prompt",
		},
		&cli.DurationFlag{
			Name:  "delay",
			Usage: "Pause between commits (default from config: 500ms)",
		},
		&cli.IntFlag{
			Name:  "rpm",
			Usage: "Maximum generation requests per minute (0 keeps the configured value)",
		},
		&cli.IntFlag{
			Name:  "max-file-bytes",
			Usage: "Maximum diff bytes sent per file (0 keeps the configured value)",
		},
		&cli.IntFlag{
			Name:  "max-diff-bytes",
			Usage: "Maximum diff bytes sent per commit (0 keeps the configured value)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns of files whose diff is sent (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns of files whose diff is withheld (can be specified multiple times)",
		},
		&cli.BoolFlag{
			Name:  "no-hints",
			Usage: "Do not suggest a commit type to the model",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Report format (console, json, markdown, ci)",
			Value:   "console",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report file path (default: stdout)",
		},
		&cli.BoolFlag{
			Name:  "bodies",
			Usage: "Include message bodies in the report",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format (text, json)",
		},
	}
}

// loadConfig builds the effective configuration. Later sources win:
// defaults, config file, environment, flags.
func loadConfig(c *cli.Context, repoPath string) (*config.Config, error) {
	if err := config.LoadDotEnv(repoPath); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(c.String("config"), repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv(os.Getenv)
	applyFlags(c, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if v := c.String("provider"); v != "" {
		cfg.SetProvider(v)
	}
	if v := c.String("model"); v != "" {
		cfg.Generation.Model = v
	}
	if v := c.String("applier"); v != "" {
		cfg.Rewrite.Applier = v
	}
	if c.IsSet("delay") {
		cfg.Rewrite.Delay = config.Duration(c.Duration("delay"))
	}
	if v := c.Int("rpm"); v > 0 {
		cfg.Rewrite.RequestsPerMinute = v
	}
	if v := c.Int("max-file-bytes"); v > 0 {
		cfg.Diff.MaxFileBytes = v
	}
	if v := c.Int("max-diff-bytes"); v > 0 {
		cfg.Diff.MaxTotalBytes = v
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if c.Bool("no-hints") {
		cfg.Hints.Enabled = false
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Log.Format = v
	}
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var abort *abortError
		if errors.As(err, &abort) {
			fmt.Fprintln(os.Stderr, abort.hint())
		}
		os.Exit(1)
	}
}
