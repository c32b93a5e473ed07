package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/augurdev/augur/internal/output"
	"github.com/augurdev/augur/internal/progress"
	"github.com/augurdev/augur/internal/scanner"
	"github.com/augurdev/augur/internal/workspace"
	"github.com/augurdev/augur/pkg/config"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "augur",
		Usage:   "Static analysis for TypeScript and JavaScript workspaces",
		Version: version,
		Description: `Augur finds exported symbols nothing references, measures structural
complexity, and reports maintainability per file. Results are cached by
content hash so warm runs only re-analyze edited files.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"AUGUR_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable result caching",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Max parallel workers (default 2x CPU count)",
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			deadExportsCmd(),
			complexityCmd(),
			cacheCmd(),
			initCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// rootPath returns the single positional workspace root, defaulting to ".".
func rootPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

// loadConfig resolves the effective configuration from the --config flag or
// the default discovery locations, then applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if w := c.Int("workers"); w > 0 {
		cfg.Workers = w
	}
	return cfg, nil
}

// newFormatter builds the formatter from global flags. Color is dropped
// automatically for file output.
func newFormatter(c *cli.Context) (*output.Formatter, error) {
	return output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
}

// runWorkspace scans the root and runs the pipeline with a progress bar.
func runWorkspace(c *cli.Context, cfg *config.Config) (*workspace.Report, error) {
	ctx, cancel := signalContext()
	defer cancel()

	root := rootPath(c)
	files, err := scanner.New(cfg).ScanDir(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files found under %s", root)
	}

	tracker := progress.NewTracker("Analyzing...", len(files))
	wa := workspace.New(
		workspace.WithConfig(cfg),
		workspace.WithProgress(tracker.Tick),
	)
	report, err := wa.AnalyzeFiles(ctx, root, files)
	if err != nil {
		tracker.FinishError(err)
		return nil, err
	}
	tracker.FinishSuccess()
	return report, nil
}

// analyzeCmd runs every enabled analyzer over the workspace.
func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Run all enabled analyzers over a workspace",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			report, err := runWorkspace(c, cfg)
			if err != nil {
				return err
			}

			formatter, err := newFormatter(c)
			if err != nil {
				return err
			}
			defer formatter.Close()

			for _, msg := range report.Errors {
				formatter.Warning("skipped: %s", msg)
			}
			return formatter.Output(output.IssueReport(report.Result, formatter.Colored()))
		},
	}
}
