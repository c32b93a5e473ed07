package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/augurdev/augur/internal/output"
	"github.com/augurdev/augur/internal/scanner"
	"github.com/augurdev/augur/internal/workspace"
)

// cacheCmd groups cache maintenance operations. The cache is in-memory, so
// these operate within a single process: warm populates it and reports how
// effective a subsequent analysis pass was.
func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Result cache operations",
		Subcommands: []*cli.Command{
			{
				Name:      "warm",
				Usage:     "Pre-compute analyses for a workspace, then analyze and report cache stats",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-hits",
						Value: 0,
						Usage: "Also refresh the N most-hit cached entries",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					if !cfg.Cache.Enabled {
						return fmt.Errorf("caching is disabled")
					}

					ctx, cancel := signalContext()
					defer cancel()

					root := rootPath(c)
					files, err := scanner.New(cfg).ScanDir(root)
					if err != nil {
						return err
					}
					if len(files) == 0 {
						return fmt.Errorf("no source files found under %s", root)
					}

					wa := workspace.New(workspace.WithConfig(cfg))
					if err := wa.WarmCache(ctx, root, files, c.Int("top-hits")); err != nil {
						return err
					}

					report, err := wa.AnalyzeFiles(ctx, root, files)
					if err != nil {
						return err
					}

					formatter, err := newFormatter(c)
					if err != nil {
						return err
					}
					defer formatter.Close()

					return formatter.Output(output.CacheStatsReport(report.CacheStats))
				},
			},
		},
	}
}
