package main

import (
	"github.com/urfave/cli/v2"

	"github.com/augurdev/augur/internal/output"
)

// deadExportsCmd runs only the dead-export analyzer.
func deadExportsCmd() *cli.Command {
	return &cli.Command{
		Name:      "deadexports",
		Aliases:   []string{"de"},
		Usage:     "Find exported symbols no other file references",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "include-underscored",
				Usage: "Also report underscore-prefixed exports",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			cfg.Analyzer.EnableDeadExports = true
			cfg.Analyzer.EnableComplexityAnalysis = false
			if c.Bool("include-underscored") {
				cfg.Analyzer.RespectUnderscoreConvention = false
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

			return formatter.Output(output.IssueReport(report.Result, formatter.Colored()))
		},
	}
}
