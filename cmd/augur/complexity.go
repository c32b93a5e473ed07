package main

import (
	"github.com/urfave/cli/v2"

	"github.com/augurdev/augur/internal/output"
)

// complexityCmd runs only the complexity analyzer and reports file metrics.
func complexityCmd() *cli.Command {
	return &cli.Command{
		Name:      "complexity",
		Aliases:   []string{"cx"},
		Usage:     "Measure cyclomatic and cognitive complexity per function",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "cyclomatic",
				Usage: "Cyclomatic complexity threshold (0 disables)",
			},
			&cli.IntFlag{
				Name:  "cognitive",
				Usage: "Cognitive complexity threshold (0 disables)",
			},
			&cli.IntFlag{
				Name:  "max-nesting",
				Usage: "Nesting depth threshold (0 disables)",
			},
			&cli.BoolFlag{
				Name:  "issues",
				Usage: "Report threshold violations instead of metrics",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			cfg.Analyzer.EnableDeadExports = false
			cfg.Analyzer.EnableComplexityAnalysis = true
			if c.IsSet("cyclomatic") {
				cfg.Analyzer.ComplexityThresholds.CyclomaticComplexity = c.Int("cyclomatic")
			}
			if c.IsSet("cognitive") {
				cfg.Analyzer.ComplexityThresholds.CognitiveComplexity = c.Int("cognitive")
			}
			if c.IsSet("max-nesting") {
				cfg.Analyzer.ComplexityThresholds.MaxNestingDepth = c.Int("max-nesting")
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

			if c.Bool("issues") {
				return formatter.Output(output.IssueReport(report.Result, formatter.Colored()))
			}
			return formatter.Output(output.ComplexityReport(report.Metrics))
		},
	}
}
