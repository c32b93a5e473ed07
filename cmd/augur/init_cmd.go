package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/augurdev/augur/pkg/config"
)

// initCmd writes a default augur.toml.
func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a default configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "augur.toml",
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		},
		Action: func(c *cli.Context) error {
			outputPath := c.String("output")

			if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
				return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
			}

			if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create directory %q: %w", dir, err)
				}
			}

			content, err := generateDefaultConfig()
			if err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			color.Green("Created %s", outputPath)
			fmt.Println("Edit this file to customize analysis settings.")
			return nil
		},
	}
}

func generateDefaultConfig() (string, error) {
	cfg := config.DefaultConfig()

	content, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# Augur configuration\n")
	buf.WriteString("# Documentation: https://github.com/augurdev/augur\n\n")
	buf.Write(content)

	return buf.String(), nil
}
