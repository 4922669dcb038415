package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/AmanS2501/Syntax-Guardian/pkg/config"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a rules file with the default settings",
		Description: `Creates guardian.toml in the current directory. A .yaml or .yml
path writes YAML instead.

Examples:
  guardian init                          # Creates guardian.toml
  guardian init --path presets/rules.yaml
  guardian init --force                  # Overwrite an existing file`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Value: "guardian.toml",
				Usage: "Rules file to create",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing rules file",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.String("path")
			if _, err := os.Stat(path); err == nil && !c.Bool("force") {
				return fmt.Errorf("rules file %q already exists (use --force to overwrite)", path)
			}

			if dir := filepath.Dir(path); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create directory %q: %w", dir, err)
				}
			}

			content, err := defaultRules(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, content, 0o644); err != nil {
				return fmt.Errorf("failed to write rules file: %w", err)
			}

			fmt.Fprintln(c.App.Writer, color.GreenString("Created %s", path))
			return nil
		},
	}
}

// defaultRules encodes the default rules in the format implied by path.
func defaultRules(path string) ([]byte, error) {
	cfg := config.DefaultConfig()

	var body []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		body, err = yaml.Marshal(cfg)
	case ".toml", "":
		body, err = toml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported rules format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("encode default rules: %w", err)
	}
	return append([]byte("# Syntax Guardian rules\n\n"), body...), nil
}
