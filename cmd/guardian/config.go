package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/AmanS2501/Syntax-Guardian/internal/output"
	"github.com/AmanS2501/Syntax-Guardian/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Rules file commands",
		Subcommands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate a rules file (defaults to the one found under path)",
				ArgsUsage: "[path]",
				Action:    runConfigValidate,
			},
			{
				Name:      "show",
				Usage:     "Print the effective rules as JSON or TOON",
				ArgsUsage: "[path]",
				Action:    runConfigShow,
			},
		},
	}
}

func runConfigValidate(c *cli.Context) error {
	if path := c.String("rules"); path != "" {
		if _, err := config.Load(path); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, color.GreenString("Rules valid: %s", path))
		return nil
	}

	_, path, err := config.LoadOrDefault(rootArg(c))
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(c.App.Writer, color.YellowString("No rules file found. Default rules are valid."))
		return nil
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("Rules valid: %s", path))
	return nil
}

func runConfigShow(c *cli.Context) error {
	logger := newLogger(c.App.ErrWriter, c.Bool("verbose"))
	cfg, err := loadRules(c, rootArg(c), logger)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	if format == output.FormatText {
		format = output.FormatJSON
	}
	return output.NewWriterFormatter(format, c.App.Writer, false).Output(cfg)
}
