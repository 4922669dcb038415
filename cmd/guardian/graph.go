package main

import (
	"github.com/urfave/cli/v2"

	"github.com/AmanS2501/Syntax-Guardian/internal/output"
	"github.com/AmanS2501/Syntax-Guardian/internal/service/analysis"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"g"},
		Usage:     "Print the import graph metrics: fan-in, fan-out and cycles",
		ArgsUsage: "[path]",
		Flags:     scanFlags(),
		Action: func(c *cli.Context) error {
			// The graph needs imports only.
			report, err := analyzeTree(c, analysis.WithDetectors([]analyzer.Detector{}...))
			if err != nil {
				return err
			}
			return render(c, output.GraphView(report, c.Int("top")))
		},
	}
}
