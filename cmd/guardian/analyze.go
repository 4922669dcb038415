package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/AmanS2501/Syntax-Guardian/internal/observability"
	"github.com/AmanS2501/Syntax-Guardian/internal/output"
	"github.com/AmanS2501/Syntax-Guardian/internal/progress"
	"github.com/AmanS2501/Syntax-Guardian/internal/service/analysis"
	"github.com/AmanS2501/Syntax-Guardian/pkg/config"
)

const traceFlushTimeout = 5 * time.Second

func scanFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob of files to analyze, replaces the rules file list (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob of files to skip, replaces the rules file list (repeatable)",
		},
		&cli.Int64Flag{
			Name:  "max-bytes",
			Usage: "Skip files larger than this many bytes",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Files extracted in parallel (0 = one per CPU)",
		},
		&cli.IntFlag{
			Name:  "top",
			Value: output.DefaultTop,
			Usage: "Rows listed per table in text output",
		},
		&cli.StringFlag{
			Name:    "metrics-file",
			Usage:   "Write Prometheus metrics for the run to this file",
			EnvVars: []string{"GUARDIAN_METRICS_FILE"},
		},
		&cli.StringFlag{
			Name:    "otlp-endpoint",
			Usage:   "Export stage traces to an OTLP/gRPC collector (host:port)",
			EnvVars: []string{"GUARDIAN_OTLP_ENDPOINT"},
		},
		&cli.BoolFlag{
			Name:  "otlp-insecure",
			Usage: "Connect to the OTLP collector without TLS",
		},
	}
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Run every detector and print the scored report",
		ArgsUsage: "[path]",
		Flags:     scanFlags(),
		Action: func(c *cli.Context) error {
			report, err := analyzeTree(c)
			if err != nil {
				return err
			}
			return render(c, output.AnalysisView(report, c.Int("top")))
		},
	}
}

// loadRules resolves the rules for root: an explicit --rules file must load,
// otherwise the first rules file under root is used and a broken one falls
// back to the defaults with a warning.
func loadRules(c *cli.Context, root string, logger *slog.Logger) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("rules"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		loaded, path, err := config.LoadOrDefault(root)
		if err != nil {
			logger.Warn("ignoring rules file, using defaults", "path", path, "error", err)
		} else if path != "" {
			logger.Debug("loaded rules", "path", path)
		}
		cfg = loaded
	}

	if v := c.StringSlice("include"); len(v) > 0 {
		cfg.Scan.Include = v
	}
	if v := c.StringSlice("exclude"); len(v) > 0 {
		cfg.Scan.Exclude = v
	}
	if c.IsSet("max-bytes") {
		cfg.Scan.MaxBytes = c.Int64("max-bytes")
	}
	if c.IsSet("workers") {
		cfg.Analysis.Workers = c.Int("workers")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func analyzeTree(c *cli.Context, extra ...analysis.Option) (*analysis.Report, error) {
	if _, err := output.ParseFormat(c.String("format")); err != nil {
		return nil, err
	}

	root := rootArg(c)
	logger := newLogger(c.App.ErrWriter, c.Bool("verbose"))
	cfg, err := loadRules(c, root, logger)
	if err != nil {
		return nil, err
	}

	opts := []analysis.Option{analysis.WithConfig(cfg), analysis.WithLogger(logger)}
	var bar *progress.Tracker
	if !c.Bool("no-progress") {
		bar = progress.NewWriterTracker("Analyzing", c.App.ErrWriter)
		opts = append(opts, analysis.WithProgress(bar.Func()))
	}

	if endpoint := c.String("otlp-endpoint"); endpoint != "" {
		exp, err := observability.NewOTLPExporter(c.Context, endpoint, c.Bool("otlp-insecure"))
		if err != nil {
			return nil, err
		}
		tp := observability.SetupTracing(exp)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), traceFlushTimeout)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("flush traces", "endpoint", endpoint, "error", err)
			}
		}()
	}

	report, err := analysis.New(append(opts, extra...)...).Analyze(c.Context, root)
	if bar != nil {
		if err != nil {
			bar.FinishError(err)
		} else {
			bar.FinishSuccess()
		}
	}
	if err != nil {
		return nil, err
	}

	for _, s := range report.Stages {
		if !s.OK() {
			logger.Warn("stage failed", "stage", s.Stage, "error", s.Error)
		}
	}
	if path := c.String("metrics-file"); path != "" {
		if err := observability.WriteMetrics(path); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func render(c *cli.Context, view output.Renderable) error {
	format, err := output.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	var f *output.Formatter
	if path := c.String("output"); path != "" {
		f, err = output.NewFormatter(format, path, false)
		if err != nil {
			return err
		}
	} else {
		f = output.NewWriterFormatter(format, c.App.Writer, !c.Bool("no-color"))
	}
	defer f.Close()

	if err := f.Output(view); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
