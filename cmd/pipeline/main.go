package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"edustats/internal/config"
	"edustats/internal/infrastructure"
	"edustats/internal/pipeline"
	"edustats/pkg/contracts"
)

// cliOptions are the one-off overrides accepted on the command line
type cliOptions struct {
	root       string
	wdi        string
	meta       string
	out        string
	window     int
	noWorkbook bool
	noChart    bool
}

func parseFlags(args []string, output io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.root, "root", "", "workspace root (defaults to paths.root_dir)")
	fs.StringVar(&opts.wdi, "wdi", "", "WDI indicator table (.csv or .xlsx)")
	fs.StringVar(&opts.meta, "meta", "", "WDI country metadata table (.csv or .xlsx)")
	fs.StringVar(&opts.out, "out", "", "output directory for the clean table and insights")
	fs.IntVar(&opts.window, "window", 0, "literacy change window in years (defaults to pipeline.change_window)")
	fs.BoolVar(&opts.noWorkbook, "no-workbook", false, "skip the xlsx workbook export")
	fs.BoolVar(&opts.noChart, "no-chart", false, "skip the YLS chart export")
	err := fs.Parse(args)
	return opts, err
}

// apply overlays the flags onto the loaded configuration
func (o cliOptions) apply(cfg *config.Config) (pipeline.Options, error) {
	if o.root != "" {
		cfg.Paths.RootDir = o.root
	}
	if o.window > 0 {
		cfg.Pipeline.ChangeWindow = o.window
	}
	if o.noWorkbook {
		cfg.Pipeline.Workbook = false
	}
	if o.noChart {
		cfg.Pipeline.Chart = false
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return pipeline.Options{}, err
	}
	if o.wdi != "" {
		if paths.WDIFile, err = filepath.Abs(o.wdi); err != nil {
			return pipeline.Options{}, err
		}
	}
	if o.meta != "" {
		if paths.CountryFile, err = filepath.Abs(o.meta); err != nil {
			return pipeline.Options{}, err
		}
	}
	if o.out != "" {
		paths = paths.WithCleanDir(o.out)
	}

	return pipeline.OptionsFromConfig(cfg, paths), nil
}

func run(ctx context.Context, cfg *config.Config, opts cliOptions, logger *slog.Logger) error {
	runOpts, err := opts.apply(cfg)
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	logger.Info("Pipeline starting", slog.String("version", contracts.GetFullVersionString()))
	runOpts.Paths.LogPathResolution(logger)

	// A one-shot run has no scrape endpoint
	telemetry := cfg.Telemetry
	telemetry.MetricExporter = "none"
	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(telemetry), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	runner, err := pipeline.NewRunner(logger, providers)
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, runOpts)
	if err != nil {
		return err
	}

	for _, out := range result.Outputs {
		logger.Info("Wrote output",
			slog.String("path", out),
			slog.Int("rows", len(result.Rows)))
	}
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if err := run(context.Background(), cfg, opts, logger); err != nil {
		logger.Error("Pipeline failed", slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
}
