package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"edustats/internal/config"
	apierrors "edustats/internal/errors"
	"edustats/internal/exporter"
	"edustats/internal/indicators"
	"edustats/internal/infrastructure"
	"edustats/internal/scoring"
	"edustats/internal/validation"
	"edustats/internal/wdi"
	"edustats/pkg/contracts/domain"
)

// Stage names, used for spans and the stage duration metric
const (
	StageLoad    = "load"
	StageClean   = "clean"
	StageScore   = "score"
	StagePersist = "persist"
)

// Options describe one batch run
type Options struct {
	Paths        *config.Paths
	ChangeWindow int
	Workbook     bool
	Chart        bool
}

// OptionsFromConfig maps the pipeline section of the application config
func OptionsFromConfig(cfg *config.Config, paths *config.Paths) Options {
	return Options{
		Paths:        paths,
		ChangeWindow: cfg.Pipeline.ChangeWindow,
		Workbook:     cfg.Pipeline.Workbook,
		Chart:        cfg.Pipeline.Chart,
	}
}

// Result summarizes a finished run
type Result struct {
	RunID    string
	Rows     []domain.CleanRow
	Insights domain.InsightsSnapshot
	Outputs  []string
	Duration time.Duration
}

// Runner executes pipeline runs
type Runner struct {
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *infrastructure.PipelineMetrics
	validator *validation.FileValidator
	csv       *exporter.CSVWriter
}

// NewRunner creates a runner reporting through providers
func NewRunner(logger *slog.Logger, providers *infrastructure.OTelProviders) (*Runner, error) {
	logger = infrastructure.WithComponent(logger, "pipeline")
	if providers == nil {
		return nil, errors.New("pipeline: telemetry providers are required")
	}

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &Runner{
		logger:    logger,
		tracer:    providers.Tracer,
		metrics:   metrics,
		validator: validation.NewFileValidator(logger),
		csv:       exporter.NewCSVWriter(logger),
	}, nil
}

// Run executes one full batch recompute. Unreadable inputs abort the run;
// empty or all-missing data produce empty artifacts.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Paths == nil {
		return nil, apierrors.NewConfigError("pipeline paths are not configured", nil)
	}
	if opts.ChangeWindow < 1 {
		opts.ChangeWindow = indicators.DefaultWindow
	}

	runID := uuid.New().String()
	ctx = infrastructure.WithTraceID(ctx, runID)
	started := time.Now()
	logger := r.logger.With(slog.String("run_id", runID))

	logger.InfoContext(ctx, "Pipeline started",
		slog.String("wdi_file", opts.Paths.WDIFile),
		slog.String("country_file", opts.Paths.CountryFile),
		slog.String("clean_dir", opts.Paths.CleanDir),
		slog.Int("change_window", opts.ChangeWindow))

	result, err := r.run(ctx, logger, opts)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.metrics.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	if err != nil {
		logger.ErrorContext(ctx, "Pipeline failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(started)))
		return nil, err
	}

	result.RunID = runID
	result.Duration = time.Since(started)
	logger.InfoContext(ctx, "Pipeline finished",
		slog.Int("countries", len(result.Rows)),
		slog.Int("outputs", len(result.Outputs)),
		slog.Duration("duration", result.Duration))
	return result, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, opts Options) (*Result, error) {
	if err := r.validator.ValidateInputs(opts.Paths.WDIFile, opts.Paths.CountryFile); err != nil {
		return nil, apierrors.NewAppValidationError(fmt.Sprintf("invalid pipeline inputs: %v", err))
	}
	if err := r.validator.ValidateOutputDirectory(opts.Paths.CleanDir); err != nil {
		return nil, apierrors.NewStorageError("output directory unavailable", err)
	}

	var (
		long []domain.Observation
		meta []domain.CountryMeta
	)
	err := r.stage(ctx, StageLoad, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			long, err = wdi.LoadLong(gctx, opts.Paths.WDIFile)
			return err
		})
		g.Go(func() error {
			var err error
			meta, err = wdi.LoadCountryMeta(gctx, opts.Paths.CountryFile)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Inputs loaded",
		slog.Int("observations", len(long)),
		slog.Int("countries_meta", len(meta)))

	var (
		rows      []domain.CleanRow
		litChange map[string]*float64
	)
	err = r.stage(ctx, StageClean, func(ctx context.Context) error {
		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			rows = BuildCleanTable(long, meta)
			return nil
		})
		g.Go(func() error {
			litChange = indicators.WindowChange(long, domain.IndicatorYouthLiteracy, opts.ChangeWindow)
			return nil
		})
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}

	var insights domain.InsightsSnapshot
	err = r.stage(ctx, StageScore, func(ctx context.Context) error {
		insights = scoring.BuildInsights(rows, scoring.ComputeYLS(rows), litChange)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var outputs []string
	err = r.stage(ctx, StagePersist, func(ctx context.Context) error {
		var err error
		outputs, err = r.persist(ctx, logger, opts, rows, insights)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Result{Rows: rows, Insights: insights, Outputs: outputs}, nil
}

func (r *Runner) persist(ctx context.Context, logger *slog.Logger, opts Options, rows []domain.CleanRow, insights domain.InsightsSnapshot) ([]string, error) {
	paths := opts.Paths
	var outputs []string

	if err := r.csv.WriteCleanTable(paths.CleanCSV, rows); err != nil {
		return nil, apierrors.NewStorageError("write clean table", err)
	}
	r.metrics.RowsWritten.Add(ctx, int64(len(rows)))
	logger.InfoContext(ctx, "Wrote clean table", slog.String("path", paths.CleanCSV), slog.Int("rows", len(rows)))
	outputs = append(outputs, paths.CleanCSV)

	if err := exporter.WriteInsights(paths.InsightsJSON, insights); err != nil {
		return nil, apierrors.NewStorageError("write insights", err)
	}
	logger.InfoContext(ctx, "Wrote insights", slog.String("path", paths.InsightsJSON))
	outputs = append(outputs, paths.InsightsJSON)

	if opts.Workbook {
		if err := exporter.WriteWorkbook(paths.CleanWorkbook, rows, insights); err != nil {
			return nil, apierrors.NewStorageError("write workbook", err)
		}
		logger.InfoContext(ctx, "Wrote workbook", slog.String("path", paths.CleanWorkbook))
		outputs = append(outputs, paths.CleanWorkbook)
	}

	if opts.Chart {
		err := exporter.WriteYLSChart(paths.YLSChart, insights.TopYLS)
		switch {
		case errors.Is(err, exporter.ErrNoScores):
			logger.WarnContext(ctx, "Skipped chart, no scores available")
		case err != nil:
			return nil, apierrors.NewStorageError("write chart", err)
		default:
			logger.InfoContext(ctx, "Wrote chart", slog.String("path", paths.YLSChart))
			outputs = append(outputs, paths.YLSChart)
		}
	}

	return outputs, nil
}

// stage runs fn under a span and records its duration
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	started := time.Now()
	err := fn(ctx)
	r.metrics.StageDuration.Record(ctx, time.Since(started).Seconds(),
		metric.WithAttributes(attribute.String("stage", name)))

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}
	return nil
}
