package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retailpulse/internal/config"
	"retailpulse/internal/dataprocessing"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/pipeline"
	"retailpulse/internal/report"
	"retailpulse/internal/source"
)

// options holds command-line overrides. Empty values leave the config untouched.
type options struct {
	configPath string
	source     string
	input      string
	workbook   string
	profile    string
	statusMode string
	report     string
	cleaned    string
	xlsx       string
	archive    string
	stdout     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to config.yaml (defaults to ./config.yaml or ./configs/config.yaml)")
	fs.StringVar(&opts.source, "source", "", "input source: dir | workbook | objectstore")
	fs.StringVar(&opts.input, "in", "", "directory containing <entity>.csv datasets")
	fs.StringVar(&opts.workbook, "workbook", "", "xlsx workbook with one sheet per dataset")
	fs.StringVar(&opts.profile, "profile", "", "cleaning profile: standard | legacy")
	fs.StringVar(&opts.statusMode, "status-mode", "", "shipment status mode: enum | keyword")
	fs.StringVar(&opts.report, "out", "", "report JSON path")
	fs.StringVar(&opts.cleaned, "cleaned", "", "directory for cleaned_<entity>.csv exports")
	fs.StringVar(&opts.xlsx, "xlsx", "", "path for the xlsx report workbook")
	fs.StringVar(&opts.archive, "archive", "", "sqlite database recording every run")
	fs.BoolVar(&opts.stdout, "stdout", false, "also print the report to stdout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// apply overlays non-empty flags onto cfg
func (o *options) apply(cfg *config.Config) error {
	overrides := []struct {
		value  string
		target *string
	}{
		{o.source, &cfg.Input.Source},
		{o.input, &cfg.Input.Dir},
		{o.workbook, &cfg.Input.Workbook},
		{o.profile, &cfg.Pipeline.Profile},
		{o.statusMode, &cfg.Pipeline.StatusMode},
		{o.report, &cfg.Output.ReportPath},
		{o.cleaned, &cfg.Output.CleanedDir},
		{o.xlsx, &cfg.Output.WorkbookPath},
		{o.archive, &cfg.Output.ArchivePath},
	}
	for _, ov := range overrides {
		if ov.value != "" {
			*ov.target = ov.value
		}
	}
	if o.workbook != "" && o.source == "" {
		cfg.Input.Source = config.SourceWorkbook
	}
	if o.stdout {
		cfg.Output.Stdout = true
	}
	return cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Fprintf(stderr, "invalid options: %v\n", err)
		return 2
	}

	logger, err := newLogger(cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()
	logger = infrastructure.WithComponent(logger, "etl")

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	if err := execute(ctx, cfg, providers, logger, stdout, stderr); err != nil {
		logger.Error("ETL run failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// newLogger keeps console logs off stdout when stdout carries the report
func newLogger(cfg *config.Config, stdout, stderr io.Writer) (*slog.Logger, error) {
	if cfg.Logging.Output == "console" {
		w := stdout
		if cfg.Output.Stdout {
			w = stderr
		}
		logger := infrastructure.NewLoggerWithWriter(w, cfg.Logging)
		slog.SetDefault(logger)
		return logger, nil
	}
	return infrastructure.InitializeLogger(cfg.Logging)
}

func execute(ctx context.Context, cfg *config.Config, providers *infrastructure.OTelProviders, logger *slog.Logger, stdout, stderr io.Writer) error {
	start := time.Now()

	profile, err := dataprocessing.ProfileFromConfig(cfg)
	if err != nil {
		return err
	}
	loader, err := source.NewLoader(cfg, logger)
	if err != nil {
		return err
	}

	runnerOpts := []pipeline.Option{pipeline.WithTracer(providers.Tracer)}
	if providers.Meter != nil {
		metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
		if err != nil {
			return fmt.Errorf("failed to create metrics: %w", err)
		}
		runnerOpts = append(runnerOpts, pipeline.WithMetrics(metrics))
	}

	runner, err := pipeline.NewRunner(loader, profile, logger, runnerOpts...)
	if err != nil {
		return err
	}

	logger.Info("Starting ETL run",
		slog.String("source", cfg.Input.Source),
		slog.String("profile", profile.Name),
		slog.String("status_mode", string(profile.StatusMode)))

	state, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if err := state.Verify(); err != nil {
		return fmt.Errorf("run %s failed verification: %w", state.ID, err)
	}

	writeStart := time.Now()
	sink, closeSink, err := buildSink(cfg, logger, stdout)
	if err != nil {
		return err
	}
	defer closeSink()

	info := report.RunInfo{ID: state.ID, Profile: profile.Name, StartedAt: state.StartTime}
	if err := sink.Write(ctx, info, state.Report); err != nil {
		return err
	}
	if err := export(ctx, cfg, state, logger); err != nil {
		return err
	}
	writing := time.Since(writeStart)

	timings := append(state.Timings(), pipeline.Timing{Phase: "JSON writing", Duration: writing})
	summary := stdout
	if cfg.Output.Stdout {
		summary = stderr
	}
	return pipeline.WriteSummary(summary, timings, time.Since(start))
}

// buildSink combines every configured report destination
func buildSink(cfg *config.Config, logger *slog.Logger, stdout io.Writer) (report.Sink, func(), error) {
	var sinks report.MultiSink
	closeFn := func() {}

	if cfg.Output.ReportPath != "" {
		sinks = append(sinks, report.NewFileSink(cfg.Output.ReportPath, logger))
	}
	if cfg.Output.Stdout {
		sinks = append(sinks, report.NewWriterSink(stdout))
	}
	if cfg.Output.ArchivePath != "" {
		archive, err := report.OpenArchive(cfg.Output.ArchivePath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, archive)
		closeFn = func() {
			if err := archive.Close(); err != nil {
				logger.Warn("Failed to close run archive", slog.String("error", err.Error()))
			}
		}
	}
	if len(sinks) == 0 {
		logger.Warn("No report destination configured")
	}
	return sinks, closeFn, nil
}

func export(ctx context.Context, cfg *config.Config, state *pipeline.RunState, logger *slog.Logger) error {
	if cfg.Output.CleanedDir != "" {
		if _, err := exporter.NewCleanedExporter(cfg.Output.CleanedDir, logger).Export(ctx, state.Cleaned); err != nil {
			return err
		}
	}
	if cfg.Output.WorkbookPath != "" {
		if err := exporter.NewWorkbookExporter(cfg.Output.WorkbookPath, logger).Export(ctx, state.Report, state.Cleaned); err != nil {
			return err
		}
	}
	return nil
}
