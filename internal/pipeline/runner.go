package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"retailpulse/internal/dataprocessing"
	"retailpulse/internal/errors"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/report"
	"retailpulse/internal/source"
	"retailpulse/internal/validation"
	"retailpulse/pkg/contracts/domain"
)

// Built-in stage IDs
const (
	StageLoad           = "load"
	StageCleanCustomers = "clean_customers"
	StageCleanProducts  = "clean_products"
	StageCleanOrders    = "clean_orders"
	StageCleanShipments = "clean_shipments"
	StageCleanRefunds   = "clean_refunds"
	StageAggregate      = "aggregate"
	StageAssemble       = "assemble"
)

// Runner executes one pipeline run: load every dataset, clean in dependency
// order, aggregate and assemble the report.
type Runner struct {
	loader     source.Loader
	profile    dataprocessing.Profile
	cleaner    *dataprocessing.Cleaner
	aggregator *dataprocessing.Aggregator
	validator  *validation.FileValidator
	registry   *Registry
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
	logger     *slog.Logger
}

// Option customizes a Runner
type Option func(*Runner)

// WithTracer records a span per run and per stage
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithMetrics records row counts, stage durations and run outcomes
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner creates a runner over loader using profile's rules
func NewRunner(loader source.Loader, profile dataprocessing.Profile, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if loader == nil {
		return nil, errors.NewConfigError("pipeline runner needs a dataset loader", nil)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	r := &Runner{
		loader:    loader,
		profile:   profile,
		validator: validation.NewFileValidator(logger),
		registry:  NewRegistry(),
		tracer:    noop.NewTracerProvider().Tracer(infrastructure.ServiceName),
		logger:    infrastructure.WithComponent(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.cleaner = dataprocessing.NewCleaner(logger, profile,
		dataprocessing.WithTracer(r.tracer),
		dataprocessing.WithMetrics(r.metrics))
	r.aggregator = dataprocessing.NewAggregator(logger, dataprocessing.AggregatorConfigFrom(profile))

	for _, stage := range r.defaultStages() {
		if err := r.registry.Register(stage); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Profile returns the cleaning profile
func (r *Runner) Profile() dataprocessing.Profile {
	return r.profile
}

// Register adds a stage after the built-in ones
func (r *Runner) Register(stage Stage) error {
	return r.registry.Register(stage)
}

func (r *Runner) defaultStages() []Stage {
	return []Stage{
		NewStage(StageLoad, "Load datasets", nil, r.load),
		NewStage(StageCleanCustomers, "Clean customers", []string{StageLoad},
			func(ctx context.Context, s *RunState) error {
				s.Cleaned.Customers = r.cleaner.CleanCustomers(ctx, s.Raw.Customers)
				return nil
			}),
		NewStage(StageCleanProducts, "Clean products", []string{StageLoad},
			func(ctx context.Context, s *RunState) error {
				s.Cleaned.Products = r.cleaner.CleanProducts(ctx, s.Raw.Products)
				return nil
			}),
		NewStage(StageCleanOrders, "Clean orders", []string{StageLoad},
			func(ctx context.Context, s *RunState) error {
				s.Cleaned.Orders = r.cleaner.CleanOrders(ctx, s.Raw.Orders)
				return nil
			}),
		NewStage(StageCleanShipments, "Clean shipments", []string{StageLoad},
			func(ctx context.Context, s *RunState) error {
				s.Cleaned.Shipments = r.cleaner.CleanShipments(ctx, s.Raw.Shipments)
				return nil
			}),
		NewStage(StageCleanRefunds, "Clean refunds", []string{StageCleanOrders, StageCleanProducts},
			func(ctx context.Context, s *RunState) error {
				s.Cleaned.Refunds = r.cleaner.CleanRefunds(ctx, s.Raw.Refunds, s.Cleaned.Orders, s.Cleaned.Products)
				return nil
			}),
		NewStage(StageAggregate, "Compute metrics",
			[]string{StageCleanCustomers, StageCleanProducts, StageCleanOrders, StageCleanShipments, StageCleanRefunds},
			func(ctx context.Context, s *RunState) error {
				s.Quality = r.aggregator.DataQuality(s.RawCounts(), s.Cleaned)
				s.Business = r.aggregator.BusinessMetrics(ctx, s.Cleaned)
				return nil
			}),
		NewStage(StageAssemble, "Assemble report", []string{StageAggregate},
			func(_ context.Context, s *RunState) error {
				s.Report = report.Assemble(r.aggregator.ValidNames(s.Cleaned.Customers), s.Quality, s.Business)
				return nil
			}),
	}
}

// Run executes every registered stage and returns the run state. The state
// is returned even on failure so callers can inspect completed stages.
func (r *Runner) Run(ctx context.Context) (*RunState, error) {
	ctx, runID := infrastructure.StartRun(ctx)
	ctx, span := r.tracer.Start(ctx, "pipeline_run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("profile", r.profile.Name),
	))
	defer span.End()

	state := NewRunState(runID, r.profile)
	state.Start()
	r.logger.InfoContext(ctx, "Pipeline run started", slog.String("profile", r.profile.Name))

	err := r.execute(ctx, state)
	if err != nil {
		state.Fail(err)
		infrastructure.RecordError(ctx, err)
		r.logger.ErrorContext(ctx, "Pipeline run failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", state.Duration()))
	} else {
		state.Complete()
		r.logger.InfoContext(ctx, "Pipeline run completed",
			slog.Int("valid_customers", len(state.Report.ValidNames)),
			slog.Duration("duration", state.Duration()))
	}
	r.metrics.RecordRun(ctx, r.profile.Name, err)
	return state, err
}

func (r *Runner) execute(ctx context.Context, state *RunState) error {
	stages, err := r.registry.DependencyOrder()
	if err != nil {
		return errors.NewPipelineError("invalid stage graph", err)
	}
	for _, stage := range stages {
		state.AddStage(NewStageState(stage.ID(), stage.Name()))
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return errors.NewPipelineError("run cancelled", err).WithContext("stage", stage.ID())
		}
		if err := r.runStage(ctx, stage, state); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runStage(ctx context.Context, stage Stage, state *RunState) error {
	st := state.Stage(stage.ID())
	for _, dep := range stage.Dependencies() {
		if !state.StageCompleted(dep) {
			err := errors.NewPipelineError(fmt.Sprintf("stage %s needs %s to complete first", stage.ID(), dep), nil).
				WithContext("stage", stage.ID())
			st.Fail(err)
			return err
		}
	}

	ctx, span := r.tracer.Start(ctx, "stage_"+stage.ID())
	defer span.End()

	st.Start()
	r.logger.DebugContext(ctx, "Stage started", slog.String("stage", stage.ID()))

	err := stage.Execute(ctx, state)
	if err != nil {
		st.Fail(err)
	} else {
		st.Complete()
	}
	r.metrics.RecordStage(ctx, stage.ID(), st.Duration(), err == nil)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}
	r.logger.InfoContext(ctx, "Stage completed",
		slog.String("stage", stage.ID()),
		slog.Duration("duration", st.Duration()))
	return nil
}

// load reads and decodes all five datasets. Any failure aborts the run
// before a single row is cleaned.
func (r *Runner) load(ctx context.Context, state *RunState) error {
	if c, ok := r.loader.(source.Checker); ok {
		if err := c.Check(domain.Entities()); err != nil {
			return err
		}
	}

	for _, entity := range domain.Entities() {
		start := time.Now()
		table, err := r.loader.Load(ctx, entity)
		if err != nil {
			return asLoadError(entity, err)
		}
		if err := r.validator.ValidateHeader(table); err != nil {
			return asLoadError(entity, err)
		}
		state.Tables[entity] = table
		r.metrics.RecordLoad(ctx, string(entity), table.Len())
		r.logger.DebugContext(ctx, "Dataset loaded",
			slog.String("entity", string(entity)),
			slog.Int("rows", table.Len()),
			slog.Duration("duration", time.Since(start)))
	}

	raw, err := decode(state.Tables)
	if err != nil {
		return err
	}
	state.Raw = raw
	return nil
}

func decode(tables map[domain.Entity]*domain.Table) (RawRecords, error) {
	var raw RawRecords
	var err error
	if raw.Customers, err = dataprocessing.DecodeCustomers(tables[domain.EntityCustomers]); err != nil {
		return raw, asLoadError(domain.EntityCustomers, err)
	}
	if raw.Products, err = dataprocessing.DecodeProducts(tables[domain.EntityProducts]); err != nil {
		return raw, asLoadError(domain.EntityProducts, err)
	}
	if raw.Orders, err = dataprocessing.DecodeOrders(tables[domain.EntityOrders]); err != nil {
		return raw, asLoadError(domain.EntityOrders, err)
	}
	if raw.Shipments, err = dataprocessing.DecodeShipments(tables[domain.EntityShipments]); err != nil {
		return raw, asLoadError(domain.EntityShipments, err)
	}
	if raw.Refunds, err = dataprocessing.DecodeRefunds(tables[domain.EntityRefunds]); err != nil {
		return raw, asLoadError(domain.EntityRefunds, err)
	}
	return raw, nil
}

// asLoadError types err as a dataset load failure unless it already is one
func asLoadError(entity domain.Entity, err error) error {
	if errors.TypeOf(err) == errors.ErrTypeDatasetLoad {
		return err
	}
	return errors.NewDatasetLoadError(string(entity), err)
}
