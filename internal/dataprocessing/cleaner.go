package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"retailpulse/internal/infrastructure"
	"retailpulse/pkg/contracts/domain"
)

// Cleaner applies the profile's rule sets to raw records. Malformed rows are
// dropped silently; the only trace they leave is the raw/cleaned count delta.
type Cleaner struct {
	logger  *slog.Logger
	profile Profile
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// CleanerOption customizes a Cleaner
type CleanerOption func(*Cleaner)

// WithTracer records one span per entity
func WithTracer(tracer trace.Tracer) CleanerOption {
	return func(c *Cleaner) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMetrics records kept and dropped row counts per entity
func WithMetrics(m *infrastructure.PipelineMetrics) CleanerOption {
	return func(c *Cleaner) {
		c.metrics = m
	}
}

// NewCleaner creates a cleaner for a profile
func NewCleaner(logger *slog.Logger, profile Profile, opts ...CleanerOption) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cleaner{
		logger:  logger.With(slog.String("component", "cleaner")),
		profile: profile,
		tracer:  noop.NewTracerProvider().Tracer(infrastructure.ServiceName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Profile returns the profile the cleaner was built with
func (c *Cleaner) Profile() Profile {
	return c.profile
}

// observe wraps one entity's cleaning with a span, a duration log line and row counters
func observe[C any](ctx context.Context, c *Cleaner, entity domain.Entity, raw int, steps []string, run func() []C) []C {
	ctx, span := c.tracer.Start(ctx, "clean_"+string(entity),
		trace.WithAttributes(
			attribute.String("entity", string(entity)),
			attribute.String("profile", c.profile.Name),
			attribute.Int("rows.raw", raw),
		))
	defer span.End()

	start := time.Now()
	cleaned := run()
	duration := time.Since(start)

	dropped := raw - len(cleaned)
	span.SetAttributes(
		attribute.Int("rows.kept", len(cleaned)),
		attribute.Int("rows.dropped", dropped),
	)
	c.metrics.RecordClean(ctx, string(entity), len(cleaned), dropped)

	c.logger.InfoContext(ctx, "cleaned dataset",
		slog.String("entity", string(entity)),
		slog.Int("raw", raw),
		slog.Int("kept", len(cleaned)),
		slog.Int("dropped", dropped),
		slog.Any("steps", steps),
		slog.Duration("duration", duration))

	return cleaned
}

// CleanCustomers returns the customers that pass the customer rules
func (c *Cleaner) CleanCustomers(ctx context.Context, raw []domain.CustomerRecord) []domain.Customer {
	rules := CustomerRules(c.profile)
	return observe(ctx, c, domain.EntityCustomers, len(raw), rules.StepNames(), func() []domain.Customer {
		return rules.Apply(raw)
	})
}

// CleanProducts returns the products that pass the product rules
func (c *Cleaner) CleanProducts(ctx context.Context, raw []domain.ProductRecord) []domain.Product {
	rules := ProductRules(c.profile)
	return observe(ctx, c, domain.EntityProducts, len(raw), rules.StepNames(), func() []domain.Product {
		return rules.Apply(raw)
	})
}

// CleanOrders returns the orders that pass the order rules
func (c *Cleaner) CleanOrders(ctx context.Context, raw []domain.OrderRecord) []domain.Order {
	rules := OrderRules(c.profile)
	return observe(ctx, c, domain.EntityOrders, len(raw), rules.StepNames(), func() []domain.Order {
		return rules.Apply(raw)
	})
}

// CleanShipments returns the shipments that pass the shipment rules of the profile's status mode
func (c *Cleaner) CleanShipments(ctx context.Context, raw []domain.ShipmentRecord) []domain.Shipment {
	rules := ShipmentRules(c.profile)
	return observe(ctx, c, domain.EntityShipments, len(raw), rules.StepNames(), func() []domain.Shipment {
		return rules.Apply(raw)
	})
}

// CleanRefunds returns the refunds that pass the refund rules. orders and
// products must already be cleaned; refunds pointing elsewhere are dropped.
func (c *Cleaner) CleanRefunds(ctx context.Context, raw []domain.RefundRecord, orders []domain.Order, products []domain.Product) []domain.Refund {
	rules := RefundRules(c.profile, NewReferenceIndex(orders, products))
	return observe(ctx, c, domain.EntityRefunds, len(raw), rules.StepNames(), func() []domain.Refund {
		return rules.Apply(raw)
	})
}
