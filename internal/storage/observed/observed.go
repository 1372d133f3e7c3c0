// Package observed wraps an order.Repository with tracing and latency metrics.
package observed

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/orders/internal/domain/order"
)

const instrumentationName = "github.com/xenking/orders/internal/storage/observed"

var _ order.Repository = (*Repository)(nil)

// Repository records a span and a duration sample for every call to the
// wrapped repository. order.ErrNotFound is reported as a normal outcome.
type Repository struct {
	next     order.Repository
	tracer   trace.Tracer
	duration metric.Float64Histogram
}

// New wraps next using the given providers.
func New(next order.Repository, tp trace.TracerProvider, mp metric.MeterProvider) (*Repository, error) {
	duration, err := mp.Meter(instrumentationName).Float64Histogram(
		"orders.repository.duration",
		metric.WithDescription("Duration of order repository operations."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create duration histogram")
	}
	return &Repository{
		next:     next,
		tracer:   tp.Tracer(instrumentationName),
		duration: duration,
	}, nil
}

// NewID is not observed: it does not touch the store.
func (r *Repository) NewID() order.ID {
	return r.next.NewID()
}

func (r *Repository) Save(ctx context.Context, o *order.Order) error {
	ctx, finish := r.start(ctx, "Save", "save", attribute.String("order.id", o.ID().String()))
	err := r.next.Save(ctx, o)
	finish(err)
	return err
}

func (r *Repository) FindAll(ctx context.Context) ([]*order.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.FindAll")
	defer span.End()

	start := time.Now()
	orders, err := r.next.FindAll(ctx)
	r.record(ctx, span, "find_all", start, err)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(orders)))
	}
	return orders, err
}

func (r *Repository) FindByID(ctx context.Context, id order.ID) (*order.Order, error) {
	ctx, finish := r.start(ctx, "FindByID", "find_by_id", attribute.String("order.id", id.String()))
	o, err := r.next.FindByID(ctx, id)
	finish(err)
	return o, err
}

func (r *Repository) Delete(ctx context.Context, o *order.Order) error {
	ctx, finish := r.start(ctx, "Delete", "delete", attribute.String("order.id", o.ID().String()))
	err := r.next.Delete(ctx, o)
	finish(err)
	return err
}

func (r *Repository) start(ctx context.Context, method, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository."+method, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(err error) {
		defer span.End()
		r.record(ctx, span, op, start, err)
	}
}

func (r *Repository) record(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	r.duration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", op)),
	)

	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, order.ErrNotFound):
		span.SetAttributes(attribute.Bool("order.found", false))
		span.SetStatus(codes.Ok, "")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
