package handler

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/petrobahia/internal/domain/order"
)

type metrics struct {
	quotes   metric.Int64Counter
	placed   metric.Int64Counter
	rejected metric.Int64Counter
	totals   metric.Float64Histogram
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter("github.com/xenking/petrobahia/internal/handler")

	var (
		m   metrics
		err error
	)
	if m.quotes, err = meter.Int64Counter("petro.orders.quoted",
		metric.WithDescription("Orders priced without being placed"),
	); err != nil {
		return nil, errors.Wrap(err, "quotes counter")
	}
	if m.placed, err = meter.Int64Counter("petro.orders.placed",
		metric.WithDescription("Orders priced and persisted"),
	); err != nil {
		return nil, errors.Wrap(err, "placed counter")
	}
	if m.rejected, err = meter.Int64Counter("petro.orders.rejected",
		metric.WithDescription("Order requests that failed to price, by reason"),
	); err != nil {
		return nil, errors.Wrap(err, "rejected counter")
	}
	if m.totals, err = meter.Float64Histogram("petro.orders.total",
		metric.WithDescription("Net total of placed orders"),
	); err != nil {
		return nil, errors.Wrap(err, "totals histogram")
	}
	return &m, nil
}

func (m *metrics) orderPlaced(ctx context.Context, o *order.Order) {
	m.placed.Add(ctx, 1)
	m.totals.Record(ctx, o.Total().InexactFloat64())
}

func (m *metrics) orderRejected(ctx context.Context, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
