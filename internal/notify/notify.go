// Package notify reports customer and order events. Notifiers observe; they
// never change what they are shown.
package notify

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
)

// DefaultHighValueThreshold is the order total from which an alert is raised.
var DefaultHighValueThreshold = decimal.NewFromInt(5000)

var (
	_ customer.Notifier = (*Logger)(nil)
	_ order.Notifier    = (*Logger)(nil)
)

// Logger writes events to a zap logger and warns about high-value orders.
type Logger struct {
	lg        *zap.Logger
	threshold decimal.Decimal
}

// NewLogger returns a Logger alerting on orders whose total reaches
// threshold. A zero threshold disables the alert.
func NewLogger(lg *zap.Logger, threshold decimal.Decimal) *Logger {
	return &Logger{lg: lg.Named("notify"), threshold: threshold}
}

func (l *Logger) CustomerRegistered(_ context.Context, c *customer.Customer) {
	l.lg.Info("Customer registered",
		zap.String("name", c.Name),
		zap.String("email", c.Email),
		zap.String("tax_id", c.TaxID),
	)
}

func (l *Logger) OrderPlaced(_ context.Context, o *order.Order) {
	total := o.Total()
	fields := []zap.Field{
		zap.String("order_id", o.ID()),
		zap.String("tax_id", o.Customer().TaxID),
		zap.Int("lines", o.Len()),
		zap.String("total", total.StringFixed(2)),
		zap.String("discounts", o.Discounts().StringFixed(2)),
	}
	l.lg.Info("Order placed", fields...)

	if l.HighValue(total) {
		l.lg.Warn("High-value order", append(fields, zap.String("threshold", l.threshold.StringFixed(2)))...)
	}
}

// HighValue reports whether total reaches the alert threshold.
func (l *Logger) HighValue(total decimal.Decimal) bool {
	return l.threshold.IsPositive() && total.GreaterThanOrEqual(l.threshold)
}
