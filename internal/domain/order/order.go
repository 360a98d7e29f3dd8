package order

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// Order is a priced customer order. It is immutable: changing its contents
// means building a new Order.
type Order struct {
	id        string
	customer  *customer.Customer
	lines     []pricing.LineItem
	createdAt time.Time
}

// New assembles an order with a fresh id. It does not validate; see Validate.
func New(c *customer.Customer, lines []pricing.LineItem) *Order {
	return Restore(uuid.NewString(), c, lines, time.Now().UTC())
}

// Restore rebuilds a persisted order.
func Restore(id string, c *customer.Customer, lines []pricing.LineItem, createdAt time.Time) *Order {
	return &Order{
		id:        id,
		customer:  c,
		lines:     slices.Clone(lines),
		createdAt: createdAt,
	}
}

func (o *Order) ID() string                   { return o.id }
func (o *Order) Customer() *customer.Customer { return o.customer }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) Len() int                     { return len(o.lines) }

// Lines returns a copy of the line items in request order.
func (o *Order) Lines() []pricing.LineItem { return slices.Clone(o.lines) }

// Total is the sum of the line net amounts, zero for an order without lines.
func (o *Order) Total() decimal.Decimal {
	return sum(o.lines, pricing.LineItem.Net)
}

// Gross is the sum of the line gross amounts.
func (o *Order) Gross() decimal.Decimal {
	return sum(o.lines, pricing.LineItem.Gross)
}

// Discounts is what the order saves against its gross amount.
func (o *Order) Discounts() decimal.Decimal {
	return sum(o.lines, pricing.LineItem.Discount)
}

func sum(lines []pricing.LineItem, amount func(pricing.LineItem) decimal.Decimal) decimal.Decimal {
	return lo.Reduce(lines, func(acc decimal.Decimal, l pricing.LineItem, _ int) decimal.Decimal {
		return acc.Add(amount(l))
	}, decimal.Zero)
}

// Repository defines persistence operations for orders.
type Repository interface {
	Save(ctx context.Context, o *Order) error
	// FindByCustomer returns the customer's orders oldest first.
	FindByCustomer(ctx context.Context, taxID string) ([]*Order, error)
}
