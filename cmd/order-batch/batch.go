package main

import (
	"context"
	"fmt"
	"io"

	"github.com/go-faster/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
)

// Batch is the layout of a batch file.
type Batch struct {
	Customers []BatchCustomer `yaml:"customers"`
	Orders    []BatchOrder    `yaml:"orders"`
}

type BatchCustomer struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	TaxID string `yaml:"tax_id"`
}

type BatchOrder struct {
	TaxID string      `yaml:"tax_id"`
	Lines []BatchLine `yaml:"lines"`
}

// BatchLine leaves Quantity nil when the file omits it.
type BatchLine struct {
	Kind     string `yaml:"kind"`
	Quantity *int   `yaml:"quantity"`
	Coupon   string `yaml:"coupon"`
}

func (l BatchLine) request() order.LineRequest {
	return order.LineRequest{Kind: l.Kind, Quantity: l.Quantity, CouponCode: l.Coupon}
}

// ParseBatch decodes a batch file, rejecting unknown keys.
func ParseBatch(r io.Reader) (*Batch, error) {
	var b Batch
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, errors.Wrap(err, "decode batch")
	}
	return &b, nil
}

// Result is the outcome of one batch order: exactly one of Order and Err is
// set.
type Result struct {
	Index int
	TaxID string
	Order *order.Order
	Err   error
}

// Runner registers the customers of a batch and places its orders.
type Runner struct {
	customers *customer.Service
	orders    *order.Service
	workers   int
	lg        *zap.Logger
}

func NewRunner(customers *customer.Service, orders *order.Service, workers int, lg *zap.Logger) *Runner {
	return &Runner{customers: customers, orders: orders, workers: max(workers, 1), lg: lg}
}

// Register registers every customer of b. Rejected customers are logged and
// skipped; the number registered is returned.
func (r *Runner) Register(ctx context.Context, b *Batch) int {
	registered := 0
	for _, c := range b.Customers {
		if _, err := r.customers.Register(ctx, c.Name, c.Email, c.TaxID); err != nil {
			r.lg.Warn("Customer skipped", zap.String("tax_id", c.TaxID), zap.Error(err))
			continue
		}
		registered++
	}
	return registered
}

// Place prices and saves the orders of b on a bounded worker pool. A failing
// order is reported in its Result and does not stop the others. Results
// follow the batch order.
func (r *Runner) Place(ctx context.Context, b *Batch) ([]Result, error) {
	results := make([]Result, len(b.Orders))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, bo := range b.Orders {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o, err := r.place(ctx, bo)
			results[i] = Result{Index: i + 1, TaxID: bo.TaxID, Order: o, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) place(ctx context.Context, bo BatchOrder) (*order.Order, error) {
	// An absent tax id reaches the builder as a missing customer.
	var c *customer.Customer
	if bo.TaxID != "" {
		var err error
		if c, err = r.customers.Get(ctx, bo.TaxID); err != nil {
			return nil, err
		}
	}
	return r.orders.PlaceOrder(ctx, c, lo.Map(bo.Lines, func(l BatchLine, _ int) order.LineRequest {
		return l.request()
	}))
}

// GrandTotal sums the totals of the successful results.
func GrandTotal(results []Result) decimal.Decimal {
	return lo.Reduce(results, func(sum decimal.Decimal, r Result, _ int) decimal.Decimal {
		if r.Err != nil {
			return sum
		}
		return sum.Add(r.Order.Total())
	}, decimal.Zero)
}

// Report writes one line per result and the grand total. Failed orders show
// their error; they never show a total.
func Report(w io.Writer, results []Result) error {
	failed := 0
	for _, r := range results {
		var err error
		if r.Err != nil {
			failed++
			_, err = fmt.Fprintf(w, "order %d (%s): error: %v\n", r.Index, r.TaxID, r.Err)
		} else {
			_, err = fmt.Fprintf(w, "order %d (%s): %d lines, discounts %s, total %s\n",
				r.Index, r.TaxID, r.Order.Len(), r.Order.Discounts().StringFixed(2), r.Order.Total().StringFixed(2))
		}
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "placed %d of %d orders, grand total %s\n",
		len(results)-failed, len(results), GrandTotal(results).StringFixed(2))
	return err
}
