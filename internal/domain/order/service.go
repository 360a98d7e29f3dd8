package order

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// Notifier observes placed orders. It never influences pricing.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *Order)
}

// Service encapsulates quoting and placing orders.
type Service struct {
	catalog  pricing.Provider
	builder  *Builder
	orders   Repository
	notifier Notifier
}

// NewService creates an order Service. notifier may be nil.
func NewService(
	catalog pricing.Provider,
	resolver *pricing.Resolver,
	orders Repository,
	notifier Notifier,
) *Service {
	return &Service{
		catalog:  catalog,
		builder:  NewBuilder(resolver),
		orders:   orders,
		notifier: notifier,
	}
}

// Quote prices an order against the current catalog without persisting it.
func (s *Service) Quote(ctx context.Context, c *customer.Customer, reqs []LineRequest) (*Order, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	return s.builder.Build(c, reqs, catalog)
}

// PlaceOrder prices, validates and persists an order, then notifies. Any
// failure before the save leaves nothing persisted.
func (s *Service) PlaceOrder(ctx context.Context, c *customer.Customer, reqs []LineRequest) (*Order, error) {
	o, err := s.Quote(ctx, c, reqs)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, errors.Wrap(err, "save order")
	}
	if s.notifier != nil {
		s.notifier.OrderPlaced(ctx, o)
	}
	return o, nil
}

// OrdersForCustomer returns the persisted orders of a customer, oldest first.
func (s *Service) OrdersForCustomer(ctx context.Context, taxID string) ([]*Order, error) {
	if err := customer.ValidateTaxID(taxID); err != nil {
		return nil, err
	}
	orders, err := s.orders.FindByCustomer(ctx, taxID)
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}
	return orders, nil
}
