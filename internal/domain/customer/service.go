package customer

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Notifier observes registrations.
type Notifier interface {
	CustomerRegistered(ctx context.Context, c *Customer)
}

// Service registers and looks up customers.
type Service struct {
	customers Repository
	notifier  Notifier
	now       func() time.Time
}

// NewService creates a customer Service. notifier may be nil.
func NewService(customers Repository, notifier Notifier) *Service {
	return &Service{
		customers: customers,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Register validates and stores a new customer. A *FormatError is returned
// for malformed fields and ErrAlreadyExists for a known tax id.
func (s *Service) Register(ctx context.Context, name, email, taxID string) (*Customer, error) {
	c, err := New(name, email, taxID)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = s.now().UTC()

	if err := s.customers.Create(ctx, c); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, err
		}
		return nil, errors.Wrap(err, "create customer")
	}
	if s.notifier != nil {
		s.notifier.CustomerRegistered(ctx, c)
	}
	return c, nil
}

// Get returns the customer with taxID or ErrNotFound.
func (s *Service) Get(ctx context.Context, taxID string) (*Customer, error) {
	taxID = strings.TrimSpace(taxID)
	if err := ValidateTaxID(taxID); err != nil {
		return nil, err
	}
	c, err := s.customers.Get(ctx, taxID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "get customer %s", taxID)
	}
	return c, nil
}

// List returns every registered customer.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	list, err := s.customers.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list customers")
	}
	return list, nil
}
