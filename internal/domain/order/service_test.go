package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// --- Mock implementations ---

type mockCatalog struct {
	catalog *pricing.Catalog
	err     error
}

func (m *mockCatalog) Catalog(_ context.Context) (*pricing.Catalog, error) {
	return m.catalog, m.err
}

type mockOrderRepo struct {
	saved   []*Order
	saveErr error
	findErr error
}

func (m *mockOrderRepo) Save(_ context.Context, o *Order) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, o)
	return nil
}

func (m *mockOrderRepo) FindByCustomer(_ context.Context, taxID string) ([]*Order, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []*Order
	for _, o := range m.saved {
		if o.Customer().TaxID == taxID {
			out = append(out, o)
		}
	}
	return out, nil
}

type mockNotifier struct {
	placed []*Order
}

func (m *mockNotifier) OrderPlaced(_ context.Context, o *Order) {
	m.placed = append(m.placed, o)
}

// --- Helpers ---

func newTestService(repo *mockOrderRepo, n Notifier) *Service {
	return NewService(&mockCatalog{catalog: pricing.DefaultCatalog()}, pricing.DefaultResolver(), repo, n)
}

// --- Tests ---

func TestService_PlaceOrder(t *testing.T) {
	repo := &mockOrderRepo{}
	n := &mockNotifier{}
	svc := newTestService(repo, n)

	o, err := svc.PlaceOrder(context.Background(), newTestCustomer(t), []LineRequest{
		Line("diesel", 1200, "MEGA10"),
	})
	require.NoError(t, err)
	assert.True(t, d("5280").Equal(o.Total()))
	require.Len(t, repo.saved, 1)
	assert.Same(t, o, repo.saved[0])
	require.Len(t, n.placed, 1)
	assert.Same(t, o, n.placed[0])
}

func TestService_PlaceOrder_FailureSavesNothing(t *testing.T) {
	repo := &mockOrderRepo{}
	n := &mockNotifier{}
	svc := newTestService(repo, n)

	_, err := svc.PlaceOrder(context.Background(), newTestCustomer(t), []LineRequest{
		Line("diesel", 10, ""),
		Line("ethanol", 0, ""),
	})
	var iqErr *pricing.InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Empty(t, repo.saved)
	assert.Empty(t, n.placed)

	_, err = svc.PlaceOrder(context.Background(), nil, []LineRequest{Line("diesel", 10, "")})
	var mfErr *MissingFieldError
	require.ErrorAs(t, err, &mfErr)
	assert.Empty(t, repo.saved)
}

func TestService_PlaceOrder_SaveError(t *testing.T) {
	repo := &mockOrderRepo{saveErr: errors.New("db write failed")}
	n := &mockNotifier{}
	svc := newTestService(repo, n)

	_, err := svc.PlaceOrder(context.Background(), newTestCustomer(t), []LineRequest{Line("diesel", 10, "")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save order")
	assert.Empty(t, n.placed)
}

func TestService_CatalogError(t *testing.T) {
	errDown := errors.New("catalog unavailable")
	svc := NewService(&mockCatalog{err: errDown}, nil, &mockOrderRepo{}, nil)

	_, err := svc.Quote(context.Background(), newTestCustomer(t), []LineRequest{Line("diesel", 10, "")})
	require.ErrorIs(t, err, errDown)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestService_Quote(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := newTestService(repo, nil)

	o, err := svc.Quote(context.Background(), newTestCustomer(t), []LineRequest{Line("lubricant", 12, "LUB2")})
	require.NoError(t, err)
	assert.True(t, d("418").Equal(o.Total()))
	assert.Empty(t, repo.saved, "quotes are not persisted")
}

func TestService_OrdersForCustomer(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := newTestService(repo, nil)
	c := newTestCustomer(t)

	for _, qty := range []int{1, 2} {
		_, err := svc.PlaceOrder(context.Background(), c, []LineRequest{Line("gasoline", qty, "")})
		require.NoError(t, err)
	}

	orders, err := svc.OrdersForCustomer(context.Background(), c.TaxID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 1, orders[0].Lines()[0].Quantity())

	_, err = svc.OrdersForCustomer(context.Background(), "")
	require.Error(t, err)

	repo.findErr = errors.New("timeout")
	_, err = svc.OrdersForCustomer(context.Background(), c.TaxID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find orders")
}
