package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
	"github.com/xenking/petrobahia/internal/domain/pricing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func newCustomer(t *testing.T, taxID string) *customer.Customer {
	t.Helper()
	c, err := customer.New("Posto "+taxID, "posto@example.com", taxID)
	require.NoError(t, err)
	return c
}

func TestStore_Customers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, id := range []string{"30", "10", "20"} {
		require.NoError(t, s.Create(ctx, newCustomer(t, id)))
	}
	require.ErrorIs(t, s.Create(ctx, newCustomer(t, "10")), customer.ErrAlreadyExists)

	got, err := s.Get(ctx, "20")
	require.NoError(t, err)
	assert.Equal(t, "Posto 20", got.Name)

	got.Name = "changed"
	again, err := s.Get(ctx, "20")
	require.NoError(t, err)
	assert.Equal(t, "Posto 20", again.Name, "returned customers are copies")

	_, err = s.Get(ctx, "99")
	require.ErrorIs(t, err, customer.ErrNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"30", "10", "20"}, []string{list[0].TaxID, list[1].TaxID, list[2].TaxID})
}

func TestStore_Orders(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	b := order.NewBuilder(pricing.DefaultResolver())
	a, other := newCustomer(t, "1"), newCustomer(t, "2")

	var placed []*order.Order
	for _, qty := range []int{3, 1, 2} {
		o, err := b.Build(a, []order.LineRequest{order.Line("diesel", qty, "")}, pricing.DefaultCatalog())
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, o))
		placed = append(placed, o)
	}
	o, err := b.Build(other, []order.LineRequest{order.Line("ethanol", 5, "")}, pricing.DefaultCatalog())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, o))

	got, err := s.FindByCustomer(ctx, "1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range placed {
		assert.Equal(t, placed[i].ID(), got[i].ID())
	}

	none, err := s.FindByCustomer(ctx, "404")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_SaveWithoutCustomer(t *testing.T) {
	li, err := pricing.NewLineItem(pricing.DefaultCatalog().Entries()[0], 1, nil)
	require.NoError(t, err)

	err = newStore(t).Save(context.Background(), order.New(nil, []pricing.LineItem{li}))
	require.Error(t, err)
}

func TestStore_WithServices(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	customers := customer.NewService(s, nil)
	orders := order.NewService(staticCatalog{}, pricing.DefaultResolver(), s, nil)

	c, err := customers.Register(ctx, "Posto Central", "compras@central.com.br", "7")
	require.NoError(t, err)
	_, err = orders.PlaceOrder(ctx, c, []order.LineRequest{order.Line("lubricant", 12, "LUB2")})
	require.NoError(t, err)

	history, err := orders.OrdersForCustomer(ctx, "7")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "418.00", history[0].Total().StringFixed(2))
}

type staticCatalog struct{}

func (staticCatalog) Catalog(context.Context) (*pricing.Catalog, error) {
	return pricing.DefaultCatalog(), nil
}
