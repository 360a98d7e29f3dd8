package customer

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRepo struct {
	byTaxID   map[string]*Customer
	order     []string
	createErr error
	getErr    error
}

func newMockRepo() *mockRepo {
	return &mockRepo{byTaxID: map[string]*Customer{}}
}

func (m *mockRepo) Create(_ context.Context, c *Customer) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byTaxID[c.TaxID]; ok {
		return ErrAlreadyExists
	}
	m.byTaxID[c.TaxID] = c
	m.order = append(m.order, c.TaxID)
	return nil
}

func (m *mockRepo) Get(_ context.Context, taxID string) (*Customer, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.byTaxID[taxID]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockRepo) List(_ context.Context) ([]Customer, error) {
	out := make([]Customer, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byTaxID[id])
	}
	return out, nil
}

type mockNotifier struct {
	registered []*Customer
}

func (m *mockNotifier) CustomerRegistered(_ context.Context, c *Customer) {
	m.registered = append(m.registered, c)
}

// --- Tests ---

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cname     string
		email     string
		taxID     string
		wantField string
	}{
		{name: "valid", cname: "Posto Central", email: "compras@central.com.br", taxID: "12.345.678/0001-90"},
		{name: "valid with spaces trimmed", cname: " Posto ", email: " a@b.co ", taxID: " 1 "},
		{name: "missing name", cname: "", email: "a@b.co", taxID: "1", wantField: "name"},
		{name: "missing email", cname: "x", email: "", taxID: "1", wantField: "email"},
		{name: "email without at", cname: "x", email: "compras.central.com", taxID: "1", wantField: "email"},
		{name: "email without dot in domain", cname: "x", email: "compras@central", taxID: "1", wantField: "email"},
		{name: "email with space", cname: "x", email: "com pras@central.com", taxID: "1", wantField: "email"},
		{name: "blank tax id", cname: "x", email: "a@b.co", taxID: "   ", wantField: "tax_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cname, tt.email, tt.taxID)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, c.TaxID)
				return
			}
			var fErr *FormatError
			require.ErrorAs(t, err, &fErr)
			assert.Equal(t, tt.wantField, fErr.Field)
			assert.Nil(t, c)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ops@petro.com"))

	var fErr *FormatError
	require.ErrorAs(t, ValidateEmail("ops@petro"), &fErr)
	assert.Equal(t, "email", fErr.Field)
	assert.Equal(t, "ops@petro", fErr.Value)
}

func TestValidateTaxID(t *testing.T) {
	assert.NoError(t, ValidateTaxID("00.000.000/0001-00"))

	var fErr *FormatError
	require.ErrorAs(t, ValidateTaxID(""), &fErr)
	assert.Equal(t, "tax_id", fErr.Field)
	assert.Contains(t, fErr.Error(), "value required")
}

func TestService_Register(t *testing.T) {
	repo := newMockRepo()
	n := &mockNotifier{}
	svc := NewService(repo, n)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	c, err := svc.Register(context.Background(), "Posto Central", "compras@central.com.br", "1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), c.CreatedAt)
	require.Len(t, n.registered, 1)
	assert.Same(t, c, n.registered[0])

	_, err = svc.Register(context.Background(), "Other", "x@y.io", "1")
	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.Len(t, n.registered, 1)
}

func TestService_RegisterInvalid(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	_, err := svc.Register(context.Background(), "Posto", "bad", "1")
	var fErr *FormatError
	require.ErrorAs(t, err, &fErr)
	assert.Empty(t, repo.order)
}

func TestService_RegisterStoreError(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = errors.New("disk full")
	svc := NewService(repo, nil)

	_, err := svc.Register(context.Background(), "Posto", "a@b.co", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create customer")
}

func TestService_Get(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	_, err := svc.Register(context.Background(), "Posto", "a@b.co", "42")
	require.NoError(t, err)

	c, err := svc.Get(context.Background(), " 42 ")
	require.NoError(t, err)
	assert.Equal(t, "Posto", c.Name)

	_, err = svc.Get(context.Background(), "7")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	var fErr *FormatError
	require.ErrorAs(t, err, &fErr)

	repo.getErr = errors.New("connection reset")
	_, err = svc.Get(context.Background(), "42")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestService_List(t *testing.T) {
	svc := NewService(newMockRepo(), nil)
	for _, id := range []string{"3", "1", "2"} {
		_, err := svc.Register(context.Background(), "Posto "+id, "a@b.co", id)
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "3", list[0].TaxID)
}
