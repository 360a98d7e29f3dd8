package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
	"github.com/xenking/petrobahia/internal/domain/pricing"
	"github.com/xenking/petrobahia/internal/storage/memory"
)

const testTaxID = "12345678000190"

type staticCatalog struct {
	err error
}

func (s staticCatalog) Catalog(context.Context) (*pricing.Catalog, error) {
	if s.err != nil {
		return nil, s.err
	}
	return pricing.DefaultCatalog(), nil
}

type lineResponse struct {
	Kind            string      `json:"kind"`
	Quantity        int         `json:"quantity"`
	CouponCode      string      `json:"couponCode"`
	Gross           json.Number `json:"gross"`
	ProductDiscount json.Number `json:"productDiscount"`
	CouponDiscount  json.Number `json:"couponDiscount"`
	Net             json.Number `json:"net"`
}

type orderResponse struct {
	ID        string         `json:"id"`
	TaxID     string         `json:"taxId"`
	Lines     []lineResponse `json:"lines"`
	Gross     json.Number    `json:"gross"`
	Discounts json.Number    `json:"discounts"`
	Total     json.Number    `json:"total"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newTestServer(t *testing.T, catalog pricing.Provider) *httptest.Server {
	t.Helper()
	store, err := memory.New()
	require.NoError(t, err)

	h, err := NewHandler(
		customer.NewService(store, nil),
		order.NewService(catalog, pricing.DefaultResolver(), store, nil),
		catalog,
		pricing.DefaultResolver(),
		noop.NewMeterProvider(),
	)
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func registerCustomer(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp := do(t, srv, http.MethodPost, "/api/customers",
		`{"name":"Posto Central","email":"compras@central.com.br","taxId":"`+testTaxID+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestListProducts(t *testing.T) {
	srv := newTestServer(t, staticCatalog{})

	resp := do(t, srv, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	products := decode[[]struct {
		Kind      string      `json:"kind"`
		UnitPrice json.Number `json:"unitPrice"`
		Policy    *struct {
			Type string `json:"type"`
		} `json:"policy"`
	}](t, resp)
	require.Len(t, products, 4)
	assert.Equal(t, "diesel", products[0].Kind)
	assert.Equal(t, json.Number("5.50"), products[0].UnitPrice)
	require.NotNil(t, products[0].Policy)
	assert.Equal(t, "tiered_percentage", products[0].Policy.Type)
}

func TestListProducts_CatalogUnavailable(t *testing.T) {
	srv := newTestServer(t, staticCatalog{err: errors.New("connection refused")})

	resp := do(t, srv, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.NotContains(t, body.Message, "connection refused")
}

func TestListCoupons(t *testing.T) {
	srv := newTestServer(t, staticCatalog{})

	resp := do(t, srv, http.MethodGet, "/api/coupons", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	coupons := decode[[]struct {
		Code string `json:"code"`
		Kind string `json:"kind"`
	}](t, resp)
	require.Len(t, coupons, 3)
	assert.Equal(t, "LUB2", coupons[0].Code)
	assert.Equal(t, "lubricant", coupons[0].Kind)
}

func TestRegisterCustomer(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid", body: `{"name":"Posto","email":"a@b.com","taxId":"1"}`, wantStatus: http.StatusCreated},
		{name: "bad email", body: `{"name":"Posto","email":"nope","taxId":"1"}`, wantStatus: http.StatusBadRequest},
		{name: "missing name", body: `{"email":"a@b.com","taxId":"1"}`, wantStatus: http.StatusBadRequest},
		{name: "not an object", body: `[1,2]`, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{"name":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, staticCatalog{})
			resp := do(t, srv, http.MethodPost, "/api/customers", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestCustomerLifecycle(t *testing.T) {
	srv := newTestServer(t, staticCatalog{})
	registerCustomer(t, srv)

	resp := do(t, srv, http.MethodPost, "/api/customers",
		`{"name":"Posto Central","email":"compras@central.com.br","taxId":"`+testTaxID+`"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/customers/"+testTaxID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[struct {
		Email string `json:"email"`
	}](t, resp)
	assert.Equal(t, "compras@central.com.br", got.Email)

	resp = do(t, srv, http.MethodGet, "/api/customers/999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/customers", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, resp), 1)
}

func TestQuote(t *testing.T) {
	srv := newTestServer(t, staticCatalog{})
	registerCustomer(t, srv)

	resp := do(t, srv, http.MethodPost, "/api/quotes", `{
		"taxId": "`+testTaxID+`",
		"lines": [
			{"kind": "diesel", "quantity": 1200, "couponCode": "MEGA10"},
			{"kind": "gasoline", "quantity": 300},
			{"kind": "ethanol", "quantity": 50, "couponCode": "NOVO5"},
			{"kind": "lubricant", "quantity": 12, "couponCode": "LUB2"}
		]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	o := decode[orderResponse](t, resp)
	assert.Empty(t, o.ID, "quotes have no id")
	assert.Equal(t, testTaxID, o.TaxID)
	require.Len(t, o.Lines, 4)
	assert.Equal(t, json.Number("5280.00"), o.Lines[0].Net)
	assert.Equal(t, json.Number("660.00"), o.Lines[0].CouponDiscount)
	assert.Equal(t, "MEGA10", o.Lines[0].CouponCode)
	assert.Equal(t, json.Number("9120.00"), o.Gross)
	assert.Equal(t, json.Number("1434.00"), o.Discounts)
	assert.Equal(t, json.Number("7686.00"), o.Total)

	// Quotes are not persisted.
	resp = do(t, srv, http.MethodGet, "/api/customers/"+testTaxID+"/orders", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]orderResponse](t, resp))
}

func TestPlaceOrder(t *testing.T) {
	srv := newTestServer(t, staticCatalog{})
	registerCustomer(t, srv)

	resp := do(t, srv, http.MethodPost, "/api/orders",
		`{"taxId":"`+testTaxID+`","lines":[{"kind":"lubricant","quantity":12,"couponCode":"lub2"}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	placed := decode[orderResponse](t, resp)
	assert.NotEmpty(t, placed.ID)
	assert.Equal(t, json.Number("418.00"), placed.Total)

	resp = do(t, srv, http.MethodGet, "/api/customers/"+testTaxID+"/orders", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[[]orderResponse](t, resp)
	require.Len(t, history, 1)
	assert.Equal(t, placed.ID, history[0].ID)
}

func TestPlaceOrder_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "missing customer", body: `{"lines":[{"kind":"diesel","quantity":1}]}`, wantStatus: http.StatusBadRequest},
		{name: "unknown customer", body: `{"taxId":"404","lines":[{"kind":"diesel","quantity":1}]}`, wantStatus: http.StatusNotFound},
		{name: "no lines", body: `{"taxId":"` + testTaxID + `","lines":[]}`, wantStatus: http.StatusBadRequest},
		{name: "missing quantity", body: `{"taxId":"` + testTaxID + `","lines":[{"kind":"diesel","quantity":null}]}`, wantStatus: http.StatusBadRequest},
		{name: "zero quantity", body: `{"taxId":"` + testTaxID + `","lines":[{"kind":"diesel","quantity":0}]}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown product", body: `{"taxId":"` + testTaxID + `","lines":[{"kind":"kerosene","quantity":5}]}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "quantity not a number", body: `{"taxId":"` + testTaxID + `","lines":[{"kind":"diesel","quantity":"ten"}]}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, staticCatalog{})
			registerCustomer(t, srv)

			resp := do(t, srv, http.MethodPost, "/api/orders", tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode[errorResponse](t, resp)
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantReason string
	}{
		{err: badRequest("x"), wantStatus: http.StatusBadRequest, wantReason: "malformed_request"},
		{err: &customer.FormatError{Field: "email"}, wantStatus: http.StatusBadRequest, wantReason: "invalid_format"},
		{err: &order.MissingFieldError{Field: "lines"}, wantStatus: http.StatusBadRequest, wantReason: "missing_field"},
		{err: &pricing.InvalidQuantityError{Kind: pricing.KindDiesel}, wantStatus: http.StatusUnprocessableEntity, wantReason: "invalid_quantity"},
		{err: &order.UnknownProductError{Kind: "kerosene"}, wantStatus: http.StatusUnprocessableEntity, wantReason: "unknown_product"},
		{err: &order.ValidationError{Reason: "customer required"}, wantStatus: http.StatusUnprocessableEntity, wantReason: "validation"},
		{err: customer.ErrNotFound, wantStatus: http.StatusNotFound, wantReason: "customer_not_found"},
		{err: customer.ErrAlreadyExists, wantStatus: http.StatusConflict, wantReason: "customer_exists"},
		{err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantReason: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.wantReason, func(t *testing.T) {
			status, reason := classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}
