// Package handler serves the pricing services over JSON/HTTP.
package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// Handler exposes customers, the catalog, quotes and orders.
type Handler struct {
	customers *customer.Service
	orders    *order.Service
	catalog   pricing.Provider
	resolver  *pricing.Resolver
	metrics   *metrics
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	customers *customer.Service,
	orders *order.Service,
	catalog pricing.Provider,
	resolver *pricing.Resolver,
	meterProvider metric.MeterProvider,
) (*Handler, error) {
	m, err := newMetrics(meterProvider)
	if err != nil {
		return nil, err
	}
	return &Handler{
		customers: customers,
		orders:    orders,
		catalog:   catalog,
		resolver:  resolver,
		metrics:   m,
	}, nil
}

// Register mounts the API routes on mux under /api.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/coupons", h.ListCoupons)
	mux.HandleFunc("POST /api/customers", h.RegisterCustomer)
	mux.HandleFunc("GET /api/customers", h.ListCustomers)
	mux.HandleFunc("GET /api/customers/{taxId}", h.GetCustomer)
	mux.HandleFunc("GET /api/customers/{taxId}/orders", h.ListCustomerOrders)
	mux.HandleFunc("POST /api/quotes", h.Quote)
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
}
