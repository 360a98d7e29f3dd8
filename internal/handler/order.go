package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/petrobahia/internal/domain/customer"
)

// Quote prices an order request without placing it.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, req, err := h.orderInput(r)
	if err != nil {
		h.reject(ctx, w, err)
		return
	}

	o, err := h.orders.Quote(ctx, c, req.Lines)
	if err != nil {
		h.reject(ctx, w, err)
		return
	}
	h.metrics.quotes.Add(ctx, 1)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o, false) })
}

// PlaceOrder prices, persists and returns an order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, req, err := h.orderInput(r)
	if err != nil {
		h.reject(ctx, w, err)
		return
	}

	o, err := h.orders.PlaceOrder(ctx, c, req.Lines)
	if err != nil {
		h.reject(ctx, w, err)
		return
	}
	h.metrics.orderPlaced(ctx, o)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("order.id", o.ID()),
		attribute.Int("order.lines", o.Len()),
	)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, o, true) })
}

// ListCustomerOrders returns a customer's placed orders, oldest first.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.customers.Get(ctx, pathTaxID(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	orders, err := h.orders.OrdersForCustomer(ctx, c.TaxID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, o := range orders {
				encodeOrder(e, o, true)
			}
		})
	})
}

// orderInput decodes the body and looks up the customer. An absent tax id
// yields a nil customer, which the builder reports as a missing field.
func (h *Handler) orderInput(r *http.Request) (*customer.Customer, orderRequest, error) {
	req, err := decodeOrderRequest(r)
	if err != nil {
		return nil, req, err
	}
	if req.TaxID == "" {
		return nil, req, nil
	}
	c, err := h.customers.Get(r.Context(), req.TaxID)
	if err != nil {
		return nil, req, err
	}
	return c, req, nil
}

func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, err error) {
	_, reason := classify(err)
	h.metrics.orderRejected(ctx, reason)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("order.rejected", reason))
	writeError(ctx, w, err)
}
