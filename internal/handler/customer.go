package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// RegisterCustomer validates and registers a customer.
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decodeCustomerRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.customers.Register(ctx, req.Name, req.Email, req.TaxID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeCustomer(e, c) })
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.customers.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range list {
				encodeCustomer(e, &list[i])
			}
		})
	})
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Get(r.Context(), pathTaxID(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCustomer(e, c) })
}
