package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// ListProducts returns the current catalog ordered by kind.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.Catalog(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, entry := range c.Entries() {
				encodeEntry(e, entry)
			}
		})
	})
}

// ListCoupons returns the coupon table ordered by code.
func (h *Handler) ListCoupons(w http.ResponseWriter, _ *http.Request) {
	rules := h.resolver.Rules()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, rule := range rules {
				encodeCouponRule(e, rule)
			}
		})
	})
}
