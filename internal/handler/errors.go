package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// badRequestError reports a malformed request body.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return "malformed request: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &badRequestError{err: fmt.Errorf(format, args...)}
}

// classify maps an error to its HTTP status and a short reason label.
func classify(err error) (status int, reason string) {
	var (
		brErr  *badRequestError
		fmtErr *customer.FormatError
		mfErr  *order.MissingFieldError
		iqErr  *pricing.InvalidQuantityError
		upErr  *order.UnknownProductError
		vErr   *order.ValidationError
	)
	switch {
	case errors.As(err, &brErr):
		return http.StatusBadRequest, "malformed_request"
	case errors.As(err, &fmtErr):
		return http.StatusBadRequest, "invalid_format"
	case errors.As(err, &mfErr):
		return http.StatusBadRequest, "missing_field"
	case errors.As(err, &iqErr):
		return http.StatusUnprocessableEntity, "invalid_quantity"
	case errors.As(err, &upErr):
		return http.StatusUnprocessableEntity, "unknown_product"
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, customer.ErrNotFound):
		return http.StatusNotFound, "customer_not_found"
	case errors.Is(err, customer.ErrAlreadyExists):
		return http.StatusConflict, "customer_exists"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError classifies err and writes it as {"code": ..., "message": ...}.
// Internal errors are logged and hidden from the client.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, _ := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zctx.From(ctx).Error("Request failed", zap.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}
