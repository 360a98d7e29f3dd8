package order

import (
	"fmt"

	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// MissingFieldError indicates a structurally incomplete order request.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %s", e.Field)
}

// UnknownProductError indicates a requested product kind is not in the
// catalog.
type UnknownProductError struct {
	Kind pricing.Kind
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("product %s not found", e.Kind)
}

// ValidationError indicates an assembled order breaks an order-level rule.
// The order is discarded; the caller may correct the input and retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid order: " + e.Reason
}
