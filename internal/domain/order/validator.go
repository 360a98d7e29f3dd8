package order

// Validate checks the order-level rules: the order names a customer and has
// at least one line. Line amounts are already guaranteed by construction.
func Validate(o *Order) error {
	switch {
	case o == nil:
		return &ValidationError{Reason: "order required"}
	case o.customer == nil:
		return &ValidationError{Reason: "customer required"}
	case len(o.lines) < 1:
		return &ValidationError{Reason: "at least one line item required"}
	}
	return nil
}
