package pricing

import "fmt"

// ConfigurationError reports an invalid policy, coupon or catalog parameter
// detected at construction time.
type ConfigurationError struct {
	Component string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s configuration: %s", e.Component, e.Reason)
}

func configErr(component, format string, args ...any) error {
	return &ConfigurationError{Component: component, Reason: fmt.Sprintf(format, args...)}
}

// InvalidQuantityError indicates a line item was requested with a non-positive
// quantity.
type InvalidQuantityError struct {
	Kind     Kind
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s, got %d", e.Kind, e.Quantity)
}
