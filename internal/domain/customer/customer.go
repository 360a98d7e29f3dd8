// Package customer validates and registers the customers orders are placed
// for.
package customer

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when no customer has the requested tax id.
	ErrNotFound = errors.New("customer not found")
	// ErrAlreadyExists is returned when registering a tax id twice.
	ErrAlreadyExists = errors.New("customer already exists")
)

// FormatError reports a customer field that failed validation.
type FormatError struct {
	Field string
	Value string
}

func (e *FormatError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: value required", e.Field)
	}
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// Customer is the party an order is placed for, identified by tax id.
type Customer struct {
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"required,contact_email"`
	TaxID     string    `json:"tax_id" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// New validates the fields and returns a customer. Surrounding whitespace is
// dropped from every field.
func New(name, email, taxID string) (*Customer, error) {
	c := &Customer{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		TaxID: strings.TrimSpace(taxID),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every field and returns a *FormatError for the first that
// fails.
func (c *Customer) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &FormatError{Field: fe.Field(), Value: fmt.Sprint(fe.Value())}
	}
	return errors.Wrap(err, "validate customer")
}

// ValidateEmail fails with *FormatError when email is malformed.
func ValidateEmail(email string) error {
	if validate.Var(email, "required,contact_email") != nil {
		return &FormatError{Field: "email", Value: email}
	}
	return nil
}

// ValidateTaxID fails with *FormatError when the tax id is blank.
func ValidateTaxID(taxID string) error {
	if strings.TrimSpace(taxID) == "" {
		return &FormatError{Field: "tax_id", Value: taxID}
	}
	return nil
}

// Repository persists customers keyed by tax id.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Get(ctx context.Context, taxID string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}
