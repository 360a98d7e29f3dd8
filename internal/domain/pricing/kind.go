// Package pricing holds the per-line pricing rules: volume discount policies,
// coupon strategies, the coupon resolver, catalog entries and the line item
// pricer. Every value in this package is immutable once constructed and safe
// to share between goroutines.
package pricing

import "strings"

// Kind identifies a product in the catalog. The set of kinds is open-ended.
type Kind string

// Kinds sold today.
const (
	KindDiesel    Kind = "diesel"
	KindGasoline  Kind = "gasoline"
	KindEthanol   Kind = "ethanol"
	KindLubricant Kind = "lubricant"
)

// ParseKind normalizes raw input into a Kind: surrounding whitespace is
// dropped and letters are lowered.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

// IsZero reports whether k is the empty kind.
func (k Kind) IsZero() bool { return k == "" }

func (k Kind) String() string { return string(k) }
