package pricing

import "github.com/shopspring/decimal"

// LineItem is one priced line of an order. All amounts are derived once, at
// construction, and never change.
type LineItem struct {
	entry    Entry
	quantity int
	coupon   Coupon

	gross           decimal.Decimal
	productDiscount decimal.Decimal
	couponDiscount  decimal.Decimal
	net             decimal.Decimal
}

// NewLineItem prices quantity units of entry. The volume discount and the
// coupon discount are both computed against the same gross amount, and the
// net amount is floored at zero. A nil coupon means NoCoupon.
func NewLineItem(entry Entry, quantity int, coupon Coupon) (LineItem, error) {
	if quantity <= 0 {
		return LineItem{}, &InvalidQuantityError{Kind: entry.kind, Quantity: quantity}
	}
	if entry.policy == nil {
		return LineItem{}, configErr("line item", "uninitialized catalog entry")
	}
	if coupon == nil {
		coupon = NoCoupon{}
	}

	g := gross(entry.unitPrice, quantity)
	pd := nonNegative(entry.policy.Discount(entry.unitPrice, quantity))
	cd := nonNegative(coupon.Discount(g, entry.kind))

	return LineItem{
		entry:           entry,
		quantity:        quantity,
		coupon:          coupon,
		gross:           g,
		productDiscount: pd,
		couponDiscount:  cd,
		net:             nonNegative(g.Sub(pd).Sub(cd)),
	}, nil
}

func (l LineItem) Entry() Entry                     { return l.entry }
func (l LineItem) Kind() Kind                       { return l.entry.kind }
func (l LineItem) UnitPrice() decimal.Decimal       { return l.entry.unitPrice }
func (l LineItem) Quantity() int                    { return l.quantity }
func (l LineItem) Coupon() Coupon                   { return l.coupon }
func (l LineItem) CouponCode() string               { return l.coupon.Code() }
func (l LineItem) Gross() decimal.Decimal           { return l.gross }
func (l LineItem) ProductDiscount() decimal.Decimal { return l.productDiscount }
func (l LineItem) CouponDiscount() decimal.Decimal  { return l.couponDiscount }
func (l LineItem) Net() decimal.Decimal             { return l.net }

// Discount is the amount actually taken off the line, which is less than the
// sum of both discounts when the net amount was floored.
func (l LineItem) Discount() decimal.Decimal { return l.gross.Sub(l.net) }

// LineSnapshot is the persisted form of a priced line.
type LineSnapshot struct {
	Kind            Kind            `json:"kind"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	Gross           decimal.Decimal `json:"gross"`
	ProductDiscount decimal.Decimal `json:"product_discount"`
	CouponDiscount  decimal.Decimal `json:"coupon_discount"`
	Net             decimal.Decimal `json:"net"`
}

func (l LineItem) Snapshot() LineSnapshot {
	return LineSnapshot{
		Kind:            l.entry.kind,
		UnitPrice:       l.entry.unitPrice,
		Quantity:        l.quantity,
		CouponCode:      l.CouponCode(),
		Gross:           l.gross,
		ProductDiscount: l.productDiscount,
		CouponDiscount:  l.couponDiscount,
		Net:             l.net,
	}
}

// RestoreLineItem rebuilds a persisted line without re-pricing it: the stored
// amounts are kept even if the catalog has changed since.
func RestoreLineItem(s LineSnapshot) (LineItem, error) {
	if s.Quantity <= 0 {
		return LineItem{}, &InvalidQuantityError{Kind: s.Kind, Quantity: s.Quantity}
	}
	entry, err := NewEntry(s.Kind, s.UnitPrice, NoDiscount{})
	if err != nil {
		return LineItem{}, err
	}
	var coupon Coupon = NoCoupon{}
	if code := NormalizeCode(s.CouponCode); code != "" {
		coupon = coded{Coupon: NoCoupon{}, code: code}
	}
	return LineItem{
		entry:           entry,
		quantity:        s.Quantity,
		coupon:          coupon,
		gross:           s.Gross,
		productDiscount: s.ProductDiscount,
		couponDiscount:  s.CouponDiscount,
		net:             s.Net,
	}, nil
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
