package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
	"github.com/xenking/petrobahia/internal/domain/pricing"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	encode(e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// decodeBody reads a JSON object from the request body, calling field for
// every key. Unknown keys are skipped.
func decodeBody(r *http.Request, field func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return badRequest("read body: %v", err)
	}
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return badRequest("body must be a JSON object")
	}
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		return field(d, string(key))
	}); err != nil {
		var brErr *badRequestError
		if errors.As(err, &brErr) {
			return err
		}
		return badRequest("%v", err)
	}
	return nil
}

type customerRequest struct {
	Name  string
	Email string
	TaxID string
}

func decodeCustomerRequest(r *http.Request) (customerRequest, error) {
	var req customerRequest
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			return decodeStr(d, &req.Name)
		case "email":
			return decodeStr(d, &req.Email)
		case "taxId":
			return decodeStr(d, &req.TaxID)
		default:
			return d.Skip()
		}
	})
	return req, err
}

type orderRequest struct {
	TaxID string
	Lines []order.LineRequest
}

func decodeOrderRequest(r *http.Request) (orderRequest, error) {
	var req orderRequest
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "taxId":
			return decodeStr(d, &req.TaxID)
		case "lines":
			return d.Arr(func(d *jx.Decoder) error {
				line, err := decodeLine(d)
				if err != nil {
					return err
				}
				req.Lines = append(req.Lines, line)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return req, err
}

func decodeLine(d *jx.Decoder) (order.LineRequest, error) {
	var line order.LineRequest
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "kind":
			return decodeStr(d, &line.Kind)
		case "couponCode":
			return decodeStr(d, &line.CouponCode)
		case "quantity":
			if d.Next() == jx.Null {
				return d.Null()
			}
			n, err := d.Int()
			if err != nil {
				return badRequest("quantity: %v", err)
			}
			line.Quantity = &n
			return nil
		default:
			return d.Skip()
		}
	})
	return line, err
}

// decodeStr reads a string, treating null as empty.
func decodeStr(d *jx.Decoder, dst *string) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

// money renders an amount with two decimals. Amounts are kept at full
// precision everywhere else.
func money(e *jx.Encoder, v decimal.Decimal) {
	e.Raw([]byte(v.StringFixed(2)))
}

func encodeCustomer(e *jx.Encoder, c *customer.Customer) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("email", func(e *jx.Encoder) { e.Str(c.Email) })
		e.Field("taxId", func(e *jx.Encoder) { e.Str(c.TaxID) })
		if !c.CreatedAt.IsZero() {
			e.Field("createdAt", func(e *jx.Encoder) { e.Str(c.CreatedAt.Format(time.RFC3339)) })
		}
	})
}

func encodeEntry(e *jx.Encoder, entry pricing.Entry) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("kind", func(e *jx.Encoder) { e.Str(entry.Kind().String()) })
		e.Field("unitPrice", func(e *jx.Encoder) { money(e, entry.UnitPrice()) })
		spec, ok := pricing.SpecOf(entry.Policy())
		if !ok {
			return
		}
		e.Field("policy", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("type", func(e *jx.Encoder) { e.Str(string(spec.Type)) })
				if len(spec.Tiers) > 0 {
					e.Field("tiers", func(e *jx.Encoder) {
						e.Arr(func(e *jx.Encoder) {
							for _, t := range spec.Tiers {
								e.Obj(func(e *jx.Encoder) {
									e.Field("above", func(e *jx.Encoder) { e.Int(t.Above) })
									e.Field("rate", func(e *jx.Encoder) { e.Str(t.Rate.String()) })
								})
							}
						})
					})
				}
				if spec.Type == pricing.PolicyFlatAboveThreshold || spec.Type == pricing.PolicyPercentageAboveThreshold {
					e.Field("threshold", func(e *jx.Encoder) { e.Int(spec.Threshold) })
				}
				if spec.Type == pricing.PolicyFlatAboveThreshold {
					e.Field("amount", func(e *jx.Encoder) { money(e, spec.Amount) })
				}
				if spec.Type == pricing.PolicyPercentageAboveThreshold {
					e.Field("rate", func(e *jx.Encoder) { e.Str(spec.Rate.String()) })
				}
			})
		})
	})
}

func encodeCouponRule(e *jx.Encoder, rule pricing.CouponRule) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(rule.Code) })
		e.Field("type", func(e *jx.Encoder) { e.Str(string(rule.Type)) })
		e.Field("value", func(e *jx.Encoder) { e.Str(rule.Value.String()) })
		if !rule.Kind.IsZero() {
			e.Field("kind", func(e *jx.Encoder) { e.Str(rule.Kind.String()) })
		}
	})
}

func encodeLine(e *jx.Encoder, l pricing.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("kind", func(e *jx.Encoder) { e.Str(l.Kind().String()) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity()) })
		e.Field("unitPrice", func(e *jx.Encoder) { money(e, l.UnitPrice()) })
		if code := l.CouponCode(); code != "" {
			e.Field("couponCode", func(e *jx.Encoder) { e.Str(code) })
		}
		e.Field("gross", func(e *jx.Encoder) { money(e, l.Gross()) })
		e.Field("productDiscount", func(e *jx.Encoder) { money(e, l.ProductDiscount()) })
		e.Field("couponDiscount", func(e *jx.Encoder) { money(e, l.CouponDiscount()) })
		e.Field("net", func(e *jx.Encoder) { money(e, l.Net()) })
	})
}

// encodeOrder writes an order. Quotes carry no id.
func encodeOrder(e *jx.Encoder, o *order.Order, withID bool) {
	e.Obj(func(e *jx.Encoder) {
		if withID {
			e.Field("id", func(e *jx.Encoder) { e.Str(o.ID()) })
			e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt().Format(time.RFC3339)) })
		}
		e.Field("taxId", func(e *jx.Encoder) { e.Str(o.Customer().TaxID) })
		e.Field("lines", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range o.Lines() {
					encodeLine(e, l)
				}
			})
		})
		e.Field("gross", func(e *jx.Encoder) { money(e, o.Gross()) })
		e.Field("discounts", func(e *jx.Encoder) { money(e, o.Discounts()) })
		e.Field("total", func(e *jx.Encoder) { money(e, o.Total()) })
	})
}

func pathTaxID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("taxId"))
}
