package catalog

import (
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// Product describes one catalog entry in a pricing file or store.
type Product struct {
	Kind      pricing.Kind       `json:"kind" yaml:"kind"`
	UnitPrice decimal.Decimal    `json:"unit_price" yaml:"unit_price"`
	Policy    pricing.PolicySpec `json:"policy" yaml:"policy"`
}

// Entry builds the catalog entry the product describes.
func (p Product) Entry() (pricing.Entry, error) {
	policy, err := pricing.BuildPolicy(p.Policy)
	if err != nil {
		return pricing.Entry{}, errors.Wrapf(err, "product %s", p.Kind)
	}
	return pricing.NewEntry(p.Kind, p.UnitPrice, policy)
}

// ProductOf describes e. Entries with foreign policies are described with
// PolicyNone.
func ProductOf(e pricing.Entry) Product {
	spec, ok := pricing.SpecOf(e.Policy())
	if !ok {
		spec = pricing.PolicySpec{Type: pricing.PolicyNone}
	}
	return Product{Kind: e.Kind(), UnitPrice: e.UnitPrice(), Policy: spec}
}

// BuildCatalog validates every product and assembles the catalog.
func BuildCatalog(products []Product) (*pricing.Catalog, error) {
	entries := make([]pricing.Entry, 0, len(products))
	for _, p := range products {
		e, err := p.Entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return pricing.NewCatalog(entries...)
}

// File is the layout of a pricing file:
//
//	products:
//	  - kind: diesel
//	    unit_price: 5.50
//	    policy:
//	      type: tiered_percentage
//	      tiers:
//	        - {above: 1000, rate: 0.10}
//	        - {above: 500, rate: 0.05}
//	coupons:
//	  - {code: MEGA10, type: percentage, value: 0.10}
type File struct {
	Products []Product           `yaml:"products"`
	Coupons  []pricing.CouponRule `yaml:"coupons"`
}

// Build validates the file and returns its tables. A file without products
// is rejected; a file without coupons yields an empty coupon table.
func (f *File) Build() (*Tables, error) {
	if len(f.Products) == 0 {
		return nil, errors.New("pricing file has no products")
	}
	c, err := BuildCatalog(f.Products)
	if err != nil {
		return nil, errors.Wrap(err, "build catalog")
	}
	r, err := pricing.NewResolver(f.Coupons...)
	if err != nil {
		return nil, errors.Wrap(err, "build coupon table")
	}
	return &Tables{Catalog: c, Resolver: r}, nil
}

// Parse decodes and builds a pricing file.
func Parse(r io.Reader) (*Tables, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decode pricing file")
	}
	return f.Build()
}

// LoadFile reads the pricing file at path.
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open pricing file")
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Encode writes t as a pricing file.
func Encode(w io.Writer, t *Tables) error {
	f := File{Coupons: t.Resolver.Rules()}
	for _, e := range t.Catalog.Entries() {
		f.Products = append(f.Products, ProductOf(e))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return errors.Wrap(err, "encode pricing file")
	}
	return enc.Close()
}
