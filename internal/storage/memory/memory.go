// Package memory keeps customers and orders in an in-process go-memdb
// database. It backs the batch driver and the API server when no database
// URL is configured.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/hashicorp/go-memdb"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
)

const (
	tableCustomers = "customers"
	tableOrders    = "orders"
)

var (
	_ customer.Repository = (*Store)(nil)
	_ order.Repository    = (*Store)(nil)
)

type customerRecord struct {
	TaxID    string
	Seq      uint64
	Customer customer.Customer
}

type orderRecord struct {
	ID    string
	TaxID string
	Seq   uint64
	Order *order.Order
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableCustomers: {
				Name: tableCustomers,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "TaxID"}},
				},
			},
			tableOrders: {
				Name: tableOrders,
				Indexes: map[string]*memdb.IndexSchema{
					"id":       {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
					"customer": {Name: "customer", Indexer: &memdb.StringFieldIndex{Field: "TaxID"}},
				},
			},
		},
	}
}

// Store implements customer.Repository and order.Repository in memory.
type Store struct {
	db  *memdb.MemDB
	seq atomic.Uint64
}

func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Create(_ context.Context, c *customer.Customer) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tableCustomers, "id", c.TaxID)
	if err != nil {
		return fmt.Errorf("lookup customer %q: %w", c.TaxID, err)
	}
	if existing != nil {
		return customer.ErrAlreadyExists
	}
	if err := txn.Insert(tableCustomers, &customerRecord{TaxID: c.TaxID, Seq: s.seq.Add(1), Customer: *c}); err != nil {
		return fmt.Errorf("insert customer %q: %w", c.TaxID, err)
	}
	txn.Commit()
	return nil
}

func (s *Store) Get(_ context.Context, taxID string) (*customer.Customer, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableCustomers, "id", taxID)
	if err != nil {
		return nil, fmt.Errorf("lookup customer %q: %w", taxID, err)
	}
	if raw == nil {
		return nil, customer.ErrNotFound
	}
	c := raw.(*customerRecord).Customer
	return &c, nil
}

// List returns customers in registration order.
func (s *Store) List(_ context.Context) ([]customer.Customer, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableCustomers, "id")
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	var records []*customerRecord
	for raw := it.Next(); raw != nil; raw = it.Next() {
		records = append(records, raw.(*customerRecord))
	}
	slices.SortFunc(records, func(a, b *customerRecord) int { return cmp.Compare(a.Seq, b.Seq) })

	out := make([]customer.Customer, len(records))
	for i, r := range records {
		out[i] = r.Customer
	}
	return out, nil
}

func (s *Store) Save(_ context.Context, o *order.Order) error {
	c := o.Customer()
	if c == nil {
		return fmt.Errorf("save order %q: no customer", o.ID())
	}

	txn := s.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(tableOrders, &orderRecord{ID: o.ID(), TaxID: c.TaxID, Seq: s.seq.Add(1), Order: o}); err != nil {
		return fmt.Errorf("insert order %q: %w", o.ID(), err)
	}
	txn.Commit()
	return nil
}

// FindByCustomer returns the customer's orders in the order they were saved.
func (s *Store) FindByCustomer(_ context.Context, taxID string) ([]*order.Order, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableOrders, "customer", taxID)
	if err != nil {
		return nil, fmt.Errorf("find orders of %q: %w", taxID, err)
	}
	var records []*orderRecord
	for raw := it.Next(); raw != nil; raw = it.Next() {
		records = append(records, raw.(*orderRecord))
	}
	slices.SortFunc(records, func(a, b *orderRecord) int { return cmp.Compare(a.Seq, b.Seq) })

	out := make([]*order.Order, len(records))
	for i, r := range records {
		out[i] = r.Order
	}
	return out, nil
}
