// Command seed-db creates the schema and loads the pricing tables and demo
// customers into PostgreSQL.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/xenking/petrobahia/internal/catalog"
	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/repository"
)

type seedCustomer struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	TaxID string `yaml:"tax_id"`
}

func main() {
	var (
		databaseURL   string
		pricingFile   string
		customersFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&pricingFile, "pricing-file", "db/seed/pricing.yaml", "pricing file to load; empty loads the built-in tables")
	flag.StringVar(&customersFile, "customers-file", "db/seed/customers.yaml", "YAML list of customers to register; empty skips customers")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, pricingFile, customersFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, pricingFile, customersFile string) error {
	tables := catalog.Defaults()
	if pricingFile != "" {
		slog.Info("reading pricing file", slog.String("path", pricingFile))
		t, err := catalog.LoadFile(pricingFile)
		if err != nil {
			return err
		}
		tables = t
	}

	var customers []seedCustomer
	if customersFile != "" {
		var err error
		if customers, err = readCustomers(customersFile); err != nil {
			return err
		}
	}

	slog.Info("connecting to database")
	pool, err := repository.Connect(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")
	if err := repository.Migrate(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("upserting pricing tables",
		slog.Int("products", tables.Catalog.Len()),
		slog.Int("coupons", len(tables.Resolver.Rules())),
	)
	if err := repository.SaveTables(ctx,
		repository.NewProductRepository(pool),
		repository.NewCouponRepository(pool),
		tables,
	); err != nil {
		return errors.Wrap(err, "seed pricing tables")
	}

	if err := seedCustomers(ctx, pool, customers); err != nil {
		return errors.Wrap(err, "seed customers")
	}
	return nil
}

func readCustomers(path string) ([]seedCustomer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read customers file")
	}
	var customers []seedCustomer
	if err := yaml.Unmarshal(data, &customers); err != nil {
		return nil, errors.Wrap(err, "parse customers file")
	}
	return customers, nil
}

// seedCustomers registers customers, skipping those already present.
func seedCustomers(ctx context.Context, pool *pgxpool.Pool, customers []seedCustomer) error {
	svc := customer.NewService(repository.NewCustomerRepository(pool), nil)
	for _, c := range customers {
		_, err := svc.Register(ctx, c.Name, c.Email, c.TaxID)
		switch {
		case errors.Is(err, customer.ErrAlreadyExists):
			slog.Info("customer already registered", slog.String("tax_id", c.TaxID))
		case err != nil:
			return errors.Wrapf(err, "register %s", c.TaxID)
		default:
			slog.Info("registered customer", slog.String("tax_id", c.TaxID), slog.String("name", c.Name))
		}
	}
	return nil
}
