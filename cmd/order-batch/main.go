// Command order-batch registers the customers of a batch file and prices its
// orders concurrently, printing each order's total or error.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/petrobahia/internal/catalog"
	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
	"github.com/xenking/petrobahia/internal/notify"
	"github.com/xenking/petrobahia/internal/storage/memory"
)

func main() {
	var (
		batchFile   string
		pricingFile string
		workers     int
	)
	flag.StringVar(&batchFile, "file", "batch.yaml", "YAML batch of customers and orders")
	flag.StringVar(&pricingFile, "pricing-file", "", "pricing file; empty uses the built-in tables")
	flag.IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "orders priced concurrently")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, batchFile, pricingFile, workers); err != nil {
		lg.Error("Batch failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *zap.Logger, batchFile, pricingFile string, workers int) error {
	tables := catalog.Defaults()
	if pricingFile != "" {
		t, err := catalog.LoadFile(pricingFile)
		if err != nil {
			return err
		}
		tables = t
	}

	f, err := os.Open(batchFile)
	if err != nil {
		return errors.Wrap(err, "open batch file")
	}
	defer func() { _ = f.Close() }()
	batch, err := ParseBatch(f)
	if err != nil {
		return err
	}

	store, err := memory.New()
	if err != nil {
		return errors.Wrap(err, "create store")
	}
	notifier := notify.NewLogger(lg, notify.DefaultHighValueThreshold)
	runner := NewRunner(
		customer.NewService(store, notifier),
		order.NewService(catalog.NewStatic(tables.Catalog), tables.Resolver, store, notifier),
		workers,
		lg,
	)

	registered := runner.Register(ctx, batch)
	lg.Info("Customers registered", zap.Int("registered", registered), zap.Int("total", len(batch.Customers)))

	results, err := runner.Place(ctx, batch)
	if err != nil {
		return errors.Wrap(err, "place orders")
	}
	return Report(os.Stdout, results)
}
