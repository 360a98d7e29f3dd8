// Command coupon-ingest loads coupon campaign code lists into the coupon
// table. A code is accepted when at least two campaign files contain it.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"

	"github.com/go-faster/errors"

	"github.com/xenking/petrobahia/internal/repository"
)

const writeBatchSize = 1000

func main() {
	var (
		dataDir       string
		databaseURL   string
		expectedCodes uint
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing campaignN.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.UintVar(&expectedCodes, "expected-codes", 10_000_000, "expected number of codes per file, sizes the bloom filters")
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

	if err := run(ctx, dataDir, databaseURL, expectedCodes); err != nil {
		slog.Error("coupon ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string, expectedCodes uint) error {
	files, err := campaignFiles(dataDir)
	if err != nil {
		return err
	}
	slog.Info("campaign files found", slog.Int("files", len(files)))

	codes, err := sharedCodes(ctx, files, expectedCodes)
	if err != nil {
		return errors.Wrap(err, "find shared codes")
	}
	slog.Info("valid codes found", slog.Int("count", len(codes)))
	if len(codes) == 0 {
		return nil
	}

	slog.Info("connecting to database")
	pool, err := repository.Connect(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	coupons := repository.NewCouponRepository(pool)
	rules := rulesFor(codes)
	written := 0
	for batch := range slices.Chunk(rules, writeBatchSize) {
		if err := coupons.Upsert(ctx, batch...); err != nil {
			return errors.Wrap(err, "write coupons")
		}
		written += len(batch)
		slog.Info("write progress", slog.Int("written", written), slog.Int("total", len(rules)))
	}
	return nil
}

// campaignFiles lists the campaign*.gz files of dir in name order. At least
// two are needed for any code to qualify.
func campaignFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "campaign*.gz"))
	if err != nil {
		return nil, errors.Wrap(err, "list campaign files")
	}
	if len(files) < 2 {
		return nil, errors.Errorf("need at least 2 campaign files in %s, found %d", dir, len(files))
	}
	slices.Sort(files)
	return files, nil
}
