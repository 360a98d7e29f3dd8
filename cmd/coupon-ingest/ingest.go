package main

import (
	"bufio"
	"context"
	"log/slog"
	"math/bits"
	"os"
	"slices"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/petrobahia/internal/domain/pricing"
)

const (
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	minCodeLen    = 4
	maxCodeLen    = 12
)

// sharedCodes returns, sorted, the normalized codes found in at least two
// of files.
//
// The first pass fills one bloom filter per file. The second pass re-reads
// every file and keeps codes that some other file's filter may contain,
// tagged with the bit of the file they were read from. A code qualifies when
// at least two bits are set, so filter false positives never admit a code.
func sharedCodes(ctx context.Context, files []string, expectedCodes uint) ([]string, error) {
	if len(files) > bits.UintSize {
		return nil, errors.Errorf("too many campaign files: %d", len(files))
	}

	filters := make([]*bloom.BloomFilter, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			f := bloom.NewWithEstimates(expectedCodes, bloomFPR)
			n, err := scanCodes(gctx, path, func(code string) { f.AddString(code) })
			if err != nil {
				return errors.Wrapf(err, "index %s", path)
			}
			slog.Info("pass 1 complete", slog.String("file", path), slog.Uint64("codes", n))
			filters[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make([]map[string]uint, len(files))
	g, gctx = errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			candidates := make(map[string]uint)
			bit := uint(1) << uint(i)
			_, err := scanCodes(gctx, path, func(code string) {
				for j, f := range filters {
					if j != i && f.TestString(code) {
						candidates[code] |= bit
						return
					}
				}
			})
			if err != nil {
				return errors.Wrapf(err, "scan %s", path)
			}
			slog.Info("pass 2 complete", slog.String("file", path), slog.Int("candidates", len(candidates)))
			seen[i] = candidates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, candidates := range seen {
		for code, mask := range candidates {
			merged[code] |= mask
		}
	}
	var codes []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return codes, nil
}

// scanCodes streams a gzip code list, calling fn with every normalized code
// of acceptable length, and returns how many it passed on.
func scanCodes(ctx context.Context, path string, fn func(code string)) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return 0, errors.Wrap(err, "gzip reader")
	}
	defer func() { _ = gz.Close() }()

	var n uint64
	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		code := pricing.NormalizeCode(scanner.Text())
		if len(code) < minCodeLen || len(code) > maxCodeLen {
			continue
		}
		fn(code)
		if n++; n%progressEvery == 0 {
			slog.Info("scan progress", slog.String("file", path), slog.Uint64("codes", n))
		}
	}
	if err := scanner.Err(); err != nil {
		return n, errors.Wrap(err, "read")
	}
	return n, nil
}
