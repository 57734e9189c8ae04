// Command coupon-import bulk-loads promo codes from gzipped campaign
// exports. A code is accepted only when it appears in at least two
// exports, which filters out typos and partner-injected junk. The
// cross-file check uses one bloom filter per file so the whole set never
// has to fit in memory.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/raihanetx/submonth-backend/internal/domain/coupon"
	"github.com/raihanetx/submonth-backend/internal/storage/postgres"
)

const (
	bloomCapacity = 100_000_000
	bloomFPR      = 0.001
	progressEvery = 10_000_000
	minCodeLen    = 6
	maxCodeLen    = 12
)

// percentOverrides maps known campaign codes to their discount. Anything
// else imports at the default percentage.
var percentOverrides = map[string]int{
	"WELCOME10": 10,
	"SAVE15":    15,
	"MEGA25":    25,
	"FLASH50":   50,
}

const defaultPercent = 10

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing promocodes*.gz campaign exports")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("coupon import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "promocodes*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob campaign exports")
	}
	if len(files) < 2 {
		return errors.Errorf("need at least 2 campaign exports in %s, found %d", dataDir, len(files))
	}

	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	slog.Info("pass 2: cross-checking codes")

	codes, err := crossCheck(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "cross-check codes")
	}

	slog.Info("accepted codes", slog.Int("count", len(codes)))
	if len(codes) == 0 {
		return nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return writeCoupons(ctx, postgres.NewCouponRepository(pool), codes)
}

// buildFilters streams every export concurrently and fills one bloom
// filter per file.
func buildFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var count uint64

			err := streamCodes(ctx, path, func(code string) {
				filter.AddString(code)
				count++
				if count%progressEvery == 0 {
					slog.Info("pass 1 progress", slog.Int("file", i+1), slog.Uint64("codes", count))
				}
			})
			if err != nil {
				return errors.Wrapf(err, "filter file %d", i+1)
			}

			slog.Info("pass 1 complete", slog.Int("file", i+1), slog.Uint64("codes", count))
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// crossCheck re-streams each file, testing codes against the OTHER files'
// filters, and keeps codes seen in two or more exports.
func crossCheck(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]string, error) {
	found := make([]map[string]uint, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			candidates := make(map[string]uint)
			fileBit := uint(1) << uint(i)

			err := streamCodes(ctx, path, func(code string) {
				for j, f := range filters {
					if j == i {
						continue
					}
					if f.TestString(code) {
						candidates[code] |= fileBit
						break
					}
				}
			})
			if err != nil {
				return errors.Wrapf(err, "scan file %d", i+1)
			}

			slog.Info("pass 2 complete", slog.Int("file", i+1), slog.Int("candidates", len(candidates)))
			found[i] = candidates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, candidates := range found {
		for code, mask := range candidates {
			merged[code] |= mask
		}
	}

	var accepted []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			accepted = append(accepted, code)
		}
	}
	return accepted, nil
}

// streamCodes reads a gzipped export line by line, normalising and
// filtering codes before handing them to fn.
func streamCodes(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		code := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if len(code) >= minCodeLen && len(code) <= maxCodeLen {
			fn(code)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

func writeCoupons(ctx context.Context, repo *postgres.CouponRepository, codes []string) error {
	slog.Info("writing coupons", slog.Int("count", len(codes)))

	for i, code := range codes {
		percent, ok := percentOverrides[code]
		if !ok {
			percent = defaultPercent
		}

		err := repo.Upsert(ctx, &coupon.Coupon{
			Code:               code,
			DiscountPercentage: percent,
			Active:             true,
			Scope:              coupon.ScopeAllProducts,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert coupon %s", code)
		}

		if (i+1)%100 == 0 || i+1 == len(codes) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(codes)))
		}
	}
	return nil
}
