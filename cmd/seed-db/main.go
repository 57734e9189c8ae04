// Command seed-db loads the catalog fixture, coupons, and the admin API
// key into the database. It is idempotent: reruns upsert in place.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/raihanetx/submonth-backend/internal/domain/coupon"
	"github.com/raihanetx/submonth-backend/internal/storage/postgres"
)

type catalogJSON struct {
	Categories []categoryJSON `json:"categories"`
	Products   []productJSON  `json:"products"`
	Coupons    []couponJSON   `json:"coupons"`
}

type categoryJSON struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

type productJSON struct {
	Category        string        `json:"category"`
	Name            string        `json:"name"`
	Slug            string        `json:"slug"`
	Description     string        `json:"description"`
	LongDescription string        `json:"long_description"`
	Image           string        `json:"image"`
	StockOut        bool          `json:"stock_out"`
	Featured        bool          `json:"featured"`
	Pricing         []pricingJSON `json:"pricing"`
}

type pricingJSON struct {
	Duration string          `json:"duration"`
	Price    decimal.Decimal `json:"price"`
}

type couponJSON struct {
	Code               string `json:"code"`
	DiscountPercentage int    `json:"discount_percentage"`
	Active             *bool  `json:"active"`
	Scope              string `json:"scope"`
	ScopeValue         string `json:"scope_value"`
}

const (
	upsertCategorySQL = `INSERT INTO categories (name, slug, icon) VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, icon = EXCLUDED.icon
		RETURNING id`

	upsertProductSQL = `INSERT INTO products (category_id, name, slug, description, long_description, image, stock_out, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			long_description = EXCLUDED.long_description,
			image = EXCLUDED.image,
			stock_out = EXCLUDED.stock_out,
			featured = EXCLUDED.featured
		RETURNING id`

	upsertPricingSQL = `INSERT INTO product_pricing (product_id, duration, price) VALUES ($1, $2, $3)
		ON CONFLICT (product_id, duration) DO UPDATE SET price = EXCLUDED.price`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, active) VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (key_hash) DO UPDATE SET name = EXCLUDED.name, active = TRUE`
)

func main() {
	var (
		databaseURL  string
		catalogFile  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or SUBMONTH_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SUBMONTH_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SUBMONTH_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or SUBMONTH_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SUBMONTH_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}
	var fixture catalogJSON
	if err := json.Unmarshal(data, &fixture); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	categoryIDs, err := seedCategories(ctx, pool, fixture.Categories)
	if err != nil {
		return errors.Wrap(err, "seed categories")
	}
	if err := seedProducts(ctx, pool, fixture.Products, categoryIDs); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCoupons(ctx, pool, fixture.Coupons); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool, categories []categoryJSON) (map[string]int64, error) {
	slog.Info("upserting categories", slog.Int("count", len(categories)))

	ids := make(map[string]int64, len(categories))
	for _, c := range categories {
		var id int64
		if err := pool.QueryRow(ctx, upsertCategorySQL, c.Name, c.Slug, c.Icon).Scan(&id); err != nil {
			return nil, errors.Wrapf(err, "upsert category %s", c.Slug)
		}
		ids[c.Slug] = id
	}
	return ids, nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []productJSON, categoryIDs map[string]int64) error {
	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		categoryID, ok := categoryIDs[p.Category]
		if !ok {
			return errors.Errorf("product %s references unknown category %s", p.Slug, p.Category)
		}
		if len(p.Pricing) == 0 {
			return errors.Errorf("product %s has no pricing variants", p.Slug)
		}

		var id int64
		err := pool.QueryRow(ctx, upsertProductSQL,
			categoryID, p.Name, p.Slug, p.Description, p.LongDescription,
			p.Image, p.StockOut, p.Featured,
		).Scan(&id)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Slug)
		}

		for _, v := range p.Pricing {
			if _, err := pool.Exec(ctx, upsertPricingSQL, id, v.Duration, v.Price); err != nil {
				return errors.Wrapf(err, "upsert pricing %s/%s", p.Slug, v.Duration)
			}
		}

		slog.Info("upserted product", slog.String("slug", p.Slug), slog.Int("variants", len(p.Pricing)))
	}
	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool, coupons []couponJSON) error {
	slog.Info("upserting coupons", slog.Int("count", len(coupons)))

	repo := postgres.NewCouponRepository(pool)
	for _, c := range coupons {
		scope := coupon.Scope(c.Scope)
		if scope == "" {
			scope = coupon.ScopeAllProducts
		}
		active := true
		if c.Active != nil {
			active = *c.Active
		}
		err := repo.Upsert(ctx, &coupon.Coupon{
			Code:               c.Code,
			DiscountPercentage: c.DiscountPercentage,
			Active:             active,
			Scope:              scope,
			ScopeValue:         c.ScopeValue,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.Code)
		}
	}
	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	if _, err := pool.Exec(ctx, upsertAPIKeySQL, uuid.New(), keyHash, "Admin panel key"); err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}
	return nil
}
