package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"amarka/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `
id::text, key, sku, name, COALESCE(description, ''), price::text, stock, currency,
COALESCE(image_url, ''), active, variants, bulk_pricing_tiers, created_at
`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE active ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE key = $1`, key)
}

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

func (r *postgresRepo) getOne(ctx context.Context, q string, arg string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, q, arg)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get arg=%s error=%v", arg, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	variants, err := json.Marshal(variantsToJSON(p.Variants))
	if err != nil {
		return nil, fmt.Errorf("marshal variants: %w", err)
	}
	tiers, err := json.Marshal(tiersToJSON(p.BulkPricingTiers))
	if err != nil {
		return nil, fmt.Errorf("marshal tiers: %w", err)
	}

	q := `
INSERT INTO products (key, sku, name, description, price, stock, currency, image_url, active, variants, bulk_pricing_tiers)
VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11)
ON CONFLICT (key) DO UPDATE
SET sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    stock = EXCLUDED.stock,
    currency = EXCLUDED.currency,
    image_url = EXCLUDED.image_url,
    active = EXCLUDED.active,
    variants = EXCLUDED.variants,
    bulk_pricing_tiers = EXCLUDED.bulk_pricing_tiers
RETURNING ` + productColumns
	row := r.pool.QueryRow(ctx, q,
		p.Key, p.SKU, p.Name, p.Description, p.Price.String(), p.Stock,
		p.Currency, p.ImageURL, p.Active, variants, tiers,
	)
	saved, err := scanProduct(row)
	if err != nil {
		r.logger.Printf("product repo: upsert key=%s error=%v", p.Key, err)
		return nil, err
	}
	return saved, nil
}

// jsonVariant is the jsonb shape for an embedded variant. Prices travel as
// strings to keep decimal precision exact.
type jsonVariant struct {
	ID       string  `json:"id,omitempty"`
	SKU      string  `json:"sku,omitempty"`
	Label    string  `json:"label,omitempty"`
	Finish   string  `json:"finish,omitempty"`
	Price    *string `json:"price,omitempty"`
	Stock    *int    `json:"stock,omitempty"`
	Active   bool    `json:"active"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

type jsonTier struct {
	MinQty    int    `json:"minQty"`
	UnitPrice string `json:"unitPrice"`
	Label     string `json:"label,omitempty"`
}

func variantsToJSON(variants []domain.Variant) []jsonVariant {
	out := make([]jsonVariant, 0, len(variants))
	for _, v := range variants {
		jv := jsonVariant{
			ID:       v.ID,
			SKU:      v.SKU,
			Label:    v.Label,
			Finish:   v.Finish,
			Stock:    v.Stock,
			Active:   v.Active,
			ImageURL: v.ImageURL,
		}
		if v.Price != nil {
			s := v.Price.String()
			jv.Price = &s
		}
		out = append(out, jv)
	}
	return out
}

func tiersToJSON(tiers []domain.BulkPricingTier) []jsonTier {
	out := make([]jsonTier, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, jsonTier{MinQty: tier.MinQty, UnitPrice: tier.UnitPrice.String(), Label: tier.Label})
	}
	return out
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var price string
	var rawVariants, rawTiers []byte
	if err := row.Scan(
		&p.ID, &p.Key, &p.SKU, &p.Name, &p.Description, &price, &p.Stock,
		&p.Currency, &p.ImageURL, &p.Active, &rawVariants, &rawTiers, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price = parsed

	if len(rawVariants) > 0 {
		var variants []jsonVariant
		if err := json.Unmarshal(rawVariants, &variants); err != nil {
			return nil, fmt.Errorf("unmarshal variants: %w", err)
		}
		for _, jv := range variants {
			v := domain.Variant{
				ID:       jv.ID,
				SKU:      jv.SKU,
				Label:    jv.Label,
				Finish:   jv.Finish,
				Stock:    jv.Stock,
				Active:   jv.Active,
				ImageURL: jv.ImageURL,
			}
			if jv.Price != nil {
				d, err := decimal.NewFromString(*jv.Price)
				if err != nil {
					return nil, fmt.Errorf("parse variant price %q: %w", *jv.Price, err)
				}
				v.Price = &d
			}
			p.Variants = append(p.Variants, v)
		}
	}
	if len(rawTiers) > 0 {
		var tiers []jsonTier
		if err := json.Unmarshal(rawTiers, &tiers); err != nil {
			return nil, fmt.Errorf("unmarshal tiers: %w", err)
		}
		for _, jt := range tiers {
			d, err := decimal.NewFromString(jt.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("parse tier price %q: %w", jt.UnitPrice, err)
			}
			p.BulkPricingTiers = append(p.BulkPricingTiers, domain.BulkPricingTier{
				MinQty: jt.MinQty, UnitPrice: d, Label: jt.Label,
			})
		}
	}
	return &p, nil
}
