package promo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

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

const promoColumns = `
id::text, code, type, value::text, active, max_uses, current_uses,
min_order_amount::text, valid_from, valid_until, created_at, updated_at
`

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	q := `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1`
	p, err := scanPromo(r.pool.QueryRow(ctx, q, strings.ToUpper(strings.TrimSpace(code))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("promo repo: get code=%s error=%v", code, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) IncrementUsage(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE promo_codes
SET current_uses = current_uses + 1, updated_at = now()
WHERE id = $1
`, id)
	if err != nil {
		r.logger.Printf("promo repo: increment id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.PromoCode) (*domain.PromoCode, error) {
	var minOrder *string
	if p.MinOrderAmount != nil {
		s := p.MinOrderAmount.String()
		minOrder = &s
	}
	q := `
INSERT INTO promo_codes (code, type, value, active, max_uses, min_order_amount, valid_from, valid_until)
VALUES ($1, $2, $3::numeric, $4, $5, $6::numeric, $7, $8)
ON CONFLICT (code) DO UPDATE
SET type = EXCLUDED.type,
    value = EXCLUDED.value,
    active = EXCLUDED.active,
    max_uses = EXCLUDED.max_uses,
    min_order_amount = EXCLUDED.min_order_amount,
    valid_from = EXCLUDED.valid_from,
    valid_until = EXCLUDED.valid_until,
    updated_at = now()
RETURNING ` + promoColumns
	saved, err := scanPromo(r.pool.QueryRow(ctx, q,
		strings.ToUpper(strings.TrimSpace(p.Code)), p.Type, p.Value.String(),
		p.Active, p.MaxUses, minOrder, p.ValidFrom, p.ValidUntil,
	))
	if err != nil {
		r.logger.Printf("promo repo: upsert code=%s error=%v", p.Code, err)
		return nil, err
	}
	return saved, nil
}

func scanPromo(row pgx.Row) (*domain.PromoCode, error) {
	var p domain.PromoCode
	var value string
	var minOrder *string
	if err := row.Scan(
		&p.ID, &p.Code, &p.Type, &value, &p.Active, &p.MaxUses, &p.CurrentUses,
		&minOrder, &p.ValidFrom, &p.ValidUntil, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse promo value %q: %w", value, err)
	}
	p.Value = parsed
	if minOrder != nil {
		d, err := decimal.NewFromString(*minOrder)
		if err != nil {
			return nil, fmt.Errorf("parse min order amount %q: %w", *minOrder, err)
		}
		p.MinOrderAmount = &d
	}
	return &p, nil
}
