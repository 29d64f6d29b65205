package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `
SELECT id, owner_id, currency, version, doc, created_at, updated_at
FROM carts
WHERE id = $1
`
	var cart domain.Cart
	var ownerID *string
	var doc map[string]interface{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&cart.ID,
		&ownerID,
		&cart.Currency,
		&cart.Version,
		&doc,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("cart repo: get id=%s error=%v", id, err)
		return nil, err
	}
	cart.OwnerID = ownerID
	decodeCartDocument(&cart, doc)
	return &cart, nil
}

// Save overwrites the whole cart document. A fresh cart (Version 0) inserts;
// an existing cart updates only while the stored version is unchanged, which
// turns the read-modify-write race between two concurrent adds into a
// detectable conflict instead of a silent lost update.
func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) error {
	const q = `
INSERT INTO carts (id, owner_id, currency, version, doc)
VALUES ($1, $2, $3, 1, $4)
ON CONFLICT (id) DO UPDATE
SET owner_id = EXCLUDED.owner_id,
    currency = EXCLUDED.currency,
    doc = EXCLUDED.doc,
    version = carts.version + 1,
    updated_at = now()
WHERE carts.version = $5
RETURNING version, created_at, updated_at
`
	doc := encodeCart(*cart)
	err := r.pool.QueryRow(ctx, q, cart.ID, cart.OwnerID, cart.Currency, doc, cart.Version).Scan(
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrVersionConflict
		}
		r.logger.Printf("cart repo: save id=%s error=%v", cart.ID, err)
		return err
	}
	return nil
}
