package settings

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"amarka/internal/domain"
)

// The settings table holds a single row; defaults apply until one is written.
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

func (r *postgresRepo) Get(ctx context.Context) (domain.InventorySettings, error) {
	var s domain.InventorySettings
	err := r.pool.QueryRow(ctx, `
SELECT track_inventory, allow_backorders
FROM store_settings
WHERE id = 1
`).Scan(&s.TrackInventory, &s.AllowBackorders)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InventorySettings{TrackInventory: false, AllowBackorders: true}, nil
		}
		r.logger.Printf("settings repo: get error=%v", err)
		return domain.InventorySettings{}, err
	}
	return s, nil
}

func (r *postgresRepo) Save(ctx context.Context, s domain.InventorySettings) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO store_settings (id, track_inventory, allow_backorders)
VALUES (1, $1, $2)
ON CONFLICT (id) DO UPDATE
SET track_inventory = EXCLUDED.track_inventory,
    allow_backorders = EXCLUDED.allow_backorders,
    updated_at = now()
`, s.TrackInventory, s.AllowBackorders)
	if err != nil {
		r.logger.Printf("settings repo: save error=%v", err)
	}
	return err
}
