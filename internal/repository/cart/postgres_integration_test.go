//go:build integration

package cart_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"amarka/internal/domain"
	"amarka/internal/migrate"
	cartrepo "amarka/internal/repository/cart"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	container, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}
	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("container.ConnectionString: %w", err)
	}
	return container, connStr, nil
}

func TestPostgresRepo_SaveGetAndConflict(t *testing.T) {
	ctx := context.Background()
	container, connStr, err := startPostgres(ctx)
	require.NoError(t, err)
	defer container.Terminate(ctx)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))

	repo := cartrepo.NewPostgres(pool, nil)

	sku := "SKU-1"
	cart := &domain.Cart{
		ID:       "anon-abc",
		Currency: "USD",
		Items: []domain.LineItem{{
			ProductID:          "p1",
			Name:               "Slab",
			Quantity:           2,
			UnitPrice:          decimal.RequireFromString("10"),
			BasePrice:          decimal.RequireFromString("10"),
			PriceSnapshotAtAdd: decimal.RequireFromString("10"),
			SKU:                &sku,
		}},
		Subtotal: decimal.RequireFromString("20"),
		Total:    decimal.RequireFromString("20"),
	}
	require.NoError(t, repo.Save(ctx, cart))
	require.EqualValues(t, 1, cart.Version)

	loaded, err := repo.Get(ctx, "anon-abc")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	require.Equal(t, 2, loaded.Items[0].Quantity)
	require.True(t, loaded.Subtotal.Equal(cart.Subtotal))

	// A writer holding a stale version must conflict, not overwrite.
	stale := *loaded
	stale.Version = 0
	require.ErrorIs(t, repo.Save(ctx, &stale), domain.ErrVersionConflict)

	loaded.Items[0].Quantity = 5
	require.NoError(t, repo.Save(ctx, loaded))
	require.EqualValues(t, 2, loaded.Version)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
