package settings

import (
	"context"

	"amarka/internal/domain"
)

type Repository interface {
	// Get returns the inventory settings, or defaults when none are stored.
	Get(ctx context.Context) (domain.InventorySettings, error)
	Save(ctx context.Context, s domain.InventorySettings) error
}
