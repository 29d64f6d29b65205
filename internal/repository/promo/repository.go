package promo

import (
	"context"

	"amarka/internal/domain"
)

type Repository interface {
	// GetByCode looks a promo code up by its uppercase code string.
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	// IncrementUsage bumps the usage counter with a field-level update.
	IncrementUsage(ctx context.Context, id string) error
	Upsert(ctx context.Context, p domain.PromoCode) (*domain.PromoCode, error)
}
