package cart

import (
	"context"

	"amarka/internal/domain"
)

// Repository is the cart persistence gateway. Carts are stored as whole
// documents keyed by their identity; Save is a full-document overwrite guarded
// by the cart's version token.
type Repository interface {
	// Get loads the cart document for an identity, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Cart, error)
	// Save upserts the full document. The write succeeds only when the stored
	// version still equals cart.Version; otherwise domain.ErrVersionConflict
	// is returned and the cart is left untouched. On success the cart's
	// Version and timestamps are refreshed from the store.
	Save(ctx context.Context, cart *domain.Cart) error
}
