package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict indicates a cart write lost a race with a concurrent
	// writer; the caller should reload and retry.
	ErrVersionConflict = errors.New("cart version conflict")
	// ErrMissingCartIdentity indicates a cart operation was attempted without
	// a resolvable owner or anonymous identity.
	ErrMissingCartIdentity = errors.New("missing cart identity")
	// ErrUnidentifiedVariant indicates a variant carries no stable identifier
	// (no id, sku, label or finish) and cannot be matched to a line item.
	ErrUnidentifiedVariant = errors.New("variant has no stable identifier")
)

// OutOfStockError is returned when inventory tracking is on, backorders are
// off, and the requested or cumulative quantity exceeds available stock.
type OutOfStockError struct {
	Label     string
	Available int
	Requested int
}

func (e *OutOfStockError) Error() string {
	if e.Available <= 0 {
		return fmt.Sprintf("product %q is out of stock", e.Label)
	}
	return fmt.Sprintf("only %d units available for %q", e.Available, e.Label)
}
