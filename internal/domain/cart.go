package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the root aggregate, keyed by the identity that owns it: an
// authenticated customer id or a generated anonymous session id.
type Cart struct {
	ID               string
	OwnerID          *string
	Items            []LineItem
	Subtotal         decimal.Decimal
	Shipping         decimal.Decimal
	Tax              decimal.Decimal
	Discount         decimal.Decimal
	Total            decimal.Decimal
	Currency         string
	PromoCode        *string
	ShippingMethodID *string
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LineItem is one row of a cart. Display fields are snapshots captured when
// the item was first added and are not re-synced with the product later.
type LineItem struct {
	ProductID          string
	VariantID          *string
	Name               string
	VariantLabel       *string
	Quantity           int
	UnitPrice          decimal.Decimal
	BasePrice          decimal.Decimal
	BulkPricingTiers   []BulkPricingTier
	PriceSnapshotAtAdd decimal.Decimal
	ImageURL           *string
	SKU                *string
}

// BulkPricingTier is a quantity threshold at which a discounted per-unit
// price applies. Tier lists attached to a line item are normalized: sorted
// ascending by MinQty with invalid entries dropped.
type BulkPricingTier struct {
	MinQty    int
	UnitPrice decimal.Decimal
	Label     string
}

// FindItem returns the line item matching the (productID, variantID) pair,
// or nil. A nil variantID matches only the variant-less row for the product.
func (c *Cart) FindItem(productID string, variantID *string) *LineItem {
	for i := range c.Items {
		item := &c.Items[i]
		if item.ProductID != productID {
			continue
		}
		if equalOptional(item.VariantID, variantID) {
			return item
		}
	}
	return nil
}

// TotalQuantity sums quantities across all line items.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
