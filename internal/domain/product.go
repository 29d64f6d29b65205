package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record. The cart holds weak references to products by
// id; product data is read at add-time and never owned by the cart.
type Product struct {
	ID               string
	Key              string
	SKU              string
	Name             string
	Description      string
	Price            decimal.Decimal
	Stock            int
	Currency         string
	ImageURL         string
	Active           bool
	Variants         []Variant
	BulkPricingTiers []BulkPricingTier
	CreatedAt        time.Time
}

// Variant is a distinct purchasable configuration of a product. Price and
// Stock are optional overrides; when absent the product-level values apply.
type Variant struct {
	ID       string
	SKU      string
	Label    string
	Finish   string
	Price    *decimal.Decimal
	Stock    *int
	Active   bool
	ImageURL string
}

// EffectivePrice returns the variant price if set, else the product price.
func (p Product) EffectivePrice(v *Variant) decimal.Decimal {
	if v != nil && v.Price != nil {
		return *v.Price
	}
	return p.Price
}

// EffectiveStock returns the variant stock if the variant defines one, else
// the product stock.
func (p Product) EffectiveStock(v *Variant) int {
	if v != nil && v.Stock != nil {
		return *v.Stock
	}
	return p.Stock
}
