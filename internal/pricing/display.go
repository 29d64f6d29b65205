package pricing

import (
	"github.com/shopspring/decimal"

	"amarka/internal/domain"
)

// Display is the catalog-listing framing of a product price. IsFrom signals
// "starting at" wording when variants or tiers make the shown price a floor.
type Display struct {
	Price  decimal.Decimal
	IsFrom bool
}

// DisplayPrice computes the price to show on a product card: the cheapest of
// the product's own price, any positive variant prices, and the lowest tier
// price. This cheapest-possible framing is deliberately a different policy
// from UnitPriceForQty, which prices an actual line item by the highest
// threshold reached. Returns false when the product has no positive price at
// all.
func DisplayPrice(p domain.Product) (Display, bool) {
	base := decimal.Zero
	haveBase := false
	if p.Price.IsPositive() {
		base = p.Price
		haveBase = true
	}
	variantPriced := false
	for _, v := range p.Variants {
		if v.Price == nil || !v.Price.IsPositive() {
			continue
		}
		variantPriced = true
		if !haveBase || v.Price.LessThan(base) {
			base = *v.Price
			haveBase = true
		}
	}

	tiers := NormalizeTiers(p.BulkPricingTiers)
	if len(tiers) == 0 {
		if !haveBase {
			return Display{}, false
		}
		return Display{Price: base, IsFrom: variantPriced}, true
	}

	minTier := tiers[0].UnitPrice
	for _, tier := range tiers[1:] {
		if tier.UnitPrice.LessThan(minTier) {
			minTier = tier.UnitPrice
		}
	}
	price := minTier
	if haveBase && base.LessThan(minTier) {
		price = base
	}
	return Display{Price: price, IsFrom: true}, true
}
