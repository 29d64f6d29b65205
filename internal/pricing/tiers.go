// Package pricing holds the pure price-resolution rules shared by the cart
// service and the catalog handlers.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"amarka/internal/domain"
)

// NormalizeTiers returns a cleaned copy of a product's tier list: MinQty
// floored at 1, entries with negative unit prices dropped, sorted ascending
// by MinQty. The result is what gets snapshotted onto a line item.
func NormalizeTiers(tiers []domain.BulkPricingTier) []domain.BulkPricingTier {
	if len(tiers) == 0 {
		return nil
	}
	out := make([]domain.BulkPricingTier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.UnitPrice.IsNegative() {
			continue
		}
		minQty := tier.MinQty
		if minQty < 1 {
			minQty = 1
		}
		out = append(out, domain.BulkPricingTier{
			MinQty:    minQty,
			UnitPrice: tier.UnitPrice,
			Label:     tier.Label,
		})
	}
	if len(out) == 0 {
		return nil
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinQty < out[j].MinQty })
	return out
}

// UnitPriceForQty resolves the effective unit price for a quantity against a
// normalized (ascending) tier list. The policy is highest-threshold-met: among
// tiers whose MinQty the quantity reaches, the one with the largest MinQty
// wins, even if a lower threshold carries a cheaper price. With no tiers, or
// no threshold reached, the base price applies unchanged.
func UnitPriceForQty(basePrice decimal.Decimal, qty int, tiers []domain.BulkPricingTier) (decimal.Decimal, *domain.BulkPricingTier) {
	var applied *domain.BulkPricingTier
	for i := range tiers {
		if qty >= tiers[i].MinQty {
			applied = &tiers[i]
		}
	}
	if applied == nil {
		return basePrice, nil
	}
	return applied.UnitPrice, applied
}
