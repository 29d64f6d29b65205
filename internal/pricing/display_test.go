package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amarka/internal/domain"
)

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestDisplayPrice_PlainProduct(t *testing.T) {
	d, ok := DisplayPrice(domain.Product{Price: dec("20")})
	require.True(t, ok)
	assert.True(t, d.Price.Equal(dec("20")))
	assert.False(t, d.IsFrom)
}

func TestDisplayPrice_CheapestVariantWins(t *testing.T) {
	p := domain.Product{
		Price: dec("20"),
		Variants: []domain.Variant{
			{ID: "v1", Price: decPtr("15"), Active: true},
			{ID: "v2", Price: decPtr("0"), Active: true},
		},
	}
	d, ok := DisplayPrice(p)
	require.True(t, ok)
	assert.True(t, d.Price.Equal(dec("15")), "non-positive variant prices ignored")
	assert.True(t, d.IsFrom)
}

func TestDisplayPrice_TierFloorsThePrice(t *testing.T) {
	p := domain.Product{
		Price: dec("20"),
		BulkPricingTiers: []domain.BulkPricingTier{
			{MinQty: 10, UnitPrice: dec("12")},
			{MinQty: 50, UnitPrice: dec("9")},
		},
	}
	d, ok := DisplayPrice(p)
	require.True(t, ok)
	assert.True(t, d.Price.Equal(dec("9")))
	assert.True(t, d.IsFrom, "tiers always force from-framing")
}

func TestDisplayPrice_TierOnlyProduct(t *testing.T) {
	// A zero base price with tiers shows the lowest tier as the floor.
	p := domain.Product{
		BulkPricingTiers: []domain.BulkPricingTier{{MinQty: 5, UnitPrice: dec("7")}},
	}
	d, ok := DisplayPrice(p)
	require.True(t, ok)
	assert.True(t, d.Price.Equal(dec("7")))
	assert.True(t, d.IsFrom)
}

func TestDisplayPrice_Unpriced(t *testing.T) {
	_, ok := DisplayPrice(domain.Product{})
	assert.False(t, ok)
}
