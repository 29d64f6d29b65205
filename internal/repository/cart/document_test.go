package cart

import (
	"encoding/json"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amarka/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

func TestEncodeCart_StripsAbsentOptionalFields(t *testing.T) {
	cart := domain.Cart{
		ID:       "anon-1",
		Currency: "USD",
		Items: []domain.LineItem{{
			ProductID:          "p1",
			Name:               "Slab",
			Quantity:           2,
			UnitPrice:          dec("10"),
			BasePrice:          dec("10"),
			PriceSnapshotAtAdd: dec("10"),
			// VariantID, VariantLabel, ImageURL and SKU all absent.
		}},
	}

	doc := encodeCart(cart)
	items, ok := doc["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)

	entry := items[0].(map[string]interface{})
	for _, key := range []string{"variantId", "variantLabel", "imageUrl", "sku", "bulkPricingTiers"} {
		_, present := entry[key]
		assert.False(t, present, "key %q must be stripped, not null", key)
	}
	assert.Equal(t, "p1", entry["productId"])

	_, hasPromo := doc["promoCode"]
	assert.False(t, hasPromo)
}

func TestEncodeCart_StripsNestedTierLabels(t *testing.T) {
	cart := domain.Cart{
		ID:       "c1",
		Currency: "USD",
		Items: []domain.LineItem{{
			ProductID: "p1",
			Name:      "Slab",
			Quantity:  5,
			UnitPrice: dec("8"),
			BasePrice: dec("10"),
			BulkPricingTiers: []domain.BulkPricingTier{
				{MinQty: 5, UnitPrice: dec("8")},
				{MinQty: 10, UnitPrice: dec("6"), Label: "bulk"},
			},
		}},
	}

	doc := encodeCart(cart)
	entry := doc["items"].([]interface{})[0].(map[string]interface{})
	tiers := entry["bulkPricingTiers"].([]interface{})
	require.Len(t, tiers, 2)

	first := tiers[0].(map[string]interface{})
	_, present := first["label"]
	assert.False(t, present)
	second := tiers[1].(map[string]interface{})
	assert.Equal(t, "bulk", second["label"])
}

// Round-trips a cart through JSON the way the store does, so numbers come
// back as float64 and absent keys stay absent.
func TestDecodeCart_RoundTrip(t *testing.T) {
	sku := gofakeit.LetterN(8)
	original := domain.Cart{
		ID:       gofakeit.UUID(),
		Currency: "USD",
		Subtotal: dec("35"),
		Shipping: dec("2"),
		Tax:      dec("1"),
		Discount: dec("0"),
		Total:    dec("38"),
		Items: []domain.LineItem{
			{
				ProductID:          gofakeit.UUID(),
				VariantID:          strPtr("sku:" + sku),
				Name:               gofakeit.ProductName(),
				VariantLabel:       strPtr("Oak"),
				Quantity:           2,
				UnitPrice:          dec("10"),
				BasePrice:          dec("12.50"),
				PriceSnapshotAtAdd: dec("10"),
				SKU:                strPtr(sku),
				BulkPricingTiers: []domain.BulkPricingTier{
					{MinQty: 2, UnitPrice: dec("10"), Label: "pair"},
				},
			},
			{
				ProductID:          gofakeit.UUID(),
				Name:               gofakeit.ProductName(),
				Quantity:           3,
				UnitPrice:          dec("5"),
				BasePrice:          dec("5"),
				PriceSnapshotAtAdd: dec("5"),
			},
		},
	}

	encoded := encodeCart(original)
	raw, err := json.Marshal(encoded)
	require.NoError(t, err)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &stored))

	decoded := domain.Cart{ID: original.ID, Currency: original.Currency}
	decodeCartDocument(&decoded, stored)

	diff := cmp.Diff(original, decoded)
	assert.Empty(t, diff)
	assert.Nil(t, decoded.Items[1].SKU, "absent sku must stay absent after reload")
}

func TestDecodeCart_ToleratesMissingAndForeignKeys(t *testing.T) {
	var cart domain.Cart
	decodeCartDocument(&cart, map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"productId": "p1", "qty": float64(4), "unitPrice": "9.99"},
			"garbage entry",
		},
		"legacyField": true,
	})
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].UnitPrice.Equal(dec("9.99")))
	assert.Nil(t, cart.Items[0].SKU)
	assert.True(t, cart.Subtotal.IsZero())
}
