package cart

import (
	"strconv"

	"github.com/shopspring/decimal"

	"amarka/internal/domain"
)

// The cart body is persisted as a schemaless jsonb document. The store must
// never see null values for absent optional fields, so the encoded map is
// sanitized recursively before every write, and decoding tolerates any
// missing key.

func encodeCart(cart domain.Cart) map[string]interface{} {
	items := make([]interface{}, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, encodeItem(item))
	}
	doc := map[string]interface{}{
		"items":            items,
		"subtotal":         cart.Subtotal.String(),
		"shipping":         cart.Shipping.String(),
		"tax":              cart.Tax.String(),
		"discount":         cart.Discount.String(),
		"total":            cart.Total.String(),
		"promoCode":        optionalString(cart.PromoCode),
		"shippingMethodId": optionalString(cart.ShippingMethodID),
	}
	return sanitizeDocument(doc)
}

func encodeItem(item domain.LineItem) map[string]interface{} {
	var tiers interface{}
	if len(item.BulkPricingTiers) > 0 {
		encoded := make([]interface{}, 0, len(item.BulkPricingTiers))
		for _, tier := range item.BulkPricingTiers {
			var label interface{}
			if tier.Label != "" {
				label = tier.Label
			}
			encoded = append(encoded, map[string]interface{}{
				"minQty":    tier.MinQty,
				"unitPrice": tier.UnitPrice.String(),
				"label":     label,
			})
		}
		tiers = encoded
	}
	return map[string]interface{}{
		"productId":          item.ProductID,
		"variantId":          optionalString(item.VariantID),
		"name":               item.Name,
		"variantLabel":       optionalString(item.VariantLabel),
		"qty":                item.Quantity,
		"unitPrice":          item.UnitPrice.String(),
		"basePrice":          item.BasePrice.String(),
		"bulkPricingTiers":   tiers,
		"priceSnapshotAtAdd": item.PriceSnapshotAtAdd.String(),
		"imageUrl":           optionalString(item.ImageURL),
		"sku":                optionalString(item.SKU),
	}
}

func optionalString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// sanitizeDocument walks maps and arrays and drops every nil value. The
// backing store rejects nulls for fields that are simply absent, so this is a
// correctness requirement rather than a size optimization.
func sanitizeDocument(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for key, value := range doc {
		switch v := value.(type) {
		case nil:
			continue
		case map[string]interface{}:
			out[key] = sanitizeDocument(v)
		case []interface{}:
			cleaned := make([]interface{}, 0, len(v))
			for _, element := range v {
				if element == nil {
					continue
				}
				if nested, ok := element.(map[string]interface{}); ok {
					cleaned = append(cleaned, sanitizeDocument(nested))
					continue
				}
				cleaned = append(cleaned, element)
			}
			out[key] = cleaned
		default:
			out[key] = value
		}
	}
	return out
}

func decodeCartDocument(cart *domain.Cart, doc map[string]interface{}) {
	if doc == nil {
		return
	}
	cart.Subtotal = docDecimal(doc["subtotal"])
	cart.Shipping = docDecimal(doc["shipping"])
	cart.Tax = docDecimal(doc["tax"])
	cart.Discount = docDecimal(doc["discount"])
	cart.Total = docDecimal(doc["total"])
	cart.PromoCode = docOptionalString(doc["promoCode"])
	cart.ShippingMethodID = docOptionalString(doc["shippingMethodId"])

	rawItems, _ := doc["items"].([]interface{})
	for _, raw := range rawItems {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		cart.Items = append(cart.Items, decodeItem(entry))
	}
}

func decodeItem(entry map[string]interface{}) domain.LineItem {
	item := domain.LineItem{
		ProductID:          docString(entry["productId"]),
		VariantID:          docOptionalString(entry["variantId"]),
		Name:               docString(entry["name"]),
		VariantLabel:       docOptionalString(entry["variantLabel"]),
		Quantity:           docInt(entry["qty"]),
		UnitPrice:          docDecimal(entry["unitPrice"]),
		BasePrice:          docDecimal(entry["basePrice"]),
		PriceSnapshotAtAdd: docDecimal(entry["priceSnapshotAtAdd"]),
		ImageURL:           docOptionalString(entry["imageUrl"]),
		SKU:                docOptionalString(entry["sku"]),
	}
	rawTiers, _ := entry["bulkPricingTiers"].([]interface{})
	for _, raw := range rawTiers {
		tier, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		item.BulkPricingTiers = append(item.BulkPricingTiers, domain.BulkPricingTier{
			MinQty:    docInt(tier["minQty"]),
			UnitPrice: docDecimal(tier["unitPrice"]),
			Label:     docString(tier["label"]),
		})
	}
	return item
}

func docString(raw interface{}) string {
	s, _ := raw.(string)
	return s
}

func docOptionalString(raw interface{}) *string {
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func docInt(raw interface{}) int {
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return 0
}

func docDecimal(raw interface{}) decimal.Decimal {
	switch v := raw.(type) {
	case string:
		if parsed, err := decimal.NewFromString(v); err == nil {
			return parsed
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	}
	return decimal.Zero
}
