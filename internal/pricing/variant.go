package pricing

import "amarka/internal/domain"

// VariantKey derives a stable identity for a variant, used for line-item
// matching. Priority: id, then prefixed sku/label/finish. A variant with none
// of these cannot be told apart from another add and is reported as
// unidentifiable rather than silently collapsed.
func VariantKey(v *domain.Variant) (string, bool) {
	if v == nil {
		return "", false
	}
	switch {
	case v.ID != "":
		return v.ID, true
	case v.SKU != "":
		return "sku:" + v.SKU, true
	case v.Label != "":
		return "label:" + v.Label, true
	case v.Finish != "":
		return "finish:" + v.Finish, true
	}
	return "", false
}

// VariantLabel picks the display label for a variant: label, finish, then sku.
func VariantLabel(v *domain.Variant) string {
	if v == nil {
		return ""
	}
	switch {
	case v.Label != "":
		return v.Label
	case v.Finish != "":
		return v.Finish
	}
	return v.SKU
}

// VariantImageURL returns the variant's own image; callers fall back to the
// product image when empty.
func VariantImageURL(v *domain.Variant) string {
	if v == nil {
		return ""
	}
	return v.ImageURL
}

// MatchVariant finds the product variant addressed by a caller-supplied
// selector, which may be the variant id, sku, label or finish. Inactive
// variants never match.
func MatchVariant(p domain.Product, selector string) *domain.Variant {
	if selector == "" {
		return nil
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		if !v.Active {
			continue
		}
		if v.ID == selector || v.SKU == selector || v.Label == selector || v.Finish == selector {
			return v
		}
		if key, ok := VariantKey(v); ok && key == selector {
			return v
		}
	}
	return nil
}
