package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"amarka/internal/domain"
)

func TestVariantKey_Priority(t *testing.T) {
	tests := []struct {
		name    string
		variant *domain.Variant
		want    string
		ok      bool
	}{
		{name: "nil variant", variant: nil},
		{
			name:    "id wins over everything",
			variant: &domain.Variant{ID: "v1", SKU: "S", Label: "L", Finish: "F"},
			want:    "v1", ok: true,
		},
		{
			name:    "sku when no id",
			variant: &domain.Variant{SKU: "S-9", Label: "L"},
			want:    "sku:S-9", ok: true,
		},
		{
			name:    "label when no id or sku",
			variant: &domain.Variant{Label: "Matte Black"},
			want:    "label:Matte Black", ok: true,
		},
		{
			name:    "finish as last resort",
			variant: &domain.Variant{Finish: "polished"},
			want:    "finish:polished", ok: true,
		},
		{
			name:    "unidentifiable variant",
			variant: &domain.Variant{Active: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := VariantKey(tt.variant)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVariantLabel_Fallbacks(t *testing.T) {
	assert.Equal(t, "", VariantLabel(nil))
	assert.Equal(t, "Oak", VariantLabel(&domain.Variant{Label: "Oak", Finish: "matte", SKU: "S"}))
	assert.Equal(t, "matte", VariantLabel(&domain.Variant{Finish: "matte", SKU: "S"}))
	assert.Equal(t, "S", VariantLabel(&domain.Variant{SKU: "S"}))
}

func TestMatchVariant(t *testing.T) {
	p := domain.Product{Variants: []domain.Variant{
		{ID: "v1", SKU: "SKU-1", Label: "Oak", Active: true},
		{ID: "v2", Label: "Walnut", Active: false},
		{Label: "Cherry", Active: true},
	}}

	assert.Equal(t, "v1", MatchVariant(p, "v1").ID)
	assert.Equal(t, "v1", MatchVariant(p, "SKU-1").ID)
	assert.Equal(t, "v1", MatchVariant(p, "Oak").ID)
	assert.Equal(t, "Cherry", MatchVariant(p, "label:Cherry").Label)
	assert.Nil(t, MatchVariant(p, "Walnut"), "inactive variants never match")
	assert.Nil(t, MatchVariant(p, ""))
	assert.Nil(t, MatchVariant(p, "nope"))
}
