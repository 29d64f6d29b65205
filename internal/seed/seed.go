package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"amarka/internal/domain"
	productrepo "amarka/internal/repository/product"
	promorepo "amarka/internal/repository/promo"
	settingsrepo "amarka/internal/repository/settings"
)

// Apply inserts demo catalog data, store settings and promo codes for manual
// testing. It is idempotent via the repositories' upserts.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := productrepo.NewPostgres(pool, nil)
	promos := promorepo.NewPostgres(pool, nil)
	settings := settingsrepo.NewPostgres(pool, nil)

	for _, p := range demoProducts() {
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}

	for _, promo := range demoPromoCodes() {
		if _, err := promos.Upsert(ctx, promo); err != nil {
			return fmt.Errorf("upsert promo %s: %w", promo.Code, err)
		}
	}

	if err := settings.Save(ctx, domain.InventorySettings{TrackInventory: true, AllowBackorders: false}); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}

func demoProducts() []domain.Product {
	return []domain.Product{
		{
			Key:         "cabinet-handle-classic",
			SKU:         "HND-CLASSIC-128",
			Name:        "Classic Cabinet Handle 128mm",
			Description: "Solid zinc alloy handle, 128mm hole spacing",
			Price:       dec("6.90"),
			Stock:       240,
			Currency:    "USD",
			ImageURL:    "https://cdn.amarka.example/handles/classic-128.jpg",
			Active:      true,
			Variants: []domain.Variant{
				{ID: "hnd-classic-black", Finish: "Matte Black", Active: true},
				{ID: "hnd-classic-brass", Finish: "Brushed Brass", Price: decPtr("7.90"), Active: true},
				{ID: "hnd-classic-nickel", Finish: "Satin Nickel", Price: decPtr("7.40"), Stock: intPtr(60), Active: true},
			},
			BulkPricingTiers: []domain.BulkPricingTier{
				{MinQty: 10, UnitPrice: dec("6.20"), Label: "10+"},
				{MinQty: 50, UnitPrice: dec("5.50"), Label: "50+"},
				{MinQty: 200, UnitPrice: dec("4.90"), Label: "200+"},
			},
		},
		{
			Key:         "cabinet-knob-round",
			SKU:         "KNB-ROUND-30",
			Name:        "Round Cabinet Knob 30mm",
			Description: "Turned solid brass knob, 30mm diameter",
			Price:       dec("4.20"),
			Stock:       500,
			Currency:    "USD",
			ImageURL:    "https://cdn.amarka.example/knobs/round-30.jpg",
			Active:      true,
			Variants: []domain.Variant{
				{ID: "knb-round-brass", Finish: "Polished Brass", Active: true},
				{ID: "knb-round-chrome", Finish: "Chrome", Active: true},
			},
			BulkPricingTiers: []domain.BulkPricingTier{
				{MinQty: 25, UnitPrice: dec("3.60"), Label: "25+"},
			},
		},
		{
			Key:         "drawer-slide-450",
			SKU:         "SLD-BB-450",
			Name:        "Ball Bearing Drawer Slide 450mm",
			Description: "Full extension side-mount pair, 45kg rated",
			Price:       dec("12.80"),
			Stock:       80,
			Currency:    "USD",
			ImageURL:    "https://cdn.amarka.example/slides/bb-450.jpg",
			Active:      true,
		},
		{
			Key:         "soft-close-hinge",
			SKU:         "HNG-SC-110",
			Name:        "Soft Close Hinge 110°",
			Description: "Clip-on concealed hinge with integrated damper",
			Price:       dec("3.10"),
			Stock:       0,
			Currency:    "USD",
			Active:      true,
			BulkPricingTiers: []domain.BulkPricingTier{
				{MinQty: 20, UnitPrice: dec("2.70"), Label: "20+"},
				{MinQty: 100, UnitPrice: dec("2.30"), Label: "100+"},
			},
		},
	}
}

func demoPromoCodes() []domain.PromoCode {
	now := time.Now().UTC()
	nextYear := now.AddDate(1, 0, 0)
	lastYear := now.AddDate(-1, 0, 0)
	return []domain.PromoCode{
		{
			Code:   "WELCOME10",
			Type:   domain.PromoTypePercentage,
			Value:  dec("10"),
			Active: true,
		},
		{
			Code:           "TRADE25",
			Type:           domain.PromoTypeFixed,
			Value:          dec("25"),
			Active:         true,
			MinOrderAmount: decPtr("150"),
			ValidUntil:     &nextYear,
		},
		{
			// Expired on purpose, for exercising rejection paths.
			Code:       "SUMMER24",
			Type:       domain.PromoTypePercentage,
			Value:      dec("15"),
			Active:     true,
			ValidFrom:  &lastYear,
			ValidUntil: &now,
		},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(v int) *int {
	return &v
}
