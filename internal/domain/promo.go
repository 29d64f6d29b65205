package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promo code kinds.
const (
	PromoTypePercentage = "percentage"
	PromoTypeFixed      = "fixed"
)

// PromoCode is a redeemable discount code. Codes are stored uppercase.
type PromoCode struct {
	ID             string
	Code           string
	Type           string
	Value          decimal.Decimal
	Active         bool
	MaxUses        *int
	CurrentUses    int
	MinOrderAmount *decimal.Decimal
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
