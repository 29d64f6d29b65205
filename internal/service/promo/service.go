package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"amarka/internal/domain"
	promorepo "amarka/internal/repository/promo"
)

// RejectionError explains why a code cannot be applied. The message is safe
// to show to the shopper.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

type Service struct {
	repo promoRepo
	now  func() time.Time
}

type promoRepo interface {
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	IncrementUsage(ctx context.Context, id string) error
}

func New(repo promorepo.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Validate checks a code against its active flag, validity window, usage cap
// and minimum order amount, and computes the discount for the given subtotal.
// Fixed-amount discounts are capped at the subtotal.
func (s *Service) Validate(ctx context.Context, code string, cartSubtotal decimal.Decimal) (*domain.PromoCode, decimal.Decimal, error) {
	if strings.TrimSpace(code) == "" {
		return nil, decimal.Zero, &RejectionError{Reason: "Invalid promo code"}
	}

	promo, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, decimal.Zero, &RejectionError{Reason: "Invalid promo code"}
		}
		return nil, decimal.Zero, err
	}

	if !promo.Active {
		return nil, decimal.Zero, &RejectionError{Reason: "This promo code is no longer active"}
	}

	now := s.now()
	if promo.ValidFrom != nil && promo.ValidFrom.After(now) {
		return nil, decimal.Zero, &RejectionError{Reason: "This promo code is not yet valid"}
	}
	if promo.ValidUntil != nil && promo.ValidUntil.Before(now) {
		return nil, decimal.Zero, &RejectionError{Reason: "This promo code has expired"}
	}
	if promo.MaxUses != nil && promo.CurrentUses >= *promo.MaxUses {
		return nil, decimal.Zero, &RejectionError{Reason: "This promo code has reached its usage limit"}
	}
	if promo.MinOrderAmount != nil && cartSubtotal.LessThan(*promo.MinOrderAmount) {
		return nil, decimal.Zero, &RejectionError{
			Reason: fmt.Sprintf("Minimum order amount of $%s required", promo.MinOrderAmount.StringFixed(2)),
		}
	}

	var discount decimal.Decimal
	switch promo.Type {
	case domain.PromoTypePercentage:
		discount = cartSubtotal.Mul(promo.Value).Div(decimal.NewFromInt(100))
	case domain.PromoTypeFixed:
		discount = promo.Value
		if discount.GreaterThan(cartSubtotal) {
			discount = cartSubtotal
		}
	default:
		return nil, decimal.Zero, fmt.Errorf("unknown promo type %q", promo.Type)
	}

	return promo, discount, nil
}

// Redeem records one use of the code.
func (s *Service) Redeem(ctx context.Context, id string) error {
	return s.repo.IncrementUsage(ctx, id)
}
