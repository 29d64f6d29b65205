package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"amarka/internal/analytics"
	"amarka/internal/domain"
	"amarka/internal/pricing"
	cartrepo "amarka/internal/repository/cart"
	productrepo "amarka/internal/repository/product"
	settingsrepo "amarka/internal/repository/settings"
	promosvc "amarka/internal/service/promo"
)

// maxSaveAttempts bounds how many times a mutation is replayed when a
// concurrent writer bumps the cart version between our read and write.
const maxSaveAttempts = 3

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Identity names the cart a request operates on. Authenticated identities own
// their cart document; anonymous identities hold a session-scoped one.
type Identity struct {
	ID            string
	Authenticated bool
}

type cartRepo interface {
	Get(ctx context.Context, id string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
}

type productRepo interface {
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
}

type settingsRepo interface {
	Get(ctx context.Context) (domain.InventorySettings, error)
}

type promoValidator interface {
	Validate(ctx context.Context, code string, cartSubtotal decimal.Decimal) (*domain.PromoCode, decimal.Decimal, error)
	Redeem(ctx context.Context, id string) error
}

// Service owns all cart mutations: adding and merging line items, quantity
// and shipping updates, promo application, totals, and anonymous-to-account
// migration. Every mutation goes through an optimistic write loop so
// concurrent writers never silently overwrite each other.
type Service struct {
	repo      cartRepo
	products  productRepo
	settings  settingsRepo
	promos    promoValidator
	analytics analytics.Sink
	logger    *log.Logger
	currency  string
	now       func() time.Time
}

func New(
	repo cartrepo.Repository,
	products productrepo.Repository,
	settings settingsrepo.Repository,
	promos *promosvc.Service,
	sink analytics.Sink,
	logger *log.Logger,
	currencyCode string,
) (*Service, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:      repo,
		products:  products,
		settings:  settings,
		promos:    promos,
		analytics: sink,
		logger:    logger,
		currency:  unit.String(),
		now:       time.Now,
	}, nil
}

// AddInput selects what to add. SKU identifies the product; VariantKey is
// optional and may be a variant id, sku, label or finish.
type AddInput struct {
	SKU        string
	VariantKey string
	Quantity   int
}

// Get returns the identity's cart, or a fresh empty cart when none has been
// persisted yet.
func (s *Service) Get(ctx context.Context, id Identity) (*domain.Cart, error) {
	return s.load(ctx, id)
}

// Add resolves the product and variant, checks stock, and either merges into
// an existing line with the same product and variant or appends a new line.
// The unit price is re-resolved against bulk tiers at the merged quantity, so
// crossing a tier threshold reprices the whole line.
func (s *Service) Add(ctx context.Context, id Identity, in AddInput) (*domain.Cart, error) {
	if strings.TrimSpace(in.SKU) == "" {
		return nil, ErrProductNotFound
	}
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetBySKU(ctx, strings.TrimSpace(in.SKU))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	var variant *domain.Variant
	if strings.TrimSpace(in.VariantKey) != "" {
		variant = pricing.MatchVariant(*product, in.VariantKey)
		if variant == nil {
			return nil, ErrVariantNotFound
		}
	}

	var variantID *string
	if variant != nil {
		key, ok := pricing.VariantKey(variant)
		if !ok {
			return nil, domain.ErrUnidentifiedVariant
		}
		variantID = &key
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory settings: %w", err)
	}

	tiers := pricing.NormalizeTiers(product.BulkPricingTiers)
	basePrice := product.EffectivePrice(variant)

	label := product.Name
	if vl := pricing.VariantLabel(variant); vl != "" {
		label = fmt.Sprintf("%s (%s)", product.Name, vl)
	}

	cart, err := s.mutate(ctx, id, func(cart *domain.Cart) error {
		existing := cart.FindItem(product.ID, variantID)
		requested := in.Quantity
		if existing != nil {
			requested += existing.Quantity
		}
		if settings.TrackInventory && !settings.AllowBackorders {
			stock := product.EffectiveStock(variant)
			if stock <= 0 || requested > stock {
				return &domain.OutOfStockError{Label: label, Available: stock, Requested: requested}
			}
		}

		if existing != nil {
			existing.Quantity = requested
			if existing.BasePrice.IsZero() {
				existing.BasePrice = basePrice
			}
			if len(existing.BulkPricingTiers) == 0 && len(tiers) > 0 {
				existing.BulkPricingTiers = tiers
			}
			unit, _ := pricing.UnitPriceForQty(existing.BasePrice, existing.Quantity, existing.BulkPricingTiers)
			existing.UnitPrice = unit
			return nil
		}

		unit, _ := pricing.UnitPriceForQty(basePrice, in.Quantity, tiers)
		item := domain.LineItem{
			ProductID:          product.ID,
			VariantID:          variantID,
			Name:               product.Name,
			Quantity:           in.Quantity,
			UnitPrice:          unit,
			BasePrice:          basePrice,
			BulkPricingTiers:   tiers,
			PriceSnapshotAtAdd: unit,
		}
		if vl := pricing.VariantLabel(variant); vl != "" {
			item.VariantLabel = &vl
		}
		if img := s.itemImage(product, variant); img != "" {
			item.ImageURL = &img
		}
		if sku := s.itemSKU(product, variant); sku != "" {
			item.SKU = &sku
		}
		cart.Items = append(cart.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	unitPrice := decimal.Zero
	if li := cart.FindItem(product.ID, variantID); li != nil {
		unitPrice = li.UnitPrice
	}
	s.analytics.TrackAddToCart(analytics.AddToCartEvent{
		ProductID: product.ID,
		SKU:       s.itemSKU(product, variant),
		Name:      label,
		Quantity:  in.Quantity,
		UnitPrice: unitPrice,
		Currency:  cart.Currency,
		At:        s.now(),
	})
	return cart, nil
}

// UpdateQuantity sets the quantity of an existing line. Values below one are
// floored to one; removal goes through Remove.
func (s *Service) UpdateQuantity(ctx context.Context, id Identity, productID string, variantID *string, qty int) (*domain.Cart, error) {
	if qty < 1 {
		qty = 1
	}
	return s.mutate(ctx, id, func(cart *domain.Cart) error {
		item := cart.FindItem(productID, variantID)
		if item == nil {
			return ErrItemNotFound
		}
		item.Quantity = qty
		if len(item.BulkPricingTiers) > 0 {
			base := item.BasePrice
			if base.IsZero() {
				base = item.UnitPrice
			}
			unit, _ := pricing.UnitPriceForQty(base, item.Quantity, item.BulkPricingTiers)
			item.UnitPrice = unit
		}
		return nil
	})
}

// Remove drops the line matching the product and variant. Removing a line
// that is not present is a no-op.
func (s *Service) Remove(ctx context.Context, id Identity, productID string, variantID *string) (*domain.Cart, error) {
	return s.mutate(ctx, id, func(cart *domain.Cart) error {
		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.ProductID == productID && equalVariant(item.VariantID, variantID) {
				continue
			}
			kept = append(kept, item)
		}
		cart.Items = kept
		return nil
	})
}

// Clear empties the cart and resets every adjustment except the shipping
// method selection.
func (s *Service) Clear(ctx context.Context, id Identity) (*domain.Cart, error) {
	return s.mutate(ctx, id, func(cart *domain.Cart) error {
		cart.Items = nil
		cart.Discount = decimal.Zero
		cart.PromoCode = nil
		cart.Shipping = decimal.Zero
		cart.Tax = decimal.Zero
		cart.ShippingMethodID = nil
		return nil
	})
}

// SetShippingCost records the selected shipping method and its cost. Negative
// costs are clamped to zero.
func (s *Service) SetShippingCost(ctx context.Context, id Identity, cost decimal.Decimal, methodID string) (*domain.Cart, error) {
	if cost.IsNegative() {
		cost = decimal.Zero
	}
	return s.mutate(ctx, id, func(cart *domain.Cart) error {
		cart.Shipping = cost
		if strings.TrimSpace(methodID) != "" {
			m := methodID
			cart.ShippingMethodID = &m
		} else {
			cart.ShippingMethodID = nil
		}
		return nil
	})
}

// ApplyPromo validates the code against the cart subtotal and stores the
// resulting discount. The code's usage counter is bumped only after the cart
// write has been confirmed.
func (s *Service) ApplyPromo(ctx context.Context, id Identity, code string) (*domain.Cart, error) {
	var promoID string
	cart, err := s.mutate(ctx, id, func(cart *domain.Cart) error {
		s.recalculate(cart)
		promo, discount, err := s.promos.Validate(ctx, code, cart.Subtotal)
		if err != nil {
			return err
		}
		normalized := strings.ToUpper(strings.TrimSpace(code))
		cart.Discount = discount
		cart.PromoCode = &normalized
		promoID = promo.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.promos.Redeem(ctx, promoID); err != nil {
		s.logger.Printf("cart service: redeem promo id=%s error=%v", promoID, err)
	}
	return cart, nil
}

// RemovePromo clears an applied promo code and its discount.
func (s *Service) RemovePromo(ctx context.Context, id Identity) (*domain.Cart, error) {
	return s.mutate(ctx, id, func(cart *domain.Cart) error {
		cart.PromoCode = nil
		cart.Discount = decimal.Zero
		return nil
	})
}

// Migrate merges an anonymous cart into the customer's cart after sign-in.
// Lines are merged by product id, summing quantities; the customer cart's
// pricing wins for lines present in both. The anonymous document is left
// behind and expires with its session.
func (s *Service) Migrate(ctx context.Context, anonymousID, customerID string) (*domain.Cart, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrMissingCartIdentity
	}
	owner := Identity{ID: customerID, Authenticated: true}

	var anon *domain.Cart
	if strings.TrimSpace(anonymousID) != "" {
		var err error
		anon, err = s.repo.Get(ctx, anonymousID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("load anonymous cart: %w", err)
		}
	}
	if anon == nil || len(anon.Items) == 0 {
		return s.load(ctx, owner)
	}

	return s.mutate(ctx, owner, func(cart *domain.Cart) error {
		for _, incoming := range anon.Items {
			merged := false
			for i := range cart.Items {
				if cart.Items[i].ProductID == incoming.ProductID {
					cart.Items[i].Quantity += incoming.Quantity
					merged = true
					break
				}
			}
			if !merged {
				cart.Items = append(cart.Items, incoming)
			}
		}
		return nil
	})
}

// mutate loads the cart, applies fn, recalculates totals and saves. On a
// version conflict the whole cycle is replayed against the fresh document, up
// to maxSaveAttempts times. The returned cart reflects confirmed store state.
func (s *Service) mutate(ctx context.Context, id Identity, fn func(*domain.Cart) error) (*domain.Cart, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		cart, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(cart); err != nil {
			return nil, err
		}
		s.recalculate(cart)
		if err := s.repo.Save(ctx, cart); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("save cart: %w", err)
		}
		return cart, nil
	}
	return nil, lastErr
}

func (s *Service) load(ctx context.Context, id Identity) (*domain.Cart, error) {
	if strings.TrimSpace(id.ID) == "" {
		return nil, domain.ErrMissingCartIdentity
	}
	cart, err := s.repo.Get(ctx, id.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return s.emptyCart(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.OwnerID != nil && (!id.Authenticated || *cart.OwnerID != id.ID) {
		return nil, domain.ErrNotFound
	}
	return cart, nil
}

// recalculate derives the money fields from the line items. Lines carrying
// bulk tiers are repriced at their current quantity first, then the total is
// assembled and clamped at zero so a large fixed discount can never produce a
// negative amount due.
func (s *Service) recalculate(cart *domain.Cart) {
	subtotal := decimal.Zero
	for i := range cart.Items {
		item := &cart.Items[i]
		if len(item.BulkPricingTiers) > 0 {
			base := item.BasePrice
			if base.IsZero() {
				base = item.UnitPrice
			}
			unit, _ := pricing.UnitPriceForQty(base, item.Quantity, item.BulkPricingTiers)
			item.UnitPrice = unit
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	cart.Subtotal = subtotal

	total := subtotal.Add(cart.Shipping).Add(cart.Tax).Sub(cart.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	cart.Total = total
	cart.UpdatedAt = s.now()
}

func (s *Service) emptyCart(id Identity) *domain.Cart {
	now := s.now()
	cart := &domain.Cart{
		ID:        id.ID,
		Currency:  s.currency,
		Subtotal:  decimal.Zero,
		Shipping:  decimal.Zero,
		Tax:       decimal.Zero,
		Discount:  decimal.Zero,
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if id.Authenticated {
		owner := id.ID
		cart.OwnerID = &owner
	}
	return cart
}

func (s *Service) itemImage(p *domain.Product, v *domain.Variant) string {
	if img := pricing.VariantImageURL(v); img != "" {
		return img
	}
	return p.ImageURL
}

func (s *Service) itemSKU(p *domain.Product, v *domain.Variant) string {
	if v != nil && v.SKU != "" {
		return v.SKU
	}
	return p.SKU
}

func equalVariant(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
