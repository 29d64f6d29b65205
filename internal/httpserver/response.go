package httpserver

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"amarka/internal/domain"
	"amarka/internal/pricing"
	cartsvc "amarka/internal/service/cart"
	promosvc "amarka/internal/service/promo"
)

type errorResponse struct {
	Error string `json:"error"`
}

type cartResponse struct {
	ID               string             `json:"id"`
	OwnerID          *string            `json:"ownerId,omitempty"`
	Items            []cartItemResponse `json:"items"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	Shipping         decimal.Decimal    `json:"shipping"`
	Tax              decimal.Decimal    `json:"tax"`
	Discount         decimal.Decimal    `json:"discount"`
	Total            decimal.Decimal    `json:"total"`
	Currency         string             `json:"currency"`
	PromoCode        *string            `json:"promoCode,omitempty"`
	ShippingMethodID *string            `json:"shippingMethodId,omitempty"`
	TotalQuantity    int                `json:"totalQuantity"`
	Version          int64              `json:"version"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

type cartItemResponse struct {
	ProductID          string          `json:"productId"`
	VariantID          *string         `json:"variantId,omitempty"`
	Name               string          `json:"name"`
	VariantLabel       *string         `json:"variantLabel,omitempty"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	BasePrice          decimal.Decimal `json:"basePrice"`
	BulkPricingTiers   []tierResponse  `json:"bulkPricingTiers,omitempty"`
	PriceSnapshotAtAdd decimal.Decimal `json:"priceSnapshotAtAdd"`
	LineTotal          decimal.Decimal `json:"lineTotal"`
	ImageURL           *string         `json:"imageUrl,omitempty"`
	SKU                *string         `json:"sku,omitempty"`
}

type tierResponse struct {
	MinQty    int             `json:"minQty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Label     string          `json:"label,omitempty"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, toCartItemResponse(item))
	}
	return cartResponse{
		ID:               cart.ID,
		OwnerID:          cart.OwnerID,
		Items:            items,
		Subtotal:         cart.Subtotal,
		Shipping:         cart.Shipping,
		Tax:              cart.Tax,
		Discount:         cart.Discount,
		Total:            cart.Total,
		Currency:         cart.Currency,
		PromoCode:        cart.PromoCode,
		ShippingMethodID: cart.ShippingMethodID,
		TotalQuantity:    cart.TotalQuantity(),
		Version:          cart.Version,
		CreatedAt:        cart.CreatedAt,
		UpdatedAt:        cart.UpdatedAt,
	}
}

func toCartItemResponse(item domain.LineItem) cartItemResponse {
	tiers := make([]tierResponse, 0, len(item.BulkPricingTiers))
	for _, t := range item.BulkPricingTiers {
		tiers = append(tiers, tierResponse{MinQty: t.MinQty, UnitPrice: t.UnitPrice, Label: t.Label})
	}
	if len(tiers) == 0 {
		tiers = nil
	}
	return cartItemResponse{
		ProductID:          item.ProductID,
		VariantID:          item.VariantID,
		Name:               item.Name,
		VariantLabel:       item.VariantLabel,
		Quantity:           item.Quantity,
		UnitPrice:          item.UnitPrice,
		BasePrice:          item.BasePrice,
		BulkPricingTiers:   tiers,
		PriceSnapshotAtAdd: item.PriceSnapshotAtAdd,
		LineTotal:          item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		ImageURL:           item.ImageURL,
		SKU:                item.SKU,
	}
}

type productResponse struct {
	ID               string                `json:"id"`
	Key              string                `json:"key"`
	SKU              string                `json:"sku"`
	Name             string                `json:"name"`
	Description      string                `json:"description,omitempty"`
	Price            decimal.Decimal       `json:"price"`
	Stock            int                   `json:"stock"`
	Currency         string                `json:"currency"`
	ImageURL         string                `json:"imageUrl,omitempty"`
	Active           bool                  `json:"active"`
	Variants         []variantResponse     `json:"variants,omitempty"`
	BulkPricingTiers []tierResponse        `json:"bulkPricingTiers,omitempty"`
	DisplayPrice     *displayPriceResponse `json:"displayPrice,omitempty"`
}

type variantResponse struct {
	ID       string           `json:"id,omitempty"`
	SKU      string           `json:"sku,omitempty"`
	Label    string           `json:"label,omitempty"`
	Finish   string           `json:"finish,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Stock    *int             `json:"stock,omitempty"`
	Active   bool             `json:"active"`
	ImageURL string           `json:"imageUrl,omitempty"`
}

type displayPriceResponse struct {
	Amount decimal.Decimal `json:"amount"`
	IsFrom bool            `json:"isFrom"`
}

func toProductResponse(p domain.Product) productResponse {
	variants := make([]variantResponse, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, variantResponse{
			ID:       v.ID,
			SKU:      v.SKU,
			Label:    v.Label,
			Finish:   v.Finish,
			Price:    v.Price,
			Stock:    v.Stock,
			Active:   v.Active,
			ImageURL: v.ImageURL,
		})
	}
	if len(variants) == 0 {
		variants = nil
	}
	tiers := make([]tierResponse, 0, len(p.BulkPricingTiers))
	for _, t := range p.BulkPricingTiers {
		tiers = append(tiers, tierResponse{MinQty: t.MinQty, UnitPrice: t.UnitPrice, Label: t.Label})
	}
	if len(tiers) == 0 {
		tiers = nil
	}

	out := productResponse{
		ID:               p.ID,
		Key:              p.Key,
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price,
		Stock:            p.Stock,
		Currency:         p.Currency,
		ImageURL:         p.ImageURL,
		Active:           p.Active,
		Variants:         variants,
		BulkPricingTiers: tiers,
	}
	if display, ok := pricing.DisplayPrice(p); ok {
		out.DisplayPrice = &displayPriceResponse{Amount: display.Price, IsFrom: display.IsFrom}
	}
	return out
}

// writeError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as a plain 500 without leaking internals.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	var outOfStock *domain.OutOfStockError
	var rejection *promosvc.RejectionError
	switch {
	case errors.As(err, &outOfStock):
		c.JSON(http.StatusConflict, gin.H{
			"error":     outOfStock.Error(),
			"available": outOfStock.Available,
			"requested": outOfStock.Requested,
		})
	case errors.As(err, &rejection):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: rejection.Reason})
	case errors.Is(err, domain.ErrMissingCartIdentity):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing cart identity"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, cartsvc.ErrProductNotFound),
		errors.Is(err, cartsvc.ErrVariantNotFound),
		errors.Is(err, cartsvc.ErrItemNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, cartsvc.ErrInvalidQuantity),
		errors.Is(err, domain.ErrUnidentifiedVariant):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrVersionConflict):
		c.JSON(http.StatusConflict, errorResponse{Error: "cart was modified concurrently, retry"})
	default:
		logger.Printf("http: request failed error=%v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
