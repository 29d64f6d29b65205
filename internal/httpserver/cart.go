package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	cartsvc "amarka/internal/service/cart"
)

type addItemRequest struct {
	SKU        string `json:"sku" binding:"required"`
	VariantKey string `json:"variantKey"`
	Quantity   int    `json:"quantity" binding:"required"`
}

type updateItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	VariantID *string `json:"variantId"`
	Quantity  int     `json:"quantity" binding:"required"`
}

type removeItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	VariantID *string `json:"variantId"`
}

type shippingRequest struct {
	Cost     decimal.Decimal `json:"cost"`
	MethodID string          `json:"methodId"`
}

type promoRequest struct {
	Code string `json:"code" binding:"required"`
}

type migrateRequest struct {
	AnonymousID string `json:"anonymousId" binding:"required"`
}

func getCart(logger *log.Logger, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requestIdentity(c)
		if !ok {
			return
		}
		cart, err := carts.Get(c.Request.Context(), identity)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func addCartItem(logger *log.Logger, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requestIdentity(c)
		if !ok {
			return
		}
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		cart, err := carts.Add(c.Request.Context(), identity, cartsvc.AddInput{
			SKU:        req.SKU,
			VariantKey: req.VariantKey,
			Quantity:   req.Quantity,
		})
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func updateCartItem(logger *log.Logger, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requestIdentity(c)
		if !ok {
			return
		}
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		cart, err := carts.UpdateQuantity(c.Request.Context(), identity, req.ProductID, req.VariantID, req.Quantity)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func removeCartItem(logger *log.Logger, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requestIdentity(c)
		if !ok {
			return
		}
		var req removeItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		cart, err := carts.Remove(c.Request.Context(), identity, req.ProductID, req.VariantID)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func clearCart(logger *log.Logger, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requestIdentity(c)
		if !ok {
			return
		}
		cart, err := carts.Clear(c.Request.Context(), identity)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func setCartShipping(logger *log.Logger, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requestIdentity(c)
		if !ok {
			return
		}
		var req shippingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		cart, err := carts.SetShippingCost(c.Request.Context(), identity, req.Cost, req.MethodID)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func applyCartPromo(logger *log.Logger, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requestIdentity(c)
		if !ok {
			return
		}
		var req promoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		cart, err := carts.ApplyPromo(c.Request.Context(), identity, req.Code)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func removeCartPromo(logger *log.Logger, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requestIdentity(c)
		if !ok {
			return
		}
		cart, err := carts.RemovePromo(c.Request.Context(), identity)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

// migrateCart moves the caller's anonymous cart into their account cart after
// sign-in. Only an authenticated identity may migrate, and only into its own
// cart. The anonymous session token, when present, is invalidated afterwards.
func migrateCart(logger *log.Logger, carts CartService, sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requestIdentity(c)
		if !ok {
			return
		}
		if !identity.Authenticated {
			c.JSON(http.StatusForbidden, errorResponse{Error: "sign-in required"})
			return
		}
		var req migrateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		cart, err := carts.Migrate(c.Request.Context(), req.AnonymousID, identity.ID)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		if token := bearerToken(c); token != "" {
			sessions.Drop(token)
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}
