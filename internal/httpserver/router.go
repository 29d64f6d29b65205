package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"amarka/internal/domain"
	cartsvc "amarka/internal/service/cart"
)

const identityCtxKey = "cartIdentity"

// CartService is the subset of the cart service the handlers use.
type CartService interface {
	Get(ctx context.Context, id cartsvc.Identity) (*domain.Cart, error)
	Add(ctx context.Context, id cartsvc.Identity, in cartsvc.AddInput) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, id cartsvc.Identity, productID string, variantID *string, qty int) (*domain.Cart, error)
	Remove(ctx context.Context, id cartsvc.Identity, productID string, variantID *string) (*domain.Cart, error)
	Clear(ctx context.Context, id cartsvc.Identity) (*domain.Cart, error)
	SetShippingCost(ctx context.Context, id cartsvc.Identity, cost decimal.Decimal, methodID string) (*domain.Cart, error)
	ApplyPromo(ctx context.Context, id cartsvc.Identity, code string) (*domain.Cart, error)
	RemovePromo(ctx context.Context, id cartsvc.Identity) (*domain.Cart, error)
	Migrate(ctx context.Context, anonymousID, customerID string) (*domain.Cart, error)
}

// ProductCatalog is the read side of the catalog exposed over HTTP.
type ProductCatalog interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByKey(ctx context.Context, key string) (*domain.Product, error)
}

// SessionService issues and validates anonymous cart sessions.
type SessionService interface {
	Issue(ctx context.Context) (token, anonymousID string, err error)
	LookupByToken(ctx context.Context, token string) (string, error)
	Drop(token string)
	TTLSeconds() int
}

// Deps carries the services the router needs.
type Deps struct {
	Carts    CartService
	Products ProductCatalog
	Sessions SessionService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Carts == nil || deps.Products == nil || deps.Sessions == nil {
		return nil, errors.New("httpserver: incomplete dependencies")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Owner-ID"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/sessions/anonymous", createAnonymousSession(deps.Sessions))

	router.GET("/products", listProducts(logger, deps.Products))
	router.GET("/products/:key", getProduct(logger, deps.Products))

	carts := router.Group("/carts")
	carts.Use(identityMiddleware(deps.Sessions))
	carts.GET("/:id", getCart(logger, deps.Carts))
	carts.POST("/:id/items", addCartItem(logger, deps.Carts))
	carts.PATCH("/:id/items", updateCartItem(logger, deps.Carts))
	carts.DELETE("/:id/items", removeCartItem(logger, deps.Carts))
	carts.POST("/:id/clear", clearCart(logger, deps.Carts))
	carts.POST("/:id/shipping", setCartShipping(logger, deps.Carts))
	carts.POST("/:id/promo", applyCartPromo(logger, deps.Carts))
	carts.DELETE("/:id/promo", removeCartPromo(logger, deps.Carts))
	carts.POST("/:id/migrate", migrateCart(logger, deps.Carts, deps.Sessions))

	return router, nil
}

// identityMiddleware resolves the caller: a trusted X-Owner-ID header set by
// the auth gateway for signed-in customers, or a bearer token from an
// anonymous session.
func identityMiddleware(sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if owner := strings.TrimSpace(c.GetHeader("X-Owner-ID")); owner != "" {
			c.Set(identityCtxKey, cartsvc.Identity{ID: owner, Authenticated: true})
			c.Next()
			return
		}
		if token := bearerToken(c); token != "" {
			anonymousID, err := sessions.LookupByToken(c.Request.Context(), token)
			if err == nil {
				c.Set(identityCtxKey, cartsvc.Identity{ID: anonymousID})
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing cart identity"})
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

// requestIdentity returns the resolved identity, enforcing that the cart id
// in the path is the caller's own.
func requestIdentity(c *gin.Context) (cartsvc.Identity, bool) {
	v, ok := c.Get(identityCtxKey)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing cart identity"})
		return cartsvc.Identity{}, false
	}
	identity := v.(cartsvc.Identity)
	if c.Param("id") != identity.ID {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "cart not found"})
		return cartsvc.Identity{}, false
	}
	return identity, true
}
