package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"amarka/internal/domain"
)

func listProducts(logger *log.Logger, catalog ProductCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.List(c.Request.Context())
		if err != nil {
			writeError(c, logger, err)
			return
		}
		out := make([]productResponse, 0, len(products))
		for _, p := range products {
			if !p.Active {
				continue
			}
			out = append(out, toProductResponse(p))
		}
		c.JSON(http.StatusOK, gin.H{"results": out, "total": len(out)})
	}
}

func getProduct(logger *log.Logger, catalog ProductCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := catalog.GetByKey(c.Request.Context(), c.Param("key"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, errorResponse{Error: "product not found"})
				return
			}
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toProductResponse(*product))
	}
}
