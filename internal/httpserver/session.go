package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type anonymousSessionResponse struct {
	AnonymousID string `json:"anonymousId"`
	Token       string `json:"token"`
	ExpiresIn   int    `json:"expiresIn"`
}

func createAnonymousSession(sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, anonymousID, err := sessions.Issue(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}
		c.JSON(http.StatusCreated, anonymousSessionResponse{
			AnonymousID: anonymousID,
			Token:       token,
			ExpiresIn:   sessions.TTLSeconds(),
		})
	}
}
