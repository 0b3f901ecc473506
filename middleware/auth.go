package middleware

import (
	"strings"

	"edulearn/services"
	"edulearn/util"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// Auth validates the bearer token (header, or token query parameter for
// websocket upgrades) and stores the claims on the request context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if header := c.GetHeader("Authorization"); header != "" {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := services.ParseToken(tokenString, secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentUser returns the authenticated caller's claims, or nil.
func CurrentUser(c *gin.Context) *services.Claims {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*services.Claims)
	if !ok {
		return nil
	}
	return claims
}
