package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TokenVerifier checks a shared webhook token in constant time.
type TokenVerifier interface {
	VerifyWebhookToken(token string) bool
}

// WebhookAuth validates the shared secret that platform connectors send
// with every webhook call. The token is read from the X-HDMeal-Token
// header, falling back to the token query parameter for connectors that
// cannot set custom headers.
func WebhookAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-HDMeal-Token")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"version": "2.0",
				"data":    gin.H{"msg": "인증 토큰 없음"},
			})
			c.Abort()
			return
		}
		if !verifier.VerifyWebhookToken(token) {
			c.JSON(http.StatusForbidden, gin.H{
				"version": "2.0",
				"data":    gin.H{"msg": "미승인 토큰"},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
