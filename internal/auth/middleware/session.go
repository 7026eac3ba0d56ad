package middleware

import (
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/mapa-lotes/lotmap-backend/internal/auth"
)

// SessionMiddleware validates Firebase ID tokens when present and
// attaches the session uid to the request. Visitors without a token
// pass through anonymously: reserving a lot is open to the public, the
// admin checker decides everything else downstream.
func SessionMiddleware(authClient *fbauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Set(auth.CtxSessionUID, "")
			c.Request = c.Request.WithContext(auth.WithSessionUID(c.Request.Context(), ""))
			c.Next()
			return
		}

		decodedToken, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(auth.CtxSessionUID, decodedToken.UID)
		c.Request = c.Request.WithContext(auth.WithSessionUID(c.Request.Context(), decodedToken.UID))

		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
