package middlewares

import (
	"net/http"
	"strings"

	"axiapac.com/backoffice/security"
	"axiapac.com/backoffice/web/common"
	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie carries the token for browser sessions.
	SessionCookie = "backoffice.ApplicationCookie"

	identityKey = "identity"
)

// Authentication checks for a valid Bearer token or session cookie
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Try to get from cookie
			cookie, err := c.Cookie(SessionCookie)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("missing token"))
				return
			}

			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("malformed authorization header"))
				return
			}

			tokenStr = parts[1]
		}

		claims, err := security.ParseIdentityToken(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(identityKey, claims)
		c.Next()
	}
}

// Identity returns the claims stored by Authentication.
func Identity(c *gin.Context) (*security.IdentityClaims, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.IdentityClaims)
	return claims, ok
}

// SetIdentity stores claims on the context; used by tests and trusted callers.
func SetIdentity(c *gin.Context, claims *security.IdentityClaims) {
	c.Set(identityKey, claims)
}
