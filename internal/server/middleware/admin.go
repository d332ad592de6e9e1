package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	ErrAdminDisabled = errors.New("admin endpoints are disabled")
	ErrInvalidToken  = errors.New("invalid admin token")
)

// WithAdminToken guards admin routes with a static bearer token.
// Without a configured token every admin request is rejected.
func WithAdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			AbortWithError(c, http.StatusForbidden, ErrAdminDisabled)
			return
		}

		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(token)) != 1 {
			AbortWithError(c, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		c.Next()
	}
}
