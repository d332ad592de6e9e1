package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/looplj/ecagate/internal/log"
)

// Recovery turns a handler panic into a 500 JSON error and logs the stack.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error(c.Request.Context(), "panic recovered",
			log.Any("panic", recovered),
			log.String("path", c.Request.URL.Path),
			log.String("stack", string(debug.Stack())))

		AbortWithError(c, http.StatusInternalServerError, fmt.Errorf("internal server error"))
	})
}
