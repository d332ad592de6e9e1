package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/looplj/ecagate/internal/contexts"
	"github.com/looplj/ecagate/internal/log"
	"github.com/looplj/ecagate/internal/tracing"
)

// AccessLog logs one line per request. Server errors are logged as errors,
// client errors and requests carrying errors as warnings, the rest at debug level.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ctx := c.Request.Context()

		var errMsgs []string
		for _, e := range c.Errors {
			errMsgs = append(errMsgs, e.Error())
		}

		for _, e := range contexts.GetErrors(ctx) {
			errMsgs = append(errMsgs, e.Error())
		}

		status := c.Writer.Status()

		fields := []log.Field{
			log.Int("status", status),
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.Duration("latency", time.Since(start)),
			log.String("client_ip", c.ClientIP()),
		}

		if opName, ok := tracing.GetOperationName(ctx); ok {
			fields = append(fields, log.String("operation", opName))
		}

		if len(errMsgs) > 0 {
			fields = append(fields, log.Strings("errors", errMsgs))
		}

		switch {
		case status >= 500:
			log.Error(ctx, "[ACCESS]", fields...)
		case status >= 400 || len(errMsgs) > 0:
			log.Warn(ctx, "[ACCESS]", fields...)
		default:
			log.Debug(ctx, "[ACCESS]", fields...)
		}
	}
}
