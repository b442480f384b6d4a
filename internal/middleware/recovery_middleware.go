// internal/middleware/recovery_middleware.go
package middleware

import (
	"net/http"

	"console-service/internal/pkg/reqid"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", reqid.FromContext(c.Request.Context())),
				)
				c.Abort()
				if c.Writer.Written() {
					return
				}
				c.HTML(http.StatusInternalServerError, "error.tmpl", gin.H{
					"Title":   "Internal Server Error",
					"Status":  http.StatusInternalServerError,
					"Message": "Something went wrong. Please try again.",
				})
			}
		}()
		c.Next()
	}
}
