package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"
)

// Recovery turns a handler panic into a 500 with a generic body. The panic
// value is logged, never sent.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		slog.Error("panic recovered", slog.String(logkey.TraceID, ctxmanage.GetTraceIdOfRequest(c)),
			slog.String(logkey.ERROR, fmt.Sprint(recovered)))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	})
}
