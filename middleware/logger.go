package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"
)

// TraceHeader echoes the request trace id back to the caller.
const TraceHeader = "X-Trace-Id"

// Logger assigns every request a trace id, stores it in the request context
// and logs the request once it completes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := uuid.NewString()
		ctx := ctxmanage.WithTraceId(c.Request.Context(), traceId)
		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceHeader, traceId)

		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String(logkey.TraceID, traceId),
			slog.String("Method", c.Request.Method),
			slog.String("Path", c.Request.URL.Path),
			slog.Int("Status", c.Writer.Status()),
			slog.Duration("Latency", time.Since(start)),
		}
		if c.Writer.Status() >= 500 {
			slog.Error("request completed", attrs...)
			return
		}
		slog.Info("request completed", attrs...)
	}
}
