package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
)

type ctxKey int

// TraceIdKey is the context key the logger middleware stores the request trace id under.
const TraceIdKey ctxKey = 1

// GetTraceIdOfRequest returns the trace id attached by middleware.Logger,
// or "Unknown" when the request did not pass through it.
func GetTraceIdOfRequest(c *gin.Context) string {
	return GetTraceId(c.Request.Context())
}

// GetTraceId reads the trace id from a plain context.
func GetTraceId(ctx context.Context) string {
	traceId, ok := ctx.Value(TraceIdKey).(string)
	if !ok {
		return "Unknown"
	}
	return traceId
}

// WithTraceId returns a copy of ctx carrying traceId.
func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, TraceIdKey, traceId)
}
