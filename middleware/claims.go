package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
)

func contextWithClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, auth.ClaimsKey, claims)
}

// ClaimsFrom returns the claims Authentication attached to the request.
func ClaimsFrom(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	return claims, ok
}
