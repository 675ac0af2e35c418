package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"
)

type Mid struct {
	k *auth.Keys
}

func NewMid(k *auth.Keys) (*Mid, error) {
	if k == nil {
		return nil, errors.New("auth keys cannot be nil")
	}
	return &Mid{k: k}, nil
}

// Authentication requires a bearer token. A missing token is 401, a token
// that fails validation is 403. Valid claims are stored in the request
// context under auth.ClaimsKey.
func (m *Mid) Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		header := c.GetHeader("Authorization")
		scheme, token, _ := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !strings.EqualFold(scheme, "Bearer") || token == "" {
			slog.Error("missing bearer token", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access token required"})
			return
		}

		claims, err := m.k.ValidateToken(token)
		if err != nil {
			slog.Error("token validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid token"})
			return
		}

		ctx := c.Request.Context()
		ctx = contextWithClaims(ctx, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authorize wraps handlers addressed by an :email path parameter so that a
// token can only act on its own customer.
func (m *Mid) Authorize(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		claims, ok := ClaimsFrom(c)
		if !ok {
			slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access token required"})
			return
		}
		if email := c.Param("email"); email != claims.Email {
			slog.Error("token does not own resource", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.Email, email), slog.Int64(logkey.CustomerID, claims.ID))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}
		next(c)
	}
}
