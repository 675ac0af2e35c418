package handlers

import (
	"net/http"

	"github.com/go-chi/cors"

	"storefront/internal/config"
)

// WithCORS wraps h so browsers on the configured origins can call the API.
// Preflight requests are answered before they reach gin.
func WithCORS(h http.Handler, cfg config.CORS) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: cfg.AllowedMethods,
		AllowedHeaders: cfg.AllowedHeaders,
		ExposedHeaders: []string{"X-Trace-Id"},
		MaxAge:         cfg.MaxAge,
	}).Handler(h)
}
