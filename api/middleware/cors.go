package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS applies the configured origin allow-list for the back-office frontend.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", IdempotencyHeader, "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
