package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers based on allowedOrigins.
// Each entry in allowedOrigins must be a full origin (scheme + host, no trailing slash).
// The identity headers must be allowed so the browser client can forward them.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", HeaderUserID, HeaderUserName, HeaderUserRole},
		ExposedHeaders: []string{"Content-Disposition", "X-Phonebook-Source"},
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
