// internal/middleware/cors.go
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the storefront origin; an empty or "*" origin opens the API to all.
func CORS(frontendURL string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", RequestIDHeader, "x-nowpayments-sig"},
		ExposeHeaders: []string{RequestIDHeader, "X-Total-Count"},
		MaxAge:        12 * time.Hour,
	}
	if frontendURL == "" || frontendURL == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = []string{frontendURL}
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
