package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware configures CORS for the browser client. Credentials must be
// allowed because the session rides in a cookie, which rules out a wildcard
// origin.
func CORSMiddleware(appBaseURL string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{appBaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
