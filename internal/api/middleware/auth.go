package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PicassoPreem-86/subletly-sub000/internal/auth"
	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
)

const (
	// ContextKeyUserID holds the key for the caller's user ID in Gin context.
	ContextKeyUserID = "userID"
	// ContextKeyAccountType holds the key for the caller's account type.
	ContextKeyAccountType = "accountType"
)

// sessionToken extracts the session token from the session cookie, falling
// back to a bearer Authorization header for non-browser clients.
func sessionToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

// AuthMiddleware creates a Gin middleware for session authentication.
func AuthMiddleware(jwtSecret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		claims, err := auth.ValidateSessionToken(token, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		// Set caller identity in context for handlers to use
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyAccountType, claims.AccountType)

		c.Next()
	}
}

// LandlordMiddleware checks that the caller holds a landlord account.
// Assumes AuthMiddleware runs first.
func LandlordMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountType, exists := c.Get(ContextKeyAccountType)
		if !exists || accountType.(models.AccountType) != models.AccountTypeLandlord {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Landlord account required"})
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated caller's user ID from the context.
func CallerID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}
