package middleware

import (
	"errors"
	"net/http"

	"storefront-service/models"

	"github.com/gin-gonic/gin"
)

const UserContextKey = "userID"

// AuthMiddleware reads identity headers injected by the API gateway. The
// gateway has already validated the session; requests without an identity
// are rejected here so handlers never see an unauthenticated principal.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		role := c.GetHeader("X-User-Role")
		email := c.GetHeader("X-User-Email")
		firstName := c.GetHeader("X-User-First-Name")
		lastName := c.GetHeader("X-User-Last-Name")

		// Fallback to cookies (set by API gateway) if headers missing
		if userID == "" {
			if v, err := c.Cookie("user_id"); err == nil && v != "" {
				userID = v
			}
		}
		if role == "" {
			if v, err := c.Cookie("user_role"); err == nil && v != "" {
				role = v
			}
		}
		if email == "" {
			if v, err := c.Cookie("user_email"); err == nil && v != "" {
				email = v
			}
		}

		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set(UserContextKey, userID)
		c.Set("role", role)
		c.Set("email", email)
		c.Set("firstName", firstName)
		c.Set("lastName", lastName)
		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.New("user ID not found in context")
}

// GetIdentity assembles the principal set by AuthMiddleware.
func GetIdentity(c *gin.Context) (models.Identity, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{
		UserID:    userID,
		Email:     c.GetString("email"),
		FirstName: c.GetString("firstName"),
		LastName:  c.GetString("lastName"),
	}, nil
}

// AdminOnly restricts access to admin role.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
