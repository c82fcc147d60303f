package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthRequired rejects anonymous requests
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		c.Next()
	}
}

// AdminRequired rejects requests from callers who are not administrators
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sorry, you are not allowed to perform this action."})
			return
		}
		c.Next()
	}
}
