package handlers

import (
	"net/http"
	"strings"

	"hose_installation/internal/service"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

func (h *Handler) identityMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	id, err := h.services.Authorization.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(identityKey, id)
	c.Next()
}

// adminOnly must run after identityMiddleware.
func (h *Handler) adminOnly(c *gin.Context) {
	if !identity(c).IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}
	c.Next()
}

func identity(c *gin.Context) service.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(service.Identity)
	return id
}
