package http

import (
	"net/http"
	"strings"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// AuthRequired resolves the bearer token into a domain.Actor and aborts with
// 401 when it is missing or invalid.
func (h *Handler) AuthRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "error": "missing bearer token"})
		return
	}

	actor, err := h.auth.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "error": "invalid token"})
		return
	}

	c.Set(actorKey, actor)
	c.Next()
}

func currentActor(c *gin.Context) domain.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}
	}
	actor, _ := v.(domain.Actor)
	return actor
}
