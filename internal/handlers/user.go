package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codebaseshow/codebaseshow/internal/middleware"
	"github.com/codebaseshow/codebaseshow/internal/services"
)

type UserHandler struct {
	implementationService *services.ImplementationService
}

func NewUserHandler(implementationService *services.ImplementationService) *UserHandler {
	return &UserHandler{
		implementationService: implementationService,
	}
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.GetUser(c)
	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"name":      user.Name,
		"avatarURL": user.AvatarURL,
		"isAdmin":   user.IsAdmin,
	})
}

// Implementations returns the authenticated user's submissions, newest first
func (h *UserHandler) Implementations(c *gin.Context) {
	implementations, err := h.implementationService.FindOwn(middleware.GetUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, implementations)
}
