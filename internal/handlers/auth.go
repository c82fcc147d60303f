package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codebaseshow/codebaseshow/internal/services"
)

type AuthHandler struct {
	userService   *services.UserService
	githubService *services.GitHubService
}

func NewAuthHandler(userService *services.UserService, githubService *services.GitHubService) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		githubService: githubService,
	}
}

// GitHubLogin redirects the browser into the GitHub OAuth flow. The state
// parameter is round-tripped so the frontend can restore where the user was.
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	authURL := h.githubService.GetAuthURL(c.Query("state"))
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GitHubCallback completes the OAuth flow and returns a session token
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An authorization code is required."})
		return
	}

	token, err := h.userService.SignIn(c.Request.Context(), input.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
