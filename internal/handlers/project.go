package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codebaseshow/codebaseshow/internal/middleware"
	"github.com/codebaseshow/codebaseshow/internal/models"
	"github.com/codebaseshow/codebaseshow/internal/services"
)

type ProjectHandler struct {
	projectService        *services.ProjectService
	implementationService *services.ImplementationService
}

func NewProjectHandler(projectService *services.ProjectService, implementationService *services.ImplementationService) *ProjectHandler {
	return &ProjectHandler{
		projectService:        projectService,
		implementationService: implementationService,
	}
}

// List returns every project, most implemented first
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Get returns a single project by slug
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projectService.GetBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Create registers a new project; admin only
func (h *ProjectHandler) Create(c *gin.Context) {
	var project models.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	if err := h.projectService.Create(middleware.GetUser(c), &project); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// PublicData serves the public JSON snapshot of all projects and their
// publicly listed implementations
func (h *ProjectHandler) PublicData(c *gin.Context) {
	data, err := h.projectService.PublicData()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// Implementations returns the public listing of a project, optionally
// filtered by category
func (h *ProjectHandler) Implementations(c *gin.Context) {
	project, err := h.projectService.GetBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	category := c.Query("category")
	if category != "" && !models.IsValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category."})
		return
	}

	implementations, err := h.implementationService.FindPubliclyListed(project.ID.String(), category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, implementations)
}
