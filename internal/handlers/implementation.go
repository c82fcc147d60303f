package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codebaseshow/codebaseshow/internal/middleware"
	"github.com/codebaseshow/codebaseshow/internal/models"
	"github.com/codebaseshow/codebaseshow/internal/services"
)

type ImplementationHandler struct {
	implementationService *services.ImplementationService
	projectService        *services.ProjectService
}

func NewImplementationHandler(implementationService *services.ImplementationService, projectService *services.ProjectService) *ImplementationHandler {
	return &ImplementationHandler{
		implementationService: implementationService,
		projectService:        projectService,
	}
}

// implementationInput carries the submitter-editable fields
type implementationInput struct {
	RepositoryURL       string   `json:"repositoryURL"`
	Category            string   `json:"category"`
	FrontendEnvironment *string  `json:"frontendEnvironment"`
	Language            string   `json:"language"`
	Libraries           []string `json:"libraries"`
}

func (input *implementationInput) apply(impl *models.Implementation) {
	impl.RepositoryURL = input.RepositoryURL
	impl.Category = models.ImplementationCategory(input.Category)
	impl.Language = input.Language
	impl.Libraries = input.Libraries

	impl.FrontendEnvironment = nil
	if input.FrontendEnvironment != nil {
		environment := models.FrontendEnvironment(*input.FrontendEnvironment)
		impl.FrontendEnvironment = &environment
	}
}

// Submit files a new community submission for a project
func (h *ImplementationHandler) Submit(c *gin.Context) {
	h.create(c, func(caller *models.User, impl *models.Implementation) error {
		return h.implementationService.Submit(c.Request.Context(), caller, impl)
	})
}

// Add creates an admin-curated implementation, approved immediately
func (h *ImplementationHandler) Add(c *gin.Context) {
	h.create(c, func(caller *models.User, impl *models.Implementation) error {
		return h.implementationService.Add(c.Request.Context(), caller, impl)
	})
}

func (h *ImplementationHandler) create(c *gin.Context, save func(*models.User, *models.Implementation) error) {
	project, err := h.projectService.GetBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	var input implementationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	caller := middleware.GetUser(c)
	impl := models.NewImplementation(project.ID, caller.ID)
	input.apply(impl)

	if err := save(caller, impl); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, impl)
}

// Get returns a single implementation. Unapproved submissions are only
// visible to their owner and to admins.
func (h *ImplementationHandler) Get(c *gin.Context) {
	impl, err := h.implementationService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	caller := middleware.GetUser(c)
	if impl.Status != models.StatusApproved && !models.CanManage(impl.OwnerID, caller) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return
	}

	c.JSON(http.StatusOK, impl)
}

// Update saves the submitter-editable fields; owner or admin only
func (h *ImplementationHandler) Update(c *gin.Context) {
	impl, err := h.implementationService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var input implementationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}
	input.apply(impl)

	if err := h.implementationService.Update(middleware.GetUser(c), impl); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, impl)
}

// Delete removes an implementation; owner or admin only
func (h *ImplementationHandler) Delete(c *gin.Context) {
	if err := h.implementationService.Delete(middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Submissions returns the admin review queue, oldest first
func (h *ImplementationHandler) Submissions(c *gin.Context) {
	implementations, err := h.implementationService.FindSubmissions(middleware.GetUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, implementations)
}

// Review claims a pending submission for the calling admin
func (h *ImplementationHandler) Review(c *gin.Context) {
	if err := h.implementationService.ReviewSubmission(middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Approve approves a submission under the caller's review
func (h *ImplementationHandler) Approve(c *gin.Context) {
	if err := h.implementationService.ApproveSubmission(middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reject rejects a submission under the caller's review. The reason is
// optional; an empty request body rejects without one.
func (h *ImplementationHandler) Reject(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	if err := h.implementationService.RejectSubmission(middleware.GetUser(c), c.Param("id"), input.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelReview releases the caller's review claim, back to pending
func (h *ImplementationHandler) CancelReview(c *gin.Context) {
	if err := h.implementationService.CancelSubmissionReview(middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReportAsUnmaintained files an unmaintained report citing a GitHub issue
func (h *ImplementationHandler) ReportAsUnmaintained(c *gin.Context) {
	var input struct {
		IssueNumber int `json:"issueNumber" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An issue number is required."})
		return
	}

	if err := h.implementationService.ReportAsUnmaintained(c.Request.Context(), middleware.GetUser(c), c.Param("id"), input.IssueNumber); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ApproveUnmaintainedReport confirms a report via its emailed token. The
// token is the capability; no session is required.
func (h *ImplementationHandler) ApproveUnmaintainedReport(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A token is required."})
		return
	}

	if err := h.implementationService.ApproveUnmaintainedReport(c.Request.Context(), input.Token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAsUnmaintained lets the owner declare their implementation unmaintained
func (h *ImplementationHandler) MarkAsUnmaintained(c *gin.Context) {
	if err := h.implementationService.MarkAsUnmaintained(middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClaimOwnership transfers an admin-seeded implementation to the caller
func (h *ImplementationHandler) ClaimOwnership(c *gin.Context) {
	if err := h.implementationService.ClaimOwnership(c.Request.Context(), middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RefreshPendingIssues recounts the repository's pending issues; admin only
func (h *ImplementationHandler) RefreshPendingIssues(c *gin.Context) {
	if err := h.implementationService.RefreshPendingIssues(c.Request.Context(), middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UsedLibraries returns the distinct library names across all implementations
func (h *ImplementationHandler) UsedLibraries(c *gin.Context) {
	libraries, err := h.implementationService.FindUsedLibraries()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, libraries)
}
