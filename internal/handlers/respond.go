package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codebaseshow/codebaseshow/internal/models"
	"github.com/codebaseshow/codebaseshow/pkg/logger"
)

// respondError maps a service error onto an HTTP status and a JSON body
// carrying the user-facing message. Internal diagnostics stay in the logs.
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return
	}

	code := models.ErrorCode(err)
	status := http.StatusInternalServerError

	switch code {
	case models.ErrCodeInvalidRepositoryURL,
		models.ErrCodeValidation,
		models.ErrCodeNotAContributor,
		models.ErrCodeRepositoryArchived,
		models.ErrCodeIssuesDisabled,
		models.ErrCodeIssueClosed,
		models.ErrCodeInvalidToken,
		models.ErrCodeInvalidOperation,
		models.ErrCodeNotOwnedByAdmin,
		models.ErrCodeUserNotMaintainer,
		models.ErrCodeTooManyContributors,
		models.ErrCodePrimaryEmailNotFound,
		models.ErrCodeOAuthExchangeFailed:
		status = http.StatusBadRequest
	case models.ErrCodeForbidden:
		status = http.StatusForbidden
	case models.ErrCodeNotFound,
		models.ErrCodeRepositoryNotFound,
		models.ErrCodeIssueNotFound:
		status = http.StatusNotFound
	case models.ErrCodeCurrentlyReviewed,
		models.ErrCodeAlreadyReviewed,
		models.ErrCodeApprovalError:
		status = http.StatusConflict
	case models.ErrCodeGitHubAPI:
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("Unhandled error while serving a request")
	}

	body := gin.H{"error": models.DisplayMessage(err)}
	if code != "" {
		body["code"] = code
	}
	c.JSON(status, body)
}
