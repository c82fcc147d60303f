package models

import "errors"

// Error codes consumed by handlers and batch jobs to tell failure kinds apart.
const (
	ErrCodeInvalidRepositoryURL = "INVALID_REPOSITORY_URL"
	ErrCodeValidation           = "VALIDATION"
	ErrCodeNotAContributor      = "NOT_A_CONTRIBUTOR"
	ErrCodeRepositoryArchived   = "REPOSITORY_ARCHIVED"
	ErrCodeIssuesDisabled       = "ISSUES_DISABLED"
	ErrCodeCurrentlyReviewed    = "CURRENTLY_REVIEWED"
	ErrCodeAlreadyReviewed      = "ALREADY_REVIEWED"
	ErrCodeApprovalError        = "APPROVAL_ERROR"
	ErrCodeIssueClosed          = "ISSUE_CLOSED"
	ErrCodeInvalidToken         = "INVALID_TOKEN"
	ErrCodeInvalidOperation     = "INVALID_OPERATION"
	ErrCodeNotOwnedByAdmin      = "IMPLEMENTATION_NOT_OWNED_BY_ADMIN"
	ErrCodeUserNotMaintainer    = "USER_NOT_MAINTAINER"
	ErrCodeRepositoryNotFound   = "REPOSITORY_NOT_FOUND"
	ErrCodeIssueNotFound        = "ISSUE_NOT_FOUND"
	ErrCodePrimaryEmailNotFound = "PRIMARY_EMAIL_NOT_FOUND"
	ErrCodeTooManyContributors  = "TOO_MANY_CONTRIBUTORS"
	ErrCodeOAuthExchangeFailed  = "OAUTH_EXCHANGE_FAILED"
	ErrCodeGitHubAPI            = "GITHUB_API_ERROR"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeNotFound             = "NOT_FOUND"
)

// Error carries an internal diagnostic message for logs alongside a short
// display message suitable for direct presentation to the user.
type Error struct {
	Code           string
	Message        string
	DisplayMessage string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates an Error with the given code, internal message and display message
func NewError(code, message, displayMessage string) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		DisplayMessage: displayMessage,
	}
}

// ErrorCode extracts the code from an error, or "" when it is not a models.Error
func ErrorCode(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err is a models.Error with the given code
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// DisplayMessage returns the user-facing message for err, falling back
// to a generic message for errors that do not carry one.
func DisplayMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.DisplayMessage != "" {
		return appErr.DisplayMessage
	}
	return "An unexpected error occurred."
}

// ValidationError describes an invalid field value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
