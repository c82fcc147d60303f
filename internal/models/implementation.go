package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ImplementationCategory string

const (
	CategoryFrontend  ImplementationCategory = "frontend"
	CategoryBackend   ImplementationCategory = "backend"
	CategoryFullstack ImplementationCategory = "fullstack"
)

type FrontendEnvironment string

const (
	EnvironmentWeb     FrontendEnvironment = "web"
	EnvironmentMobile  FrontendEnvironment = "mobile"
	EnvironmentDesktop FrontendEnvironment = "desktop"
)

type ImplementationStatus string

const (
	StatusPending   ImplementationStatus = "pending"
	StatusReviewing ImplementationStatus = "reviewing"
	StatusApproved  ImplementationStatus = "approved"
	StatusRejected  ImplementationStatus = "rejected"
)

type RepositoryStatus string

const (
	RepositoryAvailable      RepositoryStatus = "available"
	RepositoryArchived       RepositoryStatus = "archived"
	RepositoryIssuesDisabled RepositoryStatus = "issues-disabled"
	RepositoryMissing        RepositoryStatus = "missing"
)

// Implementation is a community-submitted repository demonstrating a project
// with a given language and libraries. Its Status field is the review state
// machine: pending -> reviewing -> approved/rejected, with reviewing -> pending
// on cancellation. Rejected implementations are kept as audit history.
type Implementation struct {
	ID                      uuid.UUID              `json:"id"`
	ProjectID               uuid.UUID              `json:"projectId"`
	OwnerID                 uuid.UUID              `json:"ownerId"`
	RepositoryURL           string                 `json:"repositoryURL"`
	RepositoryStatus        RepositoryStatus       `json:"repositoryStatus"`
	Category                ImplementationCategory `json:"category"`
	FrontendEnvironment     *FrontendEnvironment   `json:"frontendEnvironment,omitempty"`
	Language                string                 `json:"language"`
	Libraries               []string               `json:"libraries"`
	LibrariesSortKey        string                 `json:"librariesSortKey"`
	Status                  ImplementationStatus   `json:"status"`
	ReviewerID              *uuid.UUID             `json:"-"`
	ReviewStartedOn         *time.Time             `json:"-"`
	NumberOfPendingIssues   *int                   `json:"numberOfPendingIssues,omitempty"`
	GithubData              json.RawMessage        `json:"-"`
	GithubDataFetchedOn     *time.Time             `json:"-"`
	UnmaintainedIssueNumber *int                   `json:"unmaintainedIssueNumber,omitempty"`
	MarkedAsUnmaintainedOn  *time.Time             `json:"markedAsUnmaintainedOn,omitempty"`
	CreatedAt               time.Time              `json:"createdAt"`
	UpdatedAt               time.Time              `json:"-"`
}

// NewImplementation creates a pending implementation owned by its submitter
func NewImplementation(projectID, ownerID uuid.UUID) *Implementation {
	now := time.Now()
	return &Implementation{
		ID:               uuid.New(),
		ProjectID:        projectID,
		OwnerID:          ownerID,
		RepositoryStatus: RepositoryAvailable,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsValidCategory reports whether s is a known implementation category
func IsValidCategory(s string) bool {
	switch ImplementationCategory(s) {
	case CategoryFrontend, CategoryBackend, CategoryFullstack:
		return true
	}
	return false
}

// Validate checks field-level constraints. Libraries are compacted
// (trimmed, empties dropped) before the range check, so the 1-5 entry
// constraint is authoritative on the stored value.
func (i *Implementation) Validate() error {
	i.RepositoryURL = strings.TrimSpace(i.RepositoryURL)
	if len(i.RepositoryURL) > 500 || !strings.HasPrefix(i.RepositoryURL, "https://github.com/") {
		return &ValidationError{Field: "repositoryURL", Message: "The repository URL must start with https://github.com/."}
	}

	if !IsValidCategory(string(i.Category)) {
		return &ValidationError{Field: "category", Message: "Invalid category."}
	}

	if i.FrontendEnvironment != nil {
		switch *i.FrontendEnvironment {
		case EnvironmentWeb, EnvironmentMobile, EnvironmentDesktop:
		default:
			return &ValidationError{Field: "frontendEnvironment", Message: "Invalid frontend environment."}
		}
	}

	i.Language = strings.TrimSpace(i.Language)
	if l := len(i.Language); l < 1 || l > 100 {
		return &ValidationError{Field: "language", Message: "Language must be between 1 and 100 characters."}
	}

	i.Libraries = compactLibraries(i.Libraries)
	if l := len(i.Libraries); l < 1 || l > 5 {
		return &ValidationError{Field: "libraries", Message: "You must specify at least one library or framework."}
	}
	for _, library := range i.Libraries {
		if len(library) > 50 {
			return &ValidationError{Field: "libraries", Message: "Library names must be between 1 and 50 characters."}
		}
	}

	return nil
}

func compactLibraries(libraries []string) []string {
	compacted := make([]string, 0, len(libraries))
	for _, library := range libraries {
		library = strings.TrimSpace(library)
		if library != "" {
			compacted = append(compacted, library)
		}
	}
	return compacted
}

// BeforeSave recomputes derived attributes; called by the repository on
// every create and update.
func (i *Implementation) BeforeSave() {
	if i.Libraries != nil {
		lowered := make([]string, len(i.Libraries))
		for n, library := range i.Libraries {
			lowered[n] = strings.ToLower(library)
		}
		i.LibrariesSortKey = strings.Join(lowered, ",")
	}

	i.UpdatedAt = time.Now()
}

// IsPubliclyListed reports whether the implementation appears in public
// project listings.
func (i *Implementation) IsPubliclyListed() bool {
	return i.Status == StatusApproved && i.RepositoryStatus == RepositoryAvailable
}
