package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusAvailable  ProjectStatus = "available"
	ProjectStatusComingSoon ProjectStatus = "coming-soon"
)

// Project is a showcase category (e.g. "RealWorld"). Projects are created by
// admin tooling only and are read-heavy.
type Project struct {
	ID                      uuid.UUID       `json:"id"`
	OwnerID                 uuid.UUID       `json:"-"`
	Slug                    string          `json:"slug"`
	Name                    string          `json:"name"`
	Description             string          `json:"description"`
	Headline                string          `json:"headline"`
	Subheading              string          `json:"subheading"`
	Logo                    json.RawMessage `json:"logo"`
	Screenshot              json.RawMessage `json:"screenshot"`
	WebsiteURL              string          `json:"websiteURL"`
	CreateURL               string          `json:"createURL"`
	DemoURL                 string          `json:"demoURL"`
	RepositoryURL           string          `json:"repositoryURL"`
	Categories              []string        `json:"categories"`
	Status                  ProjectStatus   `json:"status"`
	NumberOfImplementations int             `json:"numberOfImplementations"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"-"`
}

// Validate checks field-level constraints
func (p *Project) Validate() error {
	if l := len(p.Slug); l < 1 || l > 64 {
		return &ValidationError{Field: "slug", Message: "Slug must be between 1 and 64 characters."}
	}
	if l := len(p.Name); l < 1 || l > 64 {
		return &ValidationError{Field: "name", Message: "Name must be between 1 and 64 characters."}
	}
	if p.Status != ProjectStatusAvailable && p.Status != ProjectStatusComingSoon {
		return &ValidationError{Field: "status", Message: "Invalid project status."}
	}
	for _, category := range p.Categories {
		if !IsValidCategory(category) {
			return &ValidationError{Field: "categories", Message: "Invalid category: " + category}
		}
	}
	return nil
}

// BeforeSave maintains the entity-wide timestamps
func (p *Project) BeforeSave() {
	p.UpdatedAt = time.Now()
}
