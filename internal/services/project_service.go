package services

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/codebaseshow/codebaseshow/internal/models"
	"github.com/codebaseshow/codebaseshow/pkg/logger"
	"github.com/codebaseshow/codebaseshow/pkg/repourl"
)

// PublicDataFileName is the name of the public JSON snapshot written by the
// daily schedule.
const PublicDataFileName = "data.json"

type ProjectService struct {
	projectStore        ProjectStore
	implementationStore ImplementationStore
	publicPath          string
}

func NewProjectService(projectStore ProjectStore, implementationStore ImplementationStore, publicPath string) *ProjectService {
	return &ProjectService{
		projectStore:        projectStore,
		implementationStore: implementationStore,
		publicPath:          publicPath,
	}
}

// Create registers a new project; admin tooling only
func (s *ProjectService) Create(caller *models.User, project *models.Project) error {
	if caller == nil || !caller.IsAdmin {
		return errForbidden
	}

	if err := project.Validate(); err != nil {
		return err
	}

	project.OwnerID = caller.ID
	return s.projectStore.Create(project)
}

// GetBySlug retrieves a project by its URL slug
func (s *ProjectService) GetBySlug(slug string) (*models.Project, error) {
	return s.projectStore.GetBySlug(slug)
}

// GetAll returns every project, most implemented first
func (s *ProjectService) GetAll() ([]*models.Project, error) {
	return s.projectStore.GetAll()
}

// RefreshAllNumberOfImplementations recounts the publicly listed
// implementations of every project. The counter is denormalized so project
// listings never join against implementations.
func (s *ProjectService) RefreshAllNumberOfImplementations() error {
	projects, err := s.projectStore.GetAll()
	if err != nil {
		return err
	}

	for _, project := range projects {
		count, err := s.implementationStore.CountPubliclyListed(project.ID.String())
		if err != nil {
			logger.WithError(err).Errorf("Failed to count the implementations of the project '%s'", project.Slug)
			continue
		}
		if err := s.projectStore.UpdateNumberOfImplementations(project.ID.String(), count); err != nil {
			logger.WithError(err).Errorf("Failed to update the implementation count of the project '%s'", project.Slug)
		}
	}

	return nil
}

type publicImplementation struct {
	RepositoryURL       string                        `json:"repositoryURL"`
	Category            models.ImplementationCategory `json:"category"`
	FrontendEnvironment *models.FrontendEnvironment   `json:"frontendEnvironment,omitempty"`
	Language            string                        `json:"language"`
	Libraries           []string                      `json:"libraries"`
	NumberOfStars       *int                          `json:"numberOfStars,omitempty"`
}

type publicProject struct {
	Slug                    string                 `json:"slug"`
	Name                    string                 `json:"name"`
	Description             string                 `json:"description"`
	NumberOfImplementations int                    `json:"numberOfImplementations"`
	Implementations         []publicImplementation `json:"implementations"`
}

type publicDataSnapshot struct {
	GeneratedOn time.Time       `json:"generatedOn"`
	Projects    []publicProject `json:"projects"`
}

// BackupPublicData writes a JSON snapshot of every publicly listed
// implementation, grouped by project, for consumption outside the API.
// Only available projects are included; a coming-soon project must not be
// published before launch. Star counts are only included for
// implementations whose URL points at a repository root, since they would
// otherwise count the whole monorepo.
func (s *ProjectService) BackupPublicData() error {
	projects, err := s.projectStore.GetAll()
	if err != nil {
		return err
	}

	snapshot := publicDataSnapshot{
		GeneratedOn: time.Now().UTC(),
		Projects:    make([]publicProject, 0, len(projects)),
	}

	for _, project := range projects {
		if project.Status != models.ProjectStatusAvailable {
			continue
		}

		implementations, err := s.implementationStore.FindPubliclyListed(project.ID.String(), "")
		if err != nil {
			return err
		}

		entry := publicProject{
			Slug:                    project.Slug,
			Name:                    project.Name,
			Description:             project.Description,
			NumberOfImplementations: len(implementations),
			Implementations:         make([]publicImplementation, 0, len(implementations)),
		}

		for _, impl := range implementations {
			entry.Implementations = append(entry.Implementations, publicImplementation{
				RepositoryURL:       impl.RepositoryURL,
				Category:            impl.Category,
				FrontendEnvironment: impl.FrontendEnvironment,
				Language:            impl.Language,
				Libraries:           impl.Libraries,
				NumberOfStars:       implementationStars(impl),
			})
		}

		snapshot.Projects = append(snapshot.Projects, entry)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.publicPath, 0o755); err != nil {
		return err
	}

	target := filepath.Join(s.publicPath, PublicDataFileName)
	temp := target + ".tmp"
	if err := os.WriteFile(temp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(temp, target); err != nil {
		return err
	}

	logger.Infof("Public data snapshot written to %s", target)
	return nil
}

// PublicData returns the current public snapshot, generating it on first
// request when the daily schedule has not produced one yet.
func (s *ProjectService) PublicData() ([]byte, error) {
	target := filepath.Join(s.publicPath, PublicDataFileName)

	data, err := os.ReadFile(target)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.BackupPublicData(); err != nil {
			return nil, err
		}
		return os.ReadFile(target)
	}
	return data, err
}

// implementationStars extracts the cached star count, but only for URLs that
// point at a repository root.
func implementationStars(impl *models.Implementation) *int {
	location, err := repourl.Parse(impl.RepositoryURL)
	if err != nil || !location.IsRoot {
		return nil
	}

	if len(impl.GithubData) == 0 {
		return nil
	}

	var repository struct {
		StargazersCount int `json:"stargazers_count"`
	}
	if err := json.Unmarshal(impl.GithubData, &repository); err != nil {
		return nil
	}

	return &repository.StargazersCount
}
