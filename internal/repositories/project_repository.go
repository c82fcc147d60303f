package repositories

import (
	"database/sql"
	"encoding/json"

	"github.com/codebaseshow/codebaseshow/internal/models"
	"github.com/google/uuid"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{
		db: db,
	}
}

const projectColumns = `id, owner_id, slug, name, description, headline, subheading, logo, screenshot,
	website_url, create_url, demo_url, repository_url, categories, status, number_of_implementations,
	created_at, updated_at`

// Create creates a new project
func (r *ProjectRepository) Create(project *models.Project) error {
	project.BeforeSave()

	categories, err := json.Marshal(project.Categories)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		project.ID.String(),
		project.OwnerID.String(),
		project.Slug,
		project.Name,
		project.Description,
		project.Headline,
		project.Subheading,
		nullableJSON(project.Logo),
		nullableJSON(project.Screenshot),
		project.WebsiteURL,
		project.CreateURL,
		project.DemoURL,
		project.RepositoryURL,
		string(categories),
		string(project.Status),
		project.NumberOfImplementations,
		project.CreatedAt,
		project.UpdatedAt,
	)
	return err
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(id string) (*models.Project, error) {
	row := r.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// GetBySlug retrieves a project by its slug
func (r *ProjectRepository) GetBySlug(slug string) (*models.Project, error) {
	row := r.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE slug = ?`, slug)
	return scanProject(row)
}

// GetAll retrieves all projects ordered for the public listing
func (r *ProjectRepository) GetAll() ([]*models.Project, error) {
	rows, err := r.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY number_of_implementations DESC, status ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProjectRows(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// UpdateNumberOfImplementations updates the denormalized implementation count
func (r *ProjectRepository) UpdateNumberOfImplementations(id string, count int) error {
	_, err := r.db.Exec(`UPDATE projects SET number_of_implementations = ? WHERE id = ?`, count, id)
	return err
}

func scanProject(row *sql.Row) (*models.Project, error) {
	var project models.Project
	var projectID, ownerID, categories, status string
	var logo, screenshot sql.NullString

	err := row.Scan(
		&projectID,
		&ownerID,
		&project.Slug,
		&project.Name,
		&project.Description,
		&project.Headline,
		&project.Subheading,
		&logo,
		&screenshot,
		&project.WebsiteURL,
		&project.CreateURL,
		&project.DemoURL,
		&project.RepositoryURL,
		&categories,
		&status,
		&project.NumberOfImplementations,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return buildProject(&project, projectID, ownerID, categories, status, logo, screenshot)
}

func scanProjectRows(rows *sql.Rows) (*models.Project, error) {
	var project models.Project
	var projectID, ownerID, categories, status string
	var logo, screenshot sql.NullString

	err := rows.Scan(
		&projectID,
		&ownerID,
		&project.Slug,
		&project.Name,
		&project.Description,
		&project.Headline,
		&project.Subheading,
		&logo,
		&screenshot,
		&project.WebsiteURL,
		&project.CreateURL,
		&project.DemoURL,
		&project.RepositoryURL,
		&categories,
		&status,
		&project.NumberOfImplementations,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return buildProject(&project, projectID, ownerID, categories, status, logo, screenshot)
}

func buildProject(project *models.Project, projectID, ownerID, categories, status string, logo, screenshot sql.NullString) (*models.Project, error) {
	var err error

	project.ID, err = uuid.Parse(projectID)
	if err != nil {
		return nil, err
	}

	project.OwnerID, err = uuid.Parse(ownerID)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(categories), &project.Categories); err != nil {
		return nil, err
	}

	project.Status = models.ProjectStatus(status)

	if logo.Valid {
		project.Logo = json.RawMessage(logo.String)
	}
	if screenshot.Valid {
		project.Screenshot = json.RawMessage(screenshot.String)
	}

	return project, nil
}
