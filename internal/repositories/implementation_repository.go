package repositories

import (
	"database/sql"
	"encoding/json"

	"github.com/codebaseshow/codebaseshow/internal/models"
	"github.com/google/uuid"
)

type ImplementationRepository struct {
	db *sql.DB
}

func NewImplementationRepository(db *sql.DB) *ImplementationRepository {
	return &ImplementationRepository{
		db: db,
	}
}

const implementationColumns = `id, project_id, owner_id, repository_url, repository_status, category,
	frontend_environment, language, libraries, libraries_sort_key, status, reviewer_id, review_started_on,
	number_of_pending_issues, github_data, github_data_fetched_on, unmaintained_issue_number,
	marked_as_unmaintained_on, created_at, updated_at`

// Create persists a new implementation
func (r *ImplementationRepository) Create(impl *models.Implementation) error {
	impl.BeforeSave()

	libraries, err := json.Marshal(impl.Libraries)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO implementations (` + implementationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		impl.ID.String(),
		impl.ProjectID.String(),
		impl.OwnerID.String(),
		impl.RepositoryURL,
		string(impl.RepositoryStatus),
		string(impl.Category),
		nullableEnvironment(impl.FrontendEnvironment),
		impl.Language,
		string(libraries),
		impl.LibrariesSortKey,
		string(impl.Status),
		nullableUUID(impl.ReviewerID),
		impl.ReviewStartedOn,
		impl.NumberOfPendingIssues,
		nullableJSON(impl.GithubData),
		impl.GithubDataFetchedOn,
		impl.UnmaintainedIssueNumber,
		impl.MarkedAsUnmaintainedOn,
		impl.CreatedAt,
		impl.UpdatedAt,
	)
	return err
}

// Update persists all mutable fields of an implementation
func (r *ImplementationRepository) Update(impl *models.Implementation) error {
	impl.BeforeSave()

	libraries, err := json.Marshal(impl.Libraries)
	if err != nil {
		return err
	}

	query := `
		UPDATE implementations
		SET project_id = ?, owner_id = ?, repository_url = ?, repository_status = ?, category = ?,
			frontend_environment = ?, language = ?, libraries = ?, libraries_sort_key = ?, status = ?,
			reviewer_id = ?, review_started_on = ?, number_of_pending_issues = ?, github_data = ?,
			github_data_fetched_on = ?, unmaintained_issue_number = ?, marked_as_unmaintained_on = ?,
			updated_at = ?
		WHERE id = ?
	`

	_, err = r.db.Exec(query,
		impl.ProjectID.String(),
		impl.OwnerID.String(),
		impl.RepositoryURL,
		string(impl.RepositoryStatus),
		string(impl.Category),
		nullableEnvironment(impl.FrontendEnvironment),
		impl.Language,
		string(libraries),
		impl.LibrariesSortKey,
		string(impl.Status),
		nullableUUID(impl.ReviewerID),
		impl.ReviewStartedOn,
		impl.NumberOfPendingIssues,
		nullableJSON(impl.GithubData),
		impl.GithubDataFetchedOn,
		impl.UnmaintainedIssueNumber,
		impl.MarkedAsUnmaintainedOn,
		impl.UpdatedAt,
		impl.ID.String(),
	)
	return err
}

// GetByID retrieves an implementation by ID
func (r *ImplementationRepository) GetByID(id string) (*models.Implementation, error) {
	rows, err := r.db.Query(`SELECT `+implementationColumns+` FROM implementations WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	return scanImplementation(rows)
}

// Delete removes an implementation
func (r *ImplementationRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM implementations WHERE id = ?`, id)
	return err
}

// Count returns the total number of implementations
func (r *ImplementationRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM implementations`).Scan(&count)
	return count, err
}

// FindPubliclyListed returns approved implementations with an available
// repository for a project, ordered the way the project page lists them.
// category is optional.
func (r *ImplementationRepository) FindPubliclyListed(projectID, category string) ([]*models.Implementation, error) {
	query := `
		SELECT ` + implementationColumns + ` FROM implementations
		WHERE project_id = ? AND status = 'approved' AND repository_status = 'available'
	`
	args := []interface{}{projectID}

	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}

	query += ` ORDER BY category ASC, libraries_sort_key ASC, language ASC`

	return r.queryImplementations(query, args...)
}

// CountPubliclyListed counts approved implementations with an available repository for a project
func (r *ImplementationRepository) CountPubliclyListed(projectID string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM implementations
		WHERE project_id = ? AND status = 'approved' AND repository_status = 'available'
	`, projectID).Scan(&count)
	return count, err
}

// FindSubmissions returns pending and reviewing implementations for the admin review queue
func (r *ImplementationRepository) FindSubmissions() ([]*models.Implementation, error) {
	return r.queryImplementations(`
		SELECT ` + implementationColumns + ` FROM implementations
		WHERE status IN ('pending', 'reviewing')
		ORDER BY created_at ASC
	`)
}

// FindByOwner returns all implementations owned by a user, newest first
func (r *ImplementationRepository) FindByOwner(ownerID string) ([]*models.Implementation, error) {
	return r.queryImplementations(`
		SELECT `+implementationColumns+` FROM implementations
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`, ownerID)
}

// FindWithUnmaintainedIssue returns implementations with a tracked unmaintained issue
func (r *ImplementationRepository) FindWithUnmaintainedIssue() ([]*models.Implementation, error) {
	return r.queryImplementations(`
		SELECT ` + implementationColumns + ` FROM implementations
		WHERE unmaintained_issue_number IS NOT NULL
	`)
}

// FindOldestFetched returns up to limit implementations ordered by the age of
// their cached GitHub data, never-fetched entries first.
func (r *ImplementationRepository) FindOldestFetched(limit int) ([]*models.Implementation, error) {
	return r.queryImplementations(`
		SELECT `+implementationColumns+` FROM implementations
		ORDER BY github_data_fetched_on ASC
		LIMIT ?
	`, limit)
}

// GetAllLibraries returns the distinct library names used across all implementations
func (r *ImplementationRepository) GetAllLibraries() ([]string, error) {
	rows, err := r.db.Query(`SELECT libraries FROM implementations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	libraries := []string{}

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}

		var entry []string
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, err
		}

		for _, library := range entry {
			if !seen[library] {
				seen[library] = true
				libraries = append(libraries, library)
			}
		}
	}

	return libraries, rows.Err()
}

func (r *ImplementationRepository) queryImplementations(query string, args ...interface{}) ([]*models.Implementation, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var implementations []*models.Implementation
	for rows.Next() {
		impl, err := scanImplementation(rows)
		if err != nil {
			return nil, err
		}
		implementations = append(implementations, impl)
	}
	return implementations, rows.Err()
}

func scanImplementation(rows *sql.Rows) (*models.Implementation, error) {
	var impl models.Implementation
	var implID, projectID, ownerID, repositoryStatus, category, status, libraries string
	var frontendEnvironment, reviewerID, githubData sql.NullString
	var reviewStartedOn, githubDataFetchedOn, markedAsUnmaintainedOn sql.NullTime
	var numberOfPendingIssues, unmaintainedIssueNumber sql.NullInt64

	err := rows.Scan(
		&implID,
		&projectID,
		&ownerID,
		&impl.RepositoryURL,
		&repositoryStatus,
		&category,
		&frontendEnvironment,
		&impl.Language,
		&libraries,
		&impl.LibrariesSortKey,
		&status,
		&reviewerID,
		&reviewStartedOn,
		&numberOfPendingIssues,
		&githubData,
		&githubDataFetchedOn,
		&unmaintainedIssueNumber,
		&markedAsUnmaintainedOn,
		&impl.CreatedAt,
		&impl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if impl.ID, err = uuid.Parse(implID); err != nil {
		return nil, err
	}
	if impl.ProjectID, err = uuid.Parse(projectID); err != nil {
		return nil, err
	}
	if impl.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, err
	}

	impl.RepositoryStatus = models.RepositoryStatus(repositoryStatus)
	impl.Category = models.ImplementationCategory(category)
	impl.Status = models.ImplementationStatus(status)

	if frontendEnvironment.Valid {
		env := models.FrontendEnvironment(frontendEnvironment.String)
		impl.FrontendEnvironment = &env
	}

	if err := json.Unmarshal([]byte(libraries), &impl.Libraries); err != nil {
		return nil, err
	}

	if reviewerID.Valid {
		parsed, err := uuid.Parse(reviewerID.String)
		if err != nil {
			return nil, err
		}
		impl.ReviewerID = &parsed
	}

	if reviewStartedOn.Valid {
		impl.ReviewStartedOn = &reviewStartedOn.Time
	}
	if githubDataFetchedOn.Valid {
		impl.GithubDataFetchedOn = &githubDataFetchedOn.Time
	}
	if markedAsUnmaintainedOn.Valid {
		impl.MarkedAsUnmaintainedOn = &markedAsUnmaintainedOn.Time
	}

	if numberOfPendingIssues.Valid {
		count := int(numberOfPendingIssues.Int64)
		impl.NumberOfPendingIssues = &count
	}
	if unmaintainedIssueNumber.Valid {
		number := int(unmaintainedIssueNumber.Int64)
		impl.UnmaintainedIssueNumber = &number
	}

	if githubData.Valid {
		impl.GithubData = json.RawMessage(githubData.String)
	}

	return &impl, nil
}

func nullableUUID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

func nullableEnvironment(env *models.FrontendEnvironment) interface{} {
	if env == nil {
		return nil
	}
	return string(*env)
}
