package repositories

import (
	"database/sql"
	"encoding/json"

	"github.com/codebaseshow/codebaseshow/internal/models"
	"github.com/google/uuid"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, github_id, username, email, name, avatar_url, is_admin, github_data, created_at, updated_at`

// Create creates a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		user.ID.String(),
		user.GithubID,
		user.Username,
		user.Email,
		user.Name,
		user.AvatarURL,
		user.IsAdmin,
		nullableJSON(user.GithubData),
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetByGithubID retrieves a user by GitHub account ID
func (r *UserRepository) GetByGithubID(githubID int64) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE github_id = ?`, githubID)
	return scanUser(row)
}

// Update updates a user
func (r *UserRepository) Update(user *models.User) error {
	user.BeforeSave()

	query := `
		UPDATE users
		SET username = ?, email = ?, name = ?, avatar_url = ?, is_admin = ?, github_data = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		user.Username,
		user.Email,
		user.Name,
		user.AvatarURL,
		user.IsAdmin,
		nullableJSON(user.GithubData),
		user.UpdatedAt,
		user.ID.String(),
	)
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var userID string
	var githubData sql.NullString

	err := row.Scan(
		&userID,
		&user.GithubID,
		&user.Username,
		&user.Email,
		&user.Name,
		&user.AvatarURL,
		&user.IsAdmin,
		&githubData,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID, err = uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	if githubData.Valid {
		user.GithubData = json.RawMessage(githubData.String)
	}

	return &user, nil
}

func nullableJSON(data json.RawMessage) interface{} {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
