package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is an identity bound 1:1 to a GitHub account. It is created on first
// sign-in and refreshed whenever the cached GitHub profile data differs.
type User struct {
	ID         uuid.UUID       `json:"id"`
	GithubID   int64           `json:"githubId"`
	Username   string          `json:"username"`
	Email      string          `json:"-"`
	Name       string          `json:"-"`
	AvatarURL  string          `json:"avatarURL"`
	IsAdmin    bool            `json:"isAdmin"`
	GithubData json.RawMessage `json:"-"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"-"`
}

// BeforeSave maintains the entity-wide timestamps; called by the repository
// on every update.
func (u *User) BeforeSave() {
	u.UpdatedAt = time.Now()
}

// NewUser creates a user with a generated ID
func NewUser(githubID int64, username, email, name, avatarURL string, githubData json.RawMessage) *User {
	now := time.Now()
	return &User{
		ID:         uuid.New(),
		GithubID:   githubID,
		Username:   username,
		Email:      email,
		Name:       name,
		AvatarURL:  avatarURL,
		GithubData: githubData,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
