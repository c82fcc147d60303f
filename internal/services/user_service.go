package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"

	"github.com/codebaseshow/codebaseshow/internal/auth"
	"github.com/codebaseshow/codebaseshow/internal/models"
	"github.com/codebaseshow/codebaseshow/pkg/logger"
)

// UserStore is the persistence boundary for users
type UserStore interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByGithubID(githubID int64) (*models.User, error)
	Update(user *models.User) error
}

// SignInGateway is the slice of the GitHub gateway the sign-in flow needs
type SignInGateway interface {
	ExchangeCodeForToken(ctx context.Context, code string) (string, error)
	FetchUser(ctx context.Context, accessToken string) (*GitHubUser, error)
}

type UserService struct {
	userStore    UserStore
	gateway      SignInGateway
	tokenService *auth.TokenService
}

func NewUserService(userStore UserStore, gateway SignInGateway, tokenService *auth.TokenService) *UserService {
	return &UserService{
		userStore:    userStore,
		gateway:      gateway,
		tokenService: tokenService,
	}
}

// SignIn completes the GitHub OAuth flow: it exchanges the authorization
// code, fetches the GitHub profile, creates or refreshes the matching user
// and returns a session token. The stored copy is only rewritten when the
// cached GitHub data differs.
func (s *UserService) SignIn(ctx context.Context, code string) (string, error) {
	accessToken, err := s.gateway.ExchangeCodeForToken(ctx, code)
	if err != nil {
		return "", err
	}

	githubUser, err := s.gateway.FetchUser(ctx, accessToken)
	if err != nil {
		return "", err
	}

	user, err := s.userStore.GetByGithubID(githubUser.GithubID)
	switch {
	case err == nil:
		if !bytes.Equal(user.GithubData, githubUser.GithubData) {
			user.Username = githubUser.Username
			user.Email = githubUser.Email
			user.Name = githubUser.Name
			user.AvatarURL = githubUser.AvatarURL
			user.GithubData = githubUser.GithubData
			if err := s.userStore.Update(user); err != nil {
				return "", err
			}
		}
	case errors.Is(err, sql.ErrNoRows):
		user = models.NewUser(
			githubUser.GithubID,
			githubUser.Username,
			githubUser.Email,
			githubUser.Name,
			githubUser.AvatarURL,
			githubUser.GithubData,
		)
		if err := s.userStore.Create(user); err != nil {
			return "", err
		}
		logger.Infof("New user signed up: %s", user.Username)
	default:
		return "", err
	}

	return s.tokenService.GenerateSessionToken(user.ID.String())
}

// GetAuthenticatedUser resolves a bearer token to a user. Invalid, expired
// or missing tokens resolve to nil rather than an error.
func (s *UserService) GetAuthenticatedUser(token string) *models.User {
	if token == "" {
		return nil
	}

	userID, ok := s.tokenService.VerifySessionToken(token)
	if !ok {
		return nil
	}

	user, err := s.userStore.GetByID(userID)
	if err != nil {
		return nil
	}
	return user
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	return s.userStore.GetByID(id)
}
