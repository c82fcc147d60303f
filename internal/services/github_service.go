package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/codebaseshow/codebaseshow/internal/models"
	"github.com/codebaseshow/codebaseshow/pkg/config"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"
)

// PendingIssueMinimumAge is how old an open issue must be before it counts
// as pending in CountPendingIssues.
const PendingIssueMinimumAge = 10 * 24 * time.Hour

// GitHubGateway is the boundary to the GitHub REST API. The lifecycle
// service depends on this interface; tests substitute a fake.
type GitHubGateway interface {
	FetchUser(ctx context.Context, accessToken string) (*GitHubUser, error)
	FetchRepository(ctx context.Context, owner, name string) (*GitHubRepository, error)
	FetchIssue(ctx context.Context, owner, name string, number int) (*GitHubIssue, error)
	CountPendingIssues(ctx context.Context, owner, name string) (int, error)
	FindRepositoryContributor(ctx context.Context, owner, name string, userID int64) (*GitHubContributor, error)
}

type GitHubUser struct {
	GithubID   int64
	Username   string
	Email      string
	Name       string
	AvatarURL  string
	GithubData json.RawMessage
}

type GitHubRepository struct {
	OwnerID       int64
	NumberOfStars int
	IsArchived    bool
	HasIssues     bool
	GithubData    json.RawMessage
}

type GitHubIssue struct {
	Number    int
	Title     string
	IsClosed  bool
	URL       string
	CreatedAt time.Time
}

type GitHubContributor struct {
	GithubData json.RawMessage
}

type GitHubService struct {
	oauthConfig         *oauth2.Config
	personalAccessToken string

	// baseURL overrides the GitHub API endpoint in tests
	baseURL string
}

func NewGitHubService() *GitHubService {
	oauthConfig := &oauth2.Config{
		ClientID:     config.AppConfig.GitHub.ClientID,
		ClientSecret: config.AppConfig.GitHub.ClientSecret,
		RedirectURL:  config.AppConfig.GitHub.CallbackURL,
		Scopes: []string{
			"user:email", // Access to the user's verified email addresses
			"read:user",  // Read access to user profile data
		},
		Endpoint: oauthgithub.Endpoint,
	}

	return &GitHubService{
		oauthConfig:         oauthConfig,
		personalAccessToken: config.AppConfig.GitHub.PersonalAccessToken,
	}
}

// GetAuthURL returns the GitHub OAuth authorization URL
func (s *GitHubService) GetAuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state)
}

// ExchangeCodeForToken exchanges an authorization code for an access token
func (s *GitHubService) ExchangeCodeForToken(ctx context.Context, code string) (string, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", models.NewError(
			models.ErrCodeOAuthExchangeFailed,
			fmt.Sprintf("failed to exchange code for token: %v", err),
			"Sorry, we could not sign you in with GitHub. Please try again.",
		)
	}
	return token.AccessToken, nil
}

// client creates a GitHub client authenticated with the given token, falling
// back to the configured personal access token.
func (s *GitHubService) client(ctx context.Context, accessToken string) *github.Client {
	if accessToken == "" {
		accessToken = s.personalAccessToken
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = 10 * time.Second

	client := github.NewClient(tc)
	if s.baseURL != "" {
		if u, err := url.Parse(s.baseURL); err == nil {
			client.BaseURL = u
		}
	}
	return client
}

// FetchUser fetches the authenticated user's profile and verified email
// addresses. The profile and emails endpoints are fetched concurrently.
func (s *GitHubService) FetchUser(ctx context.Context, accessToken string) (*GitHubUser, error) {
	client := s.client(ctx, accessToken)

	var (
		wg        sync.WaitGroup
		user      *github.User
		emails    []*github.UserEmail
		userErr   error
		emailsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		user, _, userErr = client.Users.Get(ctx, "")
	}()
	go func() {
		defer wg.Done()
		emails, _, emailsErr = client.Users.ListEmails(ctx, &github.ListOptions{PerPage: 100})
	}()
	wg.Wait()

	if userErr != nil {
		return nil, wrapGitHubError(userErr, "failed to fetch user profile")
	}
	if emailsErr != nil {
		return nil, wrapGitHubError(emailsErr, "failed to fetch user emails")
	}

	var email string
	for _, entry := range emails {
		if entry.GetPrimary() && entry.GetVerified() {
			email = entry.GetEmail()
			break
		}
	}

	if email == "" {
		return nil, models.NewError(
			models.ErrCodePrimaryEmailNotFound,
			"primary email not found",
			"Couldn't get your email address from GitHub. Please make sure you have a verified primary address in your GitHub account.",
		)
	}

	githubData, err := json.Marshal(map[string]interface{}{"user": user, "emails": emails})
	if err != nil {
		return nil, err
	}

	return &GitHubUser{
		GithubID:   user.GetID(),
		Username:   user.GetLogin(),
		Email:      email,
		Name:       user.GetName(),
		AvatarURL:  user.GetAvatarURL(),
		GithubData: githubData,
	}, nil
}

// FetchRepository fetches repository metadata. A 404 maps to a
// RepositoryNotFound error code so callers can tell a deleted repository
// apart from a transient API failure.
func (s *GitHubService) FetchRepository(ctx context.Context, owner, name string) (*GitHubRepository, error) {
	client := s.client(ctx, "")

	repository, resp, err := client.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, models.NewError(
				models.ErrCodeRepositoryNotFound,
				fmt.Sprintf("repository %s/%s not found", owner, name),
				"The specified repository doesn't exist.",
			)
		}
		return nil, wrapGitHubError(err, fmt.Sprintf("failed to fetch repository %s/%s", owner, name))
	}

	githubData, err := json.Marshal(repository)
	if err != nil {
		return nil, err
	}

	return &GitHubRepository{
		OwnerID:       repository.GetOwner().GetID(),
		NumberOfStars: repository.GetStargazersCount(),
		IsArchived:    repository.GetArchived(),
		HasIssues:     repository.GetHasIssues(),
		GithubData:    githubData,
	}, nil
}

// FetchIssue fetches a single issue by number
func (s *GitHubService) FetchIssue(ctx context.Context, owner, name string, number int) (*GitHubIssue, error) {
	client := s.client(ctx, "")

	issue, resp, err := client.Issues.Get(ctx, owner, name, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, models.NewError(
				models.ErrCodeIssueNotFound,
				fmt.Sprintf("issue %s/%s#%d not found", owner, name, number),
				"The specified issue doesn't exist.",
			)
		}
		return nil, wrapGitHubError(err, fmt.Sprintf("failed to fetch issue %s/%s#%d", owner, name, number))
	}

	return &GitHubIssue{
		Number:    number,
		Title:     issue.GetTitle(),
		IsClosed:  issue.GetState() == "closed",
		URL:       issue.GetHTMLURL(),
		CreatedAt: issue.GetCreatedAt().Time,
	}, nil
}

// CountPendingIssues counts open issues opened by a human account more than
// PendingIssueMinimumAge ago. It scans at most 3 pages of 100 issues.
func (s *GitHubService) CountPendingIssues(ctx context.Context, owner, name string) (int, error) {
	client := s.client(ctx, "")

	count := 0
	for page := 1; page <= 3; page++ {
		issues, _, err := client.Issues.ListByRepo(ctx, owner, name, &github.IssueListByRepoOptions{
			State:       "open",
			ListOptions: github.ListOptions{PerPage: 100, Page: page},
		})
		if err != nil {
			return 0, wrapGitHubError(err, fmt.Sprintf("failed to list issues of %s/%s", owner, name))
		}

		for _, issue := range issues {
			if issue.GetUser().GetType() == "User" && time.Since(issue.GetCreatedAt().Time) >= PendingIssueMinimumAge {
				count++
			}
		}

		if len(issues) != 100 {
			break
		}
	}

	return count, nil
}

// FindRepositoryContributor scans the first 100 contributors of a repository
// for the given GitHub user ID. It returns nil when the user is not among
// them, and fails with TooManyContributors when the page is full, since
// absence cannot be determined reliably beyond that cap. A true contributor
// past position 100 is rejected; known limitation.
func (s *GitHubService) FindRepositoryContributor(ctx context.Context, owner, name string, userID int64) (*GitHubContributor, error) {
	client := s.client(ctx, "")

	contributors, _, err := client.Repositories.ListContributors(ctx, owner, name, &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, wrapGitHubError(err, fmt.Sprintf("failed to list contributors of %s/%s", owner, name))
	}

	for _, contributor := range contributors {
		if contributor.GetID() == userID {
			githubData, err := json.Marshal(contributor)
			if err != nil {
				return nil, err
			}
			return &GitHubContributor{GithubData: githubData}, nil
		}
	}

	if len(contributors) == 100 {
		return nil, models.NewError(
			models.ErrCodeTooManyContributors,
			"cannot fetch more than 100 contributors",
			"The specified repository has a lot of contributors and we are currently unable to fetch them all.",
		)
	}

	return nil, nil
}

// wrapGitHubError surfaces the HTTP status and response body of a failed
// GitHub API call for diagnostics.
func wrapGitHubError(err error, message string) error {
	var errorResponse *github.ErrorResponse
	if errors.As(err, &errorResponse) && errorResponse.Response != nil {
		return models.NewError(
			models.ErrCodeGitHubAPI,
			fmt.Sprintf("%s (HTTP status: %d, result: %s)", message, errorResponse.Response.StatusCode, errorResponse.Message),
			"An error occurred while contacting GitHub. Please try again later.",
		)
	}
	return models.NewError(
		models.ErrCodeGitHubAPI,
		fmt.Sprintf("%s: %v", message, err),
		"An error occurred while contacting GitHub. Please try again later.",
	)
}
