package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebaseshow/codebaseshow/internal/auth"
	"github.com/codebaseshow/codebaseshow/internal/models"
)

type fakeImplementationStore struct {
	implementations     map[string]*models.Implementation
	updates             int
	oldestFetchedLimits []int
}

func newFakeImplementationStore() *fakeImplementationStore {
	return &fakeImplementationStore{implementations: make(map[string]*models.Implementation)}
}

func (s *fakeImplementationStore) Create(impl *models.Implementation) error {
	impl.BeforeSave()
	s.implementations[impl.ID.String()] = impl
	return nil
}

func (s *fakeImplementationStore) Update(impl *models.Implementation) error {
	impl.BeforeSave()
	s.implementations[impl.ID.String()] = impl
	s.updates++
	return nil
}

func (s *fakeImplementationStore) GetByID(id string) (*models.Implementation, error) {
	impl, ok := s.implementations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return impl, nil
}

func (s *fakeImplementationStore) Delete(id string) error {
	delete(s.implementations, id)
	return nil
}

func (s *fakeImplementationStore) Count() (int, error) {
	return len(s.implementations), nil
}

func (s *fakeImplementationStore) FindPubliclyListed(projectID, category string) ([]*models.Implementation, error) {
	var result []*models.Implementation
	for _, impl := range s.implementations {
		if impl.ProjectID.String() != projectID || !impl.IsPubliclyListed() {
			continue
		}
		if category != "" && string(impl.Category) != category {
			continue
		}
		result = append(result, impl)
	}
	return result, nil
}

func (s *fakeImplementationStore) CountPubliclyListed(projectID string) (int, error) {
	listed, err := s.FindPubliclyListed(projectID, "")
	return len(listed), err
}

func (s *fakeImplementationStore) FindSubmissions() ([]*models.Implementation, error) {
	return nil, nil
}

func (s *fakeImplementationStore) FindByOwner(ownerID string) ([]*models.Implementation, error) {
	return nil, nil
}

func (s *fakeImplementationStore) FindWithUnmaintainedIssue() ([]*models.Implementation, error) {
	var result []*models.Implementation
	for _, impl := range s.implementations {
		if impl.UnmaintainedIssueNumber != nil && impl.MarkedAsUnmaintainedOn == nil {
			result = append(result, impl)
		}
	}
	return result, nil
}

func (s *fakeImplementationStore) FindOldestFetched(limit int) ([]*models.Implementation, error) {
	s.oldestFetchedLimits = append(s.oldestFetchedLimits, limit)

	var result []*models.Implementation
	for _, impl := range s.implementations {
		if len(result) == limit {
			break
		}
		result = append(result, impl)
	}
	return result, nil
}

func (s *fakeImplementationStore) GetAllLibraries() ([]string, error) {
	return nil, nil
}

type fakeProjectStore struct {
	projects map[string]*models.Project
}

func (s *fakeProjectStore) Create(project *models.Project) error {
	s.projects[project.ID.String()] = project
	return nil
}

func (s *fakeProjectStore) GetByID(id string) (*models.Project, error) {
	project, ok := s.projects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return project, nil
}

func (s *fakeProjectStore) GetBySlug(slug string) (*models.Project, error) {
	for _, project := range s.projects {
		if project.Slug == slug {
			return project, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeProjectStore) GetAll() ([]*models.Project, error) {
	var result []*models.Project
	for _, project := range s.projects {
		result = append(result, project)
	}
	return result, nil
}

func (s *fakeProjectStore) UpdateNumberOfImplementations(id string, count int) error {
	if project, ok := s.projects[id]; ok {
		project.NumberOfImplementations = count
	}
	return nil
}

type fakeUserStore struct {
	users map[string]*models.User
}

func (s *fakeUserStore) Create(user *models.User) error {
	s.users[user.ID.String()] = user
	return nil
}

func (s *fakeUserStore) GetByID(id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *fakeUserStore) GetByGithubID(githubID int64) (*models.User, error) {
	for _, user := range s.users {
		if user.GithubID == githubID {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeUserStore) Update(user *models.User) error {
	s.users[user.ID.String()] = user
	return nil
}

type fakeGateway struct {
	repository     *GitHubRepository
	repositoryErr  error
	issue          *GitHubIssue
	issueErr       error
	contributor    *GitHubContributor
	contributorErr error
	pendingIssues  int
}

func (g *fakeGateway) FetchUser(ctx context.Context, accessToken string) (*GitHubUser, error) {
	return nil, nil
}

func (g *fakeGateway) FetchRepository(ctx context.Context, owner, name string) (*GitHubRepository, error) {
	if g.repositoryErr != nil {
		return nil, g.repositoryErr
	}
	return g.repository, nil
}

func (g *fakeGateway) FetchIssue(ctx context.Context, owner, name string, number int) (*GitHubIssue, error) {
	if g.issueErr != nil {
		return nil, g.issueErr
	}
	return g.issue, nil
}

func (g *fakeGateway) CountPendingIssues(ctx context.Context, owner, name string) (int, error) {
	return g.pendingIssues, nil
}

func (g *fakeGateway) FindRepositoryContributor(ctx context.Context, owner, name string, userID int64) (*GitHubContributor, error) {
	if g.contributorErr != nil {
		return nil, g.contributorErr
	}
	return g.contributor, nil
}

type fakeMailer struct {
	sent []EmailMessage
}

func (m *fakeMailer) Send(message EmailMessage) error {
	m.sent = append(m.sent, message)
	return nil
}

type serviceFixture struct {
	service  *ImplementationService
	impls    *fakeImplementationStore
	projects *fakeProjectStore
	users    *fakeUserStore
	gateway  *fakeGateway
	mailer   *fakeMailer
	tokens   *auth.TokenService

	project *models.Project
	admin   *models.User
	member  *models.User
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)

	admin := models.NewUser(1001, "alice", "alice@example.com", "Alice", "", nil)
	admin.IsAdmin = true
	member := models.NewUser(2002, "bob", "bob@example.com", "Bob", "", nil)

	project := &models.Project{
		ID:     uuid.New(),
		Slug:   "todomvc",
		Name:   "TodoMVC",
		Status: models.ProjectStatusAvailable,
	}

	fixture := &serviceFixture{
		impls:    newFakeImplementationStore(),
		projects: &fakeProjectStore{projects: map[string]*models.Project{project.ID.String(): project}},
		users:    &fakeUserStore{users: map[string]*models.User{admin.ID.String(): admin, member.ID.String(): member}},
		gateway:  &fakeGateway{},
		mailer:   &fakeMailer{},
		tokens:   tokens,
		project:  project,
		admin:    admin,
		member:   member,
	}
	fixture.service = NewImplementationService(
		fixture.impls,
		fixture.projects,
		fixture.users,
		fixture.gateway,
		NewEmailService(fixture.mailer),
		tokens,
		"https://codebase.show/",
	)
	return fixture
}

func (f *serviceFixture) newImplementation(owner *models.User) *models.Implementation {
	impl := models.NewImplementation(f.project.ID, owner.ID)
	impl.RepositoryURL = "https://github.com/bob/todomvc-react"
	impl.Category = models.CategoryFrontend
	impl.Language = "JavaScript"
	impl.Libraries = []string{"React"}
	return impl
}

func availableRepository(ownerID int64) *GitHubRepository {
	return &GitHubRepository{
		OwnerID:       ownerID,
		NumberOfStars: 42,
		IsArchived:    false,
		HasIssues:     true,
		GithubData:    []byte(`{"stargazers_count":42}`),
	}
}

func TestSubmit(t *testing.T) {
	t.Run("Repository owner can submit", func(t *testing.T) {
		f := newServiceFixture(t)
		f.gateway.repository = availableRepository(f.member.GithubID)

		impl := f.newImplementation(f.member)
		require.NoError(t, f.service.Submit(context.Background(), f.member, impl))

		saved, err := f.impls.GetByID(impl.ID.String())
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, saved.Status)
		assert.NotNil(t, saved.GithubDataFetchedOn)
		assert.NotEmpty(t, saved.GithubData)

		require.Len(t, f.mailer.sent, 1)
		assert.Contains(t, f.mailer.sent[0].Subject, "A new TodoMVC implementation has been submitted")
		assert.Contains(t, f.mailer.sent[0].Text, "/implementations/"+impl.ID.String()+"/review")
	})

	t.Run("Contributor can submit", func(t *testing.T) {
		f := newServiceFixture(t)
		f.gateway.repository = availableRepository(9999)
		f.gateway.contributor = &GitHubContributor{GithubData: []byte(`{}`)}

		require.NoError(t, f.service.Submit(context.Background(), f.member, f.newImplementation(f.member)))
	})

	t.Run("Non-contributor is rejected without persisting", func(t *testing.T) {
		f := newServiceFixture(t)
		f.gateway.repository = availableRepository(9999)
		f.gateway.contributor = nil

		impl := f.newImplementation(f.member)
		err := f.service.Submit(context.Background(), f.member, impl)
		assert.True(t, models.IsCode(err, models.ErrCodeNotAContributor))
		assert.Empty(t, f.impls.implementations)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("Archived repository is rejected without persisting", func(t *testing.T) {
		f := newServiceFixture(t)
		repo := availableRepository(f.member.GithubID)
		repo.IsArchived = true
		f.gateway.repository = repo

		err := f.service.Submit(context.Background(), f.member, f.newImplementation(f.member))
		assert.True(t, models.IsCode(err, models.ErrCodeRepositoryArchived))
		assert.Empty(t, f.impls.implementations)
	})

	t.Run("Repository with issues disabled is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		repo := availableRepository(f.member.GithubID)
		repo.HasIssues = false
		f.gateway.repository = repo

		err := f.service.Submit(context.Background(), f.member, f.newImplementation(f.member))
		assert.True(t, models.IsCode(err, models.ErrCodeIssuesDisabled))
	})

	t.Run("Admin skips the contributor check", func(t *testing.T) {
		f := newServiceFixture(t)
		f.gateway.repository = availableRepository(9999)
		f.gateway.contributor = nil

		require.NoError(t, f.service.Submit(context.Background(), f.admin, f.newImplementation(f.admin)))
	})

	t.Run("Anonymous caller is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		err := f.service.Submit(context.Background(), nil, f.newImplementation(f.member))
		assert.True(t, models.IsCode(err, models.ErrCodeForbidden))
	})
}

func TestAdd(t *testing.T) {
	t.Run("Admin addition is approved immediately", func(t *testing.T) {
		f := newServiceFixture(t)
		f.gateway.repository = availableRepository(9999)

		impl := f.newImplementation(f.admin)
		require.NoError(t, f.service.Add(context.Background(), f.admin, impl))
		assert.Equal(t, models.StatusApproved, impl.Status)
	})

	t.Run("Non-admin cannot add", func(t *testing.T) {
		f := newServiceFixture(t)
		err := f.service.Add(context.Background(), f.member, f.newImplementation(f.member))
		assert.True(t, models.IsCode(err, models.ErrCodeForbidden))
	})
}

func TestReviewSubmission(t *testing.T) {
	submit := func(t *testing.T, f *serviceFixture) *models.Implementation {
		t.Helper()
		f.gateway.repository = availableRepository(f.member.GithubID)
		impl := f.newImplementation(f.member)
		require.NoError(t, f.service.Submit(context.Background(), f.member, impl))
		return impl
	}

	t.Run("Admin claims a pending submission", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := submit(t, f)

		require.NoError(t, f.service.ReviewSubmission(f.admin, impl.ID.String()))
		assert.Equal(t, models.StatusReviewing, impl.Status)
		assert.Equal(t, f.admin.ID, *impl.ReviewerID)
		assert.NotNil(t, impl.ReviewStartedOn)
	})

	t.Run("Fresh claim blocks another admin", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := submit(t, f)
		require.NoError(t, f.service.ReviewSubmission(f.admin, impl.ID.String()))

		other := models.NewUser(3003, "carol", "carol@example.com", "Carol", "", nil)
		other.IsAdmin = true
		err := f.service.ReviewSubmission(other, impl.ID.String())
		assert.True(t, models.IsCode(err, models.ErrCodeCurrentlyReviewed))
	})

	t.Run("Expired claim can be taken over", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := submit(t, f)
		require.NoError(t, f.service.ReviewSubmission(f.admin, impl.ID.String()))

		stale := time.Now().Add(-6 * time.Minute)
		impl.ReviewStartedOn = &stale

		other := models.NewUser(3003, "carol", "carol@example.com", "Carol", "", nil)
		other.IsAdmin = true
		require.NoError(t, f.service.ReviewSubmission(other, impl.ID.String()))
		assert.Equal(t, other.ID, *impl.ReviewerID)
	})

	t.Run("Resolved submission cannot be reviewed again", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := submit(t, f)
		require.NoError(t, f.service.ReviewSubmission(f.admin, impl.ID.String()))
		require.NoError(t, f.service.ApproveSubmission(f.admin, impl.ID.String()))

		err := f.service.ReviewSubmission(f.admin, impl.ID.String())
		assert.True(t, models.IsCode(err, models.ErrCodeAlreadyReviewed))
	})

	t.Run("Non-admin cannot review", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := submit(t, f)
		err := f.service.ReviewSubmission(f.member, impl.ID.String())
		assert.True(t, models.IsCode(err, models.ErrCodeForbidden))
	})
}

func TestApproveAndRejectSubmission(t *testing.T) {
	reviewing := func(t *testing.T, f *serviceFixture) *models.Implementation {
		t.Helper()
		f.gateway.repository = availableRepository(f.member.GithubID)
		impl := f.newImplementation(f.member)
		require.NoError(t, f.service.Submit(context.Background(), f.member, impl))
		require.NoError(t, f.service.ReviewSubmission(f.admin, impl.ID.String()))
		f.mailer.sent = nil
		return impl
	}

	t.Run("Reviewer approves", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := reviewing(t, f)

		require.NoError(t, f.service.ApproveSubmission(f.admin, impl.ID.String()))
		assert.Equal(t, models.StatusApproved, impl.Status)
		assert.Nil(t, impl.ReviewerID)
		assert.Nil(t, impl.ReviewStartedOn)

		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, f.member.Email, f.mailer.sent[0].To)
		assert.Contains(t, f.mailer.sent[0].Subject, "has been approved")
	})

	t.Run("Reviewer rejects with an escaped reason", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := reviewing(t, f)

		require.NoError(t, f.service.RejectSubmission(f.admin, impl.ID.String(), "no <script> allowed"))
		assert.Equal(t, models.StatusRejected, impl.Status)

		require.Len(t, f.mailer.sent, 1)
		assert.Contains(t, f.mailer.sent[0].HTML, "no &lt;script&gt; allowed")
		assert.NotContains(t, f.mailer.sent[0].HTML, "<script>")
	})

	t.Run("Another admin cannot approve a claimed review", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := reviewing(t, f)

		other := models.NewUser(3003, "carol", "carol@example.com", "Carol", "", nil)
		other.IsAdmin = true
		err := f.service.ApproveSubmission(other, impl.ID.String())
		assert.True(t, models.IsCode(err, models.ErrCodeApprovalError))
		assert.Equal(t, models.StatusReviewing, impl.Status)
	})

	t.Run("Cancellation reverts to pending", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := reviewing(t, f)

		require.NoError(t, f.service.CancelSubmissionReview(f.admin, impl.ID.String()))
		assert.Equal(t, models.StatusPending, impl.Status)
		assert.Nil(t, impl.ReviewerID)
		assert.Nil(t, impl.ReviewStartedOn)
	})
}

func TestReportAsUnmaintained(t *testing.T) {
	approved := func(t *testing.T, f *serviceFixture) *models.Implementation {
		t.Helper()
		impl := f.newImplementation(f.member)
		impl.Status = models.StatusApproved
		require.NoError(t, f.impls.Create(impl))
		return impl
	}

	t.Run("Open issue triggers an admin approval email without mutating", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := approved(t, f)
		f.gateway.issue = &GitHubIssue{
			Number:    7,
			IsClosed:  false,
			URL:       "https://github.com/bob/todomvc-react/issues/7",
			CreatedAt: time.Now().Add(-48 * time.Hour),
		}

		require.NoError(t, f.service.ReportAsUnmaintained(context.Background(), f.member, impl.ID.String(), 7))

		assert.Nil(t, impl.UnmaintainedIssueNumber)
		assert.Nil(t, impl.MarkedAsUnmaintainedOn)
		require.Len(t, f.mailer.sent, 1)
		assert.Contains(t, f.mailer.sent[0].HTML, "approve-unmaintained-report?token=")
	})

	t.Run("Closed issue is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := approved(t, f)
		f.gateway.issue = &GitHubIssue{Number: 7, IsClosed: true}

		err := f.service.ReportAsUnmaintained(context.Background(), f.member, impl.ID.String(), 7)
		assert.True(t, models.IsCode(err, models.ErrCodeIssueClosed))
		assert.Empty(t, f.mailer.sent)
	})
}

func TestApproveUnmaintainedReport(t *testing.T) {
	approved := func(t *testing.T, f *serviceFixture) *models.Implementation {
		t.Helper()
		impl := f.newImplementation(f.member)
		impl.Status = models.StatusApproved
		require.NoError(t, f.impls.Create(impl))
		return impl
	}

	t.Run("Valid token records the issue and checks it immediately", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := approved(t, f)
		f.gateway.issue = &GitHubIssue{
			Number:    7,
			IsClosed:  false,
			CreatedAt: time.Now().Add(-48 * time.Hour),
		}

		token, err := f.tokens.GenerateApprovalToken(impl.ID.String(), 7)
		require.NoError(t, err)

		require.NoError(t, f.service.ApproveUnmaintainedReport(context.Background(), token))
		require.NotNil(t, impl.UnmaintainedIssueNumber)
		assert.Equal(t, 7, *impl.UnmaintainedIssueNumber)
		assert.Nil(t, impl.MarkedAsUnmaintainedOn)
	})

	t.Run("A long-neglected issue marks the implementation right away", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := approved(t, f)
		f.gateway.issue = &GitHubIssue{
			Number:    7,
			IsClosed:  false,
			CreatedAt: time.Now().Add(-31 * 24 * time.Hour),
		}

		token, err := f.tokens.GenerateApprovalToken(impl.ID.String(), 7)
		require.NoError(t, err)

		require.NoError(t, f.service.ApproveUnmaintainedReport(context.Background(), token))
		assert.Nil(t, impl.UnmaintainedIssueNumber)
		assert.NotNil(t, impl.MarkedAsUnmaintainedOn)
	})

	t.Run("Idempotent once marked", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := approved(t, f)
		markedOn := time.Now()
		impl.MarkedAsUnmaintainedOn = &markedOn

		token, err := f.tokens.GenerateApprovalToken(impl.ID.String(), 7)
		require.NoError(t, err)

		updatesBefore := f.impls.updates
		require.NoError(t, f.service.ApproveUnmaintainedReport(context.Background(), token))
		assert.Equal(t, updatesBefore, f.impls.updates)
	})

	t.Run("Garbage token fails", func(t *testing.T) {
		f := newServiceFixture(t)
		err := f.service.ApproveUnmaintainedReport(context.Background(), "not-a-token")
		assert.True(t, models.IsCode(err, models.ErrCodeInvalidToken))
	})

	t.Run("Session token is not an approval capability", func(t *testing.T) {
		f := newServiceFixture(t)
		token, err := f.tokens.GenerateSessionToken(f.admin.ID.String())
		require.NoError(t, err)

		err = f.service.ApproveUnmaintainedReport(context.Background(), token)
		assert.True(t, models.IsCode(err, models.ErrCodeInvalidOperation))
	})
}

func TestMarkAsUnmaintained(t *testing.T) {
	t.Run("Owner marks directly", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := f.newImplementation(f.member)
		issueNumber := 7
		impl.UnmaintainedIssueNumber = &issueNumber
		require.NoError(t, f.impls.Create(impl))

		require.NoError(t, f.service.MarkAsUnmaintained(f.member, impl.ID.String()))
		assert.Nil(t, impl.UnmaintainedIssueNumber)
		assert.NotNil(t, impl.MarkedAsUnmaintainedOn)
		require.Len(t, f.mailer.sent, 1)
		assert.Contains(t, f.mailer.sent[0].Subject, "marked as unmaintained by its owner")
	})

	t.Run("Stranger cannot mark", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := f.newImplementation(f.member)
		require.NoError(t, f.impls.Create(impl))

		stranger := models.NewUser(4004, "dave", "dave@example.com", "Dave", "", nil)
		err := f.service.MarkAsUnmaintained(stranger, impl.ID.String())
		assert.True(t, models.IsCode(err, models.ErrCodeForbidden))
	})
}

func TestClaimOwnership(t *testing.T) {
	t.Run("Maintainer claims an admin-owned implementation", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := f.newImplementation(f.admin)
		require.NoError(t, f.impls.Create(impl))
		f.gateway.repository = availableRepository(f.member.GithubID)

		require.NoError(t, f.service.ClaimOwnership(context.Background(), f.member, impl.ID.String()))
		assert.Equal(t, f.member.ID, impl.OwnerID)
		require.Len(t, f.mailer.sent, 1)
		assert.Contains(t, f.mailer.sent[0].Subject, "ownership")
	})

	t.Run("Community-owned implementations cannot be claimed", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := f.newImplementation(f.member)
		require.NoError(t, f.impls.Create(impl))

		stranger := models.NewUser(4004, "dave", "dave@example.com", "Dave", "", nil)
		err := f.service.ClaimOwnership(context.Background(), stranger, impl.ID.String())
		assert.True(t, models.IsCode(err, models.ErrCodeNotOwnedByAdmin))
		assert.Equal(t, f.member.ID, impl.OwnerID)
	})

	t.Run("Non-maintainer cannot claim", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := f.newImplementation(f.admin)
		require.NoError(t, f.impls.Create(impl))
		f.gateway.repository = availableRepository(9999)
		f.gateway.contributor = nil

		err := f.service.ClaimOwnership(context.Background(), f.member, impl.ID.String())
		assert.True(t, models.IsCode(err, models.ErrCodeUserNotMaintainer))
		assert.Equal(t, f.admin.ID, impl.OwnerID)
	})
}

func TestCheckMaintenanceStatus(t *testing.T) {
	tracked := func(t *testing.T, f *serviceFixture) *models.Implementation {
		t.Helper()
		impl := f.newImplementation(f.member)
		issueNumber := 7
		impl.UnmaintainedIssueNumber = &issueNumber
		require.NoError(t, f.impls.Create(impl))
		return impl
	}

	t.Run("No tracked issue is a no-op", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := f.newImplementation(f.member)
		require.NoError(t, f.impls.Create(impl))

		updatesBefore := f.impls.updates
		require.NoError(t, f.service.CheckMaintenanceStatus(context.Background(), impl))
		assert.Equal(t, updatesBefore, f.impls.updates)
	})

	t.Run("Closed issue resolves the report", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := tracked(t, f)
		f.gateway.issue = &GitHubIssue{Number: 7, IsClosed: true}

		require.NoError(t, f.service.CheckMaintenanceStatus(context.Background(), impl))
		assert.Nil(t, impl.UnmaintainedIssueNumber)
		assert.Nil(t, impl.MarkedAsUnmaintainedOn)
	})

	t.Run("Issue open for over 30 days confirms the report", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := tracked(t, f)
		f.gateway.issue = &GitHubIssue{
			Number:    7,
			IsClosed:  false,
			CreatedAt: time.Now().Add(-31 * 24 * time.Hour),
		}

		require.NoError(t, f.service.CheckMaintenanceStatus(context.Background(), impl))
		assert.Nil(t, impl.UnmaintainedIssueNumber)
		assert.NotNil(t, impl.MarkedAsUnmaintainedOn)
	})

	t.Run("Young open issue leaves everything untouched", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := tracked(t, f)
		f.gateway.issue = &GitHubIssue{
			Number:    7,
			IsClosed:  false,
			CreatedAt: time.Now().Add(-48 * time.Hour),
		}

		require.NoError(t, f.service.CheckMaintenanceStatus(context.Background(), impl))
		require.NotNil(t, impl.UnmaintainedIssueNumber)
		assert.Equal(t, 7, *impl.UnmaintainedIssueNumber)
		assert.Nil(t, impl.MarkedAsUnmaintainedOn)
	})

	t.Run("Marked implementation is terminal", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := tracked(t, f)
		markedOn := time.Now()
		impl.MarkedAsUnmaintainedOn = &markedOn

		updatesBefore := f.impls.updates
		require.NoError(t, f.service.CheckMaintenanceStatus(context.Background(), impl))
		assert.Equal(t, updatesBefore, f.impls.updates)
	})
}

func TestRefreshGitHubData(t *testing.T) {
	saved := func(t *testing.T, f *serviceFixture) *models.Implementation {
		t.Helper()
		impl := f.newImplementation(f.member)
		require.NoError(t, f.impls.Create(impl))
		return impl
	}

	t.Run("Successful fetch refreshes data and status", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := saved(t, f)
		repo := availableRepository(f.member.GithubID)
		repo.IsArchived = true
		f.gateway.repository = repo

		require.NoError(t, f.service.RefreshGitHubData(context.Background(), impl))
		assert.Equal(t, models.RepositoryArchived, impl.RepositoryStatus)
		assert.NotNil(t, impl.GithubDataFetchedOn)
	})

	t.Run("Missing repository maps to the missing status", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := saved(t, f)
		f.gateway.repositoryErr = models.NewError(models.ErrCodeRepositoryNotFound, "gone", "The specified repository doesn't exist.")

		require.NoError(t, f.service.RefreshGitHubData(context.Background(), impl))
		assert.Equal(t, models.RepositoryMissing, impl.RepositoryStatus)
	})

	t.Run("Transient failure keeps the previous status but bumps the fetch time", func(t *testing.T) {
		f := newServiceFixture(t)
		impl := saved(t, f)
		impl.RepositoryStatus = models.RepositoryAvailable
		f.gateway.repositoryErr = models.NewError(models.ErrCodeGitHubAPI, "rate limited", "An error occurred while contacting GitHub. Please try again later.")

		require.NoError(t, f.service.RefreshGitHubData(context.Background(), impl))
		assert.Equal(t, models.RepositoryAvailable, impl.RepositoryStatus)
		assert.NotNil(t, impl.GithubDataFetchedOn)
	})
}

func TestRefreshOldestBatch(t *testing.T) {
	t.Run("Refreshes a 24th of the collection, rounded up", func(t *testing.T) {
		f := newServiceFixture(t)
		f.gateway.repository = availableRepository(f.member.GithubID)
		for i := 0; i < 25; i++ {
			require.NoError(t, f.impls.Create(f.newImplementation(f.member)))
		}

		require.NoError(t, f.service.RefreshOldestBatch(context.Background()))
		require.Len(t, f.impls.oldestFetchedLimits, 1)
		assert.Equal(t, 2, f.impls.oldestFetchedLimits[0])
	})

	t.Run("Small collections still refresh one per hour", func(t *testing.T) {
		f := newServiceFixture(t)
		f.gateway.repository = availableRepository(f.member.GithubID)
		require.NoError(t, f.impls.Create(f.newImplementation(f.member)))

		require.NoError(t, f.service.RefreshOldestBatch(context.Background()))
		require.Len(t, f.impls.oldestFetchedLimits, 1)
		assert.Equal(t, 1, f.impls.oldestFetchedLimits[0])
	})

	t.Run("Empty collection is a no-op", func(t *testing.T) {
		f := newServiceFixture(t)

		require.NoError(t, f.service.RefreshOldestBatch(context.Background()))
		assert.Empty(t, f.impls.oldestFetchedLimits)
	})
}

func TestFindUsedLibraries(t *testing.T) {
	f := newServiceFixture(t)

	libraries, err := f.service.FindUsedLibraries()
	require.NoError(t, err)
	assert.NotNil(t, libraries)
	assert.Empty(t, libraries)
}

func TestRefreshPendingIssues(t *testing.T) {
	f := newServiceFixture(t)
	impl := f.newImplementation(f.member)
	require.NoError(t, f.impls.Create(impl))
	f.gateway.pendingIssues = 12

	require.NoError(t, f.service.RefreshPendingIssues(context.Background(), f.admin, impl.ID.String()))
	require.NotNil(t, impl.NumberOfPendingIssues)
	assert.Equal(t, 12, *impl.NumberOfPendingIssues)

	err := f.service.RefreshPendingIssues(context.Background(), f.member, impl.ID.String())
	assert.True(t, models.IsCode(err, models.ErrCodeForbidden))
}
