package services

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"time"

	"github.com/codebaseshow/codebaseshow/internal/auth"
	"github.com/codebaseshow/codebaseshow/internal/models"
	"github.com/codebaseshow/codebaseshow/pkg/logger"
	"github.com/codebaseshow/codebaseshow/pkg/repourl"
)

// MaximumUnmaintainedIssueDuration is how long a reported unmaintained issue
// may stay open before the implementation is marked as unmaintained for good.
const MaximumUnmaintainedIssueDuration = 30 * 24 * time.Hour

// ImplementationStore is the persistence boundary for implementations
type ImplementationStore interface {
	Create(impl *models.Implementation) error
	Update(impl *models.Implementation) error
	GetByID(id string) (*models.Implementation, error)
	Delete(id string) error
	Count() (int, error)
	FindPubliclyListed(projectID, category string) ([]*models.Implementation, error)
	CountPubliclyListed(projectID string) (int, error)
	FindSubmissions() ([]*models.Implementation, error)
	FindByOwner(ownerID string) ([]*models.Implementation, error)
	FindWithUnmaintainedIssue() ([]*models.Implementation, error)
	FindOldestFetched(limit int) ([]*models.Implementation, error)
	GetAllLibraries() ([]string, error)
}

// ProjectStore is the persistence boundary for projects
type ProjectStore interface {
	Create(project *models.Project) error
	GetByID(id string) (*models.Project, error)
	GetBySlug(slug string) (*models.Project, error)
	GetAll() ([]*models.Project, error)
	UpdateNumberOfImplementations(id string, count int) error
}

type ImplementationService struct {
	implementationStore ImplementationStore
	projectStore        ProjectStore
	userStore           UserStore
	gateway             GitHubGateway
	emailService        *EmailService
	tokenService        *auth.TokenService
	frontendURL         string
}

func NewImplementationService(
	implementationStore ImplementationStore,
	projectStore ProjectStore,
	userStore UserStore,
	gateway GitHubGateway,
	emailService *EmailService,
	tokenService *auth.TokenService,
	frontendURL string,
) *ImplementationService {
	return &ImplementationService{
		implementationStore: implementationStore,
		projectStore:        projectStore,
		userStore:           userStore,
		gateway:             gateway,
		emailService:        emailService,
		tokenService:        tokenService,
		frontendURL:         frontendURL,
	}
}

var errForbidden = models.NewError(models.ErrCodeForbidden, "forbidden", "Sorry, you are not allowed to perform this action.")

// Submit files a new community submission. The caller becomes the owner and
// must be the repository owner or a contributor unless they are an admin.
// The entity is only persisted once every check has passed.
func (s *ImplementationService) Submit(ctx context.Context, caller *models.User, impl *models.Implementation) error {
	if caller == nil {
		return errForbidden
	}

	impl.OwnerID = caller.ID
	impl.Status = models.StatusPending

	if err := impl.Validate(); err != nil {
		return err
	}

	location, err := repourl.Parse(impl.RepositoryURL)
	if err != nil {
		return err
	}

	repository, err := s.gateway.FetchRepository(ctx, location.Owner, location.Name)
	if err != nil {
		return err
	}

	if !caller.IsAdmin {
		if err := s.verifyMaintainer(ctx, location, repository, caller, models.NewError(
			models.ErrCodeNotAContributor,
			"contributor not found",
			"Sorry, you must be a contributor of the specified repository.",
		)); err != nil {
			return err
		}
	}

	if repository.IsArchived {
		return models.NewError(
			models.ErrCodeRepositoryArchived,
			"repository archived",
			"The specified repository is archived.",
		)
	}

	// The unmaintained-reporting protocol depends on GitHub Issues
	if !repository.HasIssues {
		return models.NewError(
			models.ErrCodeIssuesDisabled,
			"repository issues disabled",
			`Sorry, you cannot submit an implementation with a repository that has the "Issues" feature disabled.`,
		)
	}

	now := time.Now()
	impl.GithubData = repository.GithubData
	impl.GithubDataFetchedOn = &now

	if err := s.implementationStore.Create(impl); err != nil {
		return err
	}

	if project, err := s.projectStore.GetByID(impl.ProjectID.String()); err == nil {
		reviewURL := fmt.Sprintf("%sprojects/%s/implementations/%s/review", s.frontendURL, project.Slug, impl.ID)
		s.emailService.SendBestEffort(EmailMessage{
			Subject: fmt.Sprintf("A new %s implementation has been submitted", project.Name),
			Text:    fmt.Sprintf("A new %s implementation has been submitted:\n\n%s\n", project.Name, reviewURL),
		})
	} else {
		logger.WithError(err).Errorf("Failed to load project %s for submission notification", impl.ProjectID)
	}

	return nil
}

// Add creates an admin-curated implementation directly in the approved
// state, skipping the contributor and repository checks.
func (s *ImplementationService) Add(ctx context.Context, caller *models.User, impl *models.Implementation) error {
	if caller == nil || !caller.IsAdmin {
		return errForbidden
	}

	impl.OwnerID = caller.ID

	if err := impl.Validate(); err != nil {
		return err
	}

	location, err := repourl.Parse(impl.RepositoryURL)
	if err != nil {
		return err
	}

	repository, err := s.gateway.FetchRepository(ctx, location.Owner, location.Name)
	if err != nil {
		return err
	}

	now := time.Now()
	impl.Status = models.StatusApproved
	impl.GithubData = repository.GithubData
	impl.GithubDataFetchedOn = &now

	return s.implementationStore.Create(impl)
}

// ReviewSubmission claims the review of a pending submission for the
// calling admin. The claim is a 5-minute lease, not a lock: a stale claim
// can be reclaimed by another admin once it expires.
func (s *ImplementationService) ReviewSubmission(caller *models.User, id string) error {
	if caller == nil || !caller.IsAdmin {
		return errForbidden
	}

	impl, err := s.implementationStore.GetByID(id)
	if err != nil {
		return err
	}

	now := time.Now()

	switch models.TryAcquireReviewLease(impl, caller.ID, now) {
	case models.LeaseHeldByOther:
		return models.NewError(
			models.ErrCodeCurrentlyReviewed,
			"implementation currently reviewed",
			"This submission is currently being reviewed by another administrator.",
		)
	case models.LeaseAlreadyResolved:
		return models.NewError(
			models.ErrCodeAlreadyReviewed,
			"implementation already reviewed",
			"This submission has already been reviewed.",
		)
	}

	impl.Status = models.StatusReviewing
	impl.ReviewerID = &caller.ID
	impl.ReviewStartedOn = &now

	return s.implementationStore.Update(impl)
}

// ApproveSubmission approves a submission under review by the caller
func (s *ImplementationService) ApproveSubmission(caller *models.User, id string) error {
	impl, err := s.finishReview(caller, id, "approval")
	if err != nil {
		return err
	}

	impl.Status = models.StatusApproved
	if err := s.implementationStore.Update(impl); err != nil {
		return err
	}

	owner, project, err := s.loadOwnerAndProject(impl)
	if err != nil {
		logger.WithError(err).Errorf("Failed to load context for approval notification of implementation %s", impl.ID)
		return nil
	}

	listingURL := fmt.Sprintf("%sprojects/%s?category=%s", s.frontendURL, project.Slug, impl.Category)
	s.emailService.SendBestEffort(EmailMessage{
		To:      owner.Email,
		Subject: fmt.Sprintf("Your %s implementation has been approved", project.Name),
		HTML: fmt.Sprintf(`
<p>Hi, %s,</p>

<p>Your %s <a href="%s">implementation</a> has been approved and is now listed on the <a href="%s">project's home page</a>.</p>

<p>Thanks a lot for your contribution!</p>

<p>--<br>The CodebaseShow project</p>
`, owner.Username, project.Name, impl.RepositoryURL, listingURL),
	})

	return nil
}

// RejectSubmission rejects a submission under review by the caller. The
// optional reason is HTML-escaped and included in the notification email.
func (s *ImplementationService) RejectSubmission(caller *models.User, id, rejectionReason string) error {
	impl, err := s.finishReview(caller, id, "rejection")
	if err != nil {
		return err
	}

	impl.Status = models.StatusRejected
	if err := s.implementationStore.Update(impl); err != nil {
		return err
	}

	owner, project, err := s.loadOwnerAndProject(impl)
	if err != nil {
		logger.WithError(err).Errorf("Failed to load context for rejection notification of implementation %s", impl.ID)
		return nil
	}

	reasonHTML := "."
	if rejectionReason != "" {
		reasonHTML = fmt.Sprintf(" for the following reason(s):</p>\n\n<ul><li>%s.</li></ul><p>", html.EscapeString(rejectionReason))
	}

	s.emailService.SendBestEffort(EmailMessage{
		To:      owner.Email,
		Subject: fmt.Sprintf("Your %s implementation could not be approved", project.Name),
		HTML: fmt.Sprintf(`
<p>Hi, %s,</p>

<p>Unfortunately, your %s <a href="%s">implementation</a> could not be approved%s</p>

<p>Feel free to submit again in the future.</p>

<p>--<br>The CodebaseShow project</p>
`, owner.Username, project.Name, impl.RepositoryURL, reasonHTML),
	})

	return nil
}

// CancelSubmissionReview reverts a submission under review by the caller to pending
func (s *ImplementationService) CancelSubmissionReview(caller *models.User, id string) error {
	impl, err := s.finishReview(caller, id, "cancellation")
	if err != nil {
		return err
	}

	impl.Status = models.StatusPending
	return s.implementationStore.Update(impl)
}

// finishReview loads the implementation and checks that the caller is the
// admin currently holding its review; it clears the review claim fields
// without saving.
func (s *ImplementationService) finishReview(caller *models.User, id, action string) (*models.Implementation, error) {
	if caller == nil || !caller.IsAdmin {
		return nil, errForbidden
	}

	impl, err := s.implementationStore.GetByID(id)
	if err != nil {
		return nil, err
	}

	if impl.Status != models.StatusReviewing || impl.ReviewerID == nil || *impl.ReviewerID != caller.ID {
		return nil, models.NewError(
			models.ErrCodeApprovalError,
			action+" error",
			"Sorry, this submission is not under your review.",
		)
	}

	impl.ReviewerID = nil
	impl.ReviewStartedOn = nil

	return impl, nil
}

// Update saves owner-editable fields after re-validation
func (s *ImplementationService) Update(caller *models.User, impl *models.Implementation) error {
	if !models.CanManage(impl.OwnerID, caller) {
		return errForbidden
	}

	if err := impl.Validate(); err != nil {
		return err
	}

	return s.implementationStore.Update(impl)
}

// Delete removes an implementation; owner or admin only
func (s *ImplementationService) Delete(caller *models.User, id string) error {
	impl, err := s.implementationStore.GetByID(id)
	if err != nil {
		return err
	}

	if !models.CanManage(impl.OwnerID, caller) {
		return errForbidden
	}

	return s.implementationStore.Delete(id)
}

// GetByID retrieves an implementation by ID
func (s *ImplementationService) GetByID(id string) (*models.Implementation, error) {
	return s.implementationStore.GetByID(id)
}

// FindPubliclyListed returns the public listing of a project, optionally filtered by category
func (s *ImplementationService) FindPubliclyListed(projectID, category string) ([]*models.Implementation, error) {
	return s.implementationStore.FindPubliclyListed(projectID, category)
}

// FindSubmissions returns the admin review queue
func (s *ImplementationService) FindSubmissions(caller *models.User) ([]*models.Implementation, error) {
	if caller == nil || !caller.IsAdmin {
		return nil, errForbidden
	}
	return s.implementationStore.FindSubmissions()
}

// FindOwn returns the caller's submissions, newest first
func (s *ImplementationService) FindOwn(caller *models.User) ([]*models.Implementation, error) {
	if caller == nil {
		return nil, errForbidden
	}
	return s.implementationStore.FindByOwner(caller.ID.String())
}

// FindUsedLibraries returns the distinct library names used across all
// implementations. Always non-nil, so the JSON rendering is an array even
// when the collection is empty.
func (s *ImplementationService) FindUsedLibraries() ([]string, error) {
	libraries, err := s.implementationStore.GetAllLibraries()
	if err != nil {
		return nil, err
	}
	if libraries == nil {
		libraries = []string{}
	}
	return libraries, nil
}

// ReportAsUnmaintained files an unmaintained report against an
// implementation, citing an open GitHub issue as evidence. Nothing is
// mutated yet; admins receive a signed approval link, and the report only
// takes effect once one of them approves it.
func (s *ImplementationService) ReportAsUnmaintained(ctx context.Context, caller *models.User, id string, issueNumber int) error {
	if caller == nil {
		return errForbidden
	}

	impl, err := s.implementationStore.GetByID(id)
	if err != nil {
		return err
	}

	project, err := s.projectStore.GetByID(impl.ProjectID.String())
	if err != nil {
		return err
	}

	location, err := repourl.Parse(impl.RepositoryURL)
	if err != nil {
		return err
	}

	issue, err := s.gateway.FetchIssue(ctx, location.Owner, location.Name, issueNumber)
	if err != nil {
		return err
	}

	// A closed issue cannot evidence ongoing neglect
	if issue.IsClosed {
		return models.NewError(
			models.ErrCodeIssueClosed,
			"issue closed",
			"The specified issue is closed.",
		)
	}

	approvalToken, err := s.tokenService.GenerateApprovalToken(impl.ID.String(), issueNumber)
	if err != nil {
		return err
	}

	implementationURL := fmt.Sprintf("%sprojects/%s/implementations/%s/edit", s.frontendURL, project.Slug, impl.ID)
	reporterURL := fmt.Sprintf("https://github.com/%s", caller.Username)
	approvalURL := fmt.Sprintf("%sprojects/%s/implementations/%s/approve-unmaintained-report?token=%s",
		s.frontendURL, project.Slug, impl.ID, url.QueryEscape(approvalToken))

	s.emailService.SendBestEffort(EmailMessage{
		Subject: fmt.Sprintf("A %s implementation has been reported as unmaintained", project.Name),
		HTML: fmt.Sprintf(`
<p>The following %s implementation has been reported as unmaintained:</p>

<p><a href="%s">%s</a></p>

<p>Reporter:</p>

<p><a href="%s">%s</a></p>

<p>Issue:</p>

<p><a href="%s">%s</a></p>

<p>Click the following link to approve the report:</p>

<p><a href="%s">%s</a></p>
`, project.Name, implementationURL, implementationURL, reporterURL, reporterURL, issue.URL, issue.URL, approvalURL, approvalURL),
	})

	return nil
}

// ApproveUnmaintainedReport records a reported unmaintained issue on the
// implementation named by the approval token, then immediately re-checks the
// issue so a long-neglected report takes effect without waiting for the
// daily sweep. Idempotent once the implementation is marked as unmaintained.
func (s *ImplementationService) ApproveUnmaintainedReport(ctx context.Context, token string) error {
	claims, err := s.tokenService.VerifyApprovalToken(token)
	if err != nil {
		return models.NewError(
			models.ErrCodeInvalidToken,
			fmt.Sprintf("invalid token: %v", err),
			"Sorry, this approval link is invalid or has expired.",
		)
	}

	if claims.Operation != auth.OperationApproveUnmaintainedReport {
		return models.NewError(
			models.ErrCodeInvalidOperation,
			"invalid operation",
			"Sorry, this approval link is invalid.",
		)
	}

	impl, err := s.implementationStore.GetByID(claims.ImplementationID)
	if err != nil {
		return err
	}

	if impl.MarkedAsUnmaintainedOn != nil {
		return nil
	}

	issueNumber := claims.IssueNumber
	impl.UnmaintainedIssueNumber = &issueNumber
	if err := s.implementationStore.Update(impl); err != nil {
		return err
	}

	return s.CheckMaintenanceStatus(ctx, impl)
}

// MarkAsUnmaintained lets the owner (or an admin) declare an implementation
// unmaintained directly, bypassing the issue-tracking protocol.
func (s *ImplementationService) MarkAsUnmaintained(caller *models.User, id string) error {
	impl, err := s.implementationStore.GetByID(id)
	if err != nil {
		return err
	}

	if !models.CanManage(impl.OwnerID, caller) {
		return errForbidden
	}

	now := time.Now()
	impl.UnmaintainedIssueNumber = nil
	impl.MarkedAsUnmaintainedOn = &now

	if err := s.implementationStore.Update(impl); err != nil {
		return err
	}

	logger.Infof("The implementation '%s' has been marked as unmaintained by its owner (id: '%s')", impl.RepositoryURL, impl.ID)

	if project, err := s.projectStore.GetByID(impl.ProjectID.String()); err == nil {
		implementationURL := fmt.Sprintf("%sprojects/%s/implementations/%s/edit", s.frontendURL, project.Slug, impl.ID)
		ownerURL := fmt.Sprintf("https://github.com/%s", caller.Username)
		s.emailService.SendBestEffort(EmailMessage{
			Subject: fmt.Sprintf("A %s implementation has been marked as unmaintained by its owner", project.Name),
			HTML: fmt.Sprintf(`
<p>The following %s implementation has been marked as unmaintained by its owner:</p>

<p><a href="%s">%s</a></p>

<p>Owner:</p>

<p><a href="%s">%s</a></p>
`, project.Name, implementationURL, implementationURL, ownerURL, ownerURL),
		})
	}

	return nil
}

// ClaimOwnership transfers an admin-seeded implementation to the calling
// user after verifying they maintain the repository. Community submissions
// cannot be claimed.
func (s *ImplementationService) ClaimOwnership(ctx context.Context, caller *models.User, id string) error {
	if caller == nil {
		return errForbidden
	}

	impl, err := s.implementationStore.GetByID(id)
	if err != nil {
		return err
	}

	previousOwner, err := s.userStore.GetByID(impl.OwnerID.String())
	if err != nil {
		return err
	}

	if !previousOwner.IsAdmin {
		return models.NewError(
			models.ErrCodeNotOwnedByAdmin,
			"implementation not owned by an admin",
			"Sorry but for now only implementations that have been added by a CodebaseShow administrator can be claimed.",
		)
	}

	location, err := repourl.Parse(impl.RepositoryURL)
	if err != nil {
		return err
	}

	repository, err := s.gateway.FetchRepository(ctx, location.Owner, location.Name)
	if err != nil {
		return err
	}

	if err := s.verifyMaintainer(ctx, location, repository, caller, models.NewError(
		models.ErrCodeUserNotMaintainer,
		"user is not a maintainer",
		"Sorry but it was not possible to verify that you are the maintainer of this implementation.",
	)); err != nil {
		return err
	}

	impl.OwnerID = caller.ID
	if err := s.implementationStore.Update(impl); err != nil {
		return err
	}

	logger.Infof("The ownership of the implementation '%s' has been claimed (id: '%s')", impl.RepositoryURL, impl.ID)

	if project, err := s.projectStore.GetByID(impl.ProjectID.String()); err == nil {
		implementationURL := fmt.Sprintf("%sprojects/%s/implementations/%s/edit", s.frontendURL, project.Slug, impl.ID)
		previousOwnerURL := fmt.Sprintf("https://github.com/%s", previousOwner.Username)
		newOwnerURL := fmt.Sprintf("https://github.com/%s", caller.Username)
		s.emailService.SendBestEffort(EmailMessage{
			Subject: fmt.Sprintf("The ownership of a %s implementation has been claimed", project.Name),
			HTML: fmt.Sprintf(`
<p>The ownership of the following %s implementation has been claimed:</p>

<p><a href="%s">%s</a></p>

<p>Previous owner:</p>

<p><a href="%s">%s</a></p>

<p>New owner:</p>

<p><a href="%s">%s</a></p>
`, project.Name, implementationURL, implementationURL, previousOwnerURL, previousOwnerURL, newOwnerURL, newOwnerURL),
		})
	}

	return nil
}

// verifyMaintainer checks that caller owns the repository or appears among
// its contributors, returning notMaintainerErr otherwise.
func (s *ImplementationService) verifyMaintainer(ctx context.Context, location repourl.Location, repository *GitHubRepository, caller *models.User, notMaintainerErr error) error {
	if repository.OwnerID == caller.GithubID {
		return nil
	}

	contributor, err := s.gateway.FindRepositoryContributor(ctx, location.Owner, location.Name, caller.GithubID)
	if err != nil {
		return err
	}
	if contributor == nil {
		return notMaintainerErr
	}
	return nil
}

// RefreshPendingIssues caches the repository's pending-issue count
func (s *ImplementationService) RefreshPendingIssues(ctx context.Context, caller *models.User, id string) error {
	if caller == nil || !caller.IsAdmin {
		return errForbidden
	}

	impl, err := s.implementationStore.GetByID(id)
	if err != nil {
		return err
	}

	location, err := repourl.Parse(impl.RepositoryURL)
	if err != nil {
		return err
	}

	count, err := s.gateway.CountPendingIssues(ctx, location.Owner, location.Name)
	if err != nil {
		return err
	}

	impl.NumberOfPendingIssues = &count
	return s.implementationStore.Update(impl)
}

// CheckMaintenanceStatus evaluates the tracked unmaintained issue of an
// implementation. A closed issue resolves the report; an issue open for more
// than 30 days confirms it and marks the implementation as unmaintained,
// which is a terminal, one-way transition. No-op when nothing is tracked or
// the implementation is already marked.
func (s *ImplementationService) CheckMaintenanceStatus(ctx context.Context, impl *models.Implementation) error {
	if impl.UnmaintainedIssueNumber == nil {
		return nil
	}

	if impl.MarkedAsUnmaintainedOn != nil {
		return nil
	}

	location, err := repourl.Parse(impl.RepositoryURL)
	if err != nil {
		return err
	}

	issue, err := s.gateway.FetchIssue(ctx, location.Owner, location.Name, *impl.UnmaintainedIssueNumber)
	if err != nil {
		return err
	}

	if issue.IsClosed {
		impl.UnmaintainedIssueNumber = nil
		if err := s.implementationStore.Update(impl); err != nil {
			return err
		}

		logger.Infof("The unmaintained issue '%s' has been closed (id: '%s')", issue.URL, impl.ID)
		return nil
	}

	if time.Since(issue.CreatedAt) > MaximumUnmaintainedIssueDuration {
		now := time.Now()
		impl.UnmaintainedIssueNumber = nil
		impl.MarkedAsUnmaintainedOn = &now
		if err := s.implementationStore.Update(impl); err != nil {
			return err
		}

		logger.Infof("The implementation '%s' has been marked as unmaintained (id: '%s')", impl.RepositoryURL, impl.ID)
		return nil
	}

	logger.Debugf("The unmaintained issue '%s' has been successfully checked (id: '%s')", issue.URL, impl.ID)
	return nil
}

// CheckAllMaintenanceStatuses sweeps every implementation with a tracked
// unmaintained issue. Failures are isolated per item; one broken
// implementation never aborts the batch.
func (s *ImplementationService) CheckAllMaintenanceStatuses(ctx context.Context) error {
	implementations, err := s.implementationStore.FindWithUnmaintainedIssue()
	if err != nil {
		return err
	}

	for _, impl := range implementations {
		if err := s.CheckMaintenanceStatus(ctx, impl); err != nil {
			logger.WithError(err).Errorf("An error occurred while checking the maintenance status of the implementation '%s'", impl.RepositoryURL)
		}
	}

	return nil
}

// RefreshGitHubData refetches repository metadata for one implementation and
// maps the outcome onto its repository status. Transient failures keep the
// previous status; a 404 marks the repository as missing. The fetch
// timestamp is always bumped so the hourly batch cycles fairly through the
// whole collection.
func (s *ImplementationService) RefreshGitHubData(ctx context.Context, impl *models.Implementation) error {
	location, parseErr := repourl.Parse(impl.RepositoryURL)
	if parseErr == nil {
		repository, err := s.gateway.FetchRepository(ctx, location.Owner, location.Name)
		switch {
		case err == nil:
			impl.GithubData = repository.GithubData
			if repository.IsArchived {
				impl.RepositoryStatus = models.RepositoryArchived
			} else if !repository.HasIssues {
				impl.RepositoryStatus = models.RepositoryIssuesDisabled
			} else {
				impl.RepositoryStatus = models.RepositoryAvailable
			}
			logger.Debugf("The implementation '%s' has been successfully refreshed (id: '%s')", impl.RepositoryURL, impl.ID)
		case models.IsCode(err, models.ErrCodeRepositoryNotFound):
			impl.RepositoryStatus = models.RepositoryMissing
		default:
			logger.WithError(err).Errorf("An error occurred while refreshing the implementation '%s'", impl.RepositoryURL)
		}
	} else {
		logger.WithError(parseErr).Errorf("The implementation '%s' has an unparsable repository URL", impl.ID)
	}

	now := time.Now()
	impl.GithubDataFetchedOn = &now

	return s.implementationStore.Update(impl)
}

// RefreshOldestBatch refreshes a 24th of the collection, oldest cached data
// first, so the hourly schedule cycles through every implementation once a
// day regardless of collection size.
func (s *ImplementationService) RefreshOldestBatch(ctx context.Context) error {
	count, err := s.implementationStore.Count()
	if err != nil {
		return err
	}

	limit := (count + 23) / 24
	if limit == 0 {
		return nil
	}

	return s.RefreshAllGitHubData(ctx, limit)
}

// RefreshAllGitHubData refreshes up to limit implementations, oldest cached
// data first
func (s *ImplementationService) RefreshAllGitHubData(ctx context.Context, limit int) error {
	implementations, err := s.implementationStore.FindOldestFetched(limit)
	if err != nil {
		return err
	}

	for _, impl := range implementations {
		if err := s.RefreshGitHubData(ctx, impl); err != nil {
			logger.WithError(err).Errorf("Failed to save refreshed data for implementation '%s'", impl.RepositoryURL)
		}
	}

	return nil
}

// loadOwnerAndProject loads the notification context of an implementation
func (s *ImplementationService) loadOwnerAndProject(impl *models.Implementation) (*models.User, *models.Project, error) {
	owner, err := s.userStore.GetByID(impl.OwnerID.String())
	if err != nil {
		return nil, nil, err
	}

	project, err := s.projectStore.GetByID(impl.ProjectID.String())
	if err != nil {
		return nil, nil, err
	}

	return owner, project, nil
}
