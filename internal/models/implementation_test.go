package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validImplementation() *Implementation {
	impl := NewImplementation(uuid.New(), uuid.New())
	impl.RepositoryURL = "https://github.com/acme/realworld-vue"
	impl.Category = CategoryFrontend
	impl.Language = "JavaScript"
	impl.Libraries = []string{"Vue", "Vuex"}
	return impl
}

func TestImplementationValidate(t *testing.T) {
	t.Run("Valid implementation", func(t *testing.T) {
		impl := validImplementation()
		assert.NoError(t, impl.Validate())
	})

	t.Run("Non-GitHub URL", func(t *testing.T) {
		impl := validImplementation()
		impl.RepositoryURL = "https://gitlab.com/acme/realworld"
		assert.Error(t, impl.Validate())
	})

	t.Run("Invalid category", func(t *testing.T) {
		impl := validImplementation()
		impl.Category = "middleware"
		assert.Error(t, impl.Validate())
	})

	t.Run("Invalid frontend environment", func(t *testing.T) {
		impl := validImplementation()
		env := FrontendEnvironment("terminal")
		impl.FrontendEnvironment = &env
		assert.Error(t, impl.Validate())
	})

	t.Run("Empty language", func(t *testing.T) {
		impl := validImplementation()
		impl.Language = "   "
		assert.Error(t, impl.Validate())
	})

	t.Run("No libraries after compaction", func(t *testing.T) {
		impl := validImplementation()
		impl.Libraries = []string{"", "  "}
		assert.Error(t, impl.Validate())
	})

	t.Run("Too many libraries", func(t *testing.T) {
		impl := validImplementation()
		impl.Libraries = []string{"a", "b", "c", "d", "e", "f"}
		assert.Error(t, impl.Validate())
	})

	t.Run("Libraries are trimmed and compacted", func(t *testing.T) {
		impl := validImplementation()
		impl.Libraries = []string{" React ", "", "Redux"}
		assert.NoError(t, impl.Validate())
		assert.Equal(t, []string{"React", "Redux"}, impl.Libraries)
	})
}

func TestImplementationBeforeSave(t *testing.T) {
	t.Run("Libraries sort key is recomputed", func(t *testing.T) {
		impl := validImplementation()
		impl.Libraries = []string{"React", "Redux"}
		impl.BeforeSave()
		assert.Equal(t, "react,redux", impl.LibrariesSortKey)
	})

	t.Run("Updated at is maintained", func(t *testing.T) {
		impl := validImplementation()
		before := impl.UpdatedAt
		time.Sleep(time.Millisecond)
		impl.BeforeSave()
		assert.True(t, impl.UpdatedAt.After(before))
	})
}

func TestIsPubliclyListed(t *testing.T) {
	testCases := []struct {
		name             string
		status           ImplementationStatus
		repositoryStatus RepositoryStatus
		expected         bool
	}{
		{"Approved and available", StatusApproved, RepositoryAvailable, true},
		{"Approved but archived", StatusApproved, RepositoryArchived, false},
		{"Approved but missing", StatusApproved, RepositoryMissing, false},
		{"Pending and available", StatusPending, RepositoryAvailable, false},
		{"Rejected and available", StatusRejected, RepositoryAvailable, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			impl := validImplementation()
			impl.Status = tc.status
			impl.RepositoryStatus = tc.repositoryStatus
			assert.Equal(t, tc.expected, impl.IsPubliclyListed())
		})
	}
}

func TestTryAcquireReviewLease(t *testing.T) {
	admin := uuid.New()
	otherAdmin := uuid.New()
	now := time.Now()

	reviewingSince := func(d time.Duration, reviewer uuid.UUID) *Implementation {
		impl := validImplementation()
		impl.Status = StatusReviewing
		impl.ReviewerID = &reviewer
		startedOn := now.Add(-d)
		impl.ReviewStartedOn = &startedOn
		return impl
	}

	t.Run("Pending submission is claimable", func(t *testing.T) {
		impl := validImplementation()
		assert.Equal(t, LeaseAcquired, TryAcquireReviewLease(impl, admin, now))
	})

	t.Run("Reviewer can re-enter their own review", func(t *testing.T) {
		impl := reviewingSince(time.Minute, admin)
		assert.Equal(t, LeaseAcquired, TryAcquireReviewLease(impl, admin, now))
	})

	t.Run("Active claim blocks another admin", func(t *testing.T) {
		impl := reviewingSince(time.Minute, admin)
		assert.Equal(t, LeaseHeldByOther, TryAcquireReviewLease(impl, otherAdmin, now))
	})

	t.Run("Stale claim is reclaimable after the lease expires", func(t *testing.T) {
		impl := reviewingSince(6*time.Minute, admin)
		assert.Equal(t, LeaseAcquired, TryAcquireReviewLease(impl, otherAdmin, now))
	})

	t.Run("Approved submission cannot be claimed", func(t *testing.T) {
		impl := validImplementation()
		impl.Status = StatusApproved
		assert.Equal(t, LeaseAlreadyResolved, TryAcquireReviewLease(impl, admin, now))
	})

	t.Run("Rejected submission cannot be claimed", func(t *testing.T) {
		impl := validImplementation()
		impl.Status = StatusRejected
		assert.Equal(t, LeaseAlreadyResolved, TryAcquireReviewLease(impl, admin, now))
	})
}
