package models

import (
	"time"

	"github.com/google/uuid"
)

// MaximumReviewDuration is the lease window granted to an admin who starts
// reviewing a submission. Another admin can reclaim the review once it has
// been held longer than this.
const MaximumReviewDuration = 5 * time.Minute

type LeaseOutcome int

const (
	// LeaseAcquired means the caller now holds the review
	LeaseAcquired LeaseOutcome = iota
	// LeaseHeldByOther means another admin has an active, unexpired claim
	LeaseHeldByOther
	// LeaseAlreadyResolved means the submission has already been approved or rejected
	LeaseAlreadyResolved
)

// TryAcquireReviewLease decides whether caller may take over the review of an
// implementation at time now. The lease is a timestamp comparison, not a
// lock: two admins racing just after expiry can both acquire it briefly,
// which the manual-review domain tolerates.
func TryAcquireReviewLease(impl *Implementation, callerID uuid.UUID, now time.Time) LeaseOutcome {
	switch impl.Status {
	case StatusPending:
		return LeaseAcquired
	case StatusReviewing:
		if impl.ReviewerID != nil && *impl.ReviewerID == callerID {
			return LeaseAcquired
		}
		if impl.ReviewStartedOn != nil && now.Sub(*impl.ReviewStartedOn) >= MaximumReviewDuration {
			return LeaseAcquired
		}
		return LeaseHeldByOther
	default:
		return LeaseAlreadyResolved
	}
}
