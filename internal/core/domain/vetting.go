package domain

import (
	"time"

	"github.com/google/uuid"
)

// VettingStatus: pending -> needs_review | approved | rejected,
// pending|needs_review -> expired. approved, rejected and expired are
// terminal. The expiry timer lives outside the core; only the transition
// is defined here.
type VettingStatus string

const (
	VettingPending     VettingStatus = "pending"
	VettingNeedsReview VettingStatus = "needs_review"
	VettingApproved    VettingStatus = "approved"
	VettingRejected    VettingStatus = "rejected"
	VettingExpired     VettingStatus = "expired"
)

// ReviewDecision is the admin verdict on an application.
type ReviewDecision string

const (
	ReviewApprove ReviewDecision = "approve"
	ReviewReject  ReviewDecision = "reject"
)

// Reviewable reports whether an application can still be decided.
func (s VettingStatus) Reviewable() bool {
	return s == VettingPending || s == VettingNeedsReview
}

// VettingApplication is a prospective performer's submission. Approval
// atomically provisions a Performer profile and promotes the applicant's
// account role.
type VettingApplication struct {
	ID              uuid.UUID
	ApplicantID     uuid.UUID
	StageName       string
	Bio             string
	PerformanceType string
	ExperienceYears int
	PortfolioURL    *string
	Status          VettingStatus
	ReviewerID      *uuid.UUID
	ApprovalNotes   *string
	RejectionReason *string
	ReviewedAt      *time.Time
	CreatedAt       time.Time
}

// Performer is the public profile provisioned when an application is
// approved. Verified is always true for profiles created by the pipeline.
type Performer struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	StageName string
	Bio       string
	Verified  bool
	CreatedAt time.Time
}
