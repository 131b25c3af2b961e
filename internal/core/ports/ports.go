// Package ports defines the interface boundary of the core: outgoing
// ports for persistence and messaging, incoming ports for the application
// services. Implementations live under internal/adapters.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"performer-marketplace/internal/auth"
	"performer-marketplace/internal/core/domain"
)

// Store is the outgoing persistence port. Repositories obtained from a
// Store passed to WithTx are transaction-scoped; everything else runs on
// the shared pool.
type Store interface {
	Users() UserRepository
	Services() ServiceRepository
	Bookings() BookingRepository
	Referrals() ReferralRepository
	Vetting() VettingRepository
	Performers() PerformerRepository
	Audit() AuditRecorder

	// WithTx runs fn against a transaction-scoped Store. A nil return
	// commits; any error rolls back every write made through fn's Store.
	WithTx(ctx context.Context, fn func(Store) error) error
}

type UserRepository interface {
	Create(ctx context.Context, u domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
}

type ServiceRepository interface {
	Create(ctx context.Context, s domain.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Service, error)
}

// BookingRepository persists the booking aggregate. Transition methods are
// conditional updates: the precondition is re-checked by the database at
// write time, so a stale in-request snapshot can never produce a lost
// update. They return ErrNotFound when the row is absent and
// ErrInvalidState when it exists but the precondition no longer holds.
type BookingRepository interface {
	Create(ctx context.Context, b domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)

	// UpdateDecision moves booking_status off pending. Terminal once set.
	UpdateDecision(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)

	// SetReceipt stores the receipt pointer and moves payment_status to
	// deposit_pending_review. Re-submission overwrites the pointer; the
	// only precondition is that the deposit is not already paid.
	SetReceipt(ctx context.Context, id uuid.UUID, receiptURL string) (*domain.Booking, error)

	// MarkDepositPaid finalizes the payment leg. Precondition:
	// payment_status != deposit_paid.
	MarkDepositPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, etaMinutes *int, etaNote *string) (*domain.Booking, error)
}

type ReferralRepository interface {
	Create(ctx context.Context, r domain.Referral) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Referral, error)

	// MarkPaid settles a pending referral. Returns ErrAlreadySettled when
	// the referral exists but is already paid.
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, receiptURL *string) (*domain.Referral, error)
}

type VettingRepository interface {
	Create(ctx context.Context, a domain.VettingApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VettingApplication, error)

	// MarkReviewed moves a reviewable application to a terminal reviewed
	// state. Precondition: status in {pending, needs_review}.
	MarkReviewed(ctx context.Context, id, reviewerID uuid.UUID, status domain.VettingStatus, notes string, reviewedAt time.Time) (*domain.VettingApplication, error)

	// ExpireBefore moves every still-reviewable application created
	// before cutoff to expired and returns the affected rows.
	ExpireBefore(ctx context.Context, cutoff time.Time) ([]domain.VettingApplication, error)
}

type PerformerRepository interface {
	Create(ctx context.Context, p domain.Performer) error
}

// AuditRecorder appends to the audit log. Callers treat failures as
// log-and-continue; an audit miss never fails the operation it describes.
type AuditRecorder interface {
	Record(ctx context.Context, e domain.AuditEntry) error
}

// Notifier is the outgoing port toward the SMS/WhatsApp gateway path. All
// methods are fire-and-forget from the caller's point of view: a returned
// error is logged, never surfaced, and never rolls back a committed
// transition.
type Notifier interface {
	BookingCreated(ctx context.Context, b *domain.Booking) error
	BookingDecided(ctx context.Context, b *domain.Booking) error
	DepositVerified(ctx context.Context, b *domain.Booking) error
	ApplicationReviewed(ctx context.Context, a *domain.VettingApplication) error
}

// RateLimiterRepository backs the per-IP request limiter.
type RateLimiterRepository interface {
	IsAllowed(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// CreateBookingInput carries the client's booking request. PerformerID
// must match the performer on the referenced service.
type CreateBookingInput struct {
	PerformerID uuid.UUID
	ServiceID   uuid.UUID
	EventAt     time.Time
}

// VerifyDepositInput carries the admin's verification payload.
type VerifyDepositInput struct {
	EtaMinutes          *int
	EtaNote             *string
	ReferralOverrideFee *decimal.Decimal
}

// VerifiedDeposit is the result of a deposit verification: the updated
// booking and the referral created alongside it, nil when the computed fee
// was zero.
type VerifiedDeposit struct {
	Booking  *domain.Booking
	Referral *domain.Referral
}

type SubmitApplicationInput struct {
	StageName       string
	Bio             string
	PerformanceType string
	ExperienceYears int
	PortfolioURL    *string
}

// ReviewResult bundles the reviewed application with the performer profile
// provisioned on approval (nil on reject).
type ReviewResult struct {
	Application *domain.VettingApplication
	Performer   *domain.Performer
}

// BookingService is the incoming port for the booking aggregate.
type BookingService interface {
	Create(ctx context.Context, caller auth.Identity, in CreateBookingInput) (*domain.Booking, error)
	Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*domain.Booking, error)
	Decide(ctx context.Context, caller auth.Identity, bookingID uuid.UUID, decision domain.BookingDecision) (*domain.Booking, error)
	SubmitReceipt(ctx context.Context, caller auth.Identity, bookingID uuid.UUID, receiptURL string) (*domain.Booking, error)
	VerifyDeposit(ctx context.Context, caller auth.Identity, bookingID uuid.UUID, in VerifyDepositInput) (*VerifiedDeposit, error)
}

// ReferralService is the incoming port for the referral ledger.
type ReferralService interface {
	MarkPaid(ctx context.Context, caller auth.Identity, referralID uuid.UUID, receiptURL *string) (*domain.Referral, error)
}

// VettingService is the incoming port for the vetting pipeline.
type VettingService interface {
	Submit(ctx context.Context, caller auth.Identity, in SubmitApplicationInput) (*domain.VettingApplication, error)
	Review(ctx context.Context, caller auth.Identity, applicationID uuid.UUID, decision domain.ReviewDecision, notes string) (*ReviewResult, error)
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// CatalogService is the incoming port for the minimal service catalog.
type CatalogService interface {
	CreateService(ctx context.Context, caller auth.Identity, title string, rate decimal.Decimal) (*domain.Service, error)
}

// AccountService is the incoming port for registration and login. Token
// issuing stays in the HTTP adapter.
type AccountService interface {
	Register(ctx context.Context, username, phone, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
}
