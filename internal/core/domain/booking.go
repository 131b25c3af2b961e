package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus is our own type for statuses to avoid "magic strings".
// pending -> approved | declined; both branches are terminal.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingDeclined BookingStatus = "declined"
)

// PaymentStatus tracks the deposit side of a booking independently of the
// performer's decision: pending -> deposit_pending_review -> deposit_paid.
type PaymentStatus string

const (
	PaymentPending              PaymentStatus = "pending"
	PaymentDepositPendingReview PaymentStatus = "deposit_pending_review"
	PaymentDepositPaid          PaymentStatus = "deposit_paid"
)

// BookingDecision is the performer's verdict on a pending booking.
type BookingDecision string

const (
	DecisionApproved BookingDecision = "approved"
	DecisionDeclined BookingDecision = "declined"
)

// Booking is the central aggregate of the marketplace. It holds no
// behavior that touches storage; every transition is re-validated against
// the persisted row at write time.
//
// Invariant: PaymentStatus == deposit_paid implies DepositPendingReview is
// false and DepositPaidAt is set.
type Booking struct {
	ID                   uuid.UUID
	ClientID             uuid.UUID
	PerformerID          uuid.UUID
	ServiceID            uuid.UUID
	EventAt              time.Time
	DepositAmount        decimal.Decimal
	Status               BookingStatus
	PaymentStatus        PaymentStatus
	DepositReceiptURL    *string
	DepositPendingReview bool
	DepositPaidAt        *time.Time
	EtaMinutes           *int
	EtaNote              *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Service is a bookable catalog entry owned by a performer. The booking
// core only needs its rate; listing and search live elsewhere.
type Service struct {
	ID          uuid.UUID
	PerformerID uuid.UUID
	Title       string
	Rate        decimal.Decimal
	CreatedAt   time.Time
}
