package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferralStatus: pending -> paid. Referrals are never deleted.
type ReferralStatus string

const (
	ReferralPending ReferralStatus = "pending"
	ReferralPaid    ReferralStatus = "paid"
)

// Referral is created as a side effect of deposit verification, and only
// when the computed fee is strictly positive. The computed fee is always
// persisted; an admin override, when present, changes what is owed but not
// what was computed.
type Referral struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	PerformerID uuid.UUID
	Fee         decimal.Decimal
	OverrideFee *decimal.Decimal
	Status      ReferralStatus
	PaidAt      *time.Time
	ReceiptURL  *string
	CreatedAt   time.Time
}

// EffectiveFee is the amount actually owed: the override when it is set
// and positive, the computed fee otherwise.
func (r *Referral) EffectiveFee() decimal.Decimal {
	if r.OverrideFee != nil && r.OverrideFee.IsPositive() {
		return *r.OverrideFee
	}
	return r.Fee
}
