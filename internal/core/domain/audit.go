package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit action names, one per mutating operation.
const (
	AuditCreateBooking    = "create_booking"
	AuditBookingDecision  = "booking_decision"
	AuditUploadReceipt    = "upload_receipt"
	AuditVerifyPayID      = "verify_payid"
	AuditMarkReferralPaid = "mark_referral_paid"
	AuditSubmitVetting    = "submit_vetting"
	AuditReviewVetting    = "review_vetting"
	AuditExpireVetting    = "expire_vetting"
	AuditCreateService    = "create_service"
	AuditRegisterUser     = "register_user"
)

// AuditEntry is an immutable record of a mutating action. Entries are
// append-only; nothing in the core updates or deletes them. Writing one is
// best-effort observability, not a consistency-bearing write.
type AuditEntry struct {
	ID          uuid.UUID
	ActorID     uuid.UUID
	Action      string
	TargetTable string
	TargetID    uuid.UUID
	Metadata    map[string]any
	CreatedAt   time.Time
}
