// Package auth holds the authorization guard: pure decision functions
// over (identity, entity snapshot, requested operation). The persistence
// layer's row policies are a second line of defense beneath these checks,
// never a replacement for them.
package auth

import "performer-marketplace/internal/core/domain"

// check is the common prologue: every guard fails with ErrUnauthenticated
// before it ever considers roles or ownership.
func check(id Identity, allowed func() bool) error {
	if id.IsZero() {
		return domain.ErrUnauthenticated
	}
	if !allowed() {
		return domain.ErrForbidden
	}
	return nil
}

// CanCreateBooking: bookings are created by clients.
func CanCreateBooking(id Identity) error {
	return check(id, func() bool {
		switch id.Role {
		case domain.RoleClient:
			return true
		case domain.RolePerformer, domain.RoleAdmin:
			return false
		}
		return false
	})
}

// CanDecideBooking: booking_status is mutated only by the performer
// referenced on the booking.
func CanDecideBooking(id Identity, b *domain.Booking) error {
	return check(id, func() bool {
		switch id.Role {
		case domain.RolePerformer:
			return b.PerformerID == id.UserID
		case domain.RoleClient, domain.RoleAdmin:
			return false
		}
		return false
	})
}

// CanSubmitReceipt: the payment-submission step belongs to the booking's
// client.
func CanSubmitReceipt(id Identity, b *domain.Booking) error {
	return check(id, func() bool {
		switch id.Role {
		case domain.RoleClient:
			return b.ClientID == id.UserID
		case domain.RolePerformer, domain.RoleAdmin:
			return false
		}
		return false
	})
}

// CanVerifyDeposit: deposit verification is an admin action.
func CanVerifyDeposit(id Identity) error {
	return check(id, func() bool { return id.Role == domain.RoleAdmin })
}

// CanSettleReferral: referral settlement is an admin action.
func CanSettleReferral(id Identity) error {
	return check(id, func() bool { return id.Role == domain.RoleAdmin })
}

// CanSubmitApplication: applicants are clients; performers and admins
// already hold the role the pipeline would grant.
func CanSubmitApplication(id Identity) error {
	return check(id, func() bool { return id.Role == domain.RoleClient })
}

// CanReviewApplication: vetting review is an admin action.
func CanReviewApplication(id Identity) error {
	return check(id, func() bool { return id.Role == domain.RoleAdmin })
}

// CanCreateService: catalog entries belong to performers.
func CanCreateService(id Identity) error {
	return check(id, func() bool { return id.Role == domain.RolePerformer })
}

// CanViewBooking: either party on the booking, or an admin.
func CanViewBooking(id Identity, b *domain.Booking) error {
	return check(id, func() bool {
		switch id.Role {
		case domain.RoleClient:
			return b.ClientID == id.UserID
		case domain.RolePerformer:
			return b.PerformerID == id.UserID
		case domain.RoleAdmin:
			return true
		}
		return false
	})
}
