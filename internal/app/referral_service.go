package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"performer-marketplace/internal/auth"
	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
	"performer-marketplace/internal/observability"
)

// referralService implements the ReferralService port.
type referralService struct {
	store  ports.Store
	logger *slog.Logger
}

func NewReferralService(store ports.Store, logger *slog.Logger) ports.ReferralService {
	return &referralService{store: store, logger: logger}
}

// MarkPaid settles a pending referral. The core sends no notification
// here; settlement messaging is a collaborator concern.
func (s *referralService) MarkPaid(ctx context.Context, caller auth.Identity, referralID uuid.UUID, receiptURL *string) (*domain.Referral, error) {
	if err := auth.CanSettleReferral(caller); err != nil {
		return nil, err
	}

	referral, err := s.store.Referrals().MarkPaid(ctx, referralID, time.Now().UTC(), receiptURL)
	if err != nil {
		return nil, err
	}

	observability.CountTransition("referral", "paid")
	metadata := map[string]any{
		"fee":          referral.Fee.String(),
		"resolved_fee": referral.EffectiveFee().String(),
	}
	if receiptURL != nil {
		metadata["receipt_url"] = *receiptURL
	}
	recordAudit(ctx, s.store.Audit(), s.logger, caller.UserID, domain.AuditMarkReferralPaid, "referrals", referralID, metadata)

	return referral, nil
}
