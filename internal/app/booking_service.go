package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"performer-marketplace/internal/auth"
	"performer-marketplace/internal/config"
	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/fees"
	"performer-marketplace/internal/core/ports"
	"performer-marketplace/internal/observability"
)

// bookingService implements the BookingService port. It holds no booking
// state between requests; every operation reads the persisted row,
// validates, and writes through a conditional update.
type bookingService struct {
	store    ports.Store
	notifier ports.Notifier
	fees     config.FeesConfig
	logger   *slog.Logger
}

// NewBookingService is the constructor for the booking aggregate service.
// Fee percentages arrive through config and are passed into the fee
// calculator explicitly.
func NewBookingService(store ports.Store, notifier ports.Notifier, feesCfg config.FeesConfig, logger *slog.Logger) ports.BookingService {
	return &bookingService{
		store:    store,
		notifier: notifier,
		fees:     feesCfg,
		logger:   logger,
	}
}

func (s *bookingService) notify(what string, err error) {
	if err != nil {
		s.logger.Error("failed to publish notification", "kind", what, "error", err)
	}
}

func (s *bookingService) Create(ctx context.Context, caller auth.Identity, in ports.CreateBookingInput) (*domain.Booking, error) {
	if err := auth.CanCreateBooking(caller); err != nil {
		return nil, err
	}

	svc, err := s.store.Services().GetByID(ctx, in.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("look up service: %w", err)
	}
	if svc.PerformerID != in.PerformerID {
		return nil, fmt.Errorf("%w: service does not belong to the requested performer", domain.ErrValidation)
	}

	now := time.Now().UTC()
	booking := domain.Booking{
		ID:            uuid.New(),
		ClientID:      caller.UserID,
		PerformerID:   in.PerformerID,
		ServiceID:     in.ServiceID,
		EventAt:       in.EventAt,
		DepositAmount: fees.Deposit(svc.Rate, s.fees.DepositPercentage),
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Bookings().Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	observability.CountTransition("booking", "create")
	recordAudit(ctx, s.store.Audit(), s.logger, caller.UserID, domain.AuditCreateBooking, "bookings", booking.ID, map[string]any{
		"service_id":     booking.ServiceID.String(),
		"performer_id":   booking.PerformerID.String(),
		"deposit_amount": booking.DepositAmount.String(),
	})
	s.notify("booking_created", s.notifier.BookingCreated(ctx, &booking))

	return &booking, nil
}

func (s *bookingService) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*domain.Booking, error) {
	b, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanViewBooking(caller, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) Decide(ctx context.Context, caller auth.Identity, bookingID uuid.UUID, decision domain.BookingDecision) (*domain.Booking, error) {
	b, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := auth.CanDecideBooking(caller, b); err != nil {
		return nil, err
	}

	var status domain.BookingStatus
	switch decision {
	case domain.DecisionApproved:
		status = domain.BookingApproved
	case domain.DecisionDeclined:
		status = domain.BookingDeclined
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}

	// The repository re-checks booking_status == pending at write time;
	// the snapshot above is only used for the ownership check.
	updated, err := s.store.Bookings().UpdateDecision(ctx, bookingID, status)
	if err != nil {
		return nil, err
	}

	observability.CountTransition("booking", string(decision))
	recordAudit(ctx, s.store.Audit(), s.logger, caller.UserID, domain.AuditBookingDecision, "bookings", bookingID, map[string]any{
		"decision": string(decision),
	})
	s.notify("booking_decided", s.notifier.BookingDecided(ctx, updated))

	return updated, nil
}

func (s *bookingService) SubmitReceipt(ctx context.Context, caller auth.Identity, bookingID uuid.UUID, receiptURL string) (*domain.Booking, error) {
	b, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := auth.CanSubmitReceipt(caller, b); err != nil {
		return nil, err
	}

	// Re-submission is allowed and simply overwrites the receipt pointer,
	// tolerating client retries. Only an already-paid deposit rejects it.
	updated, err := s.store.Bookings().SetReceipt(ctx, bookingID, receiptURL)
	if err != nil {
		return nil, err
	}

	observability.CountTransition("booking", "receipt_submitted")
	recordAudit(ctx, s.store.Audit(), s.logger, caller.UserID, domain.AuditUploadReceipt, "bookings", bookingID, map[string]any{
		"receipt_url": receiptURL,
	})

	return updated, nil
}

func (s *bookingService) VerifyDeposit(ctx context.Context, caller auth.Identity, bookingID uuid.UUID, in ports.VerifyDepositInput) (*ports.VerifiedDeposit, error) {
	if err := auth.CanVerifyDeposit(caller); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &ports.VerifiedDeposit{}

	// Booking update and referral creation commit or roll back together.
	// MarkDepositPaid's precondition (not already paid) runs inside the
	// same transaction, so two concurrent verifications cannot both pass
	// it and produce two referrals.
	err := s.store.WithTx(ctx, func(tx ports.Store) error {
		b, err := tx.Bookings().MarkDepositPaid(ctx, bookingID, now, in.EtaMinutes, in.EtaNote)
		if err != nil {
			return err
		}
		result.Booking = b

		computed := fees.ReferralFee(b.DepositAmount, s.fees.ReferralPercentage)
		// Referral creation is gated on the computed fee, not the
		// override: a zero-fee booking yields no referral even when an
		// override is supplied.
		if !computed.IsPositive() {
			return nil
		}

		referral := domain.Referral{
			ID:          uuid.New(),
			BookingID:   b.ID,
			PerformerID: b.PerformerID,
			Fee:         computed,
			OverrideFee: in.ReferralOverrideFee,
			Status:      domain.ReferralPending,
			CreatedAt:   now,
		}
		if err := tx.Referrals().Create(ctx, referral); err != nil {
			return err
		}
		result.Referral = &referral
		return nil
	})
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{
		"deposit_amount": result.Booking.DepositAmount.String(),
	}
	if result.Referral != nil {
		metadata["computed_fee"] = result.Referral.Fee.String()
		metadata["resolved_fee"] = result.Referral.EffectiveFee().String()
		if result.Referral.OverrideFee != nil {
			metadata["override_fee"] = result.Referral.OverrideFee.String()
		}
	}

	observability.CountTransition("booking", "deposit_verified")
	recordAudit(ctx, s.store.Audit(), s.logger, caller.UserID, domain.AuditVerifyPayID, "bookings", bookingID, metadata)
	s.notify("deposit_verified", s.notifier.DepositVerified(ctx, result.Booking))

	return result, nil
}
