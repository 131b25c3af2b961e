package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"performer-marketplace/internal/core/domain"
)

// BookingRepo implements ports.BookingRepository.
type BookingRepo struct {
	q querier
}

const bookingColumns = `id, client_id, performer_id, service_id, event_at, deposit_amount,
	booking_status, payment_status, deposit_receipt_url, deposit_pending_review,
	deposit_paid_at, eta_minutes, eta_note, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.ClientID, &b.PerformerID, &b.ServiceID, &b.EventAt, &b.DepositAmount,
		&b.Status, &b.PaymentStatus, &b.DepositReceiptURL, &b.DepositPendingReview,
		&b.DepositPaidAt, &b.EtaMinutes, &b.EtaNote, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) Create(ctx context.Context, b domain.Booking) error {
	const sql = `
		INSERT INTO bookings
		    (id, client_id, performer_id, service_id, event_at, deposit_amount,
		     booking_status, payment_status, deposit_pending_review, created_at, updated_at)
		VALUES
		    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`
	_, err := r.q.Exec(ctx, sql,
		b.ID, b.ClientID, b.PerformerID, b.ServiceID, b.EventAt, b.DepositAmount,
		b.Status, b.PaymentStatus, b.DepositPendingReview, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	sql := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.q.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return b, nil
}

// reclassify distinguishes "row gone" from "precondition no longer holds"
// after a conditional update touched zero rows.
func (r *BookingRepo) reclassify(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrInvalidState
}

func (r *BookingRepo) UpdateDecision(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	sql := `
		UPDATE bookings
		SET booking_status = $2, updated_at = now()
		WHERE id = $1 AND booking_status = 'pending'
		RETURNING ` + bookingColumns
	b, err := scanBooking(r.q.QueryRow(ctx, sql, id, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.reclassify(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking decision: %w", err)
	}
	return b, nil
}

func (r *BookingRepo) SetReceipt(ctx context.Context, id uuid.UUID, receiptURL string) (*domain.Booking, error) {
	sql := `
		UPDATE bookings
		SET deposit_receipt_url = $2,
		    deposit_pending_review = TRUE,
		    payment_status = 'deposit_pending_review',
		    updated_at = now()
		WHERE id = $1 AND payment_status <> 'deposit_paid'
		RETURNING ` + bookingColumns
	b, err := scanBooking(r.q.QueryRow(ctx, sql, id, receiptURL))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.reclassify(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set deposit receipt: %w", err)
	}
	return b, nil
}

func (r *BookingRepo) MarkDepositPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, etaMinutes *int, etaNote *string) (*domain.Booking, error) {
	sql := `
		UPDATE bookings
		SET payment_status = 'deposit_paid',
		    deposit_pending_review = FALSE,
		    deposit_paid_at = $2,
		    eta_minutes = COALESCE($3, eta_minutes),
		    eta_note = COALESCE($4, eta_note),
		    updated_at = now()
		WHERE id = $1 AND payment_status <> 'deposit_paid'
		RETURNING ` + bookingColumns
	b, err := scanBooking(r.q.QueryRow(ctx, sql, id, paidAt, etaMinutes, etaNote))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.reclassify(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark deposit paid: %w", err)
	}
	return b, nil
}
