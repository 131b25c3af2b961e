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

// ReferralRepo implements ports.ReferralRepository. Referral rows are
// append-only apart from the single pending -> paid transition.
type ReferralRepo struct {
	q querier
}

const referralColumns = `id, booking_id, performer_id, fee, override_fee, status,
	paid_at, receipt_url, created_at`

func scanReferral(row pgx.Row) (*domain.Referral, error) {
	var r domain.Referral
	err := row.Scan(
		&r.ID, &r.BookingID, &r.PerformerID, &r.Fee, &r.OverrideFee, &r.Status,
		&r.PaidAt, &r.ReceiptURL, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *ReferralRepo) Create(ctx context.Context, ref domain.Referral) error {
	const sql = `
		INSERT INTO referrals
		    (id, booking_id, performer_id, fee, override_fee, status, created_at)
		VALUES
		    ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.Exec(ctx, sql,
		ref.ID, ref.BookingID, ref.PerformerID, ref.Fee, ref.OverrideFee, ref.Status, ref.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert referral: %w", err)
	}
	return nil
}

func (r *ReferralRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Referral, error) {
	sql := `SELECT ` + referralColumns + ` FROM referrals WHERE id = $1`
	ref, err := scanReferral(r.q.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load referral: %w", err)
	}
	return ref, nil
}

func (r *ReferralRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, receiptURL *string) (*domain.Referral, error) {
	sql := `
		UPDATE referrals
		SET status = 'paid', paid_at = $2, receipt_url = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + referralColumns
	ref, err := scanReferral(r.q.QueryRow(ctx, sql, id, paidAt, receiptURL))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the referral never existed or it is already settled.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrAlreadySettled
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark referral paid: %w", err)
	}
	return ref, nil
}
