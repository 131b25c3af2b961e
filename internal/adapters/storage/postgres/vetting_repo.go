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

// VettingRepo implements ports.VettingRepository.
type VettingRepo struct {
	q querier
}

const vettingColumns = `id, applicant_id, stage_name, bio, performance_type,
	experience_years, portfolio_url, status, reviewer_id, approval_notes,
	rejection_reason, reviewed_at, created_at`

func scanApplication(row pgx.Row) (*domain.VettingApplication, error) {
	var a domain.VettingApplication
	err := row.Scan(
		&a.ID, &a.ApplicantID, &a.StageName, &a.Bio, &a.PerformanceType,
		&a.ExperienceYears, &a.PortfolioURL, &a.Status, &a.ReviewerID, &a.ApprovalNotes,
		&a.RejectionReason, &a.ReviewedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *VettingRepo) Create(ctx context.Context, a domain.VettingApplication) error {
	const sql = `
		INSERT INTO vetting_applications
		    (id, applicant_id, stage_name, bio, performance_type, experience_years,
		     portfolio_url, status, created_at)
		VALUES
		    ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.Exec(ctx, sql,
		a.ID, a.ApplicantID, a.StageName, a.Bio, a.PerformanceType, a.ExperienceYears,
		a.PortfolioURL, a.Status, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vetting application: %w", err)
	}
	return nil
}

func (r *VettingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.VettingApplication, error) {
	sql := `SELECT ` + vettingColumns + ` FROM vetting_applications WHERE id = $1`
	a, err := scanApplication(r.q.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vetting application: %w", err)
	}
	return a, nil
}

func (r *VettingRepo) MarkReviewed(ctx context.Context, id, reviewerID uuid.UUID, status domain.VettingStatus, notes string, reviewedAt time.Time) (*domain.VettingApplication, error) {
	// approval_notes and rejection_reason are mutually exclusive; the
	// status decides which column receives the reviewer's notes.
	sql := `
		UPDATE vetting_applications
		SET status = $2,
		    reviewer_id = $3,
		    reviewed_at = $4,
		    approval_notes = CASE WHEN $2 = 'approved' THEN $5 ELSE approval_notes END,
		    rejection_reason = CASE WHEN $2 = 'rejected' THEN $5 ELSE rejection_reason END
		WHERE id = $1 AND status IN ('pending', 'needs_review')
		RETURNING ` + vettingColumns
	a, err := scanApplication(r.q.QueryRow(ctx, sql, id, status, reviewerID, reviewedAt, notes))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrInvalidState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark application reviewed: %w", err)
	}
	return a, nil
}

func (r *VettingRepo) ExpireBefore(ctx context.Context, cutoff time.Time) ([]domain.VettingApplication, error) {
	sql := `
		UPDATE vetting_applications
		SET status = 'expired'
		WHERE status IN ('pending', 'needs_review') AND created_at < $1
		RETURNING ` + vettingColumns
	rows, err := r.q.Query(ctx, sql, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to expire applications: %w", err)
	}
	defer rows.Close()

	var expired []domain.VettingApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expired application: %w", err)
		}
		expired = append(expired, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading expired applications: %w", err)
	}
	return expired, nil
}

// PerformerRepo implements ports.PerformerRepository.
type PerformerRepo struct {
	q querier
}

func (r *PerformerRepo) Create(ctx context.Context, p domain.Performer) error {
	const sql = `
		INSERT INTO performers (id, user_id, stage_name, bio, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.Exec(ctx, sql, p.ID, p.UserID, p.StageName, p.Bio, p.Verified, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert performer profile: %w", err)
	}
	return nil
}
