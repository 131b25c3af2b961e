package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"performer-marketplace/internal/auth"
	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
	"performer-marketplace/internal/observability"
)

// vettingService implements the VettingService port.
type vettingService struct {
	store    ports.Store
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewVettingService(store ports.Store, notifier ports.Notifier, logger *slog.Logger) ports.VettingService {
	return &vettingService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *vettingService) Submit(ctx context.Context, caller auth.Identity, in ports.SubmitApplicationInput) (*domain.VettingApplication, error) {
	if err := auth.CanSubmitApplication(caller); err != nil {
		return nil, err
	}

	app := domain.VettingApplication{
		ID:              uuid.New(),
		ApplicantID:     caller.UserID,
		StageName:       in.StageName,
		Bio:             in.Bio,
		PerformanceType: in.PerformanceType,
		ExperienceYears: in.ExperienceYears,
		PortfolioURL:    in.PortfolioURL,
		Status:          domain.VettingPending,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.Vetting().Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create vetting application: %w", err)
	}

	observability.CountTransition("vetting", "submitted")
	recordAudit(ctx, s.store.Audit(), s.logger, caller.UserID, domain.AuditSubmitVetting, "vetting_applications", app.ID, map[string]any{
		"stage_name": app.StageName,
	})

	return &app, nil
}

// Review decides a reviewable application. Approval runs a three-way
// write inside one transaction: the application becomes approved, a
// verified performer profile is created, and the applicant's account role
// is promoted. Any failure rolls back all three; an approved application
// without a performer row can never be observed.
func (s *vettingService) Review(ctx context.Context, caller auth.Identity, applicationID uuid.UUID, decision domain.ReviewDecision, notes string) (*ports.ReviewResult, error) {
	if err := auth.CanReviewApplication(caller); err != nil {
		return nil, err
	}

	app, err := s.store.Vetting().GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.Status.Reviewable() {
		return nil, fmt.Errorf("%w: application is %s", domain.ErrInvalidState, app.Status)
	}

	now := time.Now().UTC()
	result := &ports.ReviewResult{}

	switch decision {
	case domain.ReviewReject:
		reviewed, err := s.store.Vetting().MarkReviewed(ctx, applicationID, caller.UserID, domain.VettingRejected, notes, now)
		if err != nil {
			return nil, err
		}
		result.Application = reviewed

	case domain.ReviewApprove:
		err := s.store.WithTx(ctx, func(tx ports.Store) error {
			reviewed, err := tx.Vetting().MarkReviewed(ctx, applicationID, caller.UserID, domain.VettingApproved, notes, now)
			if err != nil {
				return err
			}

			performer := domain.Performer{
				ID:        uuid.New(),
				UserID:    reviewed.ApplicantID,
				StageName: reviewed.StageName,
				Bio:       reviewed.Bio,
				Verified:  true,
				CreatedAt: now,
			}
			if err := tx.Performers().Create(ctx, performer); err != nil {
				return fmt.Errorf("provision performer profile: %w", err)
			}

			if err := tx.Users().UpdateRole(ctx, reviewed.ApplicantID, domain.RolePerformer); err != nil {
				return fmt.Errorf("promote applicant role: %w", err)
			}

			result.Application = reviewed
			result.Performer = &performer
			return nil
		})
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}

	observability.CountTransition("vetting", string(decision))
	recordAudit(ctx, s.store.Audit(), s.logger, caller.UserID, domain.AuditReviewVetting, "vetting_applications", applicationID, map[string]any{
		"decision": string(decision),
		"status":   string(result.Application.Status),
	})
	s.notifyReviewed(ctx, result.Application)

	return result, nil
}

func (s *vettingService) notifyReviewed(ctx context.Context, app *domain.VettingApplication) {
	if err := s.notifier.ApplicationReviewed(ctx, app); err != nil {
		s.logger.Error("failed to publish notification", "kind", "application_reviewed", "error", err)
	}
}

// ExpireStale applies the time-based pending|needs_review -> expired
// transition. The timer itself lives outside the core (opsctl, cron).
func (s *vettingService) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	expired, err := s.store.Vetting().ExpireBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	for _, app := range expired {
		observability.CountTransition("vetting", "expired")
		recordAudit(ctx, s.store.Audit(), s.logger, uuid.Nil, domain.AuditExpireVetting, "vetting_applications", app.ID, map[string]any{
			"created_at": app.CreatedAt.Format(time.RFC3339),
		})
	}

	return len(expired), nil
}
