package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"performer-marketplace/internal/auth"
	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
)

// catalogService implements the CatalogService port. The catalog stays
// minimal: the booking core only needs a service row carrying a rate.
type catalogService struct {
	store  ports.Store
	logger *slog.Logger
}

func NewCatalogService(store ports.Store, logger *slog.Logger) ports.CatalogService {
	return &catalogService{store: store, logger: logger}
}

func (s *catalogService) CreateService(ctx context.Context, caller auth.Identity, title string, rate decimal.Decimal) (*domain.Service, error) {
	if err := auth.CanCreateService(caller); err != nil {
		return nil, err
	}
	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: rate must be positive", domain.ErrValidation)
	}

	svc := domain.Service{
		ID:          uuid.New(),
		PerformerID: caller.UserID,
		Title:       title,
		Rate:        rate.Round(2),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Services().Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	recordAudit(ctx, s.store.Audit(), s.logger, caller.UserID, domain.AuditCreateService, "services", svc.ID, map[string]any{
		"title": title,
		"rate":  svc.Rate.String(),
	})

	return &svc, nil
}
