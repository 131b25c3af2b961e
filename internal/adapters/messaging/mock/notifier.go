package mock

import (
	"context"
	"log/slog"

	"performer-marketplace/internal/core/domain"
)

// Notifier is a stub for the Notifier port, used when no broker is
// configured. It only logs what would have been sent.
type Notifier struct {
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

func (n *Notifier) BookingCreated(ctx context.Context, b *domain.Booking) error {
	n.logger.Info("[mock] booking created notification", "booking_id", b.ID, "performer_id", b.PerformerID)
	return nil
}

func (n *Notifier) BookingDecided(ctx context.Context, b *domain.Booking) error {
	n.logger.Info("[mock] booking decided notification", "booking_id", b.ID, "status", b.Status)
	return nil
}

func (n *Notifier) DepositVerified(ctx context.Context, b *domain.Booking) error {
	n.logger.Info("[mock] deposit verified notification", "booking_id", b.ID)
	return nil
}

func (n *Notifier) ApplicationReviewed(ctx context.Context, a *domain.VettingApplication) error {
	n.logger.Info("[mock] application reviewed notification", "application_id", a.ID, "status", a.Status)
	return nil
}

func (n *Notifier) Close() {}
