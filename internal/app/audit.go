package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
)

// recordAudit appends an audit entry after the primary write has
// committed. Audit is best-effort observability: a failure is logged and
// swallowed, never surfaced to the caller.
func recordAudit(ctx context.Context, rec ports.AuditRecorder, logger *slog.Logger, actor uuid.UUID, action, targetTable string, targetID uuid.UUID, metadata map[string]any) {
	entry := domain.AuditEntry{
		ID:          uuid.New(),
		ActorID:     actor,
		Action:      action,
		TargetTable: targetTable,
		TargetID:    targetID,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
	if err := rec.Record(ctx, entry); err != nil {
		logger.Warn("failed to append audit entry", "action", action, "target_id", targetID, "error", err)
	}
}
