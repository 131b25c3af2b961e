package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"performer-marketplace/internal/core/domain"
)

// AuditRepo implements ports.AuditRecorder. The audit_log table is
// append-only; there are no update or delete paths.
type AuditRepo struct {
	q querier
}

func (r *AuditRepo) Record(ctx context.Context, e domain.AuditEntry) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	const sql = `
		INSERT INTO audit_log (id, actor_id, action, target_table, target_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.q.Exec(ctx, sql, e.ID, e.ActorID, e.Action, e.TargetTable, e.TargetID, metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// RecentAuditEntries returns the newest entries for operator inspection.
// This is an ops-tool query, not part of the AuditRecorder port.
func (s *Store) RecentAuditEntries(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	const sql = `
		SELECT id, actor_id, action, target_table, target_id, metadata, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.q.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetTable, &e.TargetID, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
