// Package audit records grant, revoke, context selection, and menu
// mutation events for later review.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger is the audit sink handlers write to.
type Logger interface {
	Log(ctx context.Context, event *Event) error
	Close() error
}

// DBLogger writes audit events to the audit_events table.
type DBLogger struct {
	db *sql.DB
}

// NewDBLogger creates a database-backed audit logger.
func NewDBLogger(db *sql.DB) *DBLogger {
	return &DBLogger{db: db}
}

// Log persists one event. A missing id and timestamp are filled in here so
// callers only describe what happened.
func (l *DBLogger) Log(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO audit_events (id, event_type, actor_id, subject_id, platform_id, company_id, resource_type, resource_id, allowed, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if _, err := l.db.ExecContext(ctx, query,
		event.ID,
		event.Type,
		event.ActorID,
		event.SubjectID,
		event.PlatformID,
		event.CompanyID,
		event.ResourceType,
		event.ResourceID,
		event.Allowed,
		event.Message,
		event.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

// Close implements Logger; the DB connection is owned by the caller.
func (l *DBLogger) Close() error { return nil }

// NopLogger discards events. Used in tests and when auditing is disabled.
type NopLogger struct{}

// Log implements Logger.
func (NopLogger) Log(ctx context.Context, event *Event) error { return nil }

// Close implements Logger.
func (NopLogger) Close() error { return nil }

// Prune deletes events older than the retention window, returning the
// number of rows removed.
func Prune(ctx context.Context, db *sql.DB, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res, err := db.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit events: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned audit events: %w", err)
	}
	return affected, nil
}
