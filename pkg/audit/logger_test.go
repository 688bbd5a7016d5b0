package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE audit_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			actor_id INTEGER,
			subject_id INTEGER,
			platform_id INTEGER,
			company_id INTEGER,
			resource_type TEXT NOT NULL DEFAULT '',
			resource_id TEXT NOT NULL DEFAULT '',
			allowed INTEGER NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create test tables: %v", err)
	}

	return db
}

func countEvents(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM audit_events`).Scan(&n); err != nil {
		t.Fatalf("Failed to count events: %v", err)
	}
	return n
}

func TestDBLogger_FillsIDAndTimestamp(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	logger := NewDBLogger(db)

	actor := int64(7)
	event := &Event{
		Type:         EventRoleGrant,
		ActorID:      &actor,
		ResourceType: "role_grant",
		ResourceID:   "12",
		Allowed:      true,
		Message:      "granted",
	}
	if err := logger.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	if event.ID == "" {
		t.Error("Expected id to be filled in")
	}
	if event.CreatedAt.IsZero() {
		t.Error("Expected created_at to be filled in")
	}

	var storedType string
	var storedActor sql.NullInt64
	err := db.QueryRow(`SELECT event_type, actor_id FROM audit_events WHERE id = $1`, event.ID).
		Scan(&storedType, &storedActor)
	if err != nil {
		t.Fatalf("Failed to read back event: %v", err)
	}
	if storedType != string(EventRoleGrant) {
		t.Errorf("Unexpected stored type: %s", storedType)
	}
	if !storedActor.Valid || storedActor.Int64 != 7 {
		t.Errorf("Unexpected stored actor: %v", storedActor)
	}
}

func TestDBLogger_KeepsCallerProvidedID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	logger := NewDBLogger(db)
	event := &Event{ID: "fixed-id", Type: EventContextSelect, Allowed: true}
	if err := logger.Log(context.Background(), event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if event.ID != "fixed-id" {
		t.Errorf("Expected caller id to be kept, got %s", event.ID)
	}
}

func TestPrune(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	logger := NewDBLogger(db)

	old := &Event{Type: EventMenuEdit, Allowed: true, CreatedAt: time.Now().Add(-48 * time.Hour)}
	recent := &Event{Type: EventMenuEdit, Allowed: true}
	for _, e := range []*Event{old, recent} {
		if err := logger.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	removed, err := Prune(ctx, db, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 pruned event, got %d", removed)
	}
	if countEvents(t, db) != 1 {
		t.Errorf("Expected 1 surviving event, got %d", countEvents(t, db))
	}
}

func TestPrune_RowsAffectedFailureSurfaces(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock database: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM audit_events").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected unsupported")))

	if _, err := Prune(context.Background(), db, 24*time.Hour); err == nil {
		t.Error("Expected Prune to surface the row count failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestNopLogger(t *testing.T) {
	var logger Logger = NopLogger{}
	if err := logger.Log(context.Background(), &Event{Type: EventContextClear}); err != nil {
		t.Errorf("NopLogger.Log returned error: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("NopLogger.Close returned error: %v", err)
	}
}
