package access

import (
	"context"
	"database/sql"
	"testing"
)

func setupGuard(t *testing.T) (*Guard, *Store, *Selector, *sql.DB, int64) {
	t.Helper()

	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db)
	selector := NewSelector(db)
	guard := NewGuard(NewPermissionResolver(store), selector, store, nil)
	userID := seedUser(t, db, "casey")
	return guard, store, selector, db, userID
}

func TestGuard_ChecksAgainstSelectedContext(t *testing.T) {
	guard, store, selector, db, userID := setupGuard(t)
	ctx := context.Background()

	perm := seedPermission(t, db, store, "view_users")
	mustGrantPermission(t, store, userID, 1, 1, perm.ID)

	// No selected context means no permissions.
	allowed, err := guard.Check(ctx, userID, "view_users")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if allowed {
		t.Error("Expected deny without a selected context")
	}

	if err := selector.Select(ctx, userID, ContextKey{PlatformID: 1, CompanyID: 1}); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	allowed, err = guard.Check(ctx, userID, "view_users")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !allowed {
		t.Error("Expected allow for a directly granted permission")
	}
}

func TestGuard_UnknownPermissionDenies(t *testing.T) {
	guard, _, selector, _, userID := setupGuard(t)
	ctx := context.Background()

	if err := selector.Select(ctx, userID, ContextKey{PlatformID: 1, CompanyID: 1}); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// A name that never existed (or was deleted) fails closed without error.
	allowed, err := guard.Check(ctx, userID, "no_such_permission")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if allowed {
		t.Error("Expected deny for an unknown permission name")
	}
}

func TestGuard_StoreFailureSurfaces(t *testing.T) {
	guard, _, selector, db, userID := setupGuard(t)
	ctx := context.Background()

	if err := selector.Select(ctx, userID, ContextKey{PlatformID: 1, CompanyID: 1}); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// A broken store is an error, not a silent deny.
	if _, err := db.Exec(`DROP TABLE permissions`); err != nil {
		t.Fatalf("Failed to drop table: %v", err)
	}
	if _, err := guard.Check(ctx, userID, "view_users"); err == nil {
		t.Error("Expected a store failure to surface as an error")
	}
}
