package menus

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Create minimal tables for testing
	_, err = db.Exec(`
		CREATE TABLE platforms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE
		);

		CREATE TABLE permissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL
		);

		CREATE TABLE menus (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			platform_id INTEGER NOT NULL,
			parent_id INTEGER,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			display_order INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE menu_permissions (
			menu_id INTEGER NOT NULL,
			permission_id INTEGER NOT NULL,
			PRIMARY KEY (menu_id, permission_id)
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create test tables: %v", err)
	}

	return db
}

func seedPermissionID(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO permissions (name, display_name) VALUES ($1, $2)`, name, name)
	if err != nil {
		t.Fatalf("Failed to seed permission: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func mustCreate(t *testing.T, store *Store, menu *Menu) *Menu {
	t.Helper()
	if err := store.Create(context.Background(), menu); err != nil {
		t.Fatalf("Failed to create menu %s: %v", menu.Slug, err)
	}
	return menu
}

// node builds an in-memory tree node for filter tests.
func node(id int64, permIDs []int64, children ...*Node) *Node {
	n := &Node{}
	n.ID = id
	n.PermissionIDs = permIDs
	n.Children = children
	return n
}
