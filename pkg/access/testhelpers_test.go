package access

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
			slug TEXT NOT NULL UNIQUE,
			description TEXT DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE companies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			email TEXT,
			selected_platform_id INTEGER,
			selected_company_id INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE permissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			description TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE roles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			description TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE role_permissions (
			role_id INTEGER NOT NULL,
			permission_id INTEGER NOT NULL,
			PRIMARY KEY (role_id, permission_id)
		);

		CREATE TABLE platform_company_user_roles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			platform_id INTEGER NOT NULL,
			company_id INTEGER NOT NULL,
			role_id INTEGER NOT NULL,
			granted_by INTEGER,
			granted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, platform_id, company_id, role_id)
		);

		CREATE TABLE platform_company_user_permissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			platform_id INTEGER NOT NULL,
			company_id INTEGER NOT NULL,
			permission_id INTEGER NOT NULL,
			granted_by INTEGER,
			granted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, platform_id, company_id, permission_id)
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

func seedUser(t *testing.T, db *sql.DB, username string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO users (username) VALUES ($1)`, username)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func seedPlatform(t *testing.T, db *sql.DB, name, slug string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO platforms (name, slug) VALUES ($1, $2)`, name, slug)
	if err != nil {
		t.Fatalf("Failed to seed platform: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func seedCompany(t *testing.T, db *sql.DB, name, slug string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO companies (name, slug) VALUES ($1, $2)`, name, slug)
	if err != nil {
		t.Fatalf("Failed to seed company: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func seedPermission(t *testing.T, db *sql.DB, store *Store, name string) *Permission {
	t.Helper()
	perm := &Permission{Name: name, DisplayName: name}
	if err := store.CreatePermission(context.Background(), perm); err != nil {
		t.Fatalf("Failed to seed permission %s: %v", name, err)
	}
	return perm
}

func seedRole(t *testing.T, store *Store, name string, permissionIDs ...int64) *Role {
	t.Helper()
	role := &Role{Name: name, DisplayName: name, PermissionIDs: permissionIDs}
	if err := store.CreateRole(context.Background(), role); err != nil {
		t.Fatalf("Failed to seed role %s: %v", name, err)
	}
	return role
}
