package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewplane/crewplane/pkg/middleware"
	"github.com/crewplane/crewplane/pkg/observability"
)

func setupServer(t *testing.T) (*Server, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

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

		CREATE TABLE platform_companies (
			platform_id INTEGER NOT NULL,
			company_id INTEGER NOT NULL,
			PRIMARY KEY (platform_id, company_id)
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
	require.NoError(t, err)

	server := NewServer(db, Options{
		Logger: observability.NewLogger(observability.ErrorLevel, io.Discard),
	})
	return server, db
}

func do(t *testing.T, server *Server, userID int64, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.IdentityHeader, fmt.Sprintf("%d", userID))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

func TestServer_RejectsAnonymousRequests(t *testing.T) {
	server, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/platforms", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_EndToEndAuthorizationFlow(t *testing.T) {
	server, db := setupServer(t)

	_, err := db.Exec(`INSERT INTO users (username) VALUES ('admin')`)
	require.NoError(t, err)
	admin := int64(1)

	// Tenant setup: a platform offered to one company.
	rec := do(t, server, admin, "POST", "/platforms", map[string]interface{}{"name": "HR Portal"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var platform struct {
		ID   int64  `json:"id"`
		Slug string `json:"slug"`
	}
	decode(t, rec, &platform)
	assert.Equal(t, "hr-portal", platform.Slug)

	rec = do(t, server, admin, "POST", "/companies", map[string]interface{}{"name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var company struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &company)

	rec = do(t, server, admin, "PUT", fmt.Sprintf("/platforms/%d/companies/%d", platform.ID, company.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// Authorization setup: a permission carried by a role, granted to the
	// admin within the (platform, company) context.
	rec = do(t, server, admin, "POST", "/permissions", map[string]interface{}{"name": "view_people"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var perm struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &perm)

	rec = do(t, server, admin, "POST", "/roles", map[string]interface{}{
		"name":           "hr_manager",
		"permission_ids": []int64{perm.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var role struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &role)

	rec = do(t, server, admin, "POST", "/grants/roles", map[string]interface{}{
		"user_id":     admin,
		"platform_id": platform.ID,
		"company_id":  company.ID,
		"role_id":     role.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// A menu guarded by the permission.
	rec = do(t, server, admin, "POST", fmt.Sprintf("/platforms/%d/menus", platform.ID), map[string]interface{}{
		"name":           "People",
		"slug":           "people",
		"url":            "/people",
		"permission_ids": []int64{perm.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Without a selected context every check denies.
	rec = do(t, server, admin, "POST", "/access/check", map[string]interface{}{"permission": "view_people"})
	require.Equal(t, http.StatusOK, rec.Code)
	var check struct {
		Allowed bool `json:"allowed"`
	}
	decode(t, rec, &check)
	assert.False(t, check.Allowed)

	// Select the context and check again.
	rec = do(t, server, admin, "PUT", "/me/context", map[string]interface{}{
		"platform_id": platform.ID,
		"company_id":  company.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, server, admin, "POST", "/access/check", map[string]interface{}{"permission": "view_people"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &check)
	assert.True(t, check.Allowed)

	// The composed payload carries the summaries and the authorized menu.
	rec = do(t, server, admin, "GET", "/me/access", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var payload struct {
		RoleSummaries []json.RawMessage                     `json:"role_summaries"`
		CurrentAccess json.RawMessage                       `json:"current_access"`
		Menus         map[string]map[string]json.RawMessage `json:"menus"`
	}
	decode(t, rec, &payload)
	assert.Len(t, payload.RoleSummaries, 1)
	assert.NotEqual(t, "null", string(payload.CurrentAccess))
	require.Contains(t, payload.Menus, "hr-portal")
	assert.Contains(t, payload.Menus["hr-portal"], "people")
}
