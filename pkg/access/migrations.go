package access

import (
	"github.com/crewplane/crewplane/pkg/storage"
)

// Migrations returns the schema for roles, permissions, per-context
// grants, and the selected-context columns on users. Versions 10-16 are
// reserved for this package.
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     10,
			Description: "Create users table",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					username VARCHAR(255) NOT NULL UNIQUE,
					email VARCHAR(255),
					selected_platform_id BIGINT REFERENCES platforms(id) ON DELETE SET NULL,
					selected_company_id BIGINT REFERENCES companies(id) ON DELETE SET NULL,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_users_selected_context ON users(selected_platform_id, selected_company_id);
			`,
		},
		{
			Version:     11,
			Description: "Create permissions table",
			SQL: `
				CREATE TABLE IF NOT EXISTS permissions (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL UNIQUE,
					display_name VARCHAR(255) NOT NULL,
					description TEXT,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_permissions_name ON permissions(name);
			`,
		},
		{
			Version:     12,
			Description: "Create roles table",
			SQL: `
				CREATE TABLE IF NOT EXISTS roles (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL UNIQUE,
					display_name VARCHAR(255) NOT NULL,
					description TEXT,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			Version:     13,
			Description: "Create role_permissions table",
			SQL: `
				CREATE TABLE IF NOT EXISTS role_permissions (
					role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
					permission_id BIGINT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
					PRIMARY KEY (role_id, permission_id)
				);

				CREATE INDEX idx_role_permissions_permission_id ON role_permissions(permission_id);
			`,
		},
		{
			Version:     14,
			Description: "Create platform_company_user_roles table",
			SQL: `
				CREATE TABLE IF NOT EXISTS platform_company_user_roles (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					platform_id BIGINT NOT NULL REFERENCES platforms(id) ON DELETE CASCADE,
					company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
					role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
					granted_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					granted_at TIMESTAMP NOT NULL DEFAULT NOW(),
					UNIQUE(user_id, platform_id, company_id, role_id)
				);

				CREATE INDEX idx_pcur_user_context ON platform_company_user_roles(user_id, platform_id, company_id);
				CREATE INDEX idx_pcur_role_id ON platform_company_user_roles(role_id);
			`,
		},
		{
			Version:     15,
			Description: "Create platform_company_user_permissions table",
			SQL: `
				CREATE TABLE IF NOT EXISTS platform_company_user_permissions (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					platform_id BIGINT NOT NULL REFERENCES platforms(id) ON DELETE CASCADE,
					company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
					permission_id BIGINT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
					granted_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					granted_at TIMESTAMP NOT NULL DEFAULT NOW(),
					UNIQUE(user_id, platform_id, company_id, permission_id)
				);

				CREATE INDEX idx_pcup_user_context ON platform_company_user_permissions(user_id, platform_id, company_id);
			`,
		},
	}
}
