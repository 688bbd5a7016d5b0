package menus

import (
	"github.com/crewplane/crewplane/pkg/storage"
)

// Migrations returns the schema for the menu forest and its permission
// bindings. Versions 20-29 are reserved for this package.
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     20,
			Description: "Create menus table",
			SQL: `
				CREATE TABLE IF NOT EXISTS menus (
					id BIGSERIAL PRIMARY KEY,
					platform_id BIGINT NOT NULL REFERENCES platforms(id) ON DELETE CASCADE,
					parent_id BIGINT REFERENCES menus(id) ON DELETE SET NULL,
					name VARCHAR(255) NOT NULL,
					slug VARCHAR(255) NOT NULL,
					url VARCHAR(1024) NOT NULL DEFAULT '',
					display_order INT NOT NULL DEFAULT 0,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
					UNIQUE(platform_id, slug)
				);

				CREATE INDEX idx_menus_platform_order ON menus(platform_id, display_order);
				CREATE INDEX idx_menus_parent_id ON menus(parent_id);
			`,
		},
		{
			Version:     21,
			Description: "Create menu_permissions table",
			SQL: `
				CREATE TABLE IF NOT EXISTS menu_permissions (
					menu_id BIGINT NOT NULL REFERENCES menus(id) ON DELETE CASCADE,
					permission_id BIGINT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
					PRIMARY KEY (menu_id, permission_id)
				);

				CREATE INDEX idx_menu_permissions_permission_id ON menu_permissions(permission_id);
			`,
		},
	}
}
