package tenants

import (
	"github.com/crewplane/crewplane/pkg/storage"
)

// Migrations returns the schema for platforms, companies, and their
// association table. Versions 1-9 are reserved for this package; tenant
// tables come first because everything else references them.
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     1,
			Description: "Create platforms table",
			SQL: `
				CREATE TABLE IF NOT EXISTS platforms (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					slug VARCHAR(255) NOT NULL UNIQUE,
					description TEXT,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_platforms_slug ON platforms(slug);
			`,
		},
		{
			Version:     2,
			Description: "Create companies table",
			SQL: `
				CREATE TABLE IF NOT EXISTS companies (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					slug VARCHAR(255) NOT NULL UNIQUE,
					description TEXT,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			Version:     3,
			Description: "Create platform_companies table",
			SQL: `
				CREATE TABLE IF NOT EXISTS platform_companies (
					platform_id BIGINT NOT NULL REFERENCES platforms(id) ON DELETE CASCADE,
					company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					PRIMARY KEY (platform_id, company_id)
				);

				CREATE INDEX idx_platform_companies_company_id ON platform_companies(company_id);
			`,
		},
	}
}
