package audit

import (
	"github.com/crewplane/crewplane/pkg/storage"
)

// Migrations returns the audit_events schema. Version 30 is reserved
// for this package.
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     30,
			Description: "Create audit_events table",
			SQL: `
				CREATE TABLE IF NOT EXISTS audit_events (
					id VARCHAR(36) PRIMARY KEY,
					event_type VARCHAR(64) NOT NULL,
					actor_id BIGINT,
					subject_id BIGINT,
					platform_id BIGINT,
					company_id BIGINT,
					resource_type VARCHAR(64),
					resource_id VARCHAR(255),
					allowed BOOLEAN NOT NULL DEFAULT TRUE,
					message TEXT,
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_audit_events_created_at ON audit_events(created_at);
				CREATE INDEX idx_audit_events_type ON audit_events(event_type);
			`,
		},
	}
}
