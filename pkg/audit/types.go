package audit

import (
	"time"
)

// EventType classifies an auditable event.
type EventType string

const (
	EventRoleGrant        EventType = "authz.role.grant"
	EventRoleRevoke       EventType = "authz.role.revoke"
	EventPermissionGrant  EventType = "authz.permission.grant"
	EventPermissionRevoke EventType = "authz.permission.revoke"
	EventContextSelect    EventType = "context.select"
	EventContextClear     EventType = "context.clear"
	EventMenuReparent     EventType = "menu.reparent"
	EventMenuEdit         EventType = "menu.edit"
)

// Event records one administrative or user action against the
// authorization state.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	ActorID      *int64    `json:"actor_id,omitempty"`
	SubjectID    *int64    `json:"subject_id,omitempty"`
	PlatformID   *int64    `json:"platform_id,omitempty"`
	CompanyID    *int64    `json:"company_id,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Allowed      bool      `json:"allowed"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
