package access

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Permission is an atomic named capability, e.g. "view_users".
type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Role is a named bundle of permissions. Role definitions are global;
// assignment of a role to a user is always qualified by a
// (platform, company) pair.
type Role struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	DisplayName   string    `json:"display_name"`
	Description   string    `json:"description"`
	PermissionIDs []int64   `json:"permission_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ContextKey identifies the (platform, company) pair that scopes role and
// permission assignments. The pair is the authorization scope unit, never
// the company alone.
type ContextKey struct {
	PlatformID int64 `json:"platform_id"`
	CompanyID  int64 `json:"company_id"`
}

// String renders the key in the combined "platformID-companyID" token form
// used by the context selection endpoint.
func (k ContextKey) String() string {
	return strconv.FormatInt(k.PlatformID, 10) + "-" + strconv.FormatInt(k.CompanyID, 10)
}

// ParseContextToken parses a combined "platformID-companyID" token.
func ParseContextToken(token string) (ContextKey, error) {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return ContextKey{}, fmt.Errorf("invalid context token %q: expected platformID-companyID", token)
	}
	platformID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ContextKey{}, fmt.Errorf("invalid platform id in context token %q", token)
	}
	companyID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ContextKey{}, fmt.Errorf("invalid company id in context token %q", token)
	}
	return ContextKey{PlatformID: platformID, CompanyID: companyID}, nil
}

// RoleGrant assigns a role to a user within one (platform, company)
// context. A user can hold different roles in different contexts and
// multiple roles within one context.
type RoleGrant struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	PlatformID int64     `json:"platform_id"`
	CompanyID  int64     `json:"company_id"`
	RoleID     int64     `json:"role_id"`
	GrantedBy  *int64    `json:"granted_by,omitempty"`
	GrantedAt  time.Time `json:"granted_at"`
}

// PermissionGrant assigns a permission directly to a user within one
// (platform, company) context, bypassing roles entirely.
type PermissionGrant struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	PlatformID   int64     `json:"platform_id"`
	CompanyID    int64     `json:"company_id"`
	PermissionID int64     `json:"permission_id"`
	GrantedBy    *int64    `json:"granted_by,omitempty"`
	GrantedAt    time.Time `json:"granted_at"`
}

// RoleSummary groups a user's role assignments for one (platform, company)
// pair. The grouping key is the pair's identity; Label is presentation
// only, for the context-switcher UI.
type RoleSummary struct {
	PlatformID   int64  `json:"platform_id"`
	PlatformSlug string `json:"platform_slug"`
	CompanyID    int64  `json:"company_id"`
	Label        string `json:"label"`
	Roles        []Role `json:"roles"`
}

// IDSet is a set of entity ids with union/intersection semantics.
// Duplicate inserts collapse.
type IDSet map[int64]struct{}

// NewIDSet builds a set from the given ids.
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id int64) { s[id] = struct{}{} }

// Contains reports whether id is in the set.
func (s IDSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Union merges other into s.
func (s IDSet) Union(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Values returns the set members in ascending order.
func (s IDSet) Values() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
