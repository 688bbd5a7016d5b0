package menus

import (
	"time"
)

// Menu is one node in a platform's menu forest. The menu is owned by its
// platform; the parent/child link is a structural relation within that
// platform's forest only.
type Menu struct {
	ID            int64     `json:"id"`
	PlatformID    int64     `json:"platform_id"`
	ParentID      *int64    `json:"parent_id,omitempty"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	URL           string    `json:"url"`
	DisplayOrder  int       `json:"display_order"`
	IsActive      bool      `json:"is_active"`
	PermissionIDs []int64   `json:"permission_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Node is a menu with its children resolved, as served to the filter and
// the presentation layer. PermissionNames mirror PermissionIDs so consumers
// can display why a node is visible.
type Node struct {
	Menu
	PermissionNames []string `json:"permission_names"`
	Children        []*Node  `json:"children,omitempty"`
}

// PermissionSet is the effective permission ids a menu node is tested
// against. Duplicate inserts collapse.
type PermissionSet map[int64]struct{}

// NewPermissionSet builds a set from the given permission ids.
func NewPermissionSet(ids ...int64) PermissionSet {
	s := make(PermissionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s PermissionSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// MaxDepth is the deepest level a menu node may occupy; roots are depth 0,
// so the forest holds at most three levels.
const MaxDepth = 2
