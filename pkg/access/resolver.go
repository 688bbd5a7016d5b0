package access

import (
	"context"
	"fmt"
)

// Resolver computes the effective permission and role sets for a user
// within one (platform, company) context.
type Resolver interface {
	// ResolveEffectivePermissions returns the union of role-derived and
	// directly granted permission ids for the triple. An unmatched triple
	// resolves to an empty set, not an error.
	ResolveEffectivePermissions(ctx context.Context, userID int64, key ContextKey) (IDSet, error)

	// ResolveEffectiveRoles returns the ids of roles granted to the user
	// in the context.
	ResolveEffectiveRoles(ctx context.Context, userID int64, key ContextKey) (IDSet, error)

	// RoleSummaries groups the user's entire role assignment history by
	// (platform, company) pair, for the context-switcher UI.
	RoleSummaries(ctx context.Context, userID int64) ([]RoleSummary, error)
}

// PermissionResolver implements Resolver over the access store.
type PermissionResolver struct {
	store *Store
}

// NewPermissionResolver creates a resolver backed by db.
func NewPermissionResolver(store *Store) *PermissionResolver {
	return &PermissionResolver{store: store}
}

// ResolveEffectivePermissions unions role-derived and direct permission ids.
// The two producers return the same set type; the union happens here, with
// set semantics so duplicates collapse.
func (r *PermissionResolver) ResolveEffectivePermissions(ctx context.Context, userID int64, key ContextKey) (IDSet, error) {
	viaRoles, err := r.store.rolePermissionIDsForContext(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve role-derived permissions: %w", err)
	}

	direct, err := r.store.directPermissionIDsForContext(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve direct permissions: %w", err)
	}

	viaRoles.Union(direct)
	return viaRoles, nil
}

// ResolveEffectiveRoles returns the role ids granted in the context. A
// triple with no matching grants yields an empty set: that is the "no
// access" state, not an error.
func (r *PermissionResolver) ResolveEffectiveRoles(ctx context.Context, userID int64, key ContextKey) (IDSet, error) {
	roles, err := r.store.roleIDsForContext(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve roles: %w", err)
	}
	return roles, nil
}

// RoleSummaries groups role grants by (platform, company) identity. Rows
// arrive ordered by the pair, so one pass builds the groups; the label is
// derived for presentation and never participates in grouping.
func (r *PermissionResolver) RoleSummaries(ctx context.Context, userID int64) ([]RoleSummary, error) {
	rows, err := r.store.roleGrantRows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role grants: %w", err)
	}

	var summaries []RoleSummary
	for _, row := range rows {
		n := len(summaries)
		if n == 0 || summaries[n-1].PlatformID != row.PlatformID || summaries[n-1].CompanyID != row.CompanyID {
			summaries = append(summaries, RoleSummary{
				PlatformID:   row.PlatformID,
				PlatformSlug: row.PlatformSlug,
				CompanyID:    row.CompanyID,
				Label:        row.PlatformName + " / " + row.CompanyName,
			})
			n++
		}
		summaries[n-1].Roles = append(summaries[n-1].Roles, row.Role)
	}
	return summaries, nil
}
