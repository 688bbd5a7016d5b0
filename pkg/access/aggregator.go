package access

import (
	"context"
	"fmt"

	"github.com/crewplane/crewplane/pkg/menus"
	"github.com/crewplane/crewplane/pkg/tenants"
)

// CurrentAccess is the resolved role and permission sets for the caller's
// selected context. Nil when no context is selected.
type CurrentAccess struct {
	PlatformID  int64   `json:"platform_id"`
	CompanyID   int64   `json:"company_id"`
	Roles       []int64 `json:"roles"`
	Permissions []int64 `json:"permissions"`
}

// MenuEntry is one visible menu in the access payload. Permissions carry
// the names of the permissions attached to the node so clients can drive
// finer-grained gating or display why an entry is visible.
type MenuEntry struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	URL         string      `json:"url"`
	Order       int         `json:"order"`
	Permissions []string    `json:"permissions"`
	Children    []MenuEntry `json:"children,omitempty"`
}

// MenuMap indexes visible menus by platform slug, then by menu slug. The
// reshaping from tree to map happens only here, at the serialization
// boundary, so a client asking "is menu X visible" gets O(1) lookups.
type MenuMap map[string]map[string]MenuEntry

// AccessPayload is the single shape exposed across the system boundary,
// consumed by the presentation layer to render navigation and drive
// client-side guards. Those guards are advisory only; the authoritative
// check is re-run server-side per request.
type AccessPayload struct {
	RoleSummaries []RoleSummary  `json:"role_summaries"`
	CurrentAccess *CurrentAccess `json:"current_access"`
	Menus         MenuMap        `json:"menus"`
}

// Aggregator composes the resolver, the context selector, the menu filter,
// and the tenant directory into the access payload. It has no logic of its
// own beyond composition and reshaping.
type Aggregator struct {
	resolver  Resolver
	selector  *Selector
	menuStore *menus.Store
	platforms tenants.PlatformDirectory
}

// NewAggregator creates an access aggregator.
func NewAggregator(resolver Resolver, selector *Selector, menuStore *menus.Store, platforms tenants.PlatformDirectory) *Aggregator {
	return &Aggregator{
		resolver:  resolver,
		selector:  selector,
		menuStore: menuStore,
		platforms: platforms,
	}
}

// BuildAccessPayload assembles the payload for one user. A missing
// selected context is not an error: current access and menus come back
// null and the role summaries still list the contexts the user can switch
// into.
func (a *Aggregator) BuildAccessPayload(ctx context.Context, userID int64) (*AccessPayload, error) {
	summaries, err := a.resolver.RoleSummaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build role summaries: %w", err)
	}

	payload := &AccessPayload{RoleSummaries: summaries}

	key, err := a.selector.CurrentContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read selected context: %w", err)
	}
	if key == nil {
		return payload, nil
	}

	roles, err := a.resolver.ResolveEffectiveRoles(ctx, userID, *key)
	if err != nil {
		return nil, err
	}
	perms, err := a.resolver.ResolveEffectivePermissions(ctx, userID, *key)
	if err != nil {
		return nil, err
	}

	payload.CurrentAccess = &CurrentAccess{
		PlatformID:  key.PlatformID,
		CompanyID:   key.CompanyID,
		Roles:       roles.Values(),
		Permissions: perms.Values(),
	}

	platform, err := a.platforms.GetPlatform(ctx, key.PlatformID)
	if err != nil {
		return nil, fmt.Errorf("failed to load selected platform: %w", err)
	}

	forest, err := a.menuStore.Forest(ctx, key.PlatformID)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu forest: %w", err)
	}

	visible := menus.AuthorizedForest(forest, menus.NewPermissionSet(perms.Values()...))
	payload.Menus = MenuMap{platform.Slug: reshapeBySlug(visible)}
	return payload, nil
}

// reshapeBySlug flattens one filtered forest into the slug-indexed entry
// map. Children below the slug-indexed level stay as ordered lists, which
// is the internal model.
func reshapeBySlug(forest []*menus.Node) map[string]MenuEntry {
	out := make(map[string]MenuEntry, len(forest))
	for _, root := range forest {
		out[root.Slug] = toEntry(root)
	}
	return out
}

func toEntry(node *menus.Node) MenuEntry {
	entry := MenuEntry{
		ID:          node.ID,
		Name:        node.Name,
		URL:         node.URL,
		Order:       node.DisplayOrder,
		Permissions: node.PermissionNames,
	}
	if entry.Permissions == nil {
		entry.Permissions = []string{}
	}
	for _, child := range node.Children {
		entry.Children = append(entry.Children, toEntry(child))
	}
	return entry
}
