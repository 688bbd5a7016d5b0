// Package access implements role-based authorization scoped by user,
// platform, and company.
//
// # Overview
//
// Every grant binds a user to either a role or a single permission
// within one (platform, company) pair. A user's effective permission
// set for a pair is the union of the permissions carried by their role
// grants and their direct grants in it. A triple with no matching
// grants resolves to the empty set, which is a valid answer rather
// than an error.
//
// # Permission Resolution
//
// The Resolver computes effective permissions:
//
//	resolver := access.NewPermissionResolver(store)
//	perms, err := resolver.ResolveEffectivePermissions(ctx, userID, access.ContextKey{
//		PlatformID: platformID,
//		CompanyID:  companyID,
//	})
//
// # Selected Context
//
// Users work inside one (platform, company) pair at a time. The
// Selector persists that choice:
//
//	selector := access.NewSelector(db)
//	err := selector.Select(ctx, userID, key)
//	current, err := selector.CurrentContext(ctx, userID)
//
// Selection is permissive. Choosing a pair the user holds no grants in
// succeeds and yields empty effective permissions; the janitor's
// ClearStale sweep removes contexts whose pair no longer exists.
//
// # Enforcement
//
// The Guard answers permission checks against the caller's selected
// context and exposes middleware for protecting routes:
//
//	guard := access.NewGuard(resolver, selector, store, metrics)
//	allowed, err := guard.Check(ctx, userID, "people.view")
//
//	router.Handle("/reports", guard.RequirePermission("reports.view")(handler))
//
// An unknown permission name denies rather than erroring, so stale
// references fail closed.
//
// # Access Payload
//
// The Aggregator assembles the single payload frontends boot from: role
// summaries across all grants, the current context's effective
// permissions, and the authorized menu forest per platform keyed by
// platform slug and menu slug:
//
//	payload, err := aggregator.BuildAccessPayload(ctx, userID)
//
// CurrentAccess is nil when the user has no selected context.
//
// # Related Packages
//
//   - pkg/tenants: platforms and companies that scope grants
//   - pkg/menus: menu storage and the visibility filter
//   - pkg/audit: records of grant and context changes
package access
