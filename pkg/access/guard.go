package access

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/crewplane/crewplane/pkg/httputil"
	"github.com/crewplane/crewplane/pkg/middleware"
	"github.com/crewplane/crewplane/pkg/observability"
)

// Guard answers "may this user do X right now" against the user's
// selected context. It is the authoritative server-side check; any
// client-side gating derived from the access payload is advisory.
type Guard struct {
	resolver Resolver
	selector *Selector
	store    *Store
	metrics  *observability.Metrics
}

// NewGuard creates a permission guard. metrics may be nil.
func NewGuard(resolver Resolver, selector *Selector, store *Store, metrics *observability.Metrics) *Guard {
	return &Guard{
		resolver: resolver,
		selector: selector,
		store:    store,
		metrics:  metrics,
	}
}

// Check reports whether the user holds the named permission in their
// selected context. No selected context means no permissions.
func (g *Guard) Check(ctx context.Context, userID int64, permissionName string) (bool, error) {
	key, err := g.selector.CurrentContext(ctx, userID)
	if err != nil {
		return false, err
	}
	if key == nil {
		g.observe(permissionName, false)
		return false, nil
	}

	perm, err := g.store.GetPermissionByName(ctx, permissionName)
	if errors.Is(err, ErrPermissionNotFound) {
		// A reference to a deleted or never-created permission fails closed.
		g.observe(permissionName, false)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	effective, err := g.resolver.ResolveEffectivePermissions(ctx, userID, *key)
	if err != nil {
		return false, err
	}

	allowed := effective.Contains(perm.ID)
	g.observe(permissionName, allowed)
	return allowed, nil
}

func (g *Guard) observe(permissionName string, allowed bool) {
	if g.metrics == nil {
		return
	}
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	g.metrics.AuthzDecisionsTotal.WithLabelValues(permissionName, decision).Inc()
}

// RequirePermission rejects requests whose caller lacks the named
// permission in their selected context.
func (g *Guard) RequirePermission(permissionName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := middleware.GetIdentity(r.Context())
			if !ok {
				httputil.WriteUnauthorized(w, "missing identity")
				return
			}

			allowed, err := g.Check(r.Context(), identity.UserID, permissionName)
			if err != nil {
				httputil.WriteInternalError(w, fmt.Errorf("permission check failed: %w", err))
				return
			}
			if !allowed {
				httputil.WriteForbidden(w, "missing permission: "+permissionName)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
