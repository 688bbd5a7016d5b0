// Package middleware provides the HTTP middleware chain: caller identity,
// platform resolution, request ids, request logging, and permission guards.
package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/crewplane/crewplane/pkg/httputil"
)

// IdentityHeader carries the authenticated user's id, set by the fronting
// gateway. This service trusts the header and performs no authentication
// of its own.
const IdentityHeader = "X-User-ID"

// Identity is the authenticated caller as asserted by the gateway.
type Identity struct {
	UserID int64
}

type identityContextKey struct{}

// IdentityMiddleware extracts the caller identity from the request and
// stores it in the context. Requests without a parseable identity are
// rejected before any handler runs.
func IdentityMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(IdentityHeader)
			if raw == "" {
				httputil.WriteUnauthorized(w, "missing "+IdentityHeader+" header")
				return
			}

			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				httputil.WriteUnauthorized(w, "invalid "+IdentityHeader+" header")
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// GetIdentity retrieves the caller identity from the context.
func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}
