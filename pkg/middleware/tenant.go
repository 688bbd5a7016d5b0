package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/crewplane/crewplane/pkg/httputil"
	"github.com/crewplane/crewplane/pkg/tenants"
)

type platformContextKey struct{}

// PlatformContextMiddleware resolves the platform named in the route, by
// id or by slug, and stores it in the request context. Routes without a
// platform variable pass through untouched.
func PlatformContextMiddleware(directory tenants.PlatformDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)

			if platformIDStr, ok := vars["platform_id"]; ok {
				platformID, err := strconv.ParseInt(platformIDStr, 10, 64)
				if err != nil {
					httputil.WriteBadRequest(w, "invalid platform id")
					return
				}

				platform, err := directory.GetPlatform(r.Context(), platformID)
				if err != nil {
					httputil.WriteNotFound(w, "platform not found")
					return
				}

				ctx := context.WithValue(r.Context(), platformContextKey{}, platform)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if platformSlug, ok := vars["platform_slug"]; ok {
				platform, err := directory.GetPlatformBySlug(r.Context(), platformSlug)
				if err != nil {
					httputil.WriteNotFound(w, "platform not found")
					return
				}

				ctx := context.WithValue(r.Context(), platformContextKey{}, platform)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetPlatform retrieves the resolved platform from the context.
func GetPlatform(ctx context.Context) (*tenants.Platform, bool) {
	platform, ok := ctx.Value(platformContextKey{}).(*tenants.Platform)
	return platform, ok
}
