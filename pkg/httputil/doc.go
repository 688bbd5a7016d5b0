// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteSuccess(w, payload)
//	httputil.WriteCreated(w, resource)
//
// Error responses:
//
//	httputil.WriteError(w, http.StatusBadRequest, err)
//	httputil.WriteBadRequest(w, "invalid input")
//	httputil.WriteUnauthorized(w, "missing identity")
//	httputil.WriteForbidden(w, "permission denied")
//	httputil.WriteUnprocessable(w, "move would create a cycle")
//
// # Request Parsing
//
// JSON parsing:
//
//	var req CreateRoleRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
// Path parameters:
//
//	id, ok := httputil.ParsePathInt64OrError(w, r, "role_id")
//	slug, err := httputil.ParsePathString(r, "platform_slug")
//
// # Validation
//
//	if !httputil.RequireNonEmpty(w, req.Name, "name") {
//		return
//	}
//	if !httputil.RequireNonZero(w, req.CompanyID, "company_id") {
//		return
//	}
//
// # Related Packages
//
//   - pkg/middleware: identity, request id, and platform context middleware
package httputil
