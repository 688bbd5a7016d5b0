package access

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/crewplane/crewplane/pkg/audit"
	"github.com/crewplane/crewplane/pkg/httputil"
	"github.com/crewplane/crewplane/pkg/middleware"
	"github.com/crewplane/crewplane/pkg/observability"
)

// Handlers exposes role, permission, grant, context selection, and
// access payload endpoints.
type Handlers struct {
	store      *Store
	selector   *Selector
	guard      *Guard
	aggregator *Aggregator
	audit      audit.Logger
	logger     *observability.Logger
	metrics    *observability.Metrics
}

// NewHandlers creates the access handlers.
func NewHandlers(store *Store, selector *Selector, guard *Guard, aggregator *Aggregator, auditLog audit.Logger, logger *observability.Logger, metrics *observability.Metrics) *Handlers {
	return &Handlers{
		store:      store,
		selector:   selector,
		guard:      guard,
		aggregator: aggregator,
		audit:      auditLog,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterRoutes registers all access routes on the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	// Role and permission definitions
	router.HandleFunc("/roles", h.CreateRole).Methods("POST")
	router.HandleFunc("/roles", h.ListRoles).Methods("GET")
	router.HandleFunc("/roles/{role_id}", h.GetRole).Methods("GET")
	router.HandleFunc("/roles/{role_id}", h.UpdateRole).Methods("PUT")
	router.HandleFunc("/roles/{role_id}", h.DeleteRole).Methods("DELETE")
	router.HandleFunc("/permissions", h.CreatePermission).Methods("POST")
	router.HandleFunc("/permissions", h.ListPermissions).Methods("GET")

	// Context-scoped grants
	router.HandleFunc("/grants/roles", h.GrantRole).Methods("POST")
	router.HandleFunc("/grants/roles/{grant_id}", h.RevokeRole).Methods("DELETE")
	router.HandleFunc("/grants/permissions", h.GrantPermission).Methods("POST")
	router.HandleFunc("/grants/permissions/{grant_id}", h.RevokePermission).Methods("DELETE")

	// Caller-scoped context selection and the access payload
	router.HandleFunc("/me/context", h.SelectContext).Methods("PUT")
	router.HandleFunc("/me/context", h.ClearContext).Methods("DELETE")
	router.HandleFunc("/me/context", h.GetContext).Methods("GET")
	router.HandleFunc("/me/role-summaries", h.GetRoleSummaries).Methods("GET")
	router.HandleFunc("/me/access", h.GetAccessPayload).Methods("GET")
	router.HandleFunc("/access/check", h.CheckAccess).Methods("POST")
}

// CreateRole creates a role definition.
func (h *Handlers) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string  `json:"name"`
		DisplayName   string  `json:"display_name"`
		Description   string  `json:"description"`
		PermissionIDs []int64 `json:"permission_ids"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Name
	}

	role := &Role{
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
	}
	if err := h.store.CreateRole(r.Context(), role); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, role)
}

// GetRole retrieves one role definition.
func (h *Handlers) GetRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httputil.ParsePathInt64OrError(w, r, "role_id")
	if !ok {
		return
	}

	role, err := h.store.GetRole(r.Context(), roleID)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, role)
}

// ListRoles lists all role definitions.
func (h *Handlers) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.ListRoles(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if roles == nil {
		roles = []Role{}
	}
	httputil.WriteSuccess(w, roles)
}

// UpdateRole updates a role's display fields and permission set.
func (h *Handlers) UpdateRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httputil.ParsePathInt64OrError(w, r, "role_id")
	if !ok {
		return
	}

	role, err := h.store.GetRole(r.Context(), roleID)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}

	var req struct {
		DisplayName   *string `json:"display_name"`
		Description   *string `json:"description"`
		PermissionIDs []int64 `json:"permission_ids"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.DisplayName != nil {
		role.DisplayName = *req.DisplayName
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.PermissionIDs != nil {
		role.PermissionIDs = req.PermissionIDs
	}

	if err := h.store.UpdateRole(r.Context(), role); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, role)
}

// DeleteRole deletes a role definition.
func (h *Handlers) DeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httputil.ParsePathInt64OrError(w, r, "role_id")
	if !ok {
		return
	}

	if err := h.store.DeleteRole(r.Context(), roleID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// CreatePermission creates a permission definition.
func (h *Handlers) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Description string `json:"description"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Name
	}

	perm := &Permission{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
	}
	if err := h.store.CreatePermission(r.Context(), perm); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, perm)
}

// ListPermissions lists all permission definitions.
func (h *Handlers) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.store.ListPermissions(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if perms == nil {
		perms = []Permission{}
	}
	httputil.WriteSuccess(w, perms)
}

// GrantRole assigns a role to a user within a (platform, company)
// context.
func (h *Handlers) GrantRole(w http.ResponseWriter, r *http.Request) {
	var grant RoleGrant
	if !httputil.ParseJSONOrError(w, r, &grant) {
		return
	}
	if !httputil.RequireNonZero(w, grant.UserID, "user_id") ||
		!httputil.RequireNonZero(w, grant.PlatformID, "platform_id") ||
		!httputil.RequireNonZero(w, grant.CompanyID, "company_id") ||
		!httputil.RequireNonZero(w, grant.RoleID, "role_id") {
		return
	}
	h.fillGrantedBy(r, &grant.GrantedBy)

	if err := h.store.GrantRole(r.Context(), &grant); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.record(r, &audit.Event{
		Type:         audit.EventRoleGrant,
		ActorID:      grant.GrantedBy,
		SubjectID:    &grant.UserID,
		PlatformID:   &grant.PlatformID,
		CompanyID:    &grant.CompanyID,
		ResourceType: "role",
		ResourceID:   strconv.FormatInt(grant.RoleID, 10),
		Allowed:      true,
	})
	httputil.WriteCreated(w, grant)
}

// RevokeRole removes a role grant.
func (h *Handlers) RevokeRole(w http.ResponseWriter, r *http.Request) {
	grantID, ok := httputil.ParsePathInt64OrError(w, r, "grant_id")
	if !ok {
		return
	}

	if err := h.store.RevokeRole(r.Context(), grantID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.record(r, &audit.Event{
		Type:         audit.EventRoleRevoke,
		ActorID:      h.actorID(r),
		ResourceType: "role_grant",
		ResourceID:   strconv.FormatInt(grantID, 10),
		Allowed:      true,
	})
	httputil.WriteNoContent(w)
}

// GrantPermission assigns a permission directly to a user within a
// (platform, company) context.
func (h *Handlers) GrantPermission(w http.ResponseWriter, r *http.Request) {
	var grant PermissionGrant
	if !httputil.ParseJSONOrError(w, r, &grant) {
		return
	}
	if !httputil.RequireNonZero(w, grant.UserID, "user_id") ||
		!httputil.RequireNonZero(w, grant.PlatformID, "platform_id") ||
		!httputil.RequireNonZero(w, grant.CompanyID, "company_id") ||
		!httputil.RequireNonZero(w, grant.PermissionID, "permission_id") {
		return
	}
	h.fillGrantedBy(r, &grant.GrantedBy)

	if err := h.store.GrantPermission(r.Context(), &grant); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.record(r, &audit.Event{
		Type:         audit.EventPermissionGrant,
		ActorID:      grant.GrantedBy,
		SubjectID:    &grant.UserID,
		PlatformID:   &grant.PlatformID,
		CompanyID:    &grant.CompanyID,
		ResourceType: "permission",
		ResourceID:   strconv.FormatInt(grant.PermissionID, 10),
		Allowed:      true,
	})
	httputil.WriteCreated(w, grant)
}

// RevokePermission removes a direct permission grant.
func (h *Handlers) RevokePermission(w http.ResponseWriter, r *http.Request) {
	grantID, ok := httputil.ParsePathInt64OrError(w, r, "grant_id")
	if !ok {
		return
	}

	if err := h.store.RevokePermission(r.Context(), grantID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.record(r, &audit.Event{
		Type:         audit.EventPermissionRevoke,
		ActorID:      h.actorID(r),
		ResourceType: "permission_grant",
		ResourceID:   strconv.FormatInt(grantID, 10),
		Allowed:      true,
	})
	httputil.WriteNoContent(w)
}

// SelectContext sets the caller's active (platform, company) context.
// The pair can arrive as separate ids or as a combined "platformID-companyID"
// token from the context-switcher UI.
func (h *Handlers) SelectContext(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "missing identity")
		return
	}

	var req struct {
		PlatformID int64  `json:"platform_id"`
		CompanyID  int64  `json:"company_id"`
		Token      string `json:"token"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	key := ContextKey{PlatformID: req.PlatformID, CompanyID: req.CompanyID}
	if req.Token != "" {
		parsed, err := ParseContextToken(req.Token)
		if err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		key = parsed
	}
	if key.PlatformID <= 0 || key.CompanyID <= 0 {
		httputil.WriteBadRequest(w, "platform_id and company_id are required")
		return
	}

	if err := h.selector.Select(r.Context(), identity.UserID, key); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ContextSwitchesTotal.WithLabelValues("select").Inc()
	}
	h.record(r, &audit.Event{
		Type:       audit.EventContextSelect,
		ActorID:    &identity.UserID,
		SubjectID:  &identity.UserID,
		PlatformID: &key.PlatformID,
		CompanyID:  &key.CompanyID,
		Allowed:    true,
	})
	httputil.WriteSuccess(w, key)
}

// ClearContext resets the caller's active context.
func (h *Handlers) ClearContext(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "missing identity")
		return
	}

	if err := h.selector.Clear(r.Context(), identity.UserID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ContextSwitchesTotal.WithLabelValues("clear").Inc()
	}
	h.record(r, &audit.Event{
		Type:      audit.EventContextClear,
		ActorID:   &identity.UserID,
		SubjectID: &identity.UserID,
		Allowed:   true,
	})
	httputil.WriteNoContent(w)
}

// GetContext returns the caller's active context, or null when none is
// selected.
func (h *Handlers) GetContext(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "missing identity")
		return
	}

	key, err := h.selector.CurrentContext(r.Context(), identity.UserID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"context": key})
}

// GetRoleSummaries returns the caller's role assignments grouped by
// (platform, company) pair.
func (h *Handlers) GetRoleSummaries(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "missing identity")
		return
	}

	summaries, err := h.aggregator.resolver.RoleSummaries(r.Context(), identity.UserID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if summaries == nil {
		summaries = []RoleSummary{}
	}
	httputil.WriteSuccess(w, summaries)
}

// GetAccessPayload returns the composed access payload for the caller:
// role summaries, current access, and the authorized menu map.
func (h *Handlers) GetAccessPayload(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "missing identity")
		return
	}

	payload, err := h.aggregator.BuildAccessPayload(r.Context(), identity.UserID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, payload)
}

// CheckAccess answers whether the caller holds one named permission in
// their selected context.
func (h *Handlers) CheckAccess(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "missing identity")
		return
	}

	var req struct {
		Permission string `json:"permission"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Permission, "permission") {
		return
	}

	allowed, err := h.guard.Check(r.Context(), identity.UserID, req.Permission)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{
		"permission": req.Permission,
		"allowed":    allowed,
	})
}

// record writes an audit event, logging instead of failing the request
// when the sink is unavailable.
func (h *Handlers) record(r *http.Request, event *audit.Event) {
	if err := h.audit.Log(r.Context(), event); err != nil && h.logger != nil {
		h.logger.WithError(err).Warn("failed to record audit event")
	}
	if h.metrics != nil {
		h.metrics.AuditEventsTotal.WithLabelValues(string(event.Type)).Inc()
	}
}

// actorID returns the caller's user id for audit attribution, nil when
// no identity is present.
func (h *Handlers) actorID(r *http.Request) *int64 {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		return nil
	}
	return &identity.UserID
}

// fillGrantedBy defaults the granted_by field to the caller when the
// request body leaves it unset.
func (h *Handlers) fillGrantedBy(r *http.Request, grantedBy **int64) {
	if *grantedBy != nil {
		return
	}
	*grantedBy = h.actorID(r)
}
