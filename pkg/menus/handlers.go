package menus

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/crewplane/crewplane/pkg/audit"
	"github.com/crewplane/crewplane/pkg/httputil"
	"github.com/crewplane/crewplane/pkg/middleware"
	"github.com/crewplane/crewplane/pkg/observability"
)

// Handlers exposes the menu administration endpoints.
type Handlers struct {
	store   *Store
	audit   audit.Logger
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewHandlers creates the menu handlers.
func NewHandlers(store *Store, auditLog audit.Logger, logger *observability.Logger, metrics *observability.Metrics) *Handlers {
	return &Handlers{
		store:   store,
		audit:   auditLog,
		logger:  logger,
		metrics: metrics,
	}
}

// RegisterRoutes registers all menu routes on the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/platforms/{platform_id}/menus", h.CreateMenu).Methods("POST")
	router.HandleFunc("/platforms/{platform_id}/menus", h.ListMenus).Methods("GET")
	router.HandleFunc("/platforms/{platform_id}/menus/tree", h.GetForest).Methods("GET")
	router.HandleFunc("/menus/{menu_id}", h.GetMenu).Methods("GET")
	router.HandleFunc("/menus/{menu_id}", h.UpdateMenu).Methods("PUT")
	router.HandleFunc("/menus/{menu_id}", h.DeleteMenu).Methods("DELETE")
	router.HandleFunc("/menus/{menu_id}/parent", h.ReparentMenu).Methods("PUT")
}

// CreateMenu creates a menu node under a platform. A requested parent is
// validated against the platform's tree before the write.
func (h *Handlers) CreateMenu(w http.ResponseWriter, r *http.Request) {
	platformID, ok := httputil.ParsePathInt64OrError(w, r, "platform_id")
	if !ok {
		return
	}

	var req struct {
		ParentID      *int64  `json:"parent_id"`
		Name          string  `json:"name"`
		Slug          string  `json:"slug"`
		URL           string  `json:"url"`
		DisplayOrder  int     `json:"display_order"`
		PermissionIDs []int64 `json:"permission_ids"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") || !httputil.RequireNonEmpty(w, req.Slug, "slug") {
		return
	}

	if req.ParentID != nil {
		parents, err := h.store.ParentIndex(r.Context(), platformID)
		if err != nil {
			httputil.WriteInternalError(w, err)
			return
		}
		if _, exists := parents[*req.ParentID]; !exists {
			httputil.WriteUnprocessable(w, "parent menu does not exist on this platform")
			return
		}
		// A new node has no id yet and cannot be its own ancestor, so only
		// the depth of the proposed parent matters.
		if Depth(parents, *req.ParentID) >= MaxDepth {
			httputil.WriteUnprocessable(w, "parent is already at the maximum depth")
			return
		}
	}

	menu := &Menu{
		PlatformID:    platformID,
		ParentID:      req.ParentID,
		Name:          req.Name,
		Slug:          req.Slug,
		URL:           req.URL,
		DisplayOrder:  req.DisplayOrder,
		IsActive:      true,
		PermissionIDs: req.PermissionIDs,
	}
	if err := h.store.Create(r.Context(), menu); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.record(r, audit.EventMenuEdit, menu.ID, &platformID, true, "created")
	httputil.WriteCreated(w, menu)
}

// GetMenu retrieves one menu node.
func (h *Handlers) GetMenu(w http.ResponseWriter, r *http.Request) {
	menuID, ok := httputil.ParsePathInt64OrError(w, r, "menu_id")
	if !ok {
		return
	}

	menu, err := h.store.Get(r.Context(), menuID)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, menu)
}

// ListMenus returns every menu row of a platform for the admin screens.
func (h *Handlers) ListMenus(w http.ResponseWriter, r *http.Request) {
	platformID, ok := httputil.ParsePathInt64OrError(w, r, "platform_id")
	if !ok {
		return
	}

	menus, err := h.store.ListByPlatform(r.Context(), platformID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if menus == nil {
		menus = []Menu{}
	}
	httputil.WriteSuccess(w, menus)
}

// GetForest returns the platform's active menu tree, unfiltered. The
// per-user authorized view is served by the access payload endpoint.
func (h *Handlers) GetForest(w http.ResponseWriter, r *http.Request) {
	platformID, ok := httputil.ParsePathInt64OrError(w, r, "platform_id")
	if !ok {
		return
	}

	forest, err := h.store.Forest(r.Context(), platformID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if forest == nil {
		forest = []*Node{}
	}
	httputil.WriteSuccess(w, forest)
}

// UpdateMenu updates a menu's fields and permission set. Parent changes
// are rejected here; they go through the reparent endpoint so the tree
// validator is always consulted.
func (h *Handlers) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	menuID, ok := httputil.ParsePathInt64OrError(w, r, "menu_id")
	if !ok {
		return
	}

	menu, err := h.store.Get(r.Context(), menuID)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}

	var req struct {
		Name          *string `json:"name"`
		Slug          *string `json:"slug"`
		URL           *string `json:"url"`
		DisplayOrder  *int    `json:"display_order"`
		IsActive      *bool   `json:"is_active"`
		PermissionIDs []int64 `json:"permission_ids"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Slug != nil {
		menu.Slug = *req.Slug
	}
	if req.URL != nil {
		menu.URL = *req.URL
	}
	if req.DisplayOrder != nil {
		menu.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		menu.IsActive = *req.IsActive
	}
	if req.PermissionIDs != nil {
		menu.PermissionIDs = req.PermissionIDs
	}

	if err := h.store.Update(r.Context(), menu); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.record(r, audit.EventMenuEdit, menu.ID, &menu.PlatformID, true, "updated")
	httputil.WriteSuccess(w, menu)
}

// DeleteMenu removes a menu node, promoting its children to roots.
func (h *Handlers) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	menuID, ok := httputil.ParsePathInt64OrError(w, r, "menu_id")
	if !ok {
		return
	}

	menu, err := h.store.Get(r.Context(), menuID)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}

	if err := h.store.Delete(r.Context(), menuID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.record(r, audit.EventMenuEdit, menuID, &menu.PlatformID, true, "deleted")
	httputil.WriteNoContent(w)
}

// ReparentMenu moves a menu under a new parent, or to the root when the
// body carries a null parent id. Moves that would create a cycle or
// exceed the depth cap are rejected with 422 and no write happens.
func (h *Handlers) ReparentMenu(w http.ResponseWriter, r *http.Request) {
	menuID, ok := httputil.ParsePathInt64OrError(w, r, "menu_id")
	if !ok {
		return
	}

	menu, err := h.store.Get(r.Context(), menuID)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}

	var req struct {
		ParentID *int64 `json:"parent_id"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	parents, err := h.store.ParentIndex(r.Context(), menu.PlatformID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if req.ParentID != nil {
		if _, exists := parents[*req.ParentID]; !exists {
			h.observeReparent("rejected")
			httputil.WriteUnprocessable(w, "parent menu does not exist on this platform")
			return
		}
	}
	if !CanReparent(parents, menuID, req.ParentID) {
		h.observeReparent("rejected")
		h.record(r, audit.EventMenuReparent, menuID, &menu.PlatformID, false, "rejected: cycle or depth violation")
		httputil.WriteUnprocessable(w, "move would create a cycle or exceed the maximum depth")
		return
	}

	if err := h.store.Reparent(r.Context(), menuID, req.ParentID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.observeReparent("applied")
	h.record(r, audit.EventMenuReparent, menuID, &menu.PlatformID, true, "applied")

	menu.ParentID = req.ParentID
	httputil.WriteSuccess(w, menu)
}

func (h *Handlers) observeReparent(outcome string) {
	if h.metrics != nil {
		h.metrics.MenuReparentsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handlers) record(r *http.Request, eventType audit.EventType, menuID int64, platformID *int64, allowed bool, message string) {
	var actorID *int64
	if identity, ok := middleware.GetIdentity(r.Context()); ok {
		actorID = &identity.UserID
	}

	event := &audit.Event{
		Type:         eventType,
		ActorID:      actorID,
		PlatformID:   platformID,
		ResourceType: "menu",
		ResourceID:   strconv.FormatInt(menuID, 10),
		Allowed:      allowed,
		Message:      message,
	}
	if err := h.audit.Log(r.Context(), event); err != nil && h.logger != nil {
		h.logger.WithError(err).Warn("failed to record audit event")
	}
	if h.metrics != nil {
		h.metrics.AuditEventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}
