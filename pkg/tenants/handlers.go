package tenants

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/crewplane/crewplane/pkg/httputil"
)

// Handlers exposes the platform and company administration endpoints.
type Handlers struct {
	service Service
}

// NewHandlers creates the tenant handlers.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers all tenant routes on the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/platforms", h.CreatePlatform).Methods("POST")
	router.HandleFunc("/platforms", h.ListPlatforms).Methods("GET")
	router.HandleFunc("/platforms/{platform_id:[0-9]+}", h.GetPlatform).Methods("GET")
	router.HandleFunc("/platforms/{platform_id:[0-9]+}/companies", h.ListPlatformCompanies).Methods("GET")
	router.HandleFunc("/platforms/{platform_id:[0-9]+}/companies/{company_id}", h.AssociateCompany).Methods("PUT")
	router.HandleFunc("/companies", h.CreateCompany).Methods("POST")
	router.HandleFunc("/companies", h.ListCompanies).Methods("GET")
	router.HandleFunc("/companies/{company_id}", h.GetCompany).Methods("GET")
}

// CreatePlatform creates a platform.
func (h *Handlers) CreatePlatform(w http.ResponseWriter, r *http.Request) {
	var platform Platform
	if !httputil.ParseJSONOrError(w, r, &platform) {
		return
	}
	if !httputil.RequireNonEmpty(w, platform.Name, "name") {
		return
	}

	if err := h.service.CreatePlatform(r.Context(), &platform); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, platform)
}

// GetPlatform retrieves one platform.
func (h *Handlers) GetPlatform(w http.ResponseWriter, r *http.Request) {
	platformID, ok := httputil.ParsePathInt64OrError(w, r, "platform_id")
	if !ok {
		return
	}

	platform, err := h.service.GetPlatform(r.Context(), platformID)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, platform)
}

// ListPlatforms lists active platforms.
func (h *Handlers) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.service.ListPlatforms(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if platforms == nil {
		platforms = []Platform{}
	}
	httputil.WriteSuccess(w, platforms)
}

// CreateCompany creates a company.
func (h *Handlers) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var company Company
	if !httputil.ParseJSONOrError(w, r, &company) {
		return
	}
	if !httputil.RequireNonEmpty(w, company.Name, "name") {
		return
	}

	if err := h.service.CreateCompany(r.Context(), &company); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, company)
}

// GetCompany retrieves one company.
func (h *Handlers) GetCompany(w http.ResponseWriter, r *http.Request) {
	companyID, ok := httputil.ParsePathInt64OrError(w, r, "company_id")
	if !ok {
		return
	}

	company, err := h.service.GetCompany(r.Context(), companyID)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, company)
}

// ListCompanies lists active companies.
func (h *Handlers) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if companies == nil {
		companies = []Company{}
	}
	httputil.WriteSuccess(w, companies)
}

// ListPlatformCompanies lists the companies a platform is offered to.
func (h *Handlers) ListPlatformCompanies(w http.ResponseWriter, r *http.Request) {
	platformID, ok := httputil.ParsePathInt64OrError(w, r, "platform_id")
	if !ok {
		return
	}

	companies, err := h.service.ListPlatformCompanies(r.Context(), platformID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if companies == nil {
		companies = []Company{}
	}
	httputil.WriteSuccess(w, companies)
}

// AssociateCompany offers the platform to a company. Repeating the call
// is a no-op.
func (h *Handlers) AssociateCompany(w http.ResponseWriter, r *http.Request) {
	platformID, ok := httputil.ParsePathInt64OrError(w, r, "platform_id")
	if !ok {
		return
	}
	companyID, ok := httputil.ParsePathInt64OrError(w, r, "company_id")
	if !ok {
		return
	}

	if err := h.service.AssociateCompany(r.Context(), platformID, companyID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
