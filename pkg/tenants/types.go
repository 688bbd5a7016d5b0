package tenants

import (
	"context"
	"time"
)

// Platform is a tenant-facing product. Each platform owns a menu forest
// and is offered to a set of companies.
type Platform struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Company is an organizational tenant. Authorization is always scoped by
// the (platform, company) pair, never by company alone.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlatformDirectory is the read surface other packages need to resolve
// platforms by id or slug.
type PlatformDirectory interface {
	GetPlatform(ctx context.Context, id int64) (*Platform, error)
	GetPlatformBySlug(ctx context.Context, slug string) (*Platform, error)
}

// Service manages platforms, companies, and the association between them.
type Service interface {
	PlatformDirectory

	CreatePlatform(ctx context.Context, platform *Platform) error
	ListPlatforms(ctx context.Context) ([]Platform, error)

	CreateCompany(ctx context.Context, company *Company) error
	GetCompany(ctx context.Context, id int64) (*Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)

	// AssociateCompany offers a platform to a company. Associating twice
	// is a no-op.
	AssociateCompany(ctx context.Context, platformID, companyID int64) error
	ListPlatformCompanies(ctx context.Context, platformID int64) ([]Company, error)
}
