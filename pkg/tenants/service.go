package tenants

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PostgresService implements Service over database/sql.
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a tenant service backed by db.
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

// CreatePlatform creates a platform. A missing slug is generated from the
// name.
func (s *PostgresService) CreatePlatform(ctx context.Context, platform *Platform) error {
	if platform.Slug == "" {
		platform.Slug = generateSlug(platform.Name)
	}
	platform.IsActive = true

	query := `
		INSERT INTO platforms (name, slug, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		platform.Name,
		platform.Slug,
		platform.Description,
		platform.IsActive,
		now,
		now,
	).Scan(&platform.ID)
	if err != nil {
		return fmt.Errorf("failed to create platform: %w", err)
	}

	platform.CreatedAt = now
	platform.UpdatedAt = now
	return nil
}

// GetPlatform retrieves a platform by id.
func (s *PostgresService) GetPlatform(ctx context.Context, id int64) (*Platform, error) {
	query := `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM platforms
		WHERE id = $1
	`
	return s.scanPlatform(s.db.QueryRowContext(ctx, query, id))
}

// GetPlatformBySlug retrieves a platform by slug.
func (s *PostgresService) GetPlatformBySlug(ctx context.Context, slug string) (*Platform, error) {
	query := `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM platforms
		WHERE slug = $1
	`
	return s.scanPlatform(s.db.QueryRowContext(ctx, query, slug))
}

func (s *PostgresService) scanPlatform(row *sql.Row) (*Platform, error) {
	platform := &Platform{}
	err := row.Scan(
		&platform.ID,
		&platform.Name,
		&platform.Slug,
		&platform.Description,
		&platform.IsActive,
		&platform.CreatedAt,
		&platform.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("platform not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get platform: %w", err)
	}
	return platform, nil
}

// ListPlatforms lists active platforms.
func (s *PostgresService) ListPlatforms(ctx context.Context) ([]Platform, error) {
	query := `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM platforms
		WHERE is_active = $1
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}
	defer rows.Close()

	var platforms []Platform
	for rows.Next() {
		var platform Platform
		if err := rows.Scan(
			&platform.ID,
			&platform.Name,
			&platform.Slug,
			&platform.Description,
			&platform.IsActive,
			&platform.CreatedAt,
			&platform.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan platform: %w", err)
		}
		platforms = append(platforms, platform)
	}
	return platforms, rows.Err()
}

// CreateCompany creates a company. A missing slug is generated from the
// name.
func (s *PostgresService) CreateCompany(ctx context.Context, company *Company) error {
	if company.Slug == "" {
		company.Slug = generateSlug(company.Name)
	}
	company.IsActive = true

	query := `
		INSERT INTO companies (name, slug, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		company.Name,
		company.Slug,
		company.IsActive,
		now,
		now,
	).Scan(&company.ID)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	company.CreatedAt = now
	company.UpdatedAt = now
	return nil
}

// GetCompany retrieves a company by id.
func (s *PostgresService) GetCompany(ctx context.Context, id int64) (*Company, error) {
	query := `
		SELECT id, name, slug, is_active, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	company := &Company{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Slug,
		&company.IsActive,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("company not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// ListCompanies lists active companies.
func (s *PostgresService) ListCompanies(ctx context.Context) ([]Company, error) {
	query := `
		SELECT id, name, slug, is_active, created_at, updated_at
		FROM companies
		WHERE is_active = $1
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// AssociateCompany offers a platform to a company.
func (s *PostgresService) AssociateCompany(ctx context.Context, platformID, companyID int64) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM platform_companies WHERE platform_id = $1 AND company_id = $2`,
		platformID, companyID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check platform association: %w", err)
	}
	if exists > 0 {
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO platform_companies (platform_id, company_id) VALUES ($1, $2)`,
		platformID, companyID,
	); err != nil {
		return fmt.Errorf("failed to associate company with platform: %w", err)
	}
	return nil
}

// ListPlatformCompanies lists the companies a platform is offered to.
func (s *PostgresService) ListPlatformCompanies(ctx context.Context, platformID int64) ([]Company, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.is_active, c.created_at, c.updated_at
		FROM companies c
		JOIN platform_companies pc ON pc.company_id = c.id
		WHERE pc.platform_id = $1
		ORDER BY c.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, platformID)
	if err != nil {
		return nil, fmt.Errorf("failed to list platform companies: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

func scanCompanies(rows *sql.Rows) ([]Company, error) {
	var companies []Company
	for rows.Next() {
		var company Company
		if err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.Slug,
			&company.IsActive,
			&company.CreatedAt,
			&company.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// generateSlug derives a URL-safe slug from a display name.
func generateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugCleaner.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
