package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrPermissionNotFound marks lookups for a permission name that does not
// exist. The guard treats it as a deny; other store errors propagate.
var ErrPermissionNotFound = errors.New("permission not found")

// Store handles persistence for roles, permissions, and per-context grants.
type Store struct {
	db *sql.DB
}

// NewStore creates a new access store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateRole creates a new role definition.
func (s *Store) CreateRole(ctx context.Context, role *Role) error {
	query := `
		INSERT INTO roles (name, display_name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		role.Name,
		role.DisplayName,
		role.Description,
		now,
		now,
	).Scan(&role.ID)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	role.CreatedAt = now
	role.UpdatedAt = now

	if len(role.PermissionIDs) > 0 {
		if err := s.SetRolePermissions(ctx, role.ID, role.PermissionIDs); err != nil {
			return err
		}
	}
	return nil
}

// GetRole retrieves a role by id, including its permission set.
func (s *Store) GetRole(ctx context.Context, roleID int64) (*Role, error) {
	query := `
		SELECT id, name, display_name, description, created_at, updated_at
		FROM roles
		WHERE id = $1
	`

	var role Role
	err := s.db.QueryRowContext(ctx, query, roleID).Scan(
		&role.ID,
		&role.Name,
		&role.DisplayName,
		&role.Description,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("role not found: %d", roleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	permIDs, err := s.rolePermissionIDs(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.PermissionIDs = permIDs
	return &role, nil
}

// ListRoles lists all role definitions with their permission sets.
func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	query := `
		SELECT id, name, display_name, description, created_at, updated_at
		FROM roles
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.DisplayName,
			&role.Description,
			&role.CreatedAt,
			&role.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		permIDs, err := s.rolePermissionIDs(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].PermissionIDs = permIDs
	}
	return roles, nil
}

// UpdateRole updates a role's display fields and replaces its permission set.
func (s *Store) UpdateRole(ctx context.Context, role *Role) error {
	query := `
		UPDATE roles
		SET display_name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`

	role.UpdatedAt = time.Now()
	if _, err := s.db.ExecContext(ctx, query,
		role.DisplayName,
		role.Description,
		role.UpdatedAt,
		role.ID,
	); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	return s.SetRolePermissions(ctx, role.ID, role.PermissionIDs)
}

// DeleteRole deletes a role definition and its permission links. Grant rows
// referencing the role cascade at the schema level.
func (s *Store) DeleteRole(ctx context.Context, roleID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("failed to delete role permissions: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, roleID); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}

// SetRolePermissions replaces the role's permission set in one transaction.
func (s *Store) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear role permissions: %w", err)
	}

	for _, permID := range NewIDSet(permissionIDs...).Values() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
			roleID, permID,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to link permission %d to role %d: %w", permID, roleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit role permissions: %w", err)
	}
	return nil
}

// rolePermissionIDs returns the permission ids linked to a role.
func (s *Store) rolePermissionIDs(ctx context.Context, roleID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT permission_id FROM role_permissions WHERE role_id = $1 ORDER BY permission_id ASC`,
		roleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan permission id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreatePermission creates a new permission definition.
func (s *Store) CreatePermission(ctx context.Context, perm *Permission) error {
	query := `
		INSERT INTO permissions (name, display_name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		perm.Name,
		perm.DisplayName,
		perm.Description,
		now,
		now,
	).Scan(&perm.ID)
	if err != nil {
		return fmt.Errorf("failed to create permission: %w", err)
	}

	perm.CreatedAt = now
	perm.UpdatedAt = now
	return nil
}

// GetPermissionByName retrieves a permission by its unique name.
func (s *Store) GetPermissionByName(ctx context.Context, name string) (*Permission, error) {
	query := `
		SELECT id, name, display_name, description, created_at, updated_at
		FROM permissions
		WHERE name = $1
	`

	var perm Permission
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&perm.ID,
		&perm.Name,
		&perm.DisplayName,
		&perm.Description,
		&perm.CreatedAt,
		&perm.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrPermissionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return &perm, nil
}

// ListPermissions lists all permission definitions.
func (s *Store) ListPermissions(ctx context.Context) ([]Permission, error) {
	query := `
		SELECT id, name, display_name, description, created_at, updated_at
		FROM permissions
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(
			&perm.ID,
			&perm.Name,
			&perm.DisplayName,
			&perm.Description,
			&perm.CreatedAt,
			&perm.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

// PermissionNames resolves ids to names. Unknown ids are silently dropped.
func (s *Store) PermissionNames(ctx context.Context, ids IDSet) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM permissions ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permission names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan permission name: %w", err)
		}
		if ids.Contains(id) {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}

// GrantRole assigns a role to a user within a (platform, company) context.
func (s *Store) GrantRole(ctx context.Context, grant *RoleGrant) error {
	query := `
		INSERT INTO platform_company_user_roles (user_id, platform_id, company_id, role_id, granted_by, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		grant.UserID,
		grant.PlatformID,
		grant.CompanyID,
		grant.RoleID,
		grant.GrantedBy,
		now,
	).Scan(&grant.ID)
	if err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}

	grant.GrantedAt = now
	return nil
}

// RevokeRole removes a role grant by id.
func (s *Store) RevokeRole(ctx context.Context, grantID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM platform_company_user_roles WHERE id = $1`, grantID,
	); err != nil {
		return fmt.Errorf("failed to revoke role grant: %w", err)
	}
	return nil
}

// GrantPermission assigns a permission directly to a user within a
// (platform, company) context.
func (s *Store) GrantPermission(ctx context.Context, grant *PermissionGrant) error {
	query := `
		INSERT INTO platform_company_user_permissions (user_id, platform_id, company_id, permission_id, granted_by, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		grant.UserID,
		grant.PlatformID,
		grant.CompanyID,
		grant.PermissionID,
		grant.GrantedBy,
		now,
	).Scan(&grant.ID)
	if err != nil {
		return fmt.Errorf("failed to grant permission: %w", err)
	}

	grant.GrantedAt = now
	return nil
}

// RevokePermission removes a direct permission grant by id.
func (s *Store) RevokePermission(ctx context.Context, grantID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM platform_company_user_permissions WHERE id = $1`, grantID,
	); err != nil {
		return fmt.Errorf("failed to revoke permission grant: %w", err)
	}
	return nil
}

// roleIDsForContext returns the ids of roles granted to the user in the
// given (platform, company) context.
func (s *Store) roleIDsForContext(ctx context.Context, userID int64, key ContextKey) (IDSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role_id
		FROM platform_company_user_roles
		WHERE user_id = $1 AND platform_id = $2 AND company_id = $3
	`, userID, key.PlatformID, key.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role grants: %w", err)
	}
	defer rows.Close()

	set := make(IDSet)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan role grant: %w", err)
		}
		set.Add(id)
	}
	return set, rows.Err()
}

// rolePermissionIDsForContext returns the permission ids reachable through
// every role granted to the user in the given context. Role expansion is a
// static many-to-many: roles do not inherit from other roles.
func (s *Store) rolePermissionIDsForContext(ctx context.Context, userID int64, key ContextKey) (IDSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT rp.permission_id
		FROM role_permissions rp
		JOIN platform_company_user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = $1 AND ur.platform_id = $2 AND ur.company_id = $3
	`, userID, key.PlatformID, key.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role-derived permissions: %w", err)
	}
	defer rows.Close()

	set := make(IDSet)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan role-derived permission: %w", err)
		}
		set.Add(id)
	}
	return set, rows.Err()
}

// directPermissionIDsForContext returns the permission ids granted directly
// to the user in the given context.
func (s *Store) directPermissionIDsForContext(ctx context.Context, userID int64, key ContextKey) (IDSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT permission_id
		FROM platform_company_user_permissions
		WHERE user_id = $1 AND platform_id = $2 AND company_id = $3
	`, userID, key.PlatformID, key.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query direct permissions: %w", err)
	}
	defer rows.Close()

	set := make(IDSet)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan direct permission: %w", err)
		}
		set.Add(id)
	}
	return set, rows.Err()
}

// roleGrantRows returns every role grant a user holds, joined with role and
// tenant names, ordered so consecutive rows of one (platform, company) pair
// stay adjacent for grouping.
func (s *Store) roleGrantRows(ctx context.Context, userID int64) ([]roleGrantRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ur.platform_id, p.name, p.slug, ur.company_id, c.name,
		       r.id, r.name, r.display_name, r.description, r.created_at, r.updated_at
		FROM platform_company_user_roles ur
		JOIN platforms p ON p.id = ur.platform_id
		JOIN companies c ON c.id = ur.company_id
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY ur.platform_id ASC, ur.company_id ASC, r.name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role grant rows: %w", err)
	}
	defer rows.Close()

	var out []roleGrantRow
	for rows.Next() {
		var row roleGrantRow
		if err := rows.Scan(
			&row.PlatformID,
			&row.PlatformName,
			&row.PlatformSlug,
			&row.CompanyID,
			&row.CompanyName,
			&row.Role.ID,
			&row.Role.Name,
			&row.Role.DisplayName,
			&row.Role.Description,
			&row.Role.CreatedAt,
			&row.Role.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan role grant row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// roleGrantRow is one joined row of a user's role assignment history.
type roleGrantRow struct {
	PlatformID   int64
	PlatformName string
	PlatformSlug string
	CompanyID    int64
	CompanyName  string
	Role         Role
}
