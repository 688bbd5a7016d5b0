package menus

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Store handles menu persistence. Menus live in a flat table keyed by id
// with a nullable parent id; tree views are derived on read by grouping
// children under their parent, so no cyclic object graphs ever exist in
// memory.
type Store struct {
	db *sql.DB
}

// NewStore creates a new menu store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a menu node and links its required permissions.
func (s *Store) Create(ctx context.Context, menu *Menu) error {
	query := `
		INSERT INTO menus (platform_id, parent_id, name, slug, url, display_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		menu.PlatformID,
		menu.ParentID,
		menu.Name,
		menu.Slug,
		menu.URL,
		menu.DisplayOrder,
		menu.IsActive,
		now,
		now,
	).Scan(&menu.ID)
	if err != nil {
		return fmt.Errorf("failed to create menu: %w", err)
	}

	menu.CreatedAt = now
	menu.UpdatedAt = now

	if len(menu.PermissionIDs) > 0 {
		if err := s.SetPermissions(ctx, menu.ID, menu.PermissionIDs); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a menu by id, including its required-permission ids.
func (s *Store) Get(ctx context.Context, menuID int64) (*Menu, error) {
	query := `
		SELECT id, platform_id, parent_id, name, slug, url, display_order, is_active, created_at, updated_at
		FROM menus
		WHERE id = $1
	`

	var menu Menu
	var parentID sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, menuID).Scan(
		&menu.ID,
		&menu.PlatformID,
		&parentID,
		&menu.Name,
		&menu.Slug,
		&menu.URL,
		&menu.DisplayOrder,
		&menu.IsActive,
		&menu.CreatedAt,
		&menu.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("menu not found: %d", menuID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}

	if parentID.Valid {
		id := parentID.Int64
		menu.ParentID = &id
	}

	permIDs, err := s.permissionIDs(ctx, menu.ID)
	if err != nil {
		return nil, err
	}
	menu.PermissionIDs = permIDs
	return &menu, nil
}

// Update updates a menu's fields and replaces its required-permission set.
// Parent changes go through Reparent so the tree validator is consulted.
func (s *Store) Update(ctx context.Context, menu *Menu) error {
	query := `
		UPDATE menus
		SET name = $1, slug = $2, url = $3, display_order = $4, is_active = $5, updated_at = $6
		WHERE id = $7
	`

	menu.UpdatedAt = time.Now()
	if _, err := s.db.ExecContext(ctx, query,
		menu.Name,
		menu.Slug,
		menu.URL,
		menu.DisplayOrder,
		menu.IsActive,
		menu.UpdatedAt,
		menu.ID,
	); err != nil {
		return fmt.Errorf("failed to update menu: %w", err)
	}

	return s.SetPermissions(ctx, menu.ID, menu.PermissionIDs)
}

// Delete removes a menu node and its permission links. Children of the
// deleted node are promoted to roots rather than orphaned.
func (s *Store) Delete(ctx context.Context, menuID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE menus SET parent_id = NULL WHERE parent_id = $1`, menuID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to promote children of menu %d: %w", menuID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_permissions WHERE menu_id = $1`, menuID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete menu permissions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM menus WHERE id = $1`, menuID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete menu: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit menu delete: %w", err)
	}
	return nil
}

// SetPermissions replaces a menu's required-permission set.
func (s *Store) SetPermissions(ctx context.Context, menuID int64, permissionIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_permissions WHERE menu_id = $1`, menuID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear menu permissions: %w", err)
	}

	seen := make(map[int64]struct{}, len(permissionIDs))
	for _, permID := range permissionIDs {
		if _, dup := seen[permID]; dup {
			continue
		}
		seen[permID] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO menu_permissions (menu_id, permission_id) VALUES ($1, $2)`,
			menuID, permID,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to link permission %d to menu %d: %w", permID, menuID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit menu permissions: %w", err)
	}
	return nil
}

// Reparent persists a parent change. Callers must have consulted
// CanReparent first; the store performs no structural validation.
func (s *Store) Reparent(ctx context.Context, menuID int64, parentID *int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE menus SET parent_id = $1, updated_at = $2 WHERE id = $3`,
		parentID, time.Now(), menuID,
	); err != nil {
		return fmt.Errorf("failed to reparent menu %d: %w", menuID, err)
	}
	return nil
}

// ParentIndex returns the id -> parent-id mapping for every menu of the
// platform, active or not. The validator walks this snapshot instead of
// issuing one query per ancestor.
func (s *Store) ParentIndex(ctx context.Context, platformID int64) (map[int64]*int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_id FROM menus WHERE platform_id = $1`,
		platformID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent index: %w", err)
	}
	defer rows.Close()

	index := make(map[int64]*int64)
	for rows.Next() {
		var id int64
		var parentID sql.NullInt64
		if err := rows.Scan(&id, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan parent index row: %w", err)
		}
		if parentID.Valid {
			pid := parentID.Int64
			index[id] = &pid
		} else {
			index[id] = nil
		}
	}
	return index, rows.Err()
}

// Forest loads the platform's active menus ordered by the administrator-
// defined display order and assembles the tree view by grouping children
// under their parent id. Every node carries its required-permission ids
// and names.
func (s *Store) Forest(ctx context.Context, platformID int64) ([]*Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform_id, parent_id, name, slug, url, display_order, is_active, created_at, updated_at
		FROM menus
		WHERE platform_id = $1 AND is_active = $2
		ORDER BY display_order ASC, id ASC
	`, platformID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu forest: %w", err)
	}
	defer rows.Close()

	var ordered []*Node
	arena := make(map[int64]*Node)
	for rows.Next() {
		node := &Node{}
		var parentID sql.NullInt64
		if err := rows.Scan(
			&node.ID,
			&node.PlatformID,
			&parentID,
			&node.Name,
			&node.Slug,
			&node.URL,
			&node.DisplayOrder,
			&node.IsActive,
			&node.CreatedAt,
			&node.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan menu node: %w", err)
		}
		if parentID.Valid {
			id := parentID.Int64
			node.ParentID = &id
		}
		ordered = append(ordered, node)
		arena[node.ID] = node
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachPermissions(ctx, platformID, arena); err != nil {
		return nil, err
	}

	// Children were scanned in display order, so appending preserves it.
	// A node whose parent is inactive (absent from the arena) is treated
	// as a root for this read.
	var roots []*Node
	for _, node := range ordered {
		if node.ParentID != nil {
			if parent, ok := arena[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// attachPermissions loads required-permission ids and names for every node
// of the platform in one pass.
func (s *Store) attachPermissions(ctx context.Context, platformID int64, arena map[int64]*Node) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mp.menu_id, pm.id, pm.name
		FROM menu_permissions mp
		JOIN permissions pm ON pm.id = mp.permission_id
		JOIN menus m ON m.id = mp.menu_id
		WHERE m.platform_id = $1
		ORDER BY mp.menu_id ASC, pm.name ASC
	`, platformID)
	if err != nil {
		return fmt.Errorf("failed to load menu permissions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var menuID, permID int64
		var permName string
		if err := rows.Scan(&menuID, &permID, &permName); err != nil {
			return fmt.Errorf("failed to scan menu permission: %w", err)
		}
		if node, ok := arena[menuID]; ok {
			node.PermissionIDs = append(node.PermissionIDs, permID)
			node.PermissionNames = append(node.PermissionNames, permName)
		}
	}
	return rows.Err()
}

// ListByPlatform returns every menu row of a platform, active or not,
// ordered for the admin editing screens.
func (s *Store) ListByPlatform(ctx context.Context, platformID int64) ([]Menu, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform_id, parent_id, name, slug, url, display_order, is_active, created_at, updated_at
		FROM menus
		WHERE platform_id = $1
		ORDER BY display_order ASC, id ASC
	`, platformID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}
	defer rows.Close()

	var out []Menu
	for rows.Next() {
		var menu Menu
		var parentID sql.NullInt64
		if err := rows.Scan(
			&menu.ID,
			&menu.PlatformID,
			&parentID,
			&menu.Name,
			&menu.Slug,
			&menu.URL,
			&menu.DisplayOrder,
			&menu.IsActive,
			&menu.CreatedAt,
			&menu.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		if parentID.Valid {
			id := parentID.Int64
			menu.ParentID = &id
		}
		out = append(out, menu)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		permIDs, err := s.permissionIDs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].PermissionIDs = permIDs
	}
	return out, nil
}

// permissionIDs returns the required-permission ids of one menu.
func (s *Store) permissionIDs(ctx context.Context, menuID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT permission_id FROM menu_permissions WHERE menu_id = $1`,
		menuID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu permissions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan menu permission id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
