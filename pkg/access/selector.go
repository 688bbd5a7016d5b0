package access

import (
	"context"
	"database/sql"
	"fmt"
)

// Selector manages which single (platform, company) context is active for
// a user. All downstream permission checks are scoped to it.
//
// Select performs no grant validation: choosing a context the user has no
// grants for is allowed and resolves to empty permissions downstream.
type Selector struct {
	db *sql.DB
}

// NewSelector creates a context selector over db.
func NewSelector(db *sql.DB) *Selector {
	return &Selector{db: db}
}

// Select persists key as the user's active context.
func (s *Selector) Select(ctx context.Context, userID int64, key ContextKey) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET selected_platform_id = $1, selected_company_id = $2
		WHERE id = $3
	`, key.PlatformID, key.CompanyID, userID)
	if err != nil {
		return fmt.Errorf("failed to select context: %w", err)
	}
	return requireUserRow(res, userID)
}

// Clear resets the user's active context; subsequent permission resolution
// returns empty sets until a new selection is made.
func (s *Selector) Clear(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET selected_platform_id = NULL, selected_company_id = NULL
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear context: %w", err)
	}
	return requireUserRow(res, userID)
}

// CurrentContext returns the user's active (platform, company) pair, or
// nil when no context is selected. No context is a valid state, not an
// error.
func (s *Selector) CurrentContext(ctx context.Context, userID int64) (*ContextKey, error) {
	var platformID, companyID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT selected_platform_id, selected_company_id
		FROM users
		WHERE id = $1
	`, userID).Scan(&platformID, &companyID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %d", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current context: %w", err)
	}

	if !platformID.Valid || !companyID.Valid {
		return nil, nil
	}
	return &ContextKey{PlatformID: platformID.Int64, CompanyID: companyID.Int64}, nil
}

// ClearStale resets selections pointing at contexts the user no longer
// holds any grant in. Selection is deliberately permissive at write time;
// this sweep is the background counterpart that tidies up after revokes.
// Returns the number of users cleared.
func (s *Selector) ClearStale(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET selected_platform_id = NULL, selected_company_id = NULL
		WHERE selected_platform_id IS NOT NULL
		  AND selected_company_id IS NOT NULL
		  AND NOT EXISTS (
			SELECT 1 FROM platform_company_user_roles ur
			WHERE ur.user_id = users.id
			  AND ur.platform_id = users.selected_platform_id
			  AND ur.company_id = users.selected_company_id
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM platform_company_user_permissions up
			WHERE up.user_id = users.id
			  AND up.platform_id = users.selected_platform_id
			  AND up.company_id = users.selected_company_id
		  )
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear stale selections: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared selections: %w", err)
	}
	return affected, nil
}

func requireUserRow(res sql.Result, userID int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count updated rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %d", userID)
	}
	return nil
}
