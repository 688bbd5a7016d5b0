// Package menus manages per-platform navigation menus and their
// permission-based visibility.
//
// # Overview
//
// Menus are stored flat with a nullable parent reference and assembled
// into a forest ordered by display_order. Trees are capped at two
// parent levels, so a menu is a root, a child, or a grandchild and
// never deeper.
//
// # Reparenting
//
// Moves are validated before writing with CanReparent, a pure check
// over a snapshot of the parent index:
//
//	parents, err := store.ParentIndex(ctx, platformID)
//	if menus.CanReparent(parents, menuID, proposedParentID) {
//		err = store.Reparent(ctx, menuID, proposedParentID)
//	}
//
// Moving to a nil parent always succeeds. Self-parenting, cycles, and
// moves that would push any descendant past the depth cap are rejected.
//
// # Visibility Filtering
//
// AuthorizedForest prunes a forest down to what a permission set may
// see:
//
//	visible := menus.AuthorizedForest(forest, perms)
//
// A menu with no required permissions is visible to everyone; one with
// required permissions needs at least one of them held. A failing root
// drops its whole subtree without evaluating children; grandchildren
// inherit their parent's outcome. The input forest is never mutated.
//
// # Related Packages
//
//   - pkg/access: computes the permission sets fed to the filter
//   - pkg/tenants: the platforms menus belong to
package menus
