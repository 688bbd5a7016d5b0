package menus

// IsAuthorized reports whether a single node is visible to a caller with
// the given effective permissions. A node with an empty required set is
// visible to every authenticated user who can reach the platform; a
// non-empty set needs at least one matching permission, never all of them.
func IsAuthorized(node *Node, perms PermissionSet) bool {
	if len(node.PermissionIDs) == 0 {
		return true
	}
	for _, id := range node.PermissionIDs {
		if perms.Contains(id) {
			return true
		}
	}
	return false
}

// AuthorizedForest prunes the forest against the effective permission set.
//
// The rule applies top-down per root: a root that fails is dropped with
// its whole subtree, and its descendants are never evaluated. Within a
// surviving root each immediate child is tested independently, so removing
// one child never affects its siblings. The structural depth cap keeps the
// forest at three levels, so the two-level filter covers the tree; deeper
// descendants of a surviving child ride along with their permission sets
// attached. Administrator-defined order is preserved and input nodes are
// never mutated.
func AuthorizedForest(forest []*Node, perms PermissionSet) []*Node {
	out := make([]*Node, 0, len(forest))
	for _, root := range forest {
		if !IsAuthorized(root, perms) {
			continue
		}

		kept := *root
		kept.Children = make([]*Node, 0, len(root.Children))
		for _, child := range root.Children {
			if IsAuthorized(child, perms) {
				kept.Children = append(kept.Children, child)
			}
		}
		out = append(out, &kept)
	}
	return out
}
