package menus

// CanReparent reports whether moving the menu under proposedParentID keeps
// the forest structurally valid. It is a pure predicate over a parent
// index snapshot (see Store.ParentIndex): it never mutates state and never
// raises; the menu-editing endpoint is responsible for rejecting the write
// when it returns false.
//
// A nil proposedParentID promotes the menu to a root and always passes.
// Otherwise two checks apply:
//
//   - cycle: walking up from the proposed parent must never reach the menu
//     itself (the trivial self-parent case included);
//   - depth: the proposed parent must sit at depth 0 or 1, since parenting
//     under a node at depth MaxDepth would create a fourth level.
func CanReparent(parents map[int64]*int64, menuID int64, proposedParentID *int64) bool {
	if proposedParentID == nil {
		return true
	}
	if *proposedParentID == menuID {
		return false
	}

	// Walk ancestors of the proposed parent. The step bound guards the
	// walk against a pre-existing corrupt cycle in the stored data.
	depth := 0
	current := proposedParentID
	for steps := 0; steps <= len(parents); steps++ {
		parent, ok := parents[*current]
		if !ok || parent == nil {
			// Reached a root (or a node outside the platform snapshot).
			if depth >= MaxDepth {
				return false
			}
			return true
		}
		if *parent == menuID {
			return false
		}
		depth++
		current = parent
	}
	return false
}

// Depth returns the depth of a menu within the parent index, with roots at
// depth 0. Walks are bounded by the index size so corrupt cycles cannot
// loop forever; a cycle yields the bound, which callers treat as invalid.
func Depth(parents map[int64]*int64, menuID int64) int {
	depth := 0
	current := menuID
	for steps := 0; steps <= len(parents); steps++ {
		parent, ok := parents[current]
		if !ok || parent == nil {
			return depth
		}
		depth++
		current = *parent
	}
	return depth
}
