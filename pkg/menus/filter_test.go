package menus

import (
	"testing"
)

func TestIsAuthorized_EmptyRequiredSetIsVisible(t *testing.T) {
	n := node(1, nil)
	if !IsAuthorized(n, NewPermissionSet()) {
		t.Error("Node with no required permissions should be visible to everyone")
	}
	if !IsAuthorized(n, NewPermissionSet(42)) {
		t.Error("Node with no required permissions should be visible regardless of held permissions")
	}
}

func TestIsAuthorized_AtLeastOneMatchSuffices(t *testing.T) {
	n := node(1, []int64{10, 20, 30})

	if IsAuthorized(n, NewPermissionSet()) {
		t.Error("Empty effective set should not see a restricted node")
	}
	if IsAuthorized(n, NewPermissionSet(99)) {
		t.Error("Disjoint effective set should not see a restricted node")
	}
	if !IsAuthorized(n, NewPermissionSet(20)) {
		t.Error("One matching permission should be enough")
	}
	if !IsAuthorized(n, NewPermissionSet(10, 20, 30)) {
		t.Error("Full match should be visible")
	}
}

func TestAuthorizedForest_DropsFailingRootWithSubtree(t *testing.T) {
	// The child requires a permission the caller holds, but its root does
	// not; the subtree must vanish without the child ever being evaluated.
	forest := []*Node{
		node(1, []int64{10},
			node(2, []int64{20}),
		),
	}

	out := AuthorizedForest(forest, NewPermissionSet(20))
	if len(out) != 0 {
		t.Errorf("Expected failing root to be dropped with its subtree, got %d roots", len(out))
	}
}

func TestAuthorizedForest_FiltersChildrenIndependently(t *testing.T) {
	forest := []*Node{
		node(1, nil,
			node(2, []int64{10}),
			node(3, []int64{20}),
			node(4, nil),
		),
	}

	out := AuthorizedForest(forest, NewPermissionSet(10))
	if len(out) != 1 {
		t.Fatalf("Expected 1 root, got %d", len(out))
	}

	children := out[0].Children
	if len(children) != 2 {
		t.Fatalf("Expected 2 surviving children, got %d", len(children))
	}
	if children[0].ID != 2 || children[1].ID != 4 {
		t.Errorf("Expected children [2 4] in order, got [%d %d]", children[0].ID, children[1].ID)
	}
}

func TestAuthorizedForest_PreservesOrder(t *testing.T) {
	forest := []*Node{
		node(3, nil),
		node(1, []int64{10}),
		node(2, nil),
	}

	out := AuthorizedForest(forest, NewPermissionSet(10))
	if len(out) != 3 {
		t.Fatalf("Expected 3 roots, got %d", len(out))
	}
	for i, want := range []int64{3, 1, 2} {
		if out[i].ID != want {
			t.Errorf("Expected root %d at position %d, got %d", want, i, out[i].ID)
		}
	}
}

func TestAuthorizedForest_GrandchildrenRideAlong(t *testing.T) {
	// Depth cap keeps the forest at three levels; the filter gates roots
	// and children, and a surviving child keeps its own children.
	forest := []*Node{
		node(1, nil,
			node(2, []int64{10},
				node(3, []int64{999}),
			),
		),
	}

	out := AuthorizedForest(forest, NewPermissionSet(10))
	if len(out) != 1 || len(out[0].Children) != 1 {
		t.Fatal("Expected root and child to survive")
	}
	grandchildren := out[0].Children[0].Children
	if len(grandchildren) != 1 || grandchildren[0].ID != 3 {
		t.Error("Expected grandchild to ride along with its surviving parent")
	}
}

func TestAuthorizedForest_DoesNotMutateInput(t *testing.T) {
	root := node(1, nil,
		node(2, []int64{10}),
		node(3, []int64{20}),
	)
	forest := []*Node{root}

	AuthorizedForest(forest, NewPermissionSet(10))

	if len(root.Children) != 2 {
		t.Errorf("Input forest was mutated: expected 2 children, got %d", len(root.Children))
	}
}

func TestAuthorizedForest_EmptyEffectiveSetSeesUnrestrictedOnly(t *testing.T) {
	forest := []*Node{
		node(1, nil),
		node(2, []int64{10}),
	}

	out := AuthorizedForest(forest, NewPermissionSet())
	if len(out) != 1 || out[0].ID != 1 {
		t.Errorf("Expected only the unrestricted root, got %v", out)
	}
}
