package menus

import (
	"testing"
)

func parentIndex(pairs map[int64]int64, roots ...int64) map[int64]*int64 {
	index := make(map[int64]*int64)
	for _, id := range roots {
		index[id] = nil
	}
	for child, parent := range pairs {
		p := parent
		index[child] = &p
	}
	return index
}

func TestCanReparent_NilParentAlwaysAllowed(t *testing.T) {
	index := parentIndex(map[int64]int64{2: 1}, 1)
	if !CanReparent(index, 2, nil) {
		t.Error("Promoting to root must always be allowed")
	}
}

func TestCanReparent_SelfParentRejected(t *testing.T) {
	index := parentIndex(nil, 1)
	self := int64(1)
	if CanReparent(index, 1, &self) {
		t.Error("A menu must not become its own parent")
	}
}

func TestCanReparent_CycleRejected(t *testing.T) {
	// 1 <- 2 <- 3; moving 1 under 3 would close a cycle.
	index := parentIndex(map[int64]int64{2: 1, 3: 2}, 1)
	proposed := int64(3)
	if CanReparent(index, 1, &proposed) {
		t.Error("Moving a menu under its own descendant must be rejected")
	}

	// Moving 3 under 1 is a plain shortcut, no cycle.
	proposed = int64(1)
	if !CanReparent(index, 3, &proposed) {
		t.Error("Moving a leaf under the root must be allowed")
	}
}

func TestCanReparent_DepthCap(t *testing.T) {
	// 1 (depth 0) <- 2 (depth 1) <- 3 (depth 2), plus standalone 4.
	index := parentIndex(map[int64]int64{2: 1, 3: 2}, 1, 4)

	// Parent at depth 0 or 1 is fine.
	p1, p2, p3 := int64(1), int64(2), int64(3)
	if !CanReparent(index, 4, &p1) {
		t.Error("Parenting under a root must be allowed")
	}
	if !CanReparent(index, 4, &p2) {
		t.Error("Parenting under a depth-1 node must be allowed")
	}

	// Parent at the maximum depth would create a fourth level.
	if CanReparent(index, 4, &p3) {
		t.Error("Parenting under a node at the maximum depth must be rejected")
	}
}

func TestCanReparent_CorruptCycleInSnapshotRejected(t *testing.T) {
	// A pre-existing cycle in stored data must terminate the walk and
	// reject the move instead of looping.
	a, b := int64(1), int64(2)
	index := map[int64]*int64{1: &b, 2: &a}
	proposed := int64(1)
	if CanReparent(index, 3, &proposed) {
		t.Error("Walk over corrupt data must reject rather than loop")
	}
}

func TestDepth(t *testing.T) {
	index := parentIndex(map[int64]int64{2: 1, 3: 2}, 1)

	cases := []struct {
		id   int64
		want int
	}{
		{1, 0},
		{2, 1},
		{3, 2},
		{99, 0}, // unknown id reads as a root
	}
	for _, tc := range cases {
		if got := Depth(index, tc.id); got != tc.want {
			t.Errorf("Depth(%d) = %d, want %d", tc.id, got, tc.want)
		}
	}
}
