package domtree

import "testing"

func TestAddChildNoopWithoutParent(t *testing.T) {
	f := New()
	if got := f.AddChild(1, 2); got {
		t.Fatalf("AddChild on missing parent returned true")
	}
	if f.Has(2) {
		t.Fatalf("child attached under a parent that was never a forest node")
	}
}

func TestAddChildBecomesTwoParented(t *testing.T) {
	f := New()
	f.AddRoot(1)
	f.AddRoot(9)

	if got := f.AddChild(1, 2); got {
		t.Fatalf("first attach reported two-parented")
	}
	if got := f.AddChild(9, 2); !got {
		t.Fatalf("second attach under a different parent should report two-parented")
	}
}

func TestAddChildTwiceUnderSameParentPanics(t *testing.T) {
	f := New()
	f.AddRoot(1)
	f.AddRoot(9)
	f.AddChild(1, 2)
	f.AddChild(9, 2)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on a third overlapping attach")
		}
	}()
	f.AddChild(1, 2)
}

func TestRemoveChildVisitsSubtreeBreadthFirst(t *testing.T) {
	f := New()
	f.AddRoot(1)
	f.AddChild(1, 2)
	f.AddChild(2, 3)

	var visited []int32
	f.RemoveChild(1, 2, func(id int32) { visited = append(visited, id) })

	if len(visited) != 2 || visited[0] != 2 || visited[1] != 3 {
		t.Fatalf("visited = %v, want [2 3]", visited)
	}
	if f.Has(2) || f.Has(3) {
		t.Fatalf("removed nodes remain in the forest")
	}
}

func TestRemoveChildSkipsTwoParentedNode(t *testing.T) {
	f := New()
	f.AddRoot(1)
	f.AddRoot(9)
	f.AddChild(1, 2)
	f.AddChild(9, 2)

	var visited []int32
	f.RemoveChild(1, 2, func(id int32) { visited = append(visited, id) })

	if len(visited) != 0 {
		t.Fatalf("two-parented node should not be visited, got %v", visited)
	}
	if !f.Has(2) {
		t.Fatalf("two-parented node should survive under its other parent")
	}
}

func TestRemoveChildNoopWithoutParent(t *testing.T) {
	f := New()
	f.RemoveChild(1, 2, func(int32) { t.Fatalf("visit should not be called") })
}

func TestRemoveChildNotInParentsSetPanics(t *testing.T) {
	f := New()
	f.AddRoot(1)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic for remove of a child parent doesn't have")
		}
		if _, ok := r.(*Inconsistency); !ok {
			t.Fatalf("panic value = %T, want *Inconsistency", r)
		}
	}()
	f.RemoveChild(1, 2, func(int32) {})
}

func TestRemove(t *testing.T) {
	f := New()
	f.AddRoot(1)
	f.Remove(1)
	if f.Has(1) {
		t.Fatalf("Remove left node in forest")
	}
}
