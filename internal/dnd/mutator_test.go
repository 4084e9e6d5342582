package dnd_test

import (
	"testing"

	"github.com/goliatone/go-navtree/internal/dnd"
	"github.com/goliatone/go-navtree/navigation"
)

func TestCommitReorderAmongSiblings(t *testing.T) {
	tree := dnd.BuildTree(flatABC())

	// Drop A just after B: the projection index counts A among its old
	// siblings, commit compensates after the detach.
	next, ok := dnd.Commit(tree, 1, dnd.Projection{ParentID: nil, Index: 2, Depth: 0})

	if !ok {
		t.Fatal("expected commit to succeed")
	}
	if !equalLabels(next, []string{"B", "A", "C"}) {
		t.Fatalf("expected [B A C], got %v", labels(next))
	}
	for i, node := range next {
		if node.Position != i || node.Depth != 0 || node.ParentID != nil {
			t.Fatalf("root %s not normalized: %+v", node.Label, node)
		}
	}
}

func TestCommitIndent(t *testing.T) {
	tree := dnd.BuildTree([]*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "B", nil, 1),
	})

	next, ok := dnd.Commit(tree, 2, dnd.Projection{ParentID: ptr(1), Index: 0, Depth: 1})

	if !ok {
		t.Fatal("expected commit to succeed")
	}
	if !equalLabels(next, []string{"A"}) {
		t.Fatalf("expected single root A, got %v", labels(next))
	}
	if !equalLabels(next[0].Children, []string{"B"}) {
		t.Fatalf("expected B under A, got %v", labels(next[0].Children))
	}
	child := next[0].Children[0]
	if child.Depth != 1 || child.Position != 0 || child.ParentID == nil || *child.ParentID != 1 {
		t.Fatalf("child not normalized: %+v", child)
	}
}

func TestCommitOutdent(t *testing.T) {
	tree := dnd.BuildTree([]*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "B", ptr(1), 0),
		item(3, "C", ptr(2), 0),
	})

	next, ok := dnd.Commit(tree, 3, dnd.Projection{ParentID: ptr(1), Index: 1, Depth: 1})

	if !ok {
		t.Fatal("expected commit to succeed")
	}
	a := next[0]
	if !equalLabels(a.Children, []string{"B", "C"}) {
		t.Fatalf("expected [B C] under A, got %v", labels(a.Children))
	}
	c := a.Children[1]
	if c.Depth != 1 || c.Position != 1 {
		t.Fatalf("C not normalized: %+v", c)
	}
	if len(a.Children[0].Children) != 0 {
		t.Fatal("B should have no children left")
	}
}

func TestCommitMovesSubtreeIntact(t *testing.T) {
	tree := dnd.BuildTree([]*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "A1", ptr(1), 0),
		item(3, "A1a", ptr(2), 0),
		item(4, "B", nil, 1),
	})

	// Move A1 (with its child) under B.
	next, ok := dnd.Commit(tree, 2, dnd.Projection{ParentID: ptr(4), Index: 0, Depth: 1})

	if !ok {
		t.Fatal("expected commit to succeed")
	}
	b := dnd.FindNode(next, 4)
	if !equalLabels(b.Children, []string{"A1"}) {
		t.Fatalf("expected A1 under B, got %v", labels(b.Children))
	}
	grandchild := b.Children[0].Children
	if !equalLabels(grandchild, []string{"A1a"}) {
		t.Fatalf("expected A1a carried along, got %v", labels(grandchild))
	}
	if grandchild[0].Depth != 2 {
		t.Fatalf("expected depth 2 for carried grandchild, got %d", grandchild[0].Depth)
	}
}

func TestCommitRejectsSelfNesting(t *testing.T) {
	tree := dnd.BuildTree([]*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "B", ptr(1), 0),
		item(3, "C", ptr(2), 0),
	})

	cases := []struct {
		name string
		proj dnd.Projection
	}{
		{name: "into self", proj: dnd.Projection{ParentID: ptr(1), Index: 0, Depth: 1}},
		{name: "into descendant", proj: dnd.Projection{ParentID: ptr(3), Index: 0, Depth: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, ok := dnd.Commit(tree, 1, tc.proj)
			if ok {
				t.Fatal("expected self-nesting commit to be rejected")
			}
			if !equalLabels(next, []string{"A"}) {
				t.Fatalf("tree changed on rejected commit: %v", labels(next))
			}
			if dnd.FindNode(next, 3) == nil {
				t.Fatal("descendant missing after rejected commit")
			}
		})
	}
}

func TestCommitRejectsUnknownActive(t *testing.T) {
	tree := dnd.BuildTree(flatABC())

	if _, ok := dnd.Commit(tree, 42, dnd.Projection{}); ok {
		t.Fatal("expected commit to fail for unknown node")
	}
}

func TestCommitLeavesInputUnchanged(t *testing.T) {
	tree := dnd.BuildTree(flatABC())

	if _, ok := dnd.Commit(tree, 1, dnd.Projection{ParentID: nil, Index: 2, Depth: 0}); !ok {
		t.Fatal("expected commit to succeed")
	}

	if !equalLabels(tree, []string{"A", "B", "C"}) {
		t.Fatalf("input tree mutated: %v", labels(tree))
	}
}

// checkInvariants asserts depth correctness, order density, and acyclicity for
// every node in the tree.
func checkInvariants(t *testing.T, tree []*dnd.Node) {
	t.Helper()

	var walk func(nodes []*dnd.Node, parent *dnd.Node, seen map[int64]bool)
	walk = func(nodes []*dnd.Node, parent *dnd.Node, seen map[int64]bool) {
		for i, node := range nodes {
			if seen[node.ID] {
				t.Fatalf("node %d is its own ancestor", node.ID)
			}
			if node.Position != i {
				t.Fatalf("node %d has sparse order %d at index %d", node.ID, node.Position, i)
			}
			wantDepth := 0
			if parent != nil {
				wantDepth = parent.Depth + 1
				if node.ParentID == nil || *node.ParentID != parent.ID {
					t.Fatalf("node %d parent id does not match structure", node.ID)
				}
			} else if node.ParentID != nil {
				t.Fatalf("root %d carries parent id %d", node.ID, *node.ParentID)
			}
			if node.Depth != wantDepth {
				t.Fatalf("node %d depth %d, want %d", node.ID, node.Depth, wantDepth)
			}

			branch := make(map[int64]bool, len(seen)+1)
			for id := range seen {
				branch[id] = true
			}
			branch[node.ID] = true
			walk(node.Children, node, branch)
		}
	}
	walk(tree, nil, map[int64]bool{})
}

func TestCommitSequencePreservesInvariants(t *testing.T) {
	items := []*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "B", nil, 1),
		item(3, "C", nil, 2),
		item(4, "B1", ptr(2), 0),
		item(5, "B2", ptr(2), 1),
	}
	tree := dnd.BuildTree(items)

	moves := []struct {
		activeID int64
		proj     dnd.Projection
	}{
		{activeID: 1, proj: dnd.Projection{ParentID: ptr(2), Index: 2, Depth: 1}},
		{activeID: 4, proj: dnd.Projection{ParentID: nil, Index: 0, Depth: 0}},
		{activeID: 2, proj: dnd.Projection{ParentID: ptr(3), Index: 0, Depth: 1}},
		{activeID: 5, proj: dnd.Projection{ParentID: nil, Index: 1, Depth: 0}},
	}
	for _, move := range moves {
		next, ok := dnd.Commit(tree, move.activeID, move.proj)
		if !ok {
			t.Fatalf("commit of %d rejected", move.activeID)
		}
		tree = next
		checkInvariants(t, tree)
	}

	if got, want := len(dnd.Flatten(tree)), len(items); got != want {
		t.Fatalf("node count drifted: got %d, want %d", got, want)
	}
}

func TestFlattenBuildRoundTrip(t *testing.T) {
	items := []*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "B", nil, 1),
		item(3, "A1", ptr(1), 0),
		item(4, "A2", ptr(1), 1),
		item(5, "A1a", ptr(3), 0),
	}
	first := dnd.BuildTree(items)
	rebuilt := dnd.BuildTree(dnd.Items(first))

	var compare func(a, b []*dnd.Node)
	compare = func(a, b []*dnd.Node) {
		if len(a) != len(b) {
			t.Fatalf("sibling count mismatch: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i].ID != b[i].ID || a[i].Depth != b[i].Depth || a[i].Position != b[i].Position {
				t.Fatalf("node mismatch at %d: %+v vs %+v", i, a[i], b[i])
			}
			compare(a[i].Children, b[i].Children)
		}
	}
	compare(first, rebuilt)
}
