package dnd_test

import (
	"testing"

	"github.com/goliatone/go-navtree/internal/dnd"
	"github.com/goliatone/go-navtree/navigation"
)

func defaultGeo() dnd.Geometry {
	return dnd.DefaultGeometry()
}

func flatABC() []*navigation.Item {
	return []*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "B", nil, 1),
		item(3, "C", nil, 2),
	}
}

func TestProjectAfterHoveredSibling(t *testing.T) {
	tree := dnd.BuildTree(flatABC())

	// Pointer in the lower half of B's row, no horizontal travel.
	proj, ok := dnd.Project(dnd.ProjectionRequest{
		Tree:        tree,
		ActiveID:    1,
		OverID:      2,
		DeltaX:      0,
		DeltaY:      40,
		OverOffsetY: 24,
	}, defaultGeo())

	if !ok {
		t.Fatal("expected a projection")
	}
	if proj.ParentID != nil {
		t.Fatalf("expected root parent, got %v", *proj.ParentID)
	}
	if proj.Index != 2 || proj.Depth != 0 {
		t.Fatalf("expected index 2 depth 0, got index %d depth %d", proj.Index, proj.Depth)
	}
}

func TestProjectBeforeHoveredSibling(t *testing.T) {
	tree := dnd.BuildTree(flatABC())

	// Pointer in the upper half of B's row.
	proj, ok := dnd.Project(dnd.ProjectionRequest{
		Tree:        tree,
		ActiveID:    3,
		OverID:      2,
		DeltaY:      -40,
		OverOffsetY: 4,
	}, defaultGeo())

	if !ok {
		t.Fatal("expected a projection")
	}
	if proj.ParentID != nil || proj.Index != 1 || proj.Depth != 0 {
		t.Fatalf("expected before B at root index 1, got %+v", proj)
	}
}

func TestProjectIndentGesture(t *testing.T) {
	tree := dnd.BuildTree([]*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "B", nil, 1),
	})

	// Horizontal drag to the right past the gesture threshold, pointer drifting
	// over the neighbor row.
	proj, ok := dnd.Project(dnd.ProjectionRequest{
		Tree:     tree,
		ActiveID: 2,
		OverID:   1,
		DeltaX:   20,
		DeltaY:   3,
	}, defaultGeo())

	if !ok {
		t.Fatal("expected indent projection")
	}
	if proj.ParentID == nil || *proj.ParentID != 1 {
		t.Fatalf("expected parent A, got %+v", proj)
	}
	if proj.Index != 0 || proj.Depth != 1 {
		t.Fatalf("expected index 0 depth 1, got %+v", proj)
	}
}

func TestProjectIndentGestureRequiresPrecedingSibling(t *testing.T) {
	tree := dnd.BuildTree([]*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "B", nil, 1),
	})

	// The first root has nothing before it to become its parent, so the
	// gesture does not register and the drag falls through to the
	// over-relative placement: one estimated level below the hovered row.
	proj, ok := dnd.Project(dnd.ProjectionRequest{
		Tree:        tree,
		ActiveID:    1,
		OverID:      2,
		DeltaX:      20,
		DeltaY:      3,
		OverOffsetY: 2,
	}, defaultGeo())

	if !ok {
		t.Fatal("expected fallback projection")
	}
	if proj.ParentID == nil || *proj.ParentID != 2 || proj.Depth != 1 {
		t.Fatalf("expected child-of-B fallback, got %+v", proj)
	}
}

func TestProjectOutdentGesture(t *testing.T) {
	tree := dnd.BuildTree([]*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "B", ptr(1), 0),
		item(3, "C", ptr(2), 0),
	})

	proj, ok := dnd.Project(dnd.ProjectionRequest{
		Tree:     tree,
		ActiveID: 3,
		DeltaX:   -20,
		DeltaY:   2,
	}, defaultGeo())

	if !ok {
		t.Fatal("expected outdent projection")
	}
	if proj.ParentID == nil || *proj.ParentID != 1 {
		t.Fatalf("expected parent A, got %+v", proj)
	}
	if proj.Index != 1 || proj.Depth != 1 {
		t.Fatalf("expected index 1 depth 1, got %+v", proj)
	}
}

func TestProjectRejectsOwnSubtree(t *testing.T) {
	tree := dnd.BuildTree([]*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "A1", ptr(1), 0),
		item(3, "B", nil, 1),
	})

	cases := []struct {
		name   string
		overID int64
	}{
		{name: "over self", overID: 1},
		{name: "over descendant", overID: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := dnd.Project(dnd.ProjectionRequest{
				Tree:        tree,
				ActiveID:    1,
				OverID:      tc.overID,
				DeltaY:      20,
				OverOffsetY: 20,
			}, defaultGeo())
			if ok {
				t.Fatal("expected no projection over the dragged branch")
			}
		})
	}
}

func TestProjectDepthClampsToHoveredPlusOne(t *testing.T) {
	tree := dnd.BuildTree(flatABC())

	// A huge rightward delta can never nest deeper than one level under the
	// hovered node.
	proj, ok := dnd.Project(dnd.ProjectionRequest{
		Tree:        tree,
		ActiveID:    3,
		OverID:      1,
		DeltaX:      500,
		DeltaY:      -40,
		OverOffsetY: 16,
	}, defaultGeo())

	if !ok {
		t.Fatal("expected a projection")
	}
	if proj.ParentID == nil || *proj.ParentID != 1 || proj.Depth != 1 {
		t.Fatalf("expected child of A at depth 1, got %+v", proj)
	}
}

func TestProjectTrailingAtRoot(t *testing.T) {
	tree := dnd.BuildTree(flatABC())

	proj, ok := dnd.Project(dnd.ProjectionRequest{
		Tree:     tree,
		ActiveID: 1,
		OverID:   0,
		DeltaY:   120,
	}, defaultGeo())

	if !ok {
		t.Fatal("expected trailing projection")
	}
	if proj.ParentID != nil || proj.Index != 3 || proj.Depth != 0 {
		t.Fatalf("expected root tail, got %+v", proj)
	}
}

func TestProjectTrailingNested(t *testing.T) {
	tree := dnd.BuildTree([]*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "A1", ptr(1), 0),
		item(3, "B", nil, 1),
	})

	// Below the list with no horizontal travel: the active node keeps its
	// depth of one and nests under the last depth-0 node.
	proj, ok := dnd.Project(dnd.ProjectionRequest{
		Tree:     tree,
		ActiveID: 2,
		OverID:   0,
		DeltaY:   120,
	}, defaultGeo())

	if !ok {
		t.Fatal("expected trailing projection")
	}
	if proj.ParentID == nil || *proj.ParentID != 3 {
		t.Fatalf("expected parent B, got %+v", proj)
	}
	if proj.Depth != 1 {
		t.Fatalf("expected depth 1, got %d", proj.Depth)
	}
}

func TestProjectShallowerThanHovered(t *testing.T) {
	tree := dnd.BuildTree([]*navigation.Item{
		item(1, "A", nil, 0),
		item(2, "A1", ptr(1), 0),
		item(3, "A1a", ptr(2), 0),
		item(4, "B", nil, 1),
	})

	// Hover the depth-2 node while dragging left two indents: the drop climbs
	// to the root branch and lands right after A.
	proj, ok := dnd.Project(dnd.ProjectionRequest{
		Tree:        tree,
		ActiveID:    4,
		OverID:      3,
		DeltaX:      -48,
		DeltaY:      -60,
		OverOffsetY: 16,
	}, defaultGeo())

	if !ok {
		t.Fatal("expected a projection")
	}
	if proj.ParentID != nil {
		t.Fatalf("expected root parent, got %v", *proj.ParentID)
	}
	if proj.Index != 1 || proj.Depth != 0 {
		t.Fatalf("expected root index 1, got %+v", proj)
	}
}

func TestProjectUnknownActive(t *testing.T) {
	tree := dnd.BuildTree(flatABC())

	if _, ok := dnd.Project(dnd.ProjectionRequest{Tree: tree, ActiveID: 99}, defaultGeo()); ok {
		t.Fatal("expected no projection for unknown active node")
	}
}
