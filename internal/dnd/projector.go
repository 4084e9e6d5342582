package dnd

import "math"

// Geometry describes the visual metrics the projector reasons about. Units
// match whatever coordinate space the host reports pointer deltas in.
type Geometry struct {
	// IndentWidth is the horizontal distance of one nesting level.
	IndentWidth int
	// RowHeight is the height of a rendered row; the midpoint decides whether
	// a same-depth drop lands before or after the hovered item.
	RowHeight int
	// VerticalJitter is the vertical travel tolerated before a drag stops
	// counting as a pure indent/outdent gesture.
	VerticalJitter int
	// GestureRatio is the fraction of IndentWidth the pointer must travel
	// horizontally for an indent/outdent gesture to register.
	GestureRatio float64
}

// DefaultGeometry matches the row metrics of the stock tree editor.
func DefaultGeometry() Geometry {
	return Geometry{
		IndentWidth:    24,
		RowHeight:      32,
		VerticalJitter: 12,
		GestureRatio:   0.4,
	}
}

// Projection describes where the dragged node would land if dropped now.
// ParentID nil means root level. Index is the insertion slot among the new
// parent's children, clamped to the sibling count.
type Projection struct {
	ParentID *int64
	Index    int
	Depth    int
}

// ProjectionRequest carries the per-frame inputs of the projector.
type ProjectionRequest struct {
	Tree     []*Node
	ActiveID int64
	// OverID is the id of the node under the pointer, or zero when the
	// pointer is over empty space below the list.
	OverID int64
	// DeltaX and DeltaY are the signed pointer displacements since drag
	// start; positive X points right, positive Y points down.
	DeltaX int
	DeltaY int
	// OverOffsetY is the pointer's vertical offset from the top of the
	// hovered row. Only meaningful when OverID is set.
	OverOffsetY int
}

// Project computes the tentative drop target for the current pointer state.
// It is pure: no state survives between calls, so it can run on every move
// frame. The ok result is false when the drag has no legal target, e.g. when
// hovering the dragged node's own subtree.
func Project(req ProjectionRequest, geo Geometry) (Projection, bool) {
	active := FindNode(req.Tree, req.ActiveID)
	if active == nil {
		return Projection{}, false
	}

	excluded := subtreeIDs(active)

	var over *Node
	if req.OverID != 0 {
		over = FindNode(req.Tree, req.OverID)
		if over == nil {
			return Projection{}, false
		}
		if _, inside := excluded[over.ID]; inside {
			// Hovering the dragged branch itself never projects.
			return Projection{}, false
		}
	}

	parents := parentIndex(req.Tree)

	if proj, ok := projectGesture(req, geo, active, excluded, parents); ok {
		return proj, true
	}

	estimated := estimateDepth(active.Depth, req.DeltaX, geo.IndentWidth)

	if over == nil {
		return projectTrailing(req.Tree, estimated, excluded)
	}
	return projectOver(req, geo, over, estimated, parents)
}

// projectGesture handles deliberate indent/outdent drags: mostly-horizontal
// pointer travel inside the active node's own row.
func projectGesture(req ProjectionRequest, geo Geometry, active *Node, excluded map[int64]struct{}, parents map[int64]*Node) (Projection, bool) {
	if abs(req.DeltaY) >= geo.VerticalJitter {
		return Projection{}, false
	}
	if float64(abs(req.DeltaX)) <= geo.GestureRatio*float64(geo.IndentWidth) {
		return Projection{}, false
	}

	if req.DeltaX > 0 {
		// Indent: adopt the immediately preceding same-depth sibling as parent.
		flat := Flatten(req.Tree)
		idx := nodeIndex(flat, active.ID)
		if idx <= 0 {
			return Projection{}, false
		}
		prev := flat[idx-1]
		if prev.Depth != active.Depth {
			return Projection{}, false
		}
		if _, inside := excluded[prev.ID]; inside {
			return Projection{}, false
		}
		prevID := prev.ID
		return Projection{
			ParentID: &prevID,
			Index:    len(prev.Children),
			Depth:    active.Depth + 1,
		}, true
	}

	// Outdent: hoist next to the current parent, under the grandparent.
	parent, ok := parents[active.ID]
	if !ok {
		// Already a root; the gesture just confirms depth zero.
		return Projection{
			ParentID: nil,
			Index:    indexAmongSiblings(req.Tree, parents, active),
			Depth:    0,
		}, true
	}

	grandparent := parents[parent.ID]
	var parentID *int64
	siblings := req.Tree
	if grandparent != nil {
		id := grandparent.ID
		parentID = &id
		siblings = grandparent.Children
	}
	idx := nodeIndex(siblings, parent.ID) + 1
	return Projection{
		ParentID: parentID,
		Index:    clampIndex(idx, len(siblings)),
		Depth:    maxInt(0, active.Depth-1),
	}, true
}

// projectTrailing places the node when the pointer hovers empty space below
// the list: append at root, or nest under the last eligible shallower node.
func projectTrailing(tree []*Node, depth int, excluded map[int64]struct{}) (Projection, bool) {
	if depth <= 0 {
		return Projection{ParentID: nil, Index: len(tree), Depth: 0}, true
	}

	flat := Flatten(tree)
	for i := len(flat) - 1; i >= 0; i-- {
		candidate := flat[i]
		if candidate.Depth != depth-1 {
			continue
		}
		if _, inside := excluded[candidate.ID]; inside {
			continue
		}
		id := candidate.ID
		return Projection{
			ParentID: &id,
			Index:    len(candidate.Children),
			Depth:    depth,
		}, true
	}

	// No host at the requested depth; fall back to the root tail.
	return Projection{ParentID: nil, Index: len(tree), Depth: 0}, true
}

// projectOver resolves a positional drop relative to the hovered node.
func projectOver(req ProjectionRequest, geo Geometry, over *Node, estimated int, parents map[int64]*Node) (Projection, bool) {
	depth := minInt(estimated, over.Depth+1)

	switch {
	case depth > over.Depth:
		id := over.ID
		return Projection{
			ParentID: &id,
			Index:    len(over.Children),
			Depth:    over.Depth + 1,
		}, true

	case depth == over.Depth:
		parent := parents[over.ID]
		siblings := req.Tree
		var parentID *int64
		if parent != nil {
			id := parent.ID
			parentID = &id
			siblings = parent.Children
		}
		idx := nodeIndex(siblings, over.ID)
		if req.OverOffsetY >= geo.RowHeight/2 {
			idx++
		}
		return Projection{
			ParentID: parentID,
			Index:    clampIndex(idx, len(siblings)),
			Depth:    depth,
		}, true

	default:
		// Shallower than the hovered node: climb its ancestor chain until the
		// requested depth and land right after the branch being dragged out of.
		ancestor := over
		for ancestor.Depth > depth {
			next, ok := parents[ancestor.ID]
			if !ok {
				break
			}
			ancestor = next
		}
		parent := parents[ancestor.ID]
		siblings := req.Tree
		var parentID *int64
		if parent != nil {
			id := parent.ID
			parentID = &id
			siblings = parent.Children
		}
		idx := nodeIndex(siblings, ancestor.ID) + 1
		return Projection{
			ParentID: parentID,
			Index:    clampIndex(idx, len(siblings)),
			Depth:    ancestor.Depth,
		}, true
	}
}

// estimateDepth shifts the starting depth one level per full indent width of
// horizontal travel, rounded to nearest and clamped at root.
func estimateDepth(startDepth, deltaX, indentWidth int) int {
	if indentWidth <= 0 {
		return startDepth
	}
	shift := int(math.Round(float64(deltaX) / float64(indentWidth)))
	return maxInt(0, startDepth+shift)
}

func indexAmongSiblings(tree []*Node, parents map[int64]*Node, node *Node) int {
	siblings := tree
	if parent, ok := parents[node.ID]; ok {
		siblings = parent.Children
	}
	return maxInt(0, nodeIndex(siblings, node.ID))
}

func nodeIndex(nodes []*Node, id int64) int {
	for i, node := range nodes {
		if node.ID == id {
			return i
		}
	}
	return -1
}

func clampIndex(idx, count int) int {
	if idx < 0 {
		return 0
	}
	if idx > count {
		return count
	}
	return idx
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
