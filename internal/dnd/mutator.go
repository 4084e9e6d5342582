package dnd

// Commit applies a confirmed projection: it detaches the active branch,
// re-validates the projection target, re-depths the branch, inserts it, and
// renormalizes the whole tree. The input tree is never modified; the returned
// tree is a fresh structure. ok is false when the move is illegal (unknown
// node, or a projection that would nest the branch inside itself), in which
// case the original tree is returned unchanged.
func Commit(tree []*Node, activeID int64, proj Projection) ([]*Node, bool) {
	work := CloneTree(tree)

	branch, origin := detach(&work, activeID)
	if branch == nil {
		return tree, false
	}

	// Defensive re-check: the projector should never target the dragged
	// branch, but a stale projection must not corrupt the tree. After the
	// detach, any parent id that resolves inside the branch is gone from the
	// pruned tree.
	if proj.ParentID != nil {
		if *proj.ParentID == activeID || FindNode(work, *proj.ParentID) == nil {
			return tree, false
		}
	}

	setDepth(branch, proj.Depth)

	index := proj.Index
	if sameParent(origin.parentID, proj.ParentID) && origin.index < index {
		// The projection counted the branch among its old siblings.
		index--
	}

	if proj.ParentID == nil {
		work = insertAt(work, branch, index)
	} else {
		parent := FindNode(work, *proj.ParentID)
		parent.Children = insertAt(parent.Children, branch, index)
	}

	Normalize(work)
	return work, true
}

// Normalize re-derives Position, ParentID, and Depth for every node from its
// structural location. Run after every commit so no stale ordering survives,
// regardless of how the projection was computed.
func Normalize(tree []*Node) {
	var walk func(nodes []*Node, parentID *int64, depth int)
	walk = func(nodes []*Node, parentID *int64, depth int) {
		for i, node := range nodes {
			node.Position = i
			node.ParentID = cloneID(parentID)
			node.Depth = depth
			id := node.ID
			walk(node.Children, &id, depth+1)
		}
	}
	walk(tree, nil, 0)
}

type removalOrigin struct {
	parentID *int64
	index    int
}

// detach removes the node with the given id (subtree intact) and reports the
// position it was removed from.
func detach(tree *[]*Node, id int64) (*Node, removalOrigin) {
	for i, node := range *tree {
		if node.ID == id {
			*tree = append((*tree)[:i], (*tree)[i+1:]...)
			return node, removalOrigin{parentID: nil, index: i}
		}
	}

	var found *Node
	var origin removalOrigin
	var walk func(parent *Node) bool
	walk = func(parent *Node) bool {
		for i, child := range parent.Children {
			if child.ID == id {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				parentID := parent.ID
				found = child
				origin = removalOrigin{parentID: &parentID, index: i}
				return true
			}
			if walk(child) {
				return true
			}
		}
		return false
	}
	for _, node := range *tree {
		if walk(node) {
			break
		}
	}
	return found, origin
}

func setDepth(node *Node, depth int) {
	node.Depth = depth
	for _, child := range node.Children {
		setDepth(child, depth+1)
	}
}

func insertAt(nodes []*Node, node *Node, index int) []*Node {
	index = clampIndex(index, len(nodes))
	nodes = append(nodes, nil)
	copy(nodes[index+1:], nodes[index:])
	nodes[index] = node
	return nodes
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
