package dnd

import (
	"slices"

	"github.com/goliatone/go-navtree/navigation"
)

// Node is the in-memory tree representation of a navigation item. It is a
// plain record: ancestry is resolved through an index built per operation,
// never through stored parent pointers, so deep copies stay structural.
type Node struct {
	ID       int64
	Label    string
	URL      string
	ParentID *int64
	Position int
	Depth    int
	Children []*Node
}

// BuildTree converts a flat item list into a nested tree. Siblings are sorted
// by position ascending; roots are items without a parent. Items whose parent
// id does not exist in the input are recovered as roots instead of dropped,
// so a dangling foreign key never hides content.
func BuildTree(items []*navigation.Item) []*Node {
	if len(items) == 0 {
		return nil
	}

	known := make(map[int64]struct{}, len(items))
	for _, item := range items {
		known[item.ID] = struct{}{}
	}

	var roots []*navigation.Item
	children := make(map[int64][]*navigation.Item)
	for _, item := range items {
		if item.ParentID == nil {
			roots = append(roots, item)
			continue
		}
		if _, ok := known[*item.ParentID]; !ok {
			// Orphan recovery: the declared parent is gone.
			roots = append(roots, item)
			continue
		}
		children[*item.ParentID] = append(children[*item.ParentID], item)
	}

	sortByPosition(roots)
	for _, group := range children {
		sortByPosition(group)
	}

	var attach func(item *navigation.Item, depth int) *Node
	attach = func(item *navigation.Item, depth int) *Node {
		node := &Node{
			ID:       item.ID,
			Label:    item.Label,
			URL:      item.URL,
			ParentID: cloneID(item.ParentID),
			Position: item.Position,
			Depth:    depth,
		}
		for _, child := range children[item.ID] {
			node.Children = append(node.Children, attach(child, depth+1))
		}
		return node
	}

	tree := make([]*Node, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, attach(root, 0))
	}
	return tree
}

// Flatten returns every node in pre-order: node first, then its children,
// before any later sibling. Each node appears exactly once.
func Flatten(tree []*Node) []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, node := range nodes {
			out = append(out, node)
			walk(node.Children)
		}
	}
	walk(tree)
	return out
}

// CloneTree deep-copies the tree. Snapshots taken at drag start use this so a
// failed persistence call can restore the exact pre-drag structure.
func CloneTree(tree []*Node) []*Node {
	if tree == nil {
		return nil
	}
	out := make([]*Node, 0, len(tree))
	for _, node := range tree {
		out = append(out, cloneNode(node))
	}
	return out
}

// FindNode locates a node by id anywhere in the tree, or nil.
func FindNode(tree []*Node, id int64) *Node {
	for _, node := range tree {
		if node.ID == id {
			return node
		}
		if found := FindNode(node.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// Items converts the tree back into flat navigation items, carrying over the
// per-node parent/position values. Metadata columns are left zeroed; callers
// merge against their stored records by id.
func Items(tree []*Node) []*navigation.Item {
	flat := Flatten(tree)
	items := make([]*navigation.Item, 0, len(flat))
	for _, node := range flat {
		items = append(items, &navigation.Item{
			ID:       node.ID,
			Label:    node.Label,
			URL:      node.URL,
			ParentID: cloneID(node.ParentID),
			Position: node.Position,
		})
	}
	return items
}

// subtreeIDs collects the id set of a node and all its descendants.
func subtreeIDs(node *Node) map[int64]struct{} {
	ids := make(map[int64]struct{})
	var walk func(n *Node)
	walk = func(n *Node) {
		ids[n.ID] = struct{}{}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(node)
	return ids
}

// parentIndex maps each node id to its parent node. Roots are absent.
func parentIndex(tree []*Node) map[int64]*Node {
	parents := make(map[int64]*Node)
	var walk func(nodes []*Node, parent *Node)
	walk = func(nodes []*Node, parent *Node) {
		for _, node := range nodes {
			if parent != nil {
				parents[node.ID] = parent
			}
			walk(node.Children, node)
		}
	}
	walk(tree, nil)
	return parents
}

func cloneNode(node *Node) *Node {
	cloned := &Node{
		ID:       node.ID,
		Label:    node.Label,
		URL:      node.URL,
		ParentID: cloneID(node.ParentID),
		Position: node.Position,
		Depth:    node.Depth,
	}
	for _, child := range node.Children {
		cloned.Children = append(cloned.Children, cloneNode(child))
	}
	return cloned
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sortByPosition(items []*navigation.Item) {
	slices.SortStableFunc(items, func(a, b *navigation.Item) int {
		return a.Position - b.Position
	})
}
