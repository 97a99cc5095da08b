package layout

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/persona"
)

// VirtualRootID is the id of the synthetic root that gathers several root
// candidates.
const VirtualRootID = "root"

// Node is a person placed in the layout tree.
//
// Parent is the primary parent and Children the nodes that chose this node as
// their primary parent, in input order. X and Y are zero until [Assign] runs.
type Node struct {
	Person   persona.Person
	Parent   *Node
	Children []*Node
	Depth    int
	X, Y     float64

	// Virtual marks the synthetic root. It is never rendered.
	Virtual bool

	order int // position in the input; -1 for the virtual root
}

// ID returns the person id.
func (n *Node) ID() string { return n.Person.ID }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// HasPrimaryParent reports whether the node hangs under a real parent.
func (n *Node) HasPrimaryParent() bool { return n.Parent != nil && !n.Parent.Virtual }

// Tree is the hierarchy built from a person list.
type Tree struct {
	// Root is nil for empty input, the single root candidate, or a virtual
	// root when there are several.
	Root *Node

	nodes []*Node
	byID  map[string]*Node
}

// Node returns the rendered node with the given id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Nodes returns every rendered node in input order. The virtual root is not
// included.
func (t *Tree) Nodes() []*Node { return slices.Clone(t.nodes) }

// Len returns the number of rendered nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// HasVirtualRoot reports whether the root is synthetic.
func (t *Tree) HasVirtualRoot() bool { return t.Root != nil && t.Root.Virtual }

// Height returns the largest depth in the tree, counting the virtual root as
// depth 0 when present.
func (t *Tree) Height() int {
	h := 0
	for _, n := range t.nodes {
		h = max(h, n.Depth)
	}
	return h
}

// PreOrder returns all nodes reachable from the root, parents before
// children and children in order. The virtual root is included.
func (t *Tree) PreOrder() []*Node {
	if t.Root == nil {
		return nil
	}
	out := make([]*Node, 0, len(t.nodes)+1)
	stack := []*Node{t.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

// BuildHierarchy turns a flat person list into a single-rooted tree.
//
// Parent ids that name no record, or the record itself, are ignored. A record
// is attached under its first remaining parent; records with none become
// root candidates. When an id appears more than once only the first record is
// used.
//
// Primary parent choices can form a cycle, which would leave its members
// unreachable from any root. The first unreachable record in input order is
// then promoted to a root candidate until every record is reachable.
func BuildHierarchy(people []persona.Person) *Tree {
	t := &Tree{byID: make(map[string]*Node, len(people))}
	for i, p := range people {
		if _, dup := t.byID[p.ID]; dup {
			continue
		}
		n := &Node{Person: p, order: i}
		t.byID[p.ID] = n
		t.nodes = append(t.nodes, n)
	}

	for _, n := range t.nodes {
		if parent := t.primaryParent(n); parent != nil {
			n.Parent = parent
			parent.Children = append(parent.Children, n)
		}
	}

	for {
		orphan := t.firstUnreachable()
		if orphan == nil {
			break
		}
		detach(orphan)
	}

	var roots []*Node
	for _, n := range t.nodes {
		if n.Parent == nil {
			roots = append(roots, n)
		}
	}

	switch len(roots) {
	case 0:
		return t
	case 1:
		t.Root = roots[0]
	default:
		t.Root = &Node{
			Person:   persona.Person{ID: VirtualRootID},
			Children: roots,
			Virtual:  true,
			order:    -1,
		}
		for _, r := range roots {
			r.Parent = t.Root
		}
	}

	t.assignDepths()
	return t
}

func (t *Tree) primaryParent(n *Node) *Node {
	for _, id := range n.Person.Parents {
		if id == n.ID() {
			continue
		}
		if p, ok := t.byID[id]; ok {
			return p
		}
	}
	return nil
}

// firstUnreachable returns the first node in input order that cannot be
// reached from a parentless node.
func (t *Tree) firstUnreachable() *Node {
	seen := make(map[*Node]bool, len(t.nodes))
	var stack []*Node
	for _, n := range t.nodes {
		if n.Parent == nil {
			stack = append(stack, n)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		seen[n] = true
		stack = append(stack, n.Children...)
	}
	for _, n := range t.nodes {
		if !seen[n] {
			return n
		}
	}
	return nil
}

func detach(n *Node) {
	if n.Parent == nil {
		return
	}
	p := n.Parent
	p.Children = slices.DeleteFunc(p.Children, func(c *Node) bool { return c == n })
	n.Parent = nil
}

func (t *Tree) assignDepths() {
	stack := []*Node{t.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range n.Children {
			c.Depth = n.Depth + 1
			stack = append(stack, c)
		}
	}
}
