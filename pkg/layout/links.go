package layout

import "github.com/matzehuels/kintree/pkg/persona"

// Link is a rendered edge from a parent to a child.
//
// Primary links mirror the tree. Extra links connect a child to a secondary
// parent and play no part in positioning.
type Link struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Extra bool   `json:"extra,omitempty"`
}

// Links returns the primary links in pre-order followed by the extra links
// in input order. Edges from the virtual root are left out and each
// (parent, child) pair is emitted once.
func Links(t *Tree) []Link {
	if t == nil || t.Root == nil {
		return nil
	}

	var links []Link
	for _, n := range t.PreOrder() {
		if n.Virtual || !n.HasPrimaryParent() {
			continue
		}
		links = append(links, Link{From: n.Parent.ID(), To: n.ID()})
	}

	seen := make(map[[2]string]bool)
	for _, n := range t.nodes {
		for _, pid := range n.Person.Parents {
			if pid == n.ID() {
				continue
			}
			if _, ok := t.byID[pid]; !ok {
				continue
			}
			if n.HasPrimaryParent() && n.Parent.ID() == pid {
				continue
			}
			key := [2]string{pid, n.ID()}
			if seen[key] {
				continue
			}
			seen[key] = true
			links = append(links, Link{From: pid, To: n.ID(), Extra: true})
		}
	}
	return links
}

// Result is a fully computed layout.
type Result struct {
	Tree    *Tree
	Links   []Link
	Options Options
}

// Compute builds the hierarchy, assigns positions and collects links.
func Compute(people []persona.Person, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	t := BuildHierarchy(people)
	Assign(t, opts)
	return &Result{Tree: t, Links: Links(t), Options: opts}, nil
}

// Bounds returns the horizontal extent of the rendered nodes. Both values
// are zero for an empty tree.
func (r *Result) Bounds() (minX, maxX float64) {
	for i, n := range r.Tree.nodes {
		if i == 0 || n.X < minX {
			minX = n.X
		}
		if i == 0 || n.X > maxX {
			maxX = n.X
		}
	}
	return minX, maxX
}
