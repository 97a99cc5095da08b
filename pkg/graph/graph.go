package graph

import (
	"github.com/matzehuels/kintree/pkg/avatar"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/persona"
)

// =============================================================================
// Frame Constants
// =============================================================================

// Margins and minimum frame size of the view box.
const (
	MarginX     = 120.0
	MarginTop   = 80.0
	MinWidth    = 800.0
	MinHeight   = 400.0
	LevelHeight = 24.0
	ExtraHeight = 160.0
)

// =============================================================================
// Layout - Positioned Family Tree
// =============================================================================

// Layout is the serialization format of a computed tree.
type Layout struct {
	ViewBox     ViewBox `json:"view_box" bson:"view_box"`
	TreeHeight  int     `json:"tree_height" bson:"tree_height"`
	RowSpacing  float64 `json:"row_spacing" bson:"row_spacing"`
	MinGap      float64 `json:"min_gap" bson:"min_gap"`
	VirtualRoot bool    `json:"virtual_root,omitempty" bson:"virtual_root,omitempty"`
	Nodes       []Node  `json:"nodes" bson:"nodes"`
	Links       []Link  `json:"links" bson:"links"`
}

// ViewBox is the SVG view box of a layout.
type ViewBox struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Node is a positioned person.
type Node struct {
	ID        string   `json:"id" bson:"id"`
	Name      string   `json:"nombre,omitempty" bson:"nombre,omitempty"`
	BirthDate string   `json:"fecha_nacimiento,omitempty" bson:"fecha_nacimiento,omitempty"`
	Gender    string   `json:"genero,omitempty" bson:"genero,omitempty"`
	Parents   []string `json:"padres" bson:"padres"`
	Depth     int      `json:"depth" bson:"depth"`
	X         float64  `json:"x" bson:"x"`
	Y         float64  `json:"y" bson:"y"`
	Avatar    string   `json:"avatar,omitempty" bson:"avatar,omitempty"` // Explicit or preset image
	Preset    bool     `json:"preset,omitempty" bson:"preset,omitempty"` // Avatar came from the preset lists
}

// Label returns the name if set, otherwise the ID.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Link is a parent to child edge. Extra links connect secondary parents.
type Link struct {
	From  string `json:"from" bson:"from"`
	To    string `json:"to" bson:"to"`
	Extra bool   `json:"extra,omitempty" bson:"extra,omitempty"`
}

// Width and Height of the frame.
func (l Layout) Width() float64  { return l.ViewBox.Width }
func (l Layout) Height() float64 { return l.ViewBox.Height }

// NodeByID returns the node with the given id.
func (l Layout) NodeByID(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Avatars returns every distinct avatar reference in node order.
func (l Layout) Avatars() []string {
	seen := make(map[string]bool, len(l.Nodes))
	var refs []string
	for _, n := range l.Nodes {
		if n.Avatar == "" || seen[n.Avatar] {
			continue
		}
		seen[n.Avatar] = true
		refs = append(refs, n.Avatar)
	}
	return refs
}

// =============================================================================
// layout.Result → Layout Conversion
// =============================================================================

// FromResult converts a computed layout. Nodes keep input order and avatars
// are resolved against presets. A nil presets map leaves nodes without an
// explicit avatar imageless.
func FromResult(res *layout.Result, presets avatar.Presets) Layout {
	out := Layout{
		TreeHeight:  res.Tree.Height(),
		RowSpacing:  res.Options.RowSpacing,
		MinGap:      res.Options.MinGap,
		VirtualRoot: res.Tree.HasVirtualRoot(),
		Nodes:       make([]Node, 0, res.Tree.Len()),
		Links:       make([]Link, 0, len(res.Links)),
	}

	for _, n := range res.Tree.Nodes() {
		out.Nodes = append(out.Nodes, nodeFromLayout(n, presets))
	}
	for _, l := range res.Links {
		out.Links = append(out.Links, Link{From: l.From, To: l.To, Extra: l.Extra})
	}

	minX, maxX := res.Bounds()
	out.ViewBox = ComputeViewBox(minX, maxX, out.TreeHeight)
	return out
}

// ComputeViewBox frames nodes spanning [minX, maxX] in a tree of the given
// height.
func ComputeViewBox(minX, maxX float64, treeHeight int) ViewBox {
	return ViewBox{
		X:      minX - MarginX,
		Y:      -MarginTop,
		Width:  max(MinWidth, maxX-minX+2*MarginX),
		Height: max(MinHeight, float64(treeHeight)*LevelHeight+ExtraHeight),
	}
}

func nodeFromLayout(n *layout.Node, presets avatar.Presets) Node {
	p := n.Person
	node := Node{
		ID:        p.ID,
		Name:      p.Name,
		BirthDate: p.BirthDate,
		Gender:    p.Gender,
		Parents:   p.Parents,
		Depth:     n.Depth,
		X:         n.X,
		Y:         n.Y,
		Avatar:    avatar.Resolve(p, presets),
	}
	if node.Parents == nil {
		node.Parents = []string{}
	}
	node.Preset = !p.HasAvatar() && node.Avatar != ""
	return node
}

// Person returns the record a node was built from.
func (n Node) Person() persona.Person {
	p := persona.Person{
		ID:        n.ID,
		Name:      n.Name,
		BirthDate: n.BirthDate,
		Gender:    n.Gender,
		Parents:   n.Parents,
	}
	if !n.Preset {
		p.Avatar = n.Avatar
	}
	return p
}
