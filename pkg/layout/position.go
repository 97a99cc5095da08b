package layout

import (
	"fmt"
	"slices"
	"sort"
)

const (
	// DefaultRowSpacing is the vertical distance between depths.
	DefaultRowSpacing = 140.0

	// DefaultMinGap is the horizontal spacing of leaves and the minimum
	// distance between nodes sharing a depth.
	DefaultMinGap = 120.0
)

// Options controls position assignment.
type Options struct {
	RowSpacing float64 `json:"row_spacing,omitempty" toml:"row_spacing"`
	MinGap     float64 `json:"min_gap,omitempty" toml:"min_gap"`
}

// DefaultOptions returns the standard spacing.
func DefaultOptions() Options {
	return Options{RowSpacing: DefaultRowSpacing, MinGap: DefaultMinGap}
}

// SetDefaults fills zero values with defaults.
func (o *Options) SetDefaults() {
	if o.RowSpacing == 0 {
		o.RowSpacing = DefaultRowSpacing
	}
	if o.MinGap == 0 {
		o.MinGap = DefaultMinGap
	}
}

// Validate rejects negative spacing.
func (o Options) Validate() error {
	if o.RowSpacing < 0 {
		return fmt.Errorf("row spacing must be non-negative, got %v", o.RowSpacing)
	}
	if o.MinGap < 0 {
		return fmt.Errorf("min gap must be non-negative, got %v", o.MinGap)
	}
	return nil
}

// Assign computes X and Y for every node of t, including the virtual root.
// Zero-valued options fall back to the defaults.
func Assign(t *Tree, opts Options) {
	if t == nil || t.Root == nil {
		return
	}
	opts.SetDefaults()

	order := t.PreOrder()
	for _, n := range order {
		n.Y = float64(n.Depth) * opts.RowSpacing
	}
	assignX(order, opts.MinGap)
	resolveCollisions(order, opts.MinGap)
}

// assignX places leaves left to right in pre-order, then walks the
// pre-order backwards so that every parent is visited after its children and
// can take their mean.
func assignX(order []*Node, gap float64) {
	next := 0.0
	for _, n := range order {
		if n.IsLeaf() {
			n.X = next
			next += gap
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if n.IsLeaf() {
			continue
		}
		sum := 0.0
		for _, c := range n.Children {
			sum += c.X
		}
		n.X = sum / float64(len(n.Children))
	}
}

// resolveCollisions sweeps every depth from the top, left to right by x.
// A node closer than gap to its left neighbour is pushed right together with
// its subtree, and every later node at that depth inherits the same push.
// The inherited push is carried forward and applied to a node's subtree when
// the sweep reaches it.
func resolveCollisions(order []*Node, gap float64) {
	rows := make(map[int][]*Node)
	depths := make([]int, 0)
	for _, n := range order {
		if _, ok := rows[n.Depth]; !ok {
			depths = append(depths, n.Depth)
		}
		rows[n.Depth] = append(rows[n.Depth], n)
	}
	slices.Sort(depths)

	for _, d := range depths {
		row := rows[d]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		carry := 0.0
		for i, n := range row {
			if carry != 0 {
				shiftSubtree(n, carry)
			}
			if i == 0 {
				continue
			}
			want := row[i-1].X + gap
			if n.X < want {
				delta := want - n.X
				shiftSubtree(n, delta)
				n.X = want
				carry += delta
			}
		}
	}
}

// shiftSubtree moves n and all its descendants right by dx.
func shiftSubtree(n *Node, dx float64) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur.X += dx
		stack = append(stack, cur.Children...)
	}
}
