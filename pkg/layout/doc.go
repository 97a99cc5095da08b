// Package layout is the tree layout engine: it turns a flat, possibly
// multi-parent list of [persona.Person] records into positioned nodes and a
// set of links ready for rendering.
//
// # Stages
//
// Layout runs in three steps, each usable on its own:
//
//  1. [BuildHierarchy]: every record is attached under its primary parent,
//     the first entry of its parent list that names a record in the input.
//     Records without a valid parent become root candidates. Several
//     candidates are gathered under a synthetic virtual root.
//  2. [Assign]: y is depth × RowSpacing. Leaves get x = 0, MinGap,
//     2·MinGap, … in left-to-right order and parents sit at the mean of
//     their children. A per-depth sweep then pushes overlapping subtrees
//     apart so that nodes sharing a depth are at least MinGap apart.
//  3. [Links]: primary parent edges plus dashed "extra" edges for every
//     secondary parent. Nothing touching the virtual root is emitted.
//
// [Compute] runs all three.
//
// # Ownership and extra links
//
// The tree (Node.Parent, Node.Children) is exclusive ownership used for
// geometry. Multi-parent relationships are never added to it; they only
// exist as [Link] values with Extra set.
//
// # Limits
//
// Collision resolution is depth-local. Shifting a subtree to resolve an
// overlap at one depth is not re-checked against other depths, so a wide
// subtree can still overlap a shallower cousin.
package layout
