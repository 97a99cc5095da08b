// Package nodelink renders family trees as Graphviz node-link diagrams.
//
// # Overview
//
// This is an alternative to the tree sink for users who want to post-process
// the tree in Graphviz tooling, or need a PNG without rsvg-convert
// installed: Graphviz runs in-process via go-graphviz.
//
// # Usage
//
// Convert a layout to DOT, then render:
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Options
//
//   - Detailed: labels include birth date and gender
//   - Pinned: node positions are fixed to the computed layout (pos="x,y!")
//
// # DOT Format
//
// Primary parent links are plain edges. Secondary parent links are dashed
// with constraint=false so Graphviz ranks the tree by primary parents only,
// matching the layout engine.
package nodelink
