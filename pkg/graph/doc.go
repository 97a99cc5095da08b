// Package graph provides the serialization format for computed family tree
// layouts.
//
// A [Layout] is the wire format for positioned trees: the JSON written by
// `kintree layout`, returned by POST /layout, stored in the layout cache and
// read back by the renderers. It is self-contained: every node carries its
// person fields, its position and its resolved avatar, so rendering needs
// nothing but the Layout.
//
// # Architecture
//
//   - pkg/layout: computation (hierarchy, positions, links)
//   - [Layout], [Node], [Link]: serialization types (this package)
//   - pkg/render/...: SVG, DOT and raster output from a Layout
//
// Use [FromResult] to convert a layout.Result.
//
// # Format
//
//	{
//	  "view_box": {"x": -120, "y": -80, "width": 800, "height": 400},
//	  "tree_height": 1,
//	  "row_spacing": 140,
//	  "min_gap": 120,
//	  "nodes": [
//	    {"id": "1", "nombre": "Ana", "padres": [], "depth": 0, "x": 60, "y": 0, "avatar": "/presets/f5.png", "preset": true}
//	  ],
//	  "links": [{"from": "1", "to": "2"}, {"from": "3", "to": "2", "extra": true}]
//	}
//
// The virtual root is never serialized; virtual_root records whether one
// was used.
//
// # Concurrency
//
// All functions are safe for concurrent use. A Layout value is not
// synchronized.
package graph
