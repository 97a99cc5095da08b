// Package render turns computed family tree layouts into files.
//
// # Overview
//
//   - Generic format conversion (SVG to PDF/PNG) in this package
//   - The family tree drawing (in [tree/sink])
//   - Graphviz node-link diagrams (in [nodelink])
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(layout, opts...)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// rsvg-convert does not fetch remote images, so avatars must be inlined as
// data URIs before rasterizing. The pipeline does this with avatar.Inliner.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage exports the tree as Graphviz DOT, with dashed
// edges for secondary parents, and renders it in-process:
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [tree/sink]: github.com/matzehuels/kintree/pkg/render/tree/sink
// [nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
package render
