// Package sink renders family tree layouts.
//
// # SVG Output
//
// [RenderSVG] draws a [graph.Layout] the way the editor shows it:
//
//   - primary links as vertical cubic curves (stroke #9CA3AF, width 1.2)
//   - extra links for secondary parents, dashed "4 4" in #6b7280
//   - one group per person, translated to its position, holding a 36px
//     avatar clipped to a circle, or a plain white circle when the person
//     has no image
//   - the name, or the id when there is none, to the right of the node
//
// Basic usage:
//
//	svg := sink.RenderSVG(layout,
//	    sink.WithBaseURL("http://localhost:8000"),
//	)
//
// # SVG Options
//
//   - [WithBaseURL]: make /uploads and /presets references absolute
//   - [WithInlinedAvatars]: embed images as data URIs (needed for PNG/PDF)
//   - [WithoutAvatars]: draw every node as a circle
//   - [WithTitle]: add a <title> element
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] render SVG first, then convert via
// [render.ToPDF] and [render.ToPNG]:
//
//	png, err := sink.RenderPNG(ctx, layout,
//	    sink.WithPNGSVGOptions(sink.WithInlinedAvatars(uris)),
//	    sink.WithScale(2),
//	)
//
// Both require rsvg-convert (librsvg).
package sink
