// Package pkg provides the core libraries of kintree, a family tree layout
// and rendering engine.
//
// # Overview
//
// kintree turns a flat list of person records, each naming its parents, into
// a positioned tree and draws it. The pkg directory is organized into four
// areas:
//
//  1. Model and input: [persona], [io], [validate]
//  2. Layout: [layout] computes positions, [graph] serializes them
//  3. Output: [render] and its subpackages, with [avatar] for images
//  4. Infrastructure: [pipeline], [cache], [store], [config], [errors],
//     [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	CSV / XLSX / JSON upload
//	         ↓
//	    [io] package (decode, resolve column aliases)
//	         ↓
//	    [persona] + [validate] (normalize dates, report problems)
//	         ↓
//	    [layout] package (hierarchy, positions, links)
//	         ↓
//	    [graph] package (serializable layout with avatars resolved)
//	         ↓
//	    [render] packages → SVG/PNG/PDF/DOT
//
// # Quick Start
//
//	people, _ := io.ImportFile("familia.csv")
//	res, _ := layout.Compute(people, layout.DefaultOptions())
//	l := graph.FromResult(res, avatar.DefaultPresets())
//	svg := sink.RenderSVG(l, sink.WithBaseURL("http://localhost:8000"))
//
// [pipeline.Runner] wraps these steps with caching and is what the CLI and
// the HTTP server use.
//
// # Main Packages
//
// [layout] - The tree layout engine. Each person hangs under the first of
// their parents present in the input; other parents become extra links.
// Several roots share a virtual root that is never drawn. Leaves are spaced
// MinGap apart, parents are centered over their children and overlaps within
// a generation are pushed right together with their subtrees.
//
// [graph] - The JSON form of a computed layout, shared by the API, the CLI
// and the renderers.
//
// [render/tree/sink] - The family tree SVG: curved links, dashed extra
// links, circular avatars and labels.
//
// [render/nodelink] - Graphviz DOT export and in-process rendering.
//
// [pipeline] - Validate, layout and render with a content-addressed [cache].
//
// [store] - Saved person lists (file or MongoDB) and uploaded avatars.
//
// [persona]: github.com/matzehuels/kintree/pkg/persona
// [io]: github.com/matzehuels/kintree/pkg/io
// [validate]: github.com/matzehuels/kintree/pkg/validate
// [layout]: github.com/matzehuels/kintree/pkg/layout
// [graph]: github.com/matzehuels/kintree/pkg/graph
// [render]: github.com/matzehuels/kintree/pkg/render
// [render/tree/sink]: github.com/matzehuels/kintree/pkg/render/tree/sink
// [render/nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
// [avatar]: github.com/matzehuels/kintree/pkg/avatar
// [pipeline]: github.com/matzehuels/kintree/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/kintree/pkg/pipeline#Runner
// [cache]: github.com/matzehuels/kintree/pkg/cache
// [store]: github.com/matzehuels/kintree/pkg/store
// [config]: github.com/matzehuels/kintree/pkg/config
// [errors]: github.com/matzehuels/kintree/pkg/errors
// [observability]: github.com/matzehuels/kintree/pkg/observability
// [buildinfo]: github.com/matzehuels/kintree/pkg/buildinfo
package pkg
