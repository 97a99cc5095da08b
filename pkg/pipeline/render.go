package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/kintree/pkg/graph"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/persona"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
	"github.com/matzehuels/kintree/pkg/render/tree/sink"
)

// RenderRecords exports person records as json or csv.
func RenderRecords(people []persona.Person, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return kio.MarshalJSON(people)
	case FormatCSV:
		return kio.MarshalCSV(people)
	}
	return nil, fmt.Errorf("%s is not a record format", format)
}

// RenderLayout renders a layout in one of the drawing formats. inlined maps
// avatar references to data URIs for raster output and may be nil.
func RenderLayout(ctx context.Context, l graph.Layout, format string, opts Options, inlined map[string]string) ([]byte, error) {
	switch format {
	case FormatLayout:
		return graph.MarshalLayout(l)
	case FormatDOT:
		return []byte(nodelink.ToDOT(l, nodelinkOptions(opts))), nil
	}

	if opts.Renderer == RendererNodelink {
		return renderNodelink(ctx, l, format, opts)
	}
	return renderTree(ctx, l, format, opts, inlined)
}

func renderNodelink(ctx context.Context, l graph.Layout, format string, opts Options) ([]byte, error) {
	dot := nodelink.ToDOT(l, nodelinkOptions(opts))
	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	}
	return nil, fmt.Errorf("unsupported nodelink format: %s", format)
}

func renderTree(ctx context.Context, l graph.Layout, format string, opts Options, inlined map[string]string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(l, svgOptions(opts)...), nil
	case FormatPNG:
		return sink.RenderPNG(ctx, l,
			sink.WithPNGSVGOptions(rasterSVGOptions(opts, inlined)...),
			sink.WithScale(opts.Scale))
	case FormatPDF:
		return sink.RenderPDF(ctx, l, rasterSVGOptions(opts, inlined)...)
	}
	return nil, fmt.Errorf("unsupported tree format: %s", format)
}

func svgOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithBaseURL(opts.BaseURL)}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	return svgOpts
}

// rasterSVGOptions draws avatars only from inlined data; rsvg-convert does
// not fetch remote images.
func rasterSVGOptions(opts Options, inlined map[string]string) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if inlined == nil {
		svgOpts = append(svgOpts, sink.WithoutAvatars())
	} else {
		svgOpts = append(svgOpts, sink.WithInlinedAvatars(inlined))
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	return svgOpts
}

func nodelinkOptions(opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed, Pinned: opts.Pinned}
}
