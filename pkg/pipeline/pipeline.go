// Package pipeline runs the parse → layout → render flow shared by the CLI
// and the HTTP server.
//
// # Stages
//
//  1. Parse: read an uploaded file into person records and validate them
//  2. Layout: build the tree and assign positions ([graph.Layout])
//  3. Render: produce artifacts (JSON, CSV, SVG, PNG, PDF, DOT, layout JSON)
//
// Layouts and rendered artifacts are cached by content hash through a
// [Runner]; record exports (json, csv) are cheap and never cached.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, people, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG, pipeline.FormatPNG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/avatar"
	"github.com/matzehuels/kintree/pkg/cache"
	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/persona"
)

// =============================================================================
// Formats and Renderers
// =============================================================================

// Output formats.
const (
	FormatJSON   = "json"   // person records
	FormatCSV    = "csv"    // person records
	FormatSVG    = "svg"    // drawn tree
	FormatPNG    = "png"    // rasterized tree
	FormatPDF    = "pdf"    // tree as PDF
	FormatDOT    = "dot"    // Graphviz source
	FormatLayout = "layout" // positioned layout as JSON
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:   true,
	FormatCSV:    true,
	FormatSVG:    true,
	FormatPNG:    true,
	FormatPDF:    true,
	FormatDOT:    true,
	FormatLayout: true,
}

// Renderers for svg, png and pdf.
const (
	RendererTree     = "tree"     // avatar tree drawn from the computed layout
	RendererNodelink = "nodelink" // Graphviz node-link diagram
)

// ValidRenderers is the set of supported renderers.
var ValidRenderers = map[string]bool{
	RendererTree:     true,
	RendererNodelink: true,
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatJSON, FormatLayout:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	}
	return "application/octet-stream"
}

// FileName returns the default download name for a format.
func FileName(format string) string {
	switch format {
	case FormatJSON:
		return "personas.json"
	case FormatCSV:
		return "personas.csv"
	case FormatLayout:
		return "layout.json"
	}
	return "arbol." + format
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return kerrors.New(kerrors.ErrCodeUnsupported,
			"invalid format: %q (must be one of: json, csv, svg, png, pdf, dot, layout)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list. Empty means svg.
func ParseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Layout options
	Layout  layout.Options `json:"layout"`
	Presets avatar.Presets `json:"presets,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Renderer string   `json:"renderer,omitempty"`
	BaseURL  string   `json:"base_url,omitempty"` // makes relative avatar URLs absolute in SVG output
	Title    string   `json:"title,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // nodelink labels with birth date and gender
	Pinned   bool     `json:"pinned,omitempty"`   // nodelink keeps computed positions
	Scale    float64  `json:"scale,omitempty"`    // PNG scale factor
	Refresh  bool     `json:"refresh,omitempty"`  // bypass cache reads

	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	o.Layout.SetDefaults()
	if o.Presets == nil {
		o.Presets = avatar.DefaultPresets()
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Renderer == "" {
		o.Renderer = RendererTree
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Validate checks option values. Call SetDefaults first.
func (o *Options) Validate() error {
	if err := o.Layout.Validate(); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "layout options")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if !ValidRenderers[o.Renderer] {
		return kerrors.New(kerrors.ErrCodeUnsupported, "invalid renderer: %q (must be one of: tree, nodelink)", o.Renderer)
	}
	if o.Scale < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidInput, "scale must be non-negative, got %v", o.Scale)
	}
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		RowSpacing:  o.Layout.RowSpacing,
		MinGap:      o.Layout.MinGap,
		PresetsHash: presetsHash(o.Presets),
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format. Only
// the options that affect that format are included.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == FormatLayout {
		return k
	}
	if format == FormatDOT || o.Renderer == RendererNodelink {
		k.Renderer = RendererNodelink
		k.Detailed = o.Detailed
		k.Pinned = o.Pinned
		return k
	}
	k.Renderer = RendererTree
	k.Title = o.Title
	switch format {
	case FormatSVG:
		k.BaseURL = o.BaseURL
	case FormatPNG:
		k.Scale = o.Scale
	}
	return k
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	People    []persona.Person
	Layout    graph.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	People     int
	Nodes      int
	Links      int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	LayoutHit bool // layout came from cache
	RenderHit bool // every cacheable artifact came from cache
}
