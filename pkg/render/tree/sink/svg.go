package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"

	"github.com/matzehuels/kintree/pkg/avatar"
	"github.com/matzehuels/kintree/pkg/graph"
)

// Drawing constants.
const (
	AvatarSize  = 36.0
	NodeRadius  = 18.0
	LabelOffset = 26.0

	LinkColor      = "#9CA3AF"
	LinkWidth      = 1.2
	ExtraLinkColor = "#6b7280"
	ExtraLinkWidth = 1.0
	ExtraLinkDash  = "4 4"
	NodeFill       = "#fff"
	NodeStroke     = "#2563eb"
)

const ariaLabel = "Árbol genealógico"

var clipIDUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	baseURL  string
	inlined  map[string]string
	noImages bool
	title    string
}

// WithBaseURL makes root-relative avatar references absolute.
func WithBaseURL(base string) SVGOption { return func(r *svgRenderer) { r.baseURL = base } }

// WithInlinedAvatars replaces avatar references with the given data URIs.
// References missing from the map fall back to the plain circle.
func WithInlinedAvatars(m map[string]string) SVGOption {
	return func(r *svgRenderer) { r.inlined = m }
}

// WithoutAvatars draws every node as a plain circle.
func WithoutAvatars() SVGOption { return func(r *svgRenderer) { r.noImages = true } }

// WithTitle adds a <title> element.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// RenderSVG draws a layout: solid curves for primary links, dashed curves
// for extra links, then one group per node with its avatar and label.
func RenderSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	vb := l.ViewBox

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="%s %s %s %s" width="%.0f" height="%.0f" role="img" aria-label="%s">`+"\n",
		num(vb.X), num(vb.Y), num(vb.Width), num(vb.Height), vb.Width, vb.Height, ariaLabel)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	buf.WriteString("  <g>\n")

	pos := make(map[string]graph.Node, len(l.Nodes))
	for _, n := range l.Nodes {
		pos[n.ID] = n
	}
	renderLinks(&buf, l.Links, pos, false)
	renderLinks(&buf, l.Links, pos, true)
	r.renderNodes(&buf, l.Nodes)

	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderLinks(buf *bytes.Buffer, links []graph.Link, pos map[string]graph.Node, extra bool) {
	if extra {
		buf.WriteString("    <g class=\"extra-links\">\n")
	} else {
		buf.WriteString("    <g class=\"links\">\n")
	}
	for _, l := range links {
		if l.Extra != extra {
			continue
		}
		src, okS := pos[l.From]
		dst, okD := pos[l.To]
		if !okS || !okD {
			continue
		}
		d := LinkPath(src.X, src.Y, dst.X, dst.Y)
		if extra {
			fmt.Fprintf(buf, `      <path class="extra" d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-dasharray="%s"/>`+"\n",
				d, ExtraLinkColor, num(ExtraLinkWidth), ExtraLinkDash)
		} else {
			fmt.Fprintf(buf, `      <path d="%s" fill="none" stroke="%s" stroke-width="%s"/>`+"\n",
				d, LinkColor, num(LinkWidth))
		}
	}
	buf.WriteString("    </g>\n")
}

func (r *svgRenderer) renderNodes(buf *bytes.Buffer, nodes []graph.Node) {
	buf.WriteString("    <g class=\"nodes\">\n")
	used := make(map[string]int, len(nodes))
	for _, n := range nodes {
		fmt.Fprintf(buf, `      <g class="node" data-id="%s" transform="translate(%s,%s)">`+"\n",
			escapeXML(n.ID), num(n.X), num(n.Y))

		if href := r.href(n.Avatar); href != "" {
			clip := uniqueClipID(n.ID, used)
			fmt.Fprintf(buf, `        <defs><clipPath id="%s"><circle r="%s" cx="0" cy="0"/></clipPath></defs>`+"\n",
				clip, num(AvatarSize/2))
			fmt.Fprintf(buf, `        <image href="%s" xlink:href="%s" x="%s" y="%s" width="%s" height="%s" clip-path="url(#%s)"/>`+"\n",
				escapeXML(href), escapeXML(href), num(-AvatarSize/2), num(-AvatarSize/2), num(AvatarSize), num(AvatarSize), clip)
		} else {
			fmt.Fprintf(buf, `        <circle r="%s" fill="%s" stroke="%s"/>`+"\n", num(NodeRadius), NodeFill, NodeStroke)
		}

		fmt.Fprintf(buf, `        <text dy="0.35em" x="%s">%s</text>`+"\n", num(LabelOffset), escapeXML(n.Label()))
		buf.WriteString("      </g>\n")
	}
	buf.WriteString("    </g>\n")
}

// href returns what an <image> should point at, or "" for the circle.
func (r *svgRenderer) href(ref string) string {
	if ref == "" || r.noImages {
		return ""
	}
	if r.inlined != nil {
		return r.inlined[ref]
	}
	return avatar.Absolute(ref, r.baseURL)
}

// ClipID returns the clip path id for a person: "clip-" followed by the id
// with everything outside [a-zA-Z0-9_-] removed.
func ClipID(id string) string {
	return "clip-" + clipIDUnsafe.ReplaceAllString(id, "")
}

func uniqueClipID(id string, used map[string]int) string {
	base := ClipID(id)
	used[base]++
	if n := used[base]; n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}

// LinkPath returns a vertical cubic Bézier from (x1, y1) to (x2, y2) whose
// control points sit halfway down.
func LinkPath(x1, y1, x2, y2 float64) string {
	mid := (y1 + y2) / 2
	return fmt.Sprintf("M%s,%sC%s,%s,%s,%s,%s,%s",
		num(x1), num(y1), num(x1), num(mid), num(x2), num(mid), num(x2), num(y2))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
