package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/crmmap/pkg/layout"
	"github.com/matzehuels/crmmap/pkg/layout/tree"
)

// pointsPerInch converts between Graphviz inches and pixels (1px = 1pt).
const pointsPerInch = 72.0

// Spacing configures the gaps Graphviz leaves between nodes, in pixels.
type Spacing struct {
	RankSep float64 // between layers
	NodeSep float64 // between siblings in a layer
}

// DefaultSpacing returns the spacing the tree strategy uses.
func DefaultSpacing() Spacing {
	return Spacing{RankSep: 96, NodeSep: 24}
}

// nodeName returns the DOT name of the i-th solver node. Ids are replaced by
// positional names so arbitrary ids never need escaping.
func nodeName(i int) string { return fmt.Sprintf("n%d", i) }

// GraphDOT converts a solver graph to DOT source for the dot engine. Node
// sizes are fixed so the solved boxes match the requested footprints.
func GraphDOT(g tree.Graph, sp Spacing) string {
	rankdir := "LR"
	if g.Direction == layout.DirectionTB {
		rankdir = "TB"
	}
	splines := "ortho"
	if g.Routing == tree.RoutingPolyline {
		splines = "polyline"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	fmt.Fprintf(&buf, "  splines=%s;\n", splines)
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(sp.RankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(sp.NodeSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
		fmt.Fprintf(&buf, "  %s [width=%s, height=%s];\n", nodeName(i), inches(n.Width), inches(n.Height))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		src, ok1 := index[e.Source]
		dst, ok2 := index[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", nodeName(src), nodeName(dst))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func inches(px float64) string {
	return fmt.Sprintf("%.4f", px/pointsPerInch)
}

// Palette maps the color keys carried by edge styles and node kinds to
// colors.
type Palette struct {
	Root        string
	Project     string
	Highlight   string
	Company     string
	Client      string
	ProjectFill string
}

// DefaultPalette returns the stock colors.
func DefaultPalette() Palette {
	return Palette{
		Root:        "#94a3b8",
		Project:     "#64748b",
		Highlight:   "#2563eb",
		Company:     "#1e293b",
		Client:      "#e0e7ff",
		ProjectFill: "#f8fafc",
	}
}

func (p Palette) edge(key string) string {
	switch key {
	case "highlight":
		return p.Highlight
	case "project":
		return p.Project
	default:
		return p.Root
	}
}

func (p Palette) fill(k layout.Kind) string {
	switch k {
	case layout.KindCompany:
		return p.Company
	case layout.KindClient:
		return p.Client
	default:
		return p.ProjectFill
	}
}

// Options configures LayoutDOT.
type Options struct {
	Palette Palette
	// Detailed adds status and owner lines to project labels.
	Detailed bool
}

// LayoutDOT converts a computed layout to DOT source with every node pinned
// at its position, for rendering with the neato engine. Only edges present
// in l are drawn, so edges suppressed by the visibility rules stay hidden.
func LayoutDOT(l *layout.Layout, opts Options) string {
	pal := opts.Palette
	if pal == (Palette{}) {
		pal = DefaultPalette()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fixedsize=true, fontsize=12];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	index := make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		index[n.ID] = i
		attrs := fmtAttrs(n, pal, opts.Detailed)
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(i), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		if !e.Style.Visible {
			continue
		}
		src, ok1 := index[e.SourceID]
		dst, ok2 := index[e.TargetID]
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [color=%q, penwidth=%.2f];\n",
			nodeName(src), nodeName(dst), withAlpha(pal.edge(e.Style.Color), e.Style.Opacity), e.Style.StrokeWidth)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n layout.Node, detailed bool) string {
	if !n.LabelVisible {
		return ""
	}
	label := n.Label()
	if !detailed {
		return label
	}
	if d, ok := n.Project(); ok {
		var parts []string
		if d.Status != "" {
			parts = append(parts, d.Status)
		}
		if d.OwnerName != "" {
			parts = append(parts, d.OwnerName)
		}
		if len(parts) > 0 {
			label += "\n" + strings.Join(parts, " · ")
		}
	}
	return label
}

func fmtAttrs(n layout.Node, pal Palette, detailed bool) []string {
	// DOT y grows upward.
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.Position.X, 0-n.Position.Y),
		fmt.Sprintf("width=%s", inches(n.Width)),
		fmt.Sprintf("height=%s", inches(n.Height)),
		fmt.Sprintf("fillcolor=%q", withAlpha(pal.fill(n.Kind), n.Opacity)),
	}
	if n.IsCompany() {
		attrs = append(attrs, "fontcolor=white")
	}
	if d, ok := n.Client(); ok && d.Collapsed {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// withAlpha appends an alpha byte to a #rrggbb color.
func withAlpha(color string, opacity float64) string {
	if len(color) != 7 || opacity >= 1 {
		return color
	}
	a := int(max(0, opacity) * 255)
	return fmt.Sprintf("%s%02x", color, a)
}
