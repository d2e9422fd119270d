package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Options configures search-tree rendering.
type Options struct {
	// Detailed includes depth and prune reasons in node labels.
	// When false, only the node ID, status, and bound are shown.
	Detailed bool
}

// ToDOT converts a recorded search tree to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Pruned nodes are drawn with dashed grey outlines; the node holding the
// final incumbent is drawn bold with a green fill.
func ToDOT(r *Recorder, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph search {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := r.Nodes()
	for _, n := range nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		if n.ParentID < 0 {
			continue
		}
		fmt.Fprintf(&buf, "  %d -> %d [label=%q];\n", n.ParentID, n.ID, edgeLabel(n))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *NodeRecord, detailed bool) string {
	parts := []string{fmt.Sprintf("node %d", n.ID)}
	if n.Status == "optimal" {
		parts = append(parts, fmt.Sprintf("bound %.4g", n.Bound))
	} else {
		parts = append(parts, n.Status)
	}
	if detailed {
		parts = append(parts, fmt.Sprintf("depth %d", n.Depth))
		if n.Pruned {
			parts = append(parts, fmt.Sprintf("pruned: %s", n.Reason))
		}
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *NodeRecord, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Incumbent:
		attrs = append(attrs, "style=\"rounded,filled,bold\"", "fillcolor=palegreen", "color=darkgreen")
	case n.Pruned:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey25")
	}
	return attrs
}

// edgeLabel renders the bound that created the node, e.g. "y <= 2" becomes
// "y (floor)" since the event carries the direction rather than the value.
func edgeLabel(n *NodeRecord) string {
	if n.BranchVar == "" {
		return ""
	}
	return fmt.Sprintf("%s (%s)", n.BranchVar, n.Dir)
}

// RenderSVG renders a DOT tree to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG, normalizeViewBox)
}

// RenderPNG renders a DOT tree to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG, nil)
}

func render(dot string, format graphviz.Format, post func([]byte) []byte) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out := buf.Bytes()
	if post != nil {
		out = post(out)
	}
	return out, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the svg element so the image scales from origin,
// which keeps embedding in HTML pages predictable.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
