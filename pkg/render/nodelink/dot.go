package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/godswood/pkg/node"
	"github.com/matzehuels/godswood/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the path, depth and level scale to node labels.
	// When false, only the display name is shown.
	Detailed bool
}

// ToDOT converts a tree to Graphviz DOT source. Depths must already be
// assigned; scales are only read when opts.Detailed is set.
//
// Node ids are used as DOT identifiers. Edges follow link order and skip
// children that are not part of the depth grouping.
func ToDOT(t *tree.Tree, opts Options) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	grouped := make(map[node.Ref]bool, t.NodeCount())
	var nodes []node.Node
	for _, d := range t.Depths() {
		refs := t.NodesAtDepth(d)
		ids := make([]string, 0, len(refs))
		for _, ref := range refs {
			n, err := t.Node(ref)
			if err != nil {
				return "", fmt.Errorf("node %d: %w", ref.ID(), err)
			}
			grouped[ref] = true
			nodes = append(nodes, n)
			ids = append(ids, dotID(ref))

			label := fmtLabel(t, n, d, opts.Detailed)
			fmt.Fprintf(&buf, "  %s [%s];\n", dotID(ref), strings.Join(fmtAttrs(n, label), ", "))
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, c := range n.Children {
			if grouped[c] {
				fmt.Fprintf(&buf, "  %s -> %s;\n", dotID(n.Ref()), dotID(c))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func dotID(ref node.Ref) string {
	return "n" + strconv.FormatUint(ref.ID(), 10)
}

func fmtLabel(t *tree.Tree, n node.Node, depth int, detailed bool) string {
	if !detailed {
		return n.DisplayName
	}

	p, _ := n.Path(t.Name())
	parts := []string{p.String(), fmt.Sprintf("depth: %d", depth)}
	if scale, ok := t.Scale(depth); ok {
		parts = append(parts, fmt.Sprintf("scale: %.3f", scale))
	}
	return n.DisplayName + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n node.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case node.KindRoot:
		attrs = append(attrs, "penwidth=3")
	case node.KindLeaf:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing starts at the
// origin and scales with its container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
