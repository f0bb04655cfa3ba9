package nodelink

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/godswood/pkg/node"
	"github.com/matzehuels/godswood/pkg/tree"
)

func buildTree(t *testing.T) *tree.Tree {
	t.Helper()
	store := node.NewStore()
	root, err := tree.Parse(store, []byte(`{ "name": "app1", "display_name": "App", "children": {
		"node1": {},
		"node2": { "display_name": "Second", "children": { "node3": {} } }
	} }`))
	if err != nil {
		t.Fatal(err)
	}
	tr, err := tree.New(store, root, tree.Options{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	if err := tree.AssignDepths(tr); err != nil {
		t.Fatal(err)
	}
	if err := tree.ComputeScales(tr); err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestToDOT(t *testing.T) {
	tr := buildTree(t)

	dot, err := ToDOT(tr, Options{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}

	for _, want := range []string{
		"digraph G {",
		`n1 [label="App", penwidth=3];`,
		`n2 [label="new node"];`,
		`n3 [label="Second"];`,
		"{ rank=same; n2; n3; }",
		"n1 -> n2;",
		"n1 -> n3;",
		"n3 -> n4;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Edges follow link order.
	if strings.Index(dot, "n1 -> n2;") > strings.Index(dot, "n1 -> n3;") {
		t.Error("edges out of link order")
	}
}

func TestToDOTDetailed(t *testing.T) {
	tr := buildTree(t)

	dot, err := ToDOT(tr, Options{Detailed: true})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	want := `label="Second\n.app1.node2\ndepth: 2\nscale: 1.000"`
	if !strings.Contains(dot, want) {
		t.Errorf("detailed label missing %s:\n%s", want, dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`
	if !strings.HasPrefix(out, want) {
		t.Errorf("normalizeViewBox = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should pass through")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	dot, err := ToDOT(buildTree(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "Second") {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}
