package tree_test

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/godswood/pkg/node"
	"github.com/matzehuels/godswood/pkg/tree"
)

func Example() {
	doc := []byte(`{ "name": "app1", "children": {
		"node1": {},
		"node2": { "children": { "node3": {} } }
	} }`)

	store := node.NewStore()
	root, _ := tree.Parse(store, doc)
	t, _ := tree.New(store, root, tree.Options{Logger: log.New(io.Discard)})
	_ = tree.AssignDepths(t)
	_ = tree.ComputeScales(t)

	for _, d := range t.Depths() {
		scale, _ := t.Scale(d)
		var names []string
		for _, ref := range t.NodesAtDepth(d) {
			n, _ := store.Get(ref)
			p, _ := n.Path(t.Name())
			names = append(names, p.String())
		}
		fmt.Printf("depth %d scale %.1f %v\n", d, scale, names)
	}
	// Output:
	// depth 1 scale 2.0 [.app1]
	// depth 2 scale 1.0 [.app1.node1 .app1.node2]
	// depth 3 scale 1.0 [.app1.node2.node3]
}

func ExampleRadialFactor() {
	for _, k := range []int{1, 2, 4, 6} {
		fmt.Printf("%d children: %.3f\n", k, tree.RadialFactor(k))
	}
	// Output:
	// 1 children: 1.000
	// 2 children: 2.000
	// 4 children: 2.414
	// 6 children: 3.000
}
