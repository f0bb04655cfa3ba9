// Package pkg provides the core libraries for Godswood application topology trees.
//
// # Overview
//
// Godswood turns hierarchical application topology documents (an application
// containing services, services containing components, and so on) into an
// indexed node store with per-depth scale factors that a radial renderer can
// consume directly. The pkg directory is organized into these areas:
//
//  1. [node] - Arena node store, paths and the path index
//  2. [tree] - Document parsing, depth indexing and scale computation
//  3. [forest] - A registry of named trees sharing one store
//  4. [layout] - Serializable per-depth layouts (JSON, YAML)
//  5. [render/nodelink] - Graphviz DOT and SVG output
//  6. [cache], [observability], [errors], [buildinfo] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through Godswood:
//
//	Topology JSON document
//	         ↓
//	    [tree.Parse] (validate and walk the document, allocate and link nodes)
//	         ↓
//	    [tree.AssignDepths] (breadth-first pass: paths, path index, depth groups)
//	         ↓
//	    [tree.ComputeScales] (radial scale cascade, deepest level first)
//	         ↓
//	    [layout.Export] / [nodelink.ToDOT]
//
// [forest.Forest.AddWood] runs all three stages and registers the result.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/godswood/pkg/forest"
//	    "github.com/matzehuels/godswood/pkg/layout"
//	)
//
//	f := forest.New(forest.Options{BaseScale: 1, BaseGap: 1})
//	t, err := f.AddWood(ctx, data)
//	if err != nil {
//	    return err
//	}
//	l, err := layout.Export(t)
//	if err != nil {
//	    return err
//	}
//	return l.Encode(os.Stdout, layout.FormatJSON)
//
// # Concurrency
//
// A [node.Store] is safe for concurrent use. Independent documents may be
// parsed in parallel into the same store; [forest.Forest.AddWoods] does so
// with an errgroup. A panic inside a store operation poisons the store and
// every later call fails with STORE_CORRUPTED.
//
// [node]: https://pkg.go.dev/github.com/matzehuels/godswood/pkg/node
// [tree]: https://pkg.go.dev/github.com/matzehuels/godswood/pkg/tree
// [forest]: https://pkg.go.dev/github.com/matzehuels/godswood/pkg/forest
// [layout]: https://pkg.go.dev/github.com/matzehuels/godswood/pkg/layout
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/godswood/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/godswood/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/godswood/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/godswood/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/godswood/pkg/buildinfo
package pkg
