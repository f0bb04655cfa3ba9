// Package node provides the node arena shared by every tree of a forest.
//
// # Overview
//
// A [Store] is the single owner of every [Node]. Everything else (parent and
// child links, depth groupings, forest registries) holds a [Ref], a plain id
// handle that is resolved through the store on demand. Parent/child cycles
// therefore never form between owners, and a node lives exactly as long as
// the store that created it.
//
// # Basic Usage
//
// Allocate nodes with [Store.AddAppNode], [Store.AddNode] and
// [Store.AddLeafNode], connect them with [Store.Link], and read them back
// with [Store.Get]:
//
//	s := node.NewStore()
//	app, _ := s.AddAppNode(node.Fields{Name: "app1"})
//	svc, _ := s.AddNode("svc", node.Fields{DisplayName: "Service"})
//	_ = s.Link(app, svc)
//
//	n, _ := s.Get(app)
//	fmt.Println(n.Name, n.Children) // app1 [2]
//
// # Paths
//
// A [Path] is a materialized, dot-separated ancestor chain (".app1.svc")
// together with its depth. Paths are values: [Path.Append] returns a new path
// and never modifies its receiver, so siblings can safely extend the same
// parent path. The store keeps a path -> id index filled by the depth pass;
// [Store.GetWeakNode] resolves a path back to a handle. When two nodes are
// registered under the same path the later registration wins.
//
// # Concurrency
//
// Store is safe for concurrent use. Id allocation and node insertion happen
// in one exclusive critical section, so concurrent callers never share an
// id. Reads take a shared lock and return deep copies.
//
// A writer that panics inside a critical section poisons the store: the
// panic is recovered, the lock released, and that call and every later call
// fail with an error matching [ErrStoreCorrupted]. Other stores are not
// affected.
package node
