// Package tree builds one hierarchy ("wood") from a JSON document and
// annotates it for radial layout.
//
// A build pass has three steps, each a plain function over a [Tree]:
//
//   - [Parse] reads the document into linked nodes of a [node.Store] and
//     returns the root handle.
//   - [AssignDepths] walks the tree breadth-first, records every node's
//     materialized path for this tree and groups node handles by depth.
//   - [ComputeScales] derives one radial scale factor per depth and
//     cascades them from the leaves up to the root.
//
// After the pass a Tree is read-only and safe for concurrent readers.
//
//	store := node.NewStore()
//	root, err := tree.Parse(store, data)
//	t, err := tree.New(store, root, tree.Options{})
//	err = tree.AssignDepths(t)
//	err = tree.ComputeScales(t)
//	scale, _ := t.Scale(1)
package tree
