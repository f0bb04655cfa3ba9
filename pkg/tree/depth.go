package tree

import (
	apperrors "github.com/matzehuels/godswood/pkg/errors"
	"github.com/matzehuels/godswood/pkg/node"
)

// queued pairs a node handle with the path of the parent it was reached from.
type queued struct {
	parent node.Path
	ref    node.Ref
}

// AssignDepths records every node's materialized path in t and groups node
// handles by depth.
//
// # Algorithm
//
// The root gets [node.RootPath] of the tree name at depth 1. A FIFO queue is
// seeded with the root's children paired with that path; for each dequeued
// (parentPath, child):
//  1. child path = parentPath.Append(child.Name), a copy, since siblings
//     share the parent path
//  2. the path is stored on the node under the tree name and indexed in the
//     store (path string -> id; last registration wins)
//  3. the child is appended to its depth group
//  4. the child's children are enqueued with the child path
//
// The queue keeps stack usage flat on deep trees and yields depth groups in
// traversal order: parents in link order, children in link order.
//
// # Anomalies
//
// A child handle that no longer resolves is logged, counted in
// [Tree.Skipped] and its branch skipped. Names containing the path separator
// are logged but kept. A corrupted store aborts the pass with its error.
//
// Existing groups are replaced only when the pass completes, so readers never
// observe a partial grouping.
func AssignDepths(t *Tree) error {
	store := t.store
	root, err := store.Get(t.root)
	if err != nil {
		return err
	}

	rootPath := node.RootPath(t.name)
	if err := store.SetPath(t.root, t.name, rootPath); err != nil {
		return err
	}
	if err := store.UpdateIndex(rootPath.String(), t.root); err != nil {
		return err
	}

	byDepth := map[int][]node.Ref{rootPath.Depth(): {t.root}}
	maxDepth := rootPath.Depth()
	skipped := 0

	queue := make([]queued, 0, len(root.Children))
	for _, c := range root.Children {
		queue = append(queue, queued{parent: rootPath, ref: c})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		var p node.Path
		n, err := store.Get(item.ref)
		if err == nil {
			p = item.parent.Append(n.Name)
			err = t.register(n, p)
		}
		if err != nil {
			if apperrors.Fatal(err) {
				return err
			}
			skipped++
			t.logger.Warn("skipping dangling reference",
				"tree", t.name,
				"id", item.ref.ID(),
				"parent", item.parent.String(),
				"err", err)
			continue
		}

		byDepth[p.Depth()] = append(byDepth[p.Depth()], item.ref)
		maxDepth = max(maxDepth, p.Depth())

		for _, c := range n.Children {
			queue = append(queue, queued{parent: p, ref: c})
		}
	}

	t.mu.Lock()
	t.byDepth = byDepth
	t.depth = maxDepth
	t.skipped = skipped
	t.mu.Unlock()

	t.logger.Debug("assigned depths", "tree", t.name, "depth", maxDepth, "skipped", skipped)
	return nil
}

func (t *Tree) register(n node.Node, p node.Path) error {
	if err := apperrors.ValidateNodeName(n.Name); err != nil {
		t.logger.Warn("node name is not path safe", "tree", t.name, "id", n.ID, "path", p.String(), "err", err)
	}
	if err := t.store.SetPath(n.Ref(), t.name, p); err != nil {
		return err
	}
	return t.store.UpdateIndex(p.String(), n.Ref())
}
