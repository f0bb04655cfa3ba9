package tree

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/godswood/pkg/errors"
	"github.com/matzehuels/godswood/pkg/node"
)

const app1Doc = `{ "name": "app1", "children": {
    "node1": {},
    "node2": { "children": { "node3": {} } }
} }`

func quietOptions() Options {
	return Options{Logger: log.New(io.Discard)}
}

// build runs the full pass over data in a fresh store.
func build(t *testing.T, data string) (*node.Store, *Tree) {
	t.Helper()
	store := node.NewStore()
	return store, buildIn(t, store, data)
}

func buildIn(t *testing.T, store *node.Store, data string) *Tree {
	t.Helper()
	root, err := Parse(store, []byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tr, err := New(store, root, quietOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := AssignDepths(tr); err != nil {
		t.Fatalf("AssignDepths: %v", err)
	}
	if err := ComputeScales(tr); err != nil {
		t.Fatalf("ComputeScales: %v", err)
	}
	return tr
}

func mustLookup(t *testing.T, store *node.Store, path string) node.Node {
	t.Helper()
	ref, err := store.GetWeakNode(path)
	if err != nil {
		t.Fatalf("GetWeakNode(%q): %v", path, err)
	}
	n, err := store.Get(ref)
	if err != nil {
		t.Fatalf("Get(%d): %v", ref, err)
	}
	return n
}

func names(t *testing.T, store Store, refs []node.Ref) []string {
	t.Helper()
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		n, err := store.Get(ref)
		if err != nil {
			t.Fatalf("Get(%d): %v", ref, err)
		}
		out = append(out, n.Name)
	}
	return out
}

// faultyStore wraps a store and fails lookups of selected handles.
type faultyStore struct {
	Store
	dropped   map[node.Ref]bool
	corrupted map[node.Ref]bool
}

func (f *faultyStore) fail(id node.Ref) error {
	if f.corrupted[id] {
		return apperrors.Wrap(apperrors.ErrCodeStoreCorrupted, node.ErrStoreCorrupted, "node %d", id)
	}
	if f.dropped[id] {
		return apperrors.Wrap(apperrors.ErrCodeDanglingReference, node.ErrDanglingRef, "node %d", id)
	}
	return nil
}

func (f *faultyStore) Get(id node.Ref) (node.Node, error) {
	if err := f.fail(id); err != nil {
		return node.Node{}, err
	}
	return f.Store.Get(id)
}

func (f *faultyStore) Children(id node.Ref) ([]node.Ref, error) {
	if err := f.fail(id); err != nil {
		return nil, err
	}
	return f.Store.Children(id)
}
