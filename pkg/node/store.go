package node

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	apperrors "github.com/matzehuels/godswood/pkg/errors"
)

var (
	// ErrNotFound is returned by [Store.GetWeakNode] when no node is indexed
	// under the requested path.
	ErrNotFound = errors.New("node not found")

	// ErrDanglingRef is returned when a [Ref] does not resolve to a node in
	// the store it is used with.
	ErrDanglingRef = errors.New("dangling node reference")

	// ErrStoreCorrupted is returned by every operation on a store whose
	// writer panicked mid-mutation.
	ErrStoreCorrupted = errors.New("node store corrupted")

	// ErrIDSpaceExhausted is returned when the id counter cannot advance.
	ErrIDSpaceExhausted = errors.New("node id space exhausted")
)

// Store owns every node of a forest and the path -> id index.
//
// The zero value is not usable; use [NewStore].
type Store struct {
	mu       sync.RWMutex
	poisoned atomic.Bool

	nextID uint64
	nodes  map[uint64]*Node
	index  map[string]uint64
}

// NewStore creates an empty store. The first allocated id is 1.
func NewStore() *Store {
	return &Store{
		nextID: 1,
		nodes:  make(map[uint64]*Node),
		index:  make(map[string]uint64),
	}
}

// Poisoned reports whether a writer failed mid-mutation.
func (s *Store) Poisoned() bool { return s.poisoned.Load() }

// NewNode allocates the next id and inserts a default node.
func (s *Store) NewNode() (Ref, error) {
	return s.create("NewNode", nil)
}

// AddNode allocates an ordinary node named name. The display name defaults
// to [DefaultDisplayName].
func (s *Store) AddNode(name string, f Fields) (Ref, error) {
	return s.create("AddNode", func(n *Node) {
		n.Name = name
		n.DisplayName = displayName(f)
		n.Kind = KindNode
	})
}

// AddLeafNode is [Store.AddNode] for nodes created as leaves.
func (s *Store) AddLeafNode(name string, f Fields) (Ref, error) {
	return s.create("AddLeafNode", func(n *Node) {
		n.Name = name
		n.DisplayName = displayName(f)
		n.Kind = KindLeaf
	})
}

// AddAppNode allocates a tree root. The name defaults to [DefaultAppName].
func (s *Store) AddAppNode(f Fields) (Ref, error) {
	name := f.Name
	if name == "" {
		name = DefaultAppName
	}
	return s.create("AddAppNode", func(n *Node) {
		n.Name = name
		n.DisplayName = displayName(f)
		n.Kind = KindRoot
	})
}

func displayName(f Fields) string {
	if f.DisplayName == "" {
		return DefaultDisplayName
	}
	return f.DisplayName
}

// create allocates an id and inserts the node in one critical section.
func (s *Store) create(op string, init func(*Node)) (Ref, error) {
	var ref Ref
	err := s.write(op, func() error {
		if s.nextID == math.MaxUint64 {
			return apperrors.Wrap(apperrors.ErrCodeInternal, ErrIDSpaceExhausted, "%s", op)
		}
		id := s.nextID
		s.nextID++

		n := &Node{
			ID:      id,
			Kind:    KindNode,
			Service: ServiceGeneral,
			Paths:   make(map[string]Path),
		}
		if init != nil {
			init(n)
		}
		s.nodes[id] = n
		ref = Ref(id)
		return nil
	})
	return ref, err
}

// Link appends child to parent's children and parent to child's parents.
func (s *Store) Link(parent, child Ref) error {
	return s.write("Link", func() error {
		p, ok := s.nodes[parent.ID()]
		if !ok {
			return dangling("Link", parent)
		}
		c, ok := s.nodes[child.ID()]
		if !ok {
			return dangling("Link", child)
		}
		p.Children = append(p.Children, child)
		c.Parents = append(c.Parents, parent)
		return nil
	})
}

// UpdateIndex maps path to id, replacing any previous mapping.
func (s *Store) UpdateIndex(path string, id Ref) error {
	return s.write("UpdateIndex", func() error {
		if _, ok := s.nodes[id.ID()]; !ok {
			return dangling("UpdateIndex", id)
		}
		s.index[path] = id.ID()
		return nil
	})
}

// SetPath records p as the node's path in the tree rooted at root.
func (s *Store) SetPath(id Ref, root string, p Path) error {
	return s.write("SetPath", func() error {
		n, ok := s.nodes[id.ID()]
		if !ok {
			return dangling("SetPath", id)
		}
		n.Paths[root] = p
		return nil
	})
}

// GetWeakNode resolves a materialized path to a handle.
// It returns an error matching [ErrNotFound] when the path is not indexed or
// the indexed id has no node.
func (s *Store) GetWeakNode(path string) (Ref, error) {
	var ref Ref
	err := s.read("GetWeakNode", func() error {
		id, ok := s.index[path]
		if !ok {
			return apperrors.Wrap(apperrors.ErrCodeNotFound, ErrNotFound, "path %q", path)
		}
		if _, ok := s.nodes[id]; !ok {
			return apperrors.Wrap(apperrors.ErrCodeNotFound, ErrNotFound, "path %q: id %d", path, id)
		}
		ref = Ref(id)
		return nil
	})
	return ref, err
}

// Get returns a copy of the node behind id.
func (s *Store) Get(id Ref) (Node, error) {
	var out Node
	err := s.read("Get", func() error {
		n, ok := s.nodes[id.ID()]
		if !ok {
			return dangling("Get", id)
		}
		out = n.clone()
		return nil
	})
	return out, err
}

// Children returns a copy of the node's child handles in link order.
func (s *Store) Children(id Ref) ([]Ref, error) {
	var out []Ref
	err := s.read("Children", func() error {
		n, ok := s.nodes[id.ID()]
		if !ok {
			return dangling("Children", id)
		}
		out = append([]Ref(nil), n.Children...)
		return nil
	})
	return out, err
}

// Parents returns a copy of the node's parent handles in link order.
func (s *Store) Parents(id Ref) ([]Ref, error) {
	var out []Ref
	err := s.read("Parents", func() error {
		n, ok := s.nodes[id.ID()]
		if !ok {
			return dangling("Parents", id)
		}
		out = append([]Ref(nil), n.Parents...)
		return nil
	})
	return out, err
}

// Len returns the number of nodes in the store, or 0 once the store is
// poisoned.
func (s *Store) Len() int {
	var n int
	_ = s.read("Len", func() error {
		n = len(s.nodes)
		return nil
	})
	return n
}

// IndexLen returns the number of indexed paths, or 0 once the store is
// poisoned.
func (s *Store) IndexLen() int {
	var n int
	_ = s.read("IndexLen", func() error {
		n = len(s.index)
		return nil
	})
	return n
}

// write runs fn under the exclusive lock. A panic in fn poisons the store.
func (s *Store) write(op string, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned.Load() {
		return corrupted(op)
	}
	defer func() {
		if r := recover(); r != nil {
			s.poisoned.Store(true)
			err = apperrors.Wrap(apperrors.ErrCodeStoreCorrupted, ErrStoreCorrupted, "%s: writer panicked: %v", op, r)
		}
	}()
	return fn()
}

// read runs fn under the shared lock.
func (s *Store) read(op string, fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.poisoned.Load() {
		return corrupted(op)
	}
	return fn()
}

func corrupted(op string) error {
	return apperrors.Wrap(apperrors.ErrCodeStoreCorrupted, ErrStoreCorrupted, "%s", op)
}

func dangling(op string, id Ref) error {
	return apperrors.Wrap(apperrors.ErrCodeDanglingReference, ErrDanglingRef, "%s: node %d", op, id.ID())
}
