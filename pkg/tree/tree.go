package tree

import (
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/matzehuels/godswood/pkg/errors"
	"github.com/matzehuels/godswood/pkg/node"
)

// Layout defaults handed to renderers.
const (
	DefaultBaseScale = 1.0
	DefaultBaseGap   = 1.0
)

// Store is the part of [node.Store] a tree reads and writes after parsing.
type Store interface {
	Get(id node.Ref) (node.Node, error)
	Children(id node.Ref) ([]node.Ref, error)
	SetPath(id node.Ref, root string, p node.Path) error
	UpdateIndex(path string, id node.Ref) error
}

// Options configures a [Tree].
type Options struct {
	BaseScale float64     // Radius unit of the deepest level; defaults to DefaultBaseScale
	BaseGap   float64     // Spacing between depth rings; defaults to DefaultBaseGap
	Logger    *log.Logger // Receives anomalies found during the build; defaults to log.Default()
}

// Tree is one parsed hierarchy rooted at an app node.
//
// Depth groups and scales are written by [AssignDepths] and [ComputeScales]
// and read-only afterwards. All methods are safe for concurrent use.
type Tree struct {
	mu sync.RWMutex

	buildID uuid.UUID
	store   Store
	root    node.Ref
	name    string

	byDepth map[int][]node.Ref
	scales  map[int]float64
	depth   int
	skipped int

	baseScale float64
	baseGap   float64
	logger    *log.Logger
}

// New wraps the hierarchy under root. root must resolve to a node of kind
// [node.KindRoot]; its name becomes the tree name.
func New(store Store, root node.Ref, opts Options) (*Tree, error) {
	n, err := store.Get(root)
	if err != nil {
		return nil, err
	}
	if !n.IsRoot() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "node %d (%s) is not a root", n.ID, n.Kind)
	}
	if opts.BaseScale <= 0 {
		opts.BaseScale = DefaultBaseScale
	}
	if opts.BaseGap <= 0 {
		opts.BaseGap = DefaultBaseGap
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Tree{
		buildID:   uuid.New(),
		store:     store,
		root:      root,
		name:      n.Name,
		byDepth:   make(map[int][]node.Ref),
		scales:    make(map[int]float64),
		baseScale: opts.BaseScale,
		baseGap:   opts.BaseGap,
		logger:    opts.Logger,
	}, nil
}

// BuildID identifies this build pass. Rebuilding a document yields a new id.
func (t *Tree) BuildID() uuid.UUID { return t.buildID }

// Name returns the root app name.
func (t *Tree) Name() string { return t.name }

// Root returns the root handle.
func (t *Tree) Root() node.Ref { return t.root }

// Store returns the store that owns the tree's nodes.
func (t *Tree) Store() Store { return t.store }

// BaseScale returns the radius unit handed to renderers.
func (t *Tree) BaseScale() float64 { return t.baseScale }

// BaseGap returns the ring spacing handed to renderers.
func (t *Tree) BaseGap() float64 { return t.baseGap }

// Depth returns the deepest level, or 0 before [AssignDepths] ran.
func (t *Tree) Depth() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.depth
}

// Depths returns the populated depth levels in ascending order.
func (t *Tree) Depths() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.byDepth))
}

// NodesAtDepth returns the handles at depth d in traversal order.
// Returns nil for an empty or unknown level.
func (t *Tree) NodesAtDepth(d int) []node.Ref {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.byDepth[d])
}

// NodeCount returns the number of nodes reached by the depth pass.
func (t *Tree) NodeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, refs := range t.byDepth {
		n += len(refs)
	}
	return n
}

// Skipped returns how many dangling references the depth pass skipped.
func (t *Tree) Skipped() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.skipped
}

// Scale returns the cascaded scale factor of depth d.
func (t *Tree) Scale(d int) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.scales[d]
	return s, ok
}

// Scales returns a copy of all scale factors keyed by depth.
func (t *Tree) Scales() map[int]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.scales)
}

// Node resolves a handle through the tree's store.
func (t *Tree) Node(ref node.Ref) (node.Node, error) {
	return t.store.Get(ref)
}
