// Package forest builds application trees from JSON documents into one
// shared node store and keeps them addressable by root name.
//
// Every document goes through the same pass:
//
//	tree.Parse -> tree.New -> tree.AssignDepths -> tree.ComputeScales
//
// and is published only once all stages succeed. Trees built from different
// documents share the store, so a dotted path like ".app1.node2" resolves
// through [Forest.Lookup] regardless of which document introduced it.
package forest

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/matzehuels/godswood/pkg/errors"
	"github.com/matzehuels/godswood/pkg/node"
	"github.com/matzehuels/godswood/pkg/observability"
	"github.com/matzehuels/godswood/pkg/tree"
)

// Options configures a [Forest]. Zero values fall back to the tree defaults.
type Options struct {
	BaseScale float64
	BaseGap   float64
	Logger    *log.Logger
}

// Forest is a registry of trees over a single [node.Store].
// It is safe for concurrent use.
type Forest struct {
	mu    sync.RWMutex
	trees map[string]*tree.Tree

	store  *node.Store
	opts   tree.Options
	logger *log.Logger
}

// New returns an empty forest with its own store.
func New(opts Options) *Forest {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Forest{
		trees: make(map[string]*tree.Tree),
		store: node.NewStore(),
		opts: tree.Options{
			BaseScale: opts.BaseScale,
			BaseGap:   opts.BaseGap,
			Logger:    logger,
		},
		logger: logger,
	}
}

// AddWood builds one document and registers the resulting tree under its
// root name, replacing any tree previously registered under that name.
// On error the registry is left untouched; nodes already allocated for the
// failed document stay in the store unreachable.
func (f *Forest) AddWood(ctx context.Context, data []byte) (*tree.Tree, error) {
	hooks := observability.Build()

	start := time.Now()
	root, err := tree.Parse(f.store, data)
	if err != nil {
		hooks.OnParseComplete(ctx, "", time.Since(start), err)
		return nil, fmt.Errorf("parse: %w", err)
	}
	t, err := tree.New(f.store, root, f.opts)
	if err != nil {
		hooks.OnParseComplete(ctx, "", time.Since(start), err)
		return nil, fmt.Errorf("parse: %w", err)
	}
	hooks.OnParseComplete(ctx, t.Name(), time.Since(start), nil)

	start = time.Now()
	err = tree.AssignDepths(t)
	hooks.OnIndexComplete(ctx, t.Name(), t.NodeCount(), t.Depth(), t.Skipped(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	start = time.Now()
	err = tree.ComputeScales(t)
	hooks.OnScaleComplete(ctx, t.Name(), t.Depth(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}

	f.mu.Lock()
	_, replaced := f.trees[t.Name()]
	f.trees[t.Name()] = t
	f.mu.Unlock()

	f.logger.Info("built tree",
		"tree", t.Name(),
		"nodes", t.NodeCount(),
		"depth", t.Depth(),
		"skipped", t.Skipped(),
		"replaced", replaced)
	return t, nil
}

// AddWoods builds docs concurrently into the shared store. It returns the
// first error; documents that already succeeded stay registered. Once a
// build fails, documents that have not started yet are not built.
func (f *Forest) AddWoods(ctx context.Context, docs ...[]byte) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := f.AddWood(ctx, doc); err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Tree returns the tree registered under name.
func (f *Forest) Tree(name string) (*tree.Tree, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.trees[name]
	return t, ok
}

// Names returns the registered tree names in sorted order.
func (f *Forest) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Sorted(maps.Keys(f.trees))
}

// Len returns the number of registered trees.
func (f *Forest) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.trees)
}

// Store returns the shared node store.
func (f *Forest) Store() *node.Store { return f.store }

// Lookup resolves a dotted path such as ".app1.node2" to a snapshot of the
// node registered under it.
func (f *Forest) Lookup(path string) (node.Node, error) {
	if err := apperrors.ValidatePath(path); err != nil {
		return node.Node{}, err
	}
	ref, err := f.store.GetWeakNode(path)
	if err != nil {
		return node.Node{}, err
	}
	return f.store.Get(ref)
}
