package tree

import (
	"math"

	apperrors "github.com/matzehuels/godswood/pkg/errors"
	"github.com/matzehuels/godswood/pkg/node"
)

// RadialFactor returns the radius factor needed to place k children evenly
// around a parent without overlap: 1/sin(pi/k) + 1 for k > 1, else 1.
//
// 1/sin(pi/k) is the circumradius of a regular k-gon with side 2, so unit
// radius children on that ring just touch; the extra 1 is the children's own
// radius.
func RadialFactor(k int) float64 {
	if k <= 1 {
		return 1.0
	}
	return 1/math.Sin(math.Pi/float64(k)) + 1
}

// ComputeScales assigns one cascaded scale factor per depth of t.
//
// # Algorithm
//
// Let D be the deepest level. Level D gets 1.0 since nothing below it needs
// room. Each level d < D gets [RadialFactor] of the largest child count among
// its nodes. Walking from D-1 up to 1, each level's factor is multiplied by
// the already cascaded factor of the level below, so scales never decrease
// toward the root.
//
// ComputeScales requires [AssignDepths] to have run (Depth() >= 1) and returns
// an INVALID_DEPTH error otherwise. Dangling child handles are ignored when
// counting; a corrupted store aborts with its error.
func ComputeScales(t *Tree) error {
	t.mu.RLock()
	depth := t.depth
	groups := make(map[int][]node.Ref, len(t.byDepth))
	for d, refs := range t.byDepth {
		groups[d] = refs
	}
	t.mu.RUnlock()

	if depth < 1 {
		return apperrors.New(apperrors.ErrCodeInvalidDepth, "tree %q has no depth levels", t.name)
	}

	scales := make(map[int]float64, depth)
	scales[depth] = 1.0
	for d := 1; d < depth; d++ {
		k, err := t.maxChildren(groups[d])
		if err != nil {
			return err
		}
		scales[d] = RadialFactor(k)
	}
	for d := depth - 1; d >= 1; d-- {
		scales[d] *= scales[d+1]
	}

	t.mu.Lock()
	t.scales = scales
	t.mu.Unlock()
	return nil
}

func (t *Tree) maxChildren(refs []node.Ref) (int, error) {
	k := 0
	for _, ref := range refs {
		children, err := t.store.Children(ref)
		if err != nil {
			if apperrors.Fatal(err) {
				return 0, err
			}
			t.logger.Warn("skipping dangling reference", "tree", t.name, "id", ref.ID(), "err", err)
			continue
		}
		k = max(k, len(children))
	}
	return k, nil
}
