package cache

// Keyer derives cache keys under a fixed namespace prefix, so several
// deployments can share one Redis database.
type Keyer struct {
	prefix string
}

// NewKeyer creates a keyer that prepends prefix to every key.
func NewKeyer(prefix string) Keyer {
	return Keyer{prefix: prefix}
}

// LayoutKey identifies the layout of one build of a tree. A rebuilt tree has
// a new build id and therefore a new key, so stale layouts are never served.
func (k Keyer) LayoutKey(tree, buildID string, baseScale, baseGap float64) string {
	return k.prefix + hashKey("layout", tree, buildID, baseScale, baseGap)
}
