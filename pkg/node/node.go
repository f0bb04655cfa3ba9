package node

import (
	"fmt"
	"maps"
	"slices"
)

// Default field values applied when an input object omits them.
const (
	DefaultAppName     = "new_application"
	DefaultDisplayName = "new node"
)

// Ref is a non-owning handle to a node in a [Store].
// The zero Ref never refers to a node.
type Ref uint64

// ID returns the numeric node id behind the handle.
func (r Ref) ID() uint64 { return uint64(r) }

// IsZero reports whether r is the unset handle.
func (r Ref) IsZero() bool { return r == 0 }

// Kind tags a node's role in its tree.
type Kind int

const (
	// KindNode is an ordinary interior or childless node.
	KindNode Kind = iota
	// KindRoot is the entry point of a tree.
	KindRoot
	// KindLeaf is a node explicitly created without expecting children.
	KindLeaf
)

var kindNames = map[Kind]string{
	KindNode: "node",
	KindRoot: "root",
	KindLeaf: "leaf",
}

// String returns "node", "root" or "leaf".
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ServiceType classifies what a node represents.
type ServiceType int

const (
	// ServiceGeneral is the default classification.
	ServiceGeneral ServiceType = iota
)

// String returns the service type name.
func (s ServiceType) String() string {
	if s == ServiceGeneral {
		return "general"
	}
	return fmt.Sprintf("service(%d)", int(s))
}

// Fields carries the optional attributes read from an input object.
// Empty strings mean the attribute was absent.
type Fields struct {
	Name        string
	DisplayName string
}

// Node is a graph vertex owned by a [Store].
//
// Values returned by the store are deep copies; modifying them does not
// affect the stored node.
type Node struct {
	ID          uint64
	Name        string
	DisplayName string
	Kind        Kind
	Service     ServiceType

	// Parents and Children hold links in the order they were made.
	Parents  []Ref
	Children []Ref

	// Paths maps a root app name to this node's path in that tree.
	Paths map[string]Path
}

// Ref returns a handle to the node.
func (n Node) Ref() Ref { return Ref(n.ID) }

// IsRoot reports whether the node is a tree entry point.
func (n Node) IsRoot() bool { return n.Kind == KindRoot }

// IsLeaf reports whether the node was created as a leaf.
func (n Node) IsLeaf() bool { return n.Kind == KindLeaf }

// Path returns the node's path in the tree rooted at root.
func (n Node) Path(root string) (Path, bool) {
	p, ok := n.Paths[root]
	return p, ok
}

func (n *Node) clone() Node {
	c := *n
	c.Parents = slices.Clone(n.Parents)
	c.Children = slices.Clone(n.Children)
	c.Paths = maps.Clone(n.Paths)
	if c.Paths == nil {
		c.Paths = make(map[string]Path)
	}
	return c
}
