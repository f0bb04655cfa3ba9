package node

import "strings"

// PathSeparator separates segments of a materialized path.
const PathSeparator = "."

// Path is a materialized ancestor chain plus its depth.
//
// The zero value is the unset path: an empty string at depth 0.
type Path struct {
	path  string
	depth int
}

// RootPath returns the path of a tree's root node: "." + name at depth 1.
func RootPath(name string) Path {
	return Path{}.Append(name)
}

// Append returns a copy of p extended by one segment.
func (p Path) Append(name string) Path {
	return Path{
		path:  p.path + PathSeparator + name,
		depth: p.depth + 1,
	}
}

// String returns the dotted form, e.g. ".app1.node2".
func (p Path) String() string { return p.path }

// Depth returns the number of segments.
func (p Path) Depth() int { return p.depth }

// IsZero reports whether the path is unset.
func (p Path) IsZero() bool { return p.depth == 0 && p.path == "" }

// ParseAppName returns the root app name of a materialized path.
// It reports false when path does not start with the separator or its first
// segment is empty.
func ParseAppName(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, PathSeparator)
	if !ok {
		return "", false
	}
	name, _, _ := strings.Cut(rest, PathSeparator)
	if name == "" {
		return "", false
	}
	return name, true
}
