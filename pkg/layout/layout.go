// Package layout exports a built tree as a self-contained, serializable
// snapshot for renderers: every node with its path and depth, the depth
// groups in traversal order, and the scale of each level.
//
// Handles are flattened to plain ids, so a snapshot stays valid after the
// store it came from changes.
package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/matzehuels/godswood/pkg/errors"
	"github.com/matzehuels/godswood/pkg/node"
	"github.com/matzehuels/godswood/pkg/tree"
)

// Layout is the snapshot of one tree build.
type Layout struct {
	Tree      string  `json:"tree" yaml:"tree"`
	BuildID   string  `json:"build_id" yaml:"build_id"`
	BaseScale float64 `json:"base_scale" yaml:"base_scale"`
	BaseGap   float64 `json:"base_gap" yaml:"base_gap"`
	Depth     int     `json:"depth" yaml:"depth"`
	Skipped   int     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Levels    []Level `json:"levels" yaml:"levels"`
	Nodes     []Node  `json:"nodes" yaml:"nodes"`
}

// Level is one depth ring.
type Level struct {
	Depth int      `json:"depth" yaml:"depth"`
	Scale float64  `json:"scale" yaml:"scale"`
	Nodes []uint64 `json:"nodes" yaml:"nodes"`
}

// Node is a flattened tree node.
type Node struct {
	ID          uint64   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Kind        string   `json:"kind" yaml:"kind"`
	Service     string   `json:"service" yaml:"service"`
	Path        string   `json:"path" yaml:"path"`
	Depth       int      `json:"depth" yaml:"depth"`
	Children    []uint64 `json:"children,omitempty" yaml:"children,omitempty"`
}

// Export snapshots t. Depths and scales must already be computed.
func Export(t *tree.Tree) (Layout, error) {
	depths := t.Depths()
	if len(depths) == 0 {
		return Layout{}, apperrors.New(apperrors.ErrCodeInvalidDepth, "tree %q has no depth groups", t.Name())
	}

	l := Layout{
		Tree:      t.Name(),
		BuildID:   t.BuildID().String(),
		BaseScale: t.BaseScale(),
		BaseGap:   t.BaseGap(),
		Depth:     t.Depth(),
		Skipped:   t.Skipped(),
		Levels:    make([]Level, 0, len(depths)),
		Nodes:     make([]Node, 0, t.NodeCount()),
	}

	grouped := make(map[node.Ref]bool, t.NodeCount())
	var snapshots []node.Node
	for _, d := range depths {
		scale, ok := t.Scale(d)
		if !ok {
			return Layout{}, apperrors.New(apperrors.ErrCodeInvalidDepth, "tree %q has no scale for depth %d", t.Name(), d)
		}
		refs := t.NodesAtDepth(d)
		level := Level{Depth: d, Scale: scale, Nodes: make([]uint64, 0, len(refs))}
		for _, ref := range refs {
			n, err := t.Node(ref)
			if err != nil {
				return Layout{}, err
			}
			grouped[ref] = true
			snapshots = append(snapshots, n)
			level.Nodes = append(level.Nodes, ref.ID())
		}
		l.Levels = append(l.Levels, level)
	}

	for _, n := range snapshots {
		p, _ := n.Path(t.Name())
		out := Node{
			ID:          n.ID,
			Name:        n.Name,
			DisplayName: n.DisplayName,
			Kind:        n.Kind.String(),
			Service:     n.Service.String(),
			Path:        p.String(),
			Depth:       p.Depth(),
		}
		for _, c := range n.Children {
			if grouped[c] {
				out.Children = append(out.Children, c.ID())
			}
		}
		l.Nodes = append(l.Nodes, out)
	}
	return l, nil
}

// Level returns the ring at depth d.
func (l Layout) Level(d int) (Level, bool) {
	i := slices.IndexFunc(l.Levels, func(lv Level) bool { return lv.Depth == d })
	if i < 0 {
		return Level{}, false
	}
	return l.Levels[i], true
}

// Format selects an encoding for [Layout.Encode].
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", apperrors.New(apperrors.ErrCodeUnsupported, "unsupported layout format %q (use json or yaml)", s)
}

// Encode writes l to w in the given format.
func (l Layout) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("encode layout: unknown format %q", format)
}
