// Package nodelink draws a tree as a node-link diagram using Graphviz.
//
// Nodes appear as rounded boxes labeled with their display name and are
// ranked by depth, so each DOT rank matches one depth group.
//
//	dot, err := nodelink.ToDOT(t, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] output can also be saved and processed with external Graphviz
// tools. [RenderSVG] renders in process via [github.com/goccy/go-graphviz].
package nodelink
