// Package nodelink connects the layout engine to Graphviz.
//
// It serves two roles:
//
//   - [Solver] implements [tree.Solver] on the dot engine. The solver graph
//     is written as DOT with fixed node sizes and orthogonal splines, run
//     through Graphviz in plain output mode, and parsed back into top-left
//     anchored boxes and edge routes in pixel space.
//   - [RenderLayout] draws an already computed layout as SVG, pinning every
//     node at its position with the neato engine. Only visible edges are
//     drawn, colored by the style keys the visibility rules assigned.
//
// # Usage
//
//	strategy := tree.New(nodelink.NewSolver(logger))
//	l, err := strategy.Place(ctx, h, collapsed, params, policy)
//
//	svg, err := nodelink.RenderLayout(ctx, l, nodelink.Options{})
//
// For PDF or PNG output, use [RenderPDF] and [RenderPNG].
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process layout and
// SVG rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
