package tree

import (
	"context"

	"github.com/matzehuels/crmmap/pkg/geom"
	"github.com/matzehuels/crmmap/pkg/layout"
)

// Routing selects how the solver draws edges.
type Routing string

const (
	RoutingOrtho    Routing = "ortho"
	RoutingPolyline Routing = "polyline"
)

// SizedNode is a node handed to the solver with its fixed footprint.
type SizedNode struct {
	ID     string
	Width  float64
	Height float64
}

// GraphEdge is a parent to child edge handed to the solver.
type GraphEdge struct {
	ID     string
	Source string
	Target string
}

// Graph is the solver input.
type Graph struct {
	Nodes     []SizedNode
	Edges     []GraphEdge
	Direction layout.Direction
	Routing   Routing
}

// Box is a solved node rectangle. X and Y are the top-left corner, in the
// solver's own coordinate space (y grows downward).
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the center of b.
func (b Box) Center() geom.Point {
	return geom.Pt(b.X+b.Width/2, b.Y+b.Height/2)
}

// Solution is what a solver returns. Routes is keyed by edge id and may be
// empty; missing routes are synthesized by the strategy.
type Solution struct {
	Boxes  map[string]Box
	Routes map[string][]geom.Point
}

// Solver computes a layered layout. Implementations must honor ctx.
type Solver interface {
	Solve(ctx context.Context, g Graph) (*Solution, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, g Graph) (*Solution, error)

// Solve calls f(ctx, g).
func (f SolverFunc) Solve(ctx context.Context, g Graph) (*Solution, error) { return f(ctx, g) }
