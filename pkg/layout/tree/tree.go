// Package tree implements the layered tree strategy: company, clients and
// projects are handed to an external layered-graph [Solver] with fixed
// footprints, and the solved boxes are turned into a centered layout with
// orthogonal edge routes.
//
// The solver is asynchronous and may fail; a failed pass returns a coded
// error and no layout, and the caller keeps whatever it displayed before.
package tree

import (
	"context"
	"errors"
	"math"

	"github.com/matzehuels/crmmap/pkg/density"
	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/geom"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/layout"
)

// Strategy places a hierarchy through a Solver.
type Strategy struct {
	Solver  Solver
	Routing Routing // defaults to RoutingOrtho
}

// New returns a Strategy using s with orthogonal routing.
func New(s Solver) *Strategy {
	return &Strategy{Solver: s, Routing: RoutingOrtho}
}

// Place lays out h. Collapsed clients contribute no project nodes or edges.
//
// Errors:
//   - TIMEOUT when ctx expires before the solver returns
//   - SOLVER_FAILED when the solver reports an error
//   - SOLVER_INCOMPLETE when the solution lacks a position for any node
func (s *Strategy) Place(ctx context.Context, h *hierarchy.Hierarchy, collapsed layout.CollapsedSet, params layout.Params, policy density.Policy) (*layout.Layout, error) {
	if s == nil || s.Solver == nil {
		return nil, crmerrors.New(crmerrors.ErrCodeInternal, "tree strategy has no solver")
	}
	p := params.Normalize()
	out := BuildLayout(h, collapsed, policy)

	routing := s.Routing
	if routing == "" {
		routing = RoutingOrtho
	}
	g := Graph{Direction: p.Direction, Routing: routing}
	for _, n := range out.Nodes {
		g.Nodes = append(g.Nodes, SizedNode{ID: n.ID, Width: n.Width, Height: n.Height})
	}
	for _, e := range out.Edges {
		g.Edges = append(g.Edges, GraphEdge{ID: e.ID, Source: e.SourceID, Target: e.TargetID})
	}

	sol, err := s.Solver.Solve(ctx, g)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, crmerrors.Wrap(crmerrors.ErrCodeTimeout, err, "tree layout timed out")
		}
		return nil, crmerrors.Wrap(crmerrors.ErrCodeSolverFailed, err, "tree layout")
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, crmerrors.Wrap(crmerrors.ErrCodeTimeout, err, "tree layout timed out")
		}
		return nil, crmerrors.Wrap(crmerrors.ErrCodeSolverFailed, err, "tree layout cancelled")
	}
	if sol == nil {
		return nil, crmerrors.New(crmerrors.ErrCodeSolverIncomplete, "solver returned no solution")
	}

	for i := range out.Nodes {
		n := &out.Nodes[i]
		box, ok := sol.Boxes[n.ID]
		if !ok {
			return nil, crmerrors.New(crmerrors.ErrCodeSolverIncomplete, "solver returned no position for node %q", n.ID)
		}
		n.Position = box.Center()
	}

	company, _ := out.Company()
	offset := p.Center.Sub(company.Position)
	for i := range out.Nodes {
		out.Nodes[i].Position = out.Nodes[i].Position.Add(offset)
	}

	for i := range out.Edges {
		e := &out.Edges[i]
		route := translate(sol.Routes[e.ID], offset)
		if len(route) < 2 {
			src, _ := out.Node(e.SourceID)
			dst, _ := out.Node(e.TargetID)
			route = ElbowRoute(*src, *dst, p.Direction)
		}
		e.Route = Orthogonalize(route, p.Direction)
	}
	return out, nil
}

// BuildLayout creates the unpositioned node and edge set for h: one node per
// visible entity sized by policy, one edge per parent to child relation.
func BuildLayout(h *hierarchy.Hierarchy, collapsed layout.CollapsedSet, policy density.Policy) *layout.Layout {
	out := &layout.Layout{Strategy: layout.StrategyTree}
	out.Nodes = append(out.Nodes, sized(layout.NewNode(h.Company.ID, layout.CompanyData{Name: h.Company.Name}, geom.Point{}, 0, 0), policy))

	for _, b := range h.Branches {
		isCollapsed := collapsed.Has(b.Client.ID)
		out.Nodes = append(out.Nodes, sized(layout.NewNode(b.Client.ID, layout.ClientData{
			Name:         b.Client.Name,
			Status:       b.Client.Status,
			Collapsed:    isCollapsed,
			ProjectCount: len(b.Projects),
		}, geom.Point{}, 0, 0), policy))
		out.Edges = append(out.Edges, layout.NewEdge(h.Company.ID, b.Client.ID, layout.EdgeRootToClient))

		if isCollapsed {
			continue
		}
		for _, proj := range b.Projects {
			out.Nodes = append(out.Nodes, sized(layout.NewNode(proj.ID, layout.ProjectData{
				Name:       proj.Name,
				ClientID:   b.Client.ID,
				Status:     proj.Status,
				OwnerName:  proj.OwnerName,
				StageCount: proj.StageCount,
				TodoCount:  proj.TodoCount,
			}, geom.Point{}, 0, 0), policy))
			out.Edges = append(out.Edges, layout.NewEdge(b.Client.ID, proj.ID, layout.EdgeClientToProject))
		}
	}
	return out
}

func sized(n layout.Node, policy density.Policy) layout.Node {
	d := policy.Size(n.Kind)
	n.Width, n.Height = d.Width, d.Height
	n.LabelVisible = policy.LabelVisible(n.Kind)
	return n
}

func translate(route []geom.Point, offset geom.Point) []geom.Point {
	if len(route) == 0 {
		return nil
	}
	out := make([]geom.Point, len(route))
	for i, pt := range route {
		out[i] = pt.Add(offset)
	}
	return out
}

// ElbowRoute returns an orthogonal route from the exit side of src to the
// entry side of dst, bending halfway along the flow direction.
func ElbowRoute(src, dst layout.Node, dir layout.Direction) []geom.Point {
	if dir == layout.DirectionTB {
		start := geom.Pt(src.Position.X, src.Position.Y+src.Height/2)
		end := geom.Pt(dst.Position.X, dst.Position.Y-dst.Height/2)
		mid := (start.Y + end.Y) / 2
		return []geom.Point{start, geom.Pt(start.X, mid), geom.Pt(end.X, mid), end}
	}
	start := geom.Pt(src.Position.X+src.Width/2, src.Position.Y)
	end := geom.Pt(dst.Position.X-dst.Width/2, dst.Position.Y)
	mid := (start.X + end.X) / 2
	return []geom.Point{start, geom.Pt(mid, start.Y), geom.Pt(mid, end.Y), end}
}

const axisEps = 1e-6

// Orthogonalize inserts an elbow between consecutive points that share
// neither coordinate, so every segment is horizontal or vertical. LR routes
// leave each point horizontally; TB routes leave vertically. Duplicate
// consecutive points are dropped.
func Orthogonalize(route []geom.Point, dir layout.Direction) []geom.Point {
	if len(route) == 0 {
		return nil
	}
	out := []geom.Point{route[0]}
	for _, b := range route[1:] {
		a := out[len(out)-1]
		dx, dy := math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)
		if dx < axisEps && dy < axisEps {
			continue
		}
		if dx >= axisEps && dy >= axisEps {
			if dir == layout.DirectionTB {
				out = append(out, geom.Pt(a.X, b.Y))
			} else {
				out = append(out, geom.Pt(b.X, a.Y))
			}
		}
		out = append(out, b)
	}
	return out
}

// IsOrthogonal reports whether every segment of route is axis-aligned.
func IsOrthogonal(route []geom.Point) bool {
	for i := 1; i < len(route); i++ {
		a, b := route[i-1], route[i]
		if math.Abs(a.X-b.X) >= axisEps && math.Abs(a.Y-b.Y) >= axisEps {
			return false
		}
	}
	return true
}
