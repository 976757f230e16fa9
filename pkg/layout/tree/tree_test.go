package tree

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/matzehuels/crmmap/pkg/density"
	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/geom"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/layout"
)

var policy = density.Policy{Mode: density.Overview, Zoom: 1}

func sampleHierarchy(t *testing.T) *hierarchy.Hierarchy {
	t.Helper()
	h, err := hierarchy.Build(hierarchy.Tree{
		Company: hierarchy.Company{ID: "co", Name: "Northwind"},
		Clients: []hierarchy.Client{
			{ID: "c1", Name: "Acme"},
			{ID: "c2", Name: "Globex"},
		},
		Projects: []hierarchy.Project{
			{ID: "p1", Name: "Website", ClientID: "c1"},
			{ID: "p2", Name: "CRM", ClientID: "c1"},
			{ID: "p3", Name: "ERP", ClientID: "c2"},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return h
}

// gridSolver places nodes in columns by depth (company, clients, projects),
// top-left anchored, and returns no routes.
func gridSolver(calls *int) Solver {
	return SolverFunc(func(_ context.Context, g Graph) (*Solution, error) {
		if calls != nil {
			*calls++
		}
		depth := map[string]int{}
		for _, e := range g.Edges {
			depth[e.Target] = depth[e.Source] + 1
		}
		rows := map[int]int{}
		sol := &Solution{Boxes: map[string]Box{}}
		for _, n := range g.Nodes {
			d := depth[n.ID]
			sol.Boxes[n.ID] = Box{X: float64(d) * 300, Y: float64(rows[d]) * 100, Width: n.Width, Height: n.Height}
			rows[d]++
		}
		return sol, nil
	})
}

func TestPlaceCentersCompany(t *testing.T) {
	p := layout.DefaultParams()
	p.Center = geom.Pt(400, 250)
	l, err := New(gridSolver(nil)).Place(context.Background(), sampleHierarchy(t), nil, p, policy)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	co, _ := l.Company()
	if co.Position != p.Center {
		t.Errorf("company at %+v, want %+v", co.Position, p.Center)
	}
	if l.Strategy != layout.StrategyTree {
		t.Errorf("strategy = %q", l.Strategy)
	}

	// Top-left anchors are converted to centers before translation.
	c1, _ := l.Node("c1")
	wantX := p.Center.X + (300 + c1.Width/2) - 160.0/2
	if math.Abs(c1.Position.X-wantX) > 1e-9 {
		t.Errorf("c1.X = %v, want %v", c1.Position.X, wantX)
	}
}

func TestPlaceSizesAndEdges(t *testing.T) {
	l, err := New(gridSolver(nil)).Place(context.Background(), sampleHierarchy(t), nil, layout.DefaultParams(), policy)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if len(l.Nodes) != 6 || len(l.Edges) != 5 {
		t.Fatalf("got %d nodes / %d edges, want 6 / 5", len(l.Nodes), len(l.Edges))
	}
	for _, n := range l.Nodes {
		want := density.Size(n.Kind, density.Overview)
		if n.Width != want.Width || n.Height != want.Height {
			t.Errorf("%s size %vx%v, want %+v", n.ID, n.Width, n.Height, want)
		}
	}
	for _, e := range l.Edges {
		if len(e.Route) < 2 {
			t.Errorf("edge %s has no route", e.ID)
		}
		if !IsOrthogonal(e.Route) {
			t.Errorf("edge %s route not orthogonal: %v", e.ID, e.Route)
		}
	}
}

func TestPlaceCollapsed(t *testing.T) {
	l, err := New(gridSolver(nil)).Place(context.Background(), sampleHierarchy(t), layout.NewCollapsedSet("c1"), layout.DefaultParams(), policy)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if _, ok := l.Node("p1"); ok {
		t.Error("collapsed client's project p1 still placed")
	}
	if _, ok := l.Node("p3"); !ok {
		t.Error("p3 missing")
	}
	if len(l.Edges) != 3 {
		t.Errorf("edges = %d, want 3", len(l.Edges))
	}
}

func TestPlaceSolverRoutes(t *testing.T) {
	solver := SolverFunc(func(ctx context.Context, g Graph) (*Solution, error) {
		if g.Routing != RoutingOrtho {
			t.Errorf("routing = %q, want ortho", g.Routing)
		}
		sol, _ := gridSolver(nil).Solve(ctx, g)
		sol.Routes = map[string][]geom.Point{
			layout.EdgeID("co", "c1"): {geom.Pt(160, 32), geom.Pt(300, 24)},
		}
		return sol, nil
	})
	p := layout.DefaultParams()
	l, err := New(solver).Place(context.Background(), sampleHierarchy(t), nil, p, policy)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	for _, e := range l.Edges {
		if e.ID != layout.EdgeID("co", "c1") {
			continue
		}
		// company center in solver space is (80, 32); translated by -80, -32.
		want := []geom.Point{geom.Pt(80, 0), geom.Pt(220, 0), geom.Pt(220, -8)}
		if len(e.Route) != len(want) {
			t.Fatalf("route = %v, want %v", e.Route, want)
		}
		for i := range want {
			if e.Route[i] != want[i] {
				t.Errorf("route[%d] = %v, want %v", i, e.Route[i], want[i])
			}
		}
	}
}

func TestPlaceErrors(t *testing.T) {
	h := sampleHierarchy(t)
	p := layout.DefaultParams()

	t.Run("solver failure", func(t *testing.T) {
		s := New(SolverFunc(func(context.Context, Graph) (*Solution, error) {
			return nil, errors.New("boom")
		}))
		_, err := s.Place(context.Background(), h, nil, p, policy)
		if !crmerrors.Is(err, crmerrors.ErrCodeSolverFailed) {
			t.Errorf("err = %v, want SOLVER_FAILED", err)
		}
	})

	t.Run("missing node", func(t *testing.T) {
		s := New(SolverFunc(func(ctx context.Context, g Graph) (*Solution, error) {
			sol, _ := gridSolver(nil).Solve(ctx, g)
			delete(sol.Boxes, "p2")
			return sol, nil
		}))
		_, err := s.Place(context.Background(), h, nil, p, policy)
		if !crmerrors.Is(err, crmerrors.ErrCodeSolverIncomplete) {
			t.Errorf("err = %v, want SOLVER_INCOMPLETE", err)
		}
	})

	t.Run("nil solution", func(t *testing.T) {
		s := New(SolverFunc(func(context.Context, Graph) (*Solution, error) { return nil, nil }))
		_, err := s.Place(context.Background(), h, nil, p, policy)
		if !crmerrors.Is(err, crmerrors.ErrCodeSolverIncomplete) {
			t.Errorf("err = %v, want SOLVER_INCOMPLETE", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		s := New(SolverFunc(func(ctx context.Context, _ Graph) (*Solution, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := s.Place(ctx, h, nil, p, policy)
		if !crmerrors.Is(err, crmerrors.ErrCodeTimeout) {
			t.Errorf("err = %v, want TIMEOUT", err)
		}
	})

	t.Run("no solver", func(t *testing.T) {
		_, err := (&Strategy{}).Place(context.Background(), h, nil, p, policy)
		if !crmerrors.Is(err, crmerrors.ErrCodeInternal) {
			t.Errorf("err = %v, want INTERNAL_ERROR", err)
		}
	})
}

func TestPlaceTopToBottom(t *testing.T) {
	var got layout.Direction
	s := New(SolverFunc(func(ctx context.Context, g Graph) (*Solution, error) {
		got = g.Direction
		return gridSolver(nil).Solve(ctx, g)
	}))
	p := layout.DefaultParams()
	p.Direction = layout.DirectionTB
	l, err := s.Place(context.Background(), sampleHierarchy(t), nil, p, policy)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if got != layout.DirectionTB {
		t.Errorf("direction = %q, want TB", got)
	}
	for _, e := range l.Edges {
		if !IsOrthogonal(e.Route) {
			t.Errorf("edge %s not orthogonal", e.ID)
		}
	}
}

func TestOrthogonalize(t *testing.T) {
	tests := []struct {
		name  string
		route []geom.Point
		dir   layout.Direction
		want  []geom.Point
	}{
		{"empty", nil, layout.DirectionLR, nil},
		{"already straight", []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, layout.DirectionLR, []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}},
		{"diagonal LR", []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 5}}, layout.DirectionLR, []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}}},
		{"diagonal TB", []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 5}}, layout.DirectionTB, []geom.Point{{X: 0, Y: 0}, {X: 0, Y: 5}, {X: 10, Y: 5}}},
		{"duplicates", []geom.Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 4}}, layout.DirectionLR, []geom.Point{{X: 0, Y: 0}, {X: 0, Y: 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Orthogonalize(tt.route, tt.dir)
			if len(got) != len(tt.want) {
				t.Fatalf("Orthogonalize() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("point %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestElbowRoute(t *testing.T) {
	src := layout.NewNode("a", layout.ClientData{}, geom.Pt(0, 0), 100, 40)
	dst := layout.NewNode("b", layout.ProjectData{}, geom.Pt(300, 100), 80, 30)
	r := ElbowRoute(src, dst, layout.DirectionLR)
	if r[0] != geom.Pt(50, 0) || r[len(r)-1] != geom.Pt(260, 100) {
		t.Errorf("LR endpoints = %v", r)
	}
	if !IsOrthogonal(r) {
		t.Errorf("LR route not orthogonal: %v", r)
	}
	r = ElbowRoute(src, dst, layout.DirectionTB)
	if r[0] != geom.Pt(0, 20) || r[len(r)-1] != geom.Pt(300, 85) {
		t.Errorf("TB endpoints = %v", r)
	}
}
