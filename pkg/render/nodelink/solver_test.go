package nodelink

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/matzehuels/crmmap/pkg/density"
	"github.com/matzehuels/crmmap/pkg/geom"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/layout"
	"github.com/matzehuels/crmmap/pkg/layout/tree"
)

const plainSample = `graph 1 5 2
node n0 1.1111 1 2.2222 0.8889 "" solid box black lightgrey
node n1 4 1.5 1.6667 0.6667 "" solid box black lightgrey
node n2 4 0.5 1.3333 0.5 "" solid box black lightgrey
edge n0 n1 4 2.2222 1 3 1 3 1.5 3.1667 1.5 solid black
edge n1 n2 2 4 1.1667 4 0.75 solid black
edge n0 n9 2 0 0 1 1 solid black
stop
`

func TestParsePlain(t *testing.T) {
	g := sampleGraph()
	sol, err := ParsePlain([]byte(plainSample), g)
	if err != nil {
		t.Fatalf("ParsePlain: %v", err)
	}
	if len(sol.Boxes) != 3 {
		t.Fatalf("boxes = %d, want 3", len(sol.Boxes))
	}

	co := sol.Boxes["co"]
	// center (1.1111in, 2-1in) -> (80px, 72px); size 160x64
	if !near(co.Width, 160) || !near(co.Height, 64) {
		t.Errorf("co size = %vx%v", co.Width, co.Height)
	}
	if c := co.Center(); !near(c.X, 80) || !near(c.Y, 72) {
		t.Errorf("co center = %+v", c)
	}
	if !near(co.X, 0) || !near(co.Y, 40) {
		t.Errorf("co top-left = (%v, %v), want (0, 40)", co.X, co.Y)
	}

	client := sol.Boxes[`client "A"`]
	if c := client.Center(); !near(c.X, 288) || !near(c.Y, 36) {
		t.Errorf("client center = %+v", c)
	}

	route := sol.Routes[`co->client "A"`]
	if len(route) != 4 {
		t.Fatalf("route = %v", route)
	}
	if !near(route[0].X, 160) || !near(route[0].Y, 72) || !near(route[3].Y, 36) {
		t.Errorf("route = %v", route)
	}
	if len(sol.Routes) != 2 {
		t.Errorf("routes = %d, want 2", len(sol.Routes))
	}
}

func TestParsePlain_Errors(t *testing.T) {
	g := sampleGraph()
	for name, in := range map[string]string{
		"short graph": "graph 1 2\n",
		"bad height":  "graph 1 2 x\n",
		"short node":  "graph 1 5 2\nnode n0 1 1\n",
		"bad float":   "graph 1 5 2\nnode n0 a 1 2 2\n",
		"bad count":   "graph 1 5 2\nedge n0 n1 9 1 1\n",
	} {
		if _, err := ParsePlain([]byte(in), g); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSolve(t *testing.T) {
	g := tree.Graph{
		Nodes: []tree.SizedNode{
			{ID: "co", Width: 160, Height: 64},
			{ID: "c1", Width: 120, Height: 48},
			{ID: "c2", Width: 120, Height: 48},
			{ID: "p1", Width: 96, Height: 36},
		},
		Edges: []tree.GraphEdge{
			{ID: layout.EdgeID("co", "c1"), Source: "co", Target: "c1"},
			{ID: layout.EdgeID("co", "c2"), Source: "co", Target: "c2"},
			{ID: layout.EdgeID("c1", "p1"), Source: "c1", Target: "p1"},
		},
		Direction: layout.DirectionLR,
		Routing:   tree.RoutingOrtho,
	}

	sol, err := NewSolver(nil).Solve(context.Background(), g)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for _, n := range g.Nodes {
		if _, ok := sol.Boxes[n.ID]; !ok {
			t.Fatalf("no box for %s", n.ID)
		}
	}
	x := func(id string) float64 { return sol.Boxes[id].Center().X }
	if !(x("co") < x("c1") && x("c1") < x("p1")) {
		t.Errorf("layers not left to right: co=%v c1=%v p1=%v", x("co"), x("c1"), x("p1"))
	}
	if !near(sol.Boxes["p1"].Width, 96) {
		t.Errorf("p1 width = %v, want 96", sol.Boxes["p1"].Width)
	}
}

func TestSolve_Empty(t *testing.T) {
	sol, err := NewSolver(nil).Solve(context.Background(), tree.Graph{})
	if err != nil || len(sol.Boxes) != 0 {
		t.Errorf("Solve(empty) = %+v, %v", sol, err)
	}
}

func TestSolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := tree.Graph{Nodes: []tree.SizedNode{{ID: "co", Width: 10, Height: 10}}}
	if _, err := NewSolver(nil).Solve(ctx, g); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestStrategyWithGraphviz(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := tree.New(NewSolver(nil))
	h := mustHierarchy(t)
	p := layout.DefaultParams()
	p.Center = geom.Pt(10, 10)
	l, err := s.Place(ctx, h, nil, p, testPolicy)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	co, _ := l.Company()
	if co.Position != p.Center {
		t.Errorf("company at %+v", co.Position)
	}
	for _, e := range l.Edges {
		if !tree.IsOrthogonal(e.Route) {
			t.Errorf("edge %s not orthogonal: %v", e.ID, e.Route)
		}
	}
}

var testPolicy = density.Policy{Mode: density.Overview, Zoom: 1}

func mustHierarchy(t *testing.T) *hierarchy.Hierarchy {
	t.Helper()
	h, err := hierarchy.Build(hierarchy.Tree{
		Company: hierarchy.Company{ID: "co", Name: "Northwind"},
		Clients: []hierarchy.Client{{ID: "c1", Name: "Acme"}, {ID: "c2", Name: "Globex"}},
		Projects: []hierarchy.Project{
			{ID: "p1", Name: "Website", ClientID: "c1"},
			{ID: "p2", Name: "ERP", ClientID: "c2"},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return h
}

func near(a, b float64) bool { return math.Abs(a-b) < 0.01 }
