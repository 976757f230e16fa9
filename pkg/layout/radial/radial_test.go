package radial

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/crmmap/pkg/density"
	"github.com/matzehuels/crmmap/pkg/geom"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/layout"
)

const eps = 1e-9

var policy = density.Policy{Mode: density.Overview, Zoom: 1}

// buildHierarchy creates n clients; client i gets counts[i] projects.
func buildHierarchy(t *testing.T, counts ...int) *hierarchy.Hierarchy {
	t.Helper()
	tree := hierarchy.Tree{Company: hierarchy.Company{ID: "co", Name: "Northwind"}}
	for i, c := range counts {
		cid := fmt.Sprintf("c%d", i)
		tree.Clients = append(tree.Clients, hierarchy.Client{ID: cid, Name: cid})
		for j := 0; j < c; j++ {
			tree.Projects = append(tree.Projects, hierarchy.Project{
				ID:       fmt.Sprintf("%s-p%d", cid, j),
				Name:     fmt.Sprintf("project %d", j),
				ClientID: cid,
			})
		}
	}
	h, err := hierarchy.Build(tree)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return h
}

func params() layout.Params {
	return layout.Params{
		RadiusClient: 300,
		RingGap:      100,
		ProjectGap:   80,
		ArcSpread:    40,
		MaxPerRing:   4,
		Center:       geom.Pt(50, -20),
	}
}

func mustNode(t *testing.T, l *layout.Layout, id string) *layout.Node {
	t.Helper()
	n, ok := l.Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	return n
}

func TestClientsOnCircle(t *testing.T) {
	for n := 1; n <= 9; n++ {
		counts := make([]int, n)
		p := params()
		l := Place(buildHierarchy(t, counts...), nil, p, policy)

		company := mustNode(t, l, "co")
		if company.Position != p.Center {
			t.Fatalf("n=%d: company at %+v, want %+v", n, company.Position, p.Center)
		}
		for i := 0; i < n; i++ {
			c := mustNode(t, l, fmt.Sprintf("c%d", i))
			polar := geom.CartesianToPolar(c.Position, p.Center)
			if math.Abs(polar.Radius-p.RadiusClient) > eps {
				t.Errorf("n=%d client %d radius = %v, want %v", n, i, polar.Radius, p.RadiusClient)
			}
			want := float64(i) * 2 * math.Pi / float64(n)
			if math.Abs(polar.Angle-want) > 1e-6 {
				t.Errorf("n=%d client %d angle = %v, want %v", n, i, polar.Angle, want)
			}
		}
	}
}

func TestNoClients(t *testing.T) {
	l := Place(buildHierarchy(t), nil, params(), policy)
	if len(l.Nodes) != 1 || !l.Nodes[0].IsCompany() {
		t.Fatalf("expected only the company node, got %d nodes", len(l.Nodes))
	}
	if len(l.Edges) != 0 {
		t.Errorf("expected no edges, got %d", len(l.Edges))
	}
}

func TestClientWithoutProjects(t *testing.T) {
	l := Place(buildHierarchy(t, 0, 2), nil, params(), policy)
	var c0Edges int
	for _, e := range l.Edges {
		if e.Touches("c0") {
			c0Edges++
			if e.Kind != layout.EdgeRootToClient {
				t.Errorf("unexpected edge %s for empty client", e.ID)
			}
		}
	}
	if c0Edges != 1 {
		t.Errorf("empty client has %d edges, want 1", c0Edges)
	}
}

func TestCollapseRemovesOnlyOwnProjects(t *testing.T) {
	h := buildHierarchy(t, 3, 2, 1)
	full := Place(h, nil, params(), policy)
	collapsed := Place(h, layout.NewCollapsedSet("c0"), params(), policy)

	if got, want := len(full.Nodes)-len(collapsed.Nodes), 3; got != want {
		t.Errorf("collapsing removed %d nodes, want %d", got, want)
	}
	if got, want := len(full.Edges)-len(collapsed.Edges), 3; got != want {
		t.Errorf("collapsing removed %d edges, want %d", got, want)
	}

	c0 := mustNode(t, collapsed, "c0")
	if d, _ := c0.Client(); !d.Collapsed || d.ProjectCount != 3 {
		t.Errorf("collapsed client payload = %+v", d)
	}
	for _, e := range collapsed.Edges {
		if e.SourceID == "c0" {
			t.Errorf("collapsed client still has edge %s", e.ID)
		}
	}
	found := false
	for _, e := range collapsed.Edges {
		if e.ID == layout.EdgeID("co", "c0") {
			found = true
		}
	}
	if !found {
		t.Error("collapsed client lost its company edge")
	}

	// Unrelated clients do not move.
	for _, id := range []string{"c1", "c2", "c1-p0", "c2-p0"} {
		if mustNode(t, full, id).Position != mustNode(t, collapsed, id).Position {
			t.Errorf("%s moved after collapsing c0", id)
		}
	}
}

func TestRingOverflow(t *testing.T) {
	// 3 clients, client 0 has 5 projects, 4 per ring.
	p := params()
	l := Place(buildHierarchy(t, 5, 1, 0), nil, p, policy)
	spoke := 0.0

	var ring0, ring1 []geom.Polar
	for j := 0; j < 5; j++ {
		n := mustNode(t, l, fmt.Sprintf("c0-p%d", j))
		d, _ := n.Project()
		polar := geom.CartesianToPolar(n.Position, p.Center)
		switch d.Ring {
		case 0:
			ring0 = append(ring0, polar)
			if math.Abs(polar.Radius-p.RingRadius(0)) > eps {
				t.Errorf("ring 0 radius = %v, want %v", polar.Radius, p.RingRadius(0))
			}
		case 1:
			ring1 = append(ring1, polar)
			if math.Abs(polar.Radius-p.RingRadius(1)) > eps {
				t.Errorf("ring 1 radius = %v, want %v", polar.Radius, p.RingRadius(1))
			}
		default:
			t.Errorf("unexpected ring %d", d.Ring)
		}
	}
	if len(ring0) != 4 || len(ring1) != 1 {
		t.Fatalf("ring sizes = %d/%d, want 4/1", len(ring0), len(ring1))
	}

	// Ring 1 holds one project exactly on the spoke.
	if a := signed(ring1[0].Angle); math.Abs(a-spoke) > 1e-6 {
		t.Errorf("single project angle = %v, want spoke %v", a, spoke)
	}

	// Ring 0 fans evenly across the spread, centered on the spoke.
	spread := p.Spread()
	var sum float64
	for j, polar := range ring0 {
		want := spoke - spread/2 + float64(j)*spread/3
		if a := signed(polar.Angle); math.Abs(a-want) > 1e-6 {
			t.Errorf("ring 0 project %d angle = %v, want %v", j, a, want)
		}
		sum += signed(polar.Angle)
	}
	if math.Abs(sum/4-spoke) > 1e-6 {
		t.Errorf("ring 0 not centered on spoke: mean %v", sum/4)
	}
}

func TestArcSpreadCapped(t *testing.T) {
	p := params()
	p.ArcSpread = 170
	p.MaxPerRing = 2
	l := Place(buildHierarchy(t, 2), nil, p, policy)
	a := geom.CartesianToPolar(mustNode(t, l, "c0-p0").Position, p.Center).Angle
	b := geom.CartesianToPolar(mustNode(t, l, "c0-p1").Position, p.Center).Angle
	if got := math.Abs(signed(a) - signed(b)); math.Abs(got-math.Pi/3) > 1e-6 {
		t.Errorf("spread = %v rad, want π/3", got)
	}
}

func TestMaxPerRingGuard(t *testing.T) {
	p := params()
	p.MaxPerRing = 0
	l := Place(buildHierarchy(t, 3), nil, p, policy)
	for j := 0; j < 3; j++ {
		d, _ := mustNode(t, l, fmt.Sprintf("c0-p%d", j)).Project()
		if d.Ring != j {
			t.Errorf("project %d ring = %d, want %d", j, d.Ring, j)
		}
	}
}

func TestProjectsInside(t *testing.T) {
	p := params()
	p.SetOutside(false)
	h := buildHierarchy(t, 2, 0, 2)
	l := Place(h, layout.NewCollapsedSet(), p, policy)

	ids := []string{"c0-p0", "c0-p1", "c2-p0", "c2-p1"}
	for i, id := range ids {
		polar := geom.CartesianToPolar(mustNode(t, l, id).Position, p.Center)
		if math.Abs(polar.Radius-0.6*p.RadiusClient) > eps {
			t.Errorf("%s radius = %v, want %v", id, polar.Radius, 0.6*p.RadiusClient)
		}
		want := float64(i) * 2 * math.Pi / float64(len(ids))
		if math.Abs(polar.Angle-want) > 1e-6 {
			t.Errorf("%s angle = %v, want %v", id, polar.Angle, want)
		}
	}
	if got := l.CountKind(layout.KindProject); got != 4 {
		t.Errorf("project count = %d, want 4", got)
	}

	// Collapsing a client removes its projects from the shared ring.
	l = Place(h, layout.NewCollapsedSet("c0"), p, policy)
	if got := l.CountKind(layout.KindProject); got != 2 {
		t.Errorf("project count after collapse = %d, want 2", got)
	}
}

func TestDeterministic(t *testing.T) {
	h := buildHierarchy(t, 7, 0, 3, 12)
	a := Place(h, layout.NewCollapsedSet("c2"), params(), policy)
	b := Place(h, layout.NewCollapsedSet("c2"), params(), policy)
	if !reflect.DeepEqual(a, b) {
		t.Error("Place is not deterministic")
	}
}

func TestNodeSizesFromPolicy(t *testing.T) {
	details := density.Policy{Mode: density.Details, Zoom: 0.1}
	l := Place(buildHierarchy(t, 1), nil, params(), details)
	for _, n := range l.Nodes {
		want := density.Size(n.Kind, density.Details)
		if n.Width != want.Width || n.Height != want.Height {
			t.Errorf("%s size = %vx%v, want %+v", n.ID, n.Width, n.Height, want)
		}
		if n.LabelVisible {
			t.Errorf("%s label should be hidden at zoom 0.1", n.ID)
		}
	}
}

func TestRingAngles(t *testing.T) {
	if RingAngles(0, 1, 1) != nil {
		t.Error("RingAngles(0) should be nil")
	}
	if got := RingAngles(1, 2, 1); len(got) != 1 || got[0] != 2 {
		t.Errorf("RingAngles(1) = %v", got)
	}
	got := RingAngles(3, 0, 1)
	want := []float64{-0.5, 0, 0.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > eps {
			t.Errorf("RingAngles(3)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// signed maps an angle in [0, 2π) to (-π, π].
func signed(a float64) float64 {
	if a > math.Pi {
		return a - 2*math.Pi
	}
	return a
}
