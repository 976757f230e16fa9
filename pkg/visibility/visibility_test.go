package visibility

import (
	"testing"

	"github.com/matzehuels/crmmap/pkg/geom"
	"github.com/matzehuels/crmmap/pkg/layout"
)

var (
	rootEdge    = Endpoints{SourceID: "co", TargetID: "c1", Kind: layout.EdgeRootToClient}
	projectEdge = Endpoints{SourceID: "c1", TargetID: "p1", Kind: layout.EdgeClientToProject}
	otherEdge   = Endpoints{SourceID: "c2", TargetID: "p3", Kind: layout.EdgeClientToProject}
)

func zoom(z float64) *float64 { return &z }

func TestStateZoom(t *testing.T) {
	var s State
	if s.Zoom() != DefaultZoom {
		t.Errorf("unset Zoom() = %v, want %v", s.Zoom(), DefaultZoom)
	}
	s.SetZoom(0)
	if s.Zoom() != 0 {
		t.Errorf("Zoom() = %v after SetZoom(0)", s.Zoom())
	}
	if p := s.Policy(); p.LabelVisible(layout.KindCompany) {
		t.Error("zoom 0 should hide the company label")
	}

	copied := s
	copied.SetZoom(2)
	if s.Zoom() != 0 {
		t.Error("SetZoom on a copy changed the original")
	}
	if DefaultState().Zoom() != DefaultZoom {
		t.Errorf("DefaultState zoom = %v", DefaultState().Zoom())
	}
}

func TestParseConnectorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ConnectorMode
		wantErr bool
	}{
		{"", ConnectorNeighborhood, false},
		{"off", ConnectorOff, false},
		{"MINIMAL", ConnectorMinimal, false},
		{" all ", ConnectorAll, false},
		{"everything", "", true},
	}
	for _, tt := range tests {
		got, err := ParseConnectorMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseConnectorMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if ConnectorAll.Next() != ConnectorOff || ConnectorOff.Next() != ConnectorMinimal {
		t.Error("Next() does not cycle")
	}
}

func TestEdgeStyleRadial(t *testing.T) {
	tests := []struct {
		name  string
		edge  Endpoints
		state State
		want  Style
	}{
		{
			name:  "off hides root",
			edge:  rootEdge,
			state: State{ConnectorMode: ConnectorOff, HoveredID: "c1"},
			want:  Style{},
		},
		{
			name:  "minimal root",
			edge:  rootEdge,
			state: State{ConnectorMode: ConnectorMinimal},
			want:  Style{Visible: true, Opacity: RootOpacity, StrokeWidth: RootWidth, Color: ColorRoot},
		},
		{
			name:  "minimal hides project",
			edge:  projectEdge,
			state: State{ConnectorMode: ConnectorMinimal, HoveredID: "c1"},
			want:  Style{},
		},
		{
			name:  "neighborhood hides idle project",
			edge:  projectEdge,
			state: State{ConnectorMode: ConnectorNeighborhood},
			want:  Style{},
		},
		{
			name:  "neighborhood clicked client",
			edge:  projectEdge,
			state: State{ConnectorMode: ConnectorNeighborhood, ClickedID: "c1"},
			want:  Style{Visible: true, Opacity: NeighborhoodOpacity + BoostOpacity, StrokeWidth: NeighborhoodWidth + BoostWidth, Color: ColorHighlight},
		},
		{
			name:  "neighborhood hovered project does not reveal",
			edge:  projectEdge,
			state: State{ConnectorMode: ConnectorNeighborhood, HoveredID: "p1"},
			want:  Style{},
		},
		{
			name:  "all above threshold",
			edge:  projectEdge,
			state: State{ConnectorMode: ConnectorAll, ZoomLevel: zoom(1)},
			want:  Style{Visible: true, Opacity: AllProjectOpacity, StrokeWidth: AllProjectWidth, Color: ColorProject},
		},
		{
			name:  "all root above threshold",
			edge:  rootEdge,
			state: State{ConnectorMode: ConnectorAll, ZoomLevel: zoom(1)},
			want:  Style{Visible: true, Opacity: AllRootOpacity, StrokeWidth: AllRootWidth, Color: ColorRoot},
		},
		{
			name:  "all below threshold behaves like minimal",
			edge:  projectEdge,
			state: State{ConnectorMode: ConnectorAll, ZoomLevel: zoom(0.3)},
			want:  Style{},
		},
		{
			name:  "all below threshold keeps root",
			edge:  rootEdge,
			state: State{ConnectorMode: ConnectorAll, ZoomLevel: zoom(0.3)},
			want:  Style{Visible: true, Opacity: RootOpacity, StrokeWidth: RootWidth, Color: ColorRoot},
		},
		{
			name:  "unrelated edge dimmed",
			edge:  otherEdge,
			state: State{ConnectorMode: ConnectorAll, ZoomLevel: zoom(1), HoveredID: "c1"},
			want:  Style{Visible: true, Opacity: AllProjectOpacity * DimFactor, StrokeWidth: AllProjectWidth, Color: ColorProject},
		},
		{
			name:  "dim floor",
			edge:  Endpoints{SourceID: "co", TargetID: "c2", Kind: layout.EdgeRootToClient},
			state: State{ConnectorMode: ConnectorMinimal, FocusedID: "c1"},
			want:  Style{Visible: true, Opacity: DimFloor, StrokeWidth: RootWidth, Color: ColorRoot},
		},
		{
			name:  "clicked alone does not dim",
			edge:  otherEdge,
			state: State{ConnectorMode: ConnectorAll, ZoomLevel: zoom(1), ClickedID: "c1"},
			want:  Style{Visible: true, Opacity: AllProjectOpacity, StrokeWidth: AllProjectWidth, Color: ColorProject},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EdgeStyle(tt.edge, layout.StrategyRadial, tt.state)
			if !styleEqual(got, tt.want) {
				t.Errorf("EdgeStyle() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEdgeStyleBoostCapped(t *testing.T) {
	s := State{ConnectorMode: ConnectorNeighborhood, HoveredID: "c1", FocusedID: "c1", ClickedID: "c1"}
	got := EdgeStyle(projectEdge, layout.StrategyRadial, s)
	if got.Opacity > MaxOpacity || got.StrokeWidth > MaxStrokeWidth {
		t.Errorf("boost exceeded caps: %+v", got)
	}
	big := EdgeStyle(projectEdge, layout.StrategyRadial, State{ConnectorMode: ConnectorAll, ZoomLevel: zoom(1), HoveredID: "p1"})
	if big.StrokeWidth != AllProjectWidth+BoostWidth {
		t.Errorf("StrokeWidth = %v", big.StrokeWidth)
	}
}

func TestEdgeStyleDeterministic(t *testing.T) {
	s := State{ConnectorMode: ConnectorAll, ZoomLevel: zoom(0.9), HoveredID: "p1", ClickedID: "c2", FocusedID: "c1"}
	for _, e := range []Endpoints{rootEdge, projectEdge, otherEdge} {
		if a, b := EdgeStyle(e, layout.StrategyRadial, s), EdgeStyle(e, layout.StrategyRadial, s); a != b {
			t.Errorf("EdgeStyle not deterministic for %+v: %+v vs %+v", e, a, b)
		}
	}
}

func TestEdgeStyleTree(t *testing.T) {
	base := State{ConnectorMode: ConnectorMinimal}
	if got := EdgeStyle(rootEdge, layout.StrategyTree, base); !got.Visible || got.Opacity != RootOpacity {
		t.Errorf("tree root edge = %+v", got)
	}
	if got := EdgeStyle(projectEdge, layout.StrategyTree, base); got.Visible {
		t.Errorf("tree project edge visible without expansion: %+v", got)
	}

	expanded := base
	expanded.ExpandedIDs = []string{"c1"}
	if got := EdgeStyle(projectEdge, layout.StrategyTree, expanded); !got.Visible || got.Color != ColorProject {
		t.Errorf("expanded client edge = %+v", got)
	}

	hovered := base
	hovered.HoveredID = "c1"
	if got := EdgeStyle(projectEdge, layout.StrategyTree, hovered); !got.Visible || got.Color != ColorHighlight {
		t.Errorf("hovered client edge = %+v", got)
	}

	off := expanded
	off.ConnectorMode = ConnectorOff
	if got := EdgeStyle(rootEdge, layout.StrategyTree, off); got.Visible {
		t.Errorf("off still shows tree root edge")
	}
}

// sampleLayout is a company with two clients; c1 has projects p1 and p2, c2
// has p3.
func sampleLayout(strategy layout.Strategy) *layout.Layout {
	l := &layout.Layout{Strategy: strategy}
	add := func(id string, data layout.Payload) {
		l.Nodes = append(l.Nodes, layout.NewNode(id, data, geom.Point{}, 10, 10))
	}
	add("co", layout.CompanyData{})
	add("c1", layout.ClientData{})
	add("c2", layout.ClientData{})
	add("p1", layout.ProjectData{ClientID: "c1"})
	add("p2", layout.ProjectData{ClientID: "c1"})
	add("p3", layout.ProjectData{ClientID: "c2"})
	l.Edges = []layout.Edge{
		layout.NewEdge("co", "c1", layout.EdgeRootToClient),
		layout.NewEdge("co", "c2", layout.EdgeRootToClient),
		layout.NewEdge("c1", "p1", layout.EdgeClientToProject),
		layout.NewEdge("c1", "p2", layout.EdgeClientToProject),
		layout.NewEdge("c2", "p3", layout.EdgeClientToProject),
	}
	return l
}

func TestApplyOffHidesEverything(t *testing.T) {
	for _, hovered := range []string{"", "co", "c1", "p1"} {
		l := sampleLayout(layout.StrategyRadial)
		hidden := Apply(l, State{ConnectorMode: ConnectorOff, HoveredID: hovered, ZoomLevel: zoom(1)})
		for _, e := range l.Edges {
			if e.Style.Visible {
				t.Errorf("hovered=%q: edge %s visible in off mode", hovered, e.ID)
			}
		}
		if len(hidden) != 5 {
			t.Errorf("hovered=%q: hidden = %d, want 5", hovered, len(hidden))
		}
	}
}

func TestApplySuppressesHiddenEdges(t *testing.T) {
	l := sampleLayout(layout.StrategyRadial)
	hidden := Apply(l, State{ConnectorMode: ConnectorNeighborhood, HoveredID: "c1"})
	if len(l.Edges) != 4 {
		t.Fatalf("render edges = %d, want 4", len(l.Edges))
	}
	if len(hidden) != 1 || hidden[0] != layout.EdgeID("c2", "p3") {
		t.Errorf("hidden = %v", hidden)
	}
}

func TestApplyEgoNetwork(t *testing.T) {
	l := sampleLayout(layout.StrategyRadial)
	Apply(l, State{ConnectorMode: ConnectorNeighborhood, FocusedID: "c1"})

	want := map[string]float64{
		"c1": 1, "p1": 1, "p2": 1,
		"co": DimmedNodeAlpha, "c2": DimmedNodeAlpha, "p3": DimmedNodeAlpha,
	}
	for _, n := range l.Nodes {
		if n.Opacity != want[n.ID] {
			t.Errorf("%s opacity = %v, want %v", n.ID, n.Opacity, want[n.ID])
		}
	}
}

func TestApplyFocusedCompany(t *testing.T) {
	l := sampleLayout(layout.StrategyRadial)
	Apply(l, State{ConnectorMode: ConnectorMinimal, FocusedID: "co"})
	for _, n := range l.Nodes {
		want := DimmedNodeAlpha
		if n.ID == "co" || n.Kind == layout.KindClient {
			want = 1
		}
		if n.Opacity != want {
			t.Errorf("%s opacity = %v, want %v", n.ID, n.Opacity, want)
		}
	}
}

func TestApplyUnknownFocus(t *testing.T) {
	l := sampleLayout(layout.StrategyRadial)
	Apply(l, State{ConnectorMode: ConnectorAll, ZoomLevel: zoom(1), FocusedID: "gone"})
	for _, n := range l.Nodes {
		if n.Opacity != 1 {
			t.Errorf("%s dimmed by unknown focus", n.ID)
		}
	}
}

func styleEqual(a, b Style) bool {
	const eps = 1e-9
	abs := func(f float64) float64 {
		if f < 0 {
			return -f
		}
		return f
	}
	return a.Visible == b.Visible && a.Color == b.Color &&
		abs(a.Opacity-b.Opacity) < eps && abs(a.StrokeWidth-b.StrokeWidth) < eps
}
