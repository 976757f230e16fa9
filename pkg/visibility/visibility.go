// Package visibility decides how every edge and node is emphasized for a
// given interaction snapshot.
//
// [EdgeStyle] and [NodeOpacity] are pure functions of their arguments. The
// hosting UI owns the mutable interaction store and passes a [State] by value
// on every recomputation; nothing here keeps state between calls.
//
// Edge rules are chosen by strategy:
//
//   - radial: the connector mode sets the baseline (off, minimal,
//     neighborhood, all)
//   - tree: company edges are always shown at a low constant opacity and
//     project edges appear once their client is expanded or interacted with
//
// In both, mode off hides everything, and two adjustments follow the base
// rule: edges touching the hovered, clicked or focused node are boosted,
// and when a node is hovered or focused every unrelated edge is dimmed down
// to a floor.
package visibility

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/crmmap/pkg/density"
	"github.com/matzehuels/crmmap/pkg/layout"
)

// ConnectorMode is the baseline edge policy before interaction highlighting.
type ConnectorMode string

const (
	ConnectorOff          ConnectorMode = "off"
	ConnectorMinimal      ConnectorMode = "minimal"
	ConnectorNeighborhood ConnectorMode = "neighborhood"
	ConnectorAll          ConnectorMode = "all"
)

// ConnectorModes lists the valid modes in cycling order.
var ConnectorModes = []ConnectorMode{ConnectorOff, ConnectorMinimal, ConnectorNeighborhood, ConnectorAll}

// ParseConnectorMode parses a connector mode (case-insensitive). Empty means
// neighborhood.
func ParseConnectorMode(s string) (ConnectorMode, error) {
	m := ConnectorMode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ConnectorNeighborhood, nil
	}
	if slices.Contains(ConnectorModes, m) {
		return m, nil
	}
	return "", fmt.Errorf("unknown connector mode %q (must be one of: off, minimal, neighborhood, all)", s)
}

// Next returns the mode after m in cycling order.
func (m ConnectorMode) Next() ConnectorMode {
	i := slices.Index(ConnectorModes, m)
	return ConnectorModes[(i+1)%len(ConnectorModes)]
}

// State is an immutable interaction snapshot.
type State struct {
	HoveredID     string        `json:"hovered_id,omitempty"`
	ClickedID     string        `json:"clicked_id,omitempty"`
	FocusedID     string        `json:"focused_id,omitempty"`
	ConnectorMode ConnectorMode `json:"connector_mode,omitempty"`
	ZoomLevel     *float64      `json:"zoom_level,omitempty"` // nil means DefaultZoom
	DensityMode   density.Mode  `json:"density_mode,omitempty"`
	ExpandedIDs   []string      `json:"expanded_ids,omitempty"` // clients expanded in the tree strategy
}

// DefaultZoom is the zoom level of a State that sets none.
const DefaultZoom = 1.0

// DefaultState is the state the UI starts with.
func DefaultState() State {
	s := State{ConnectorMode: ConnectorNeighborhood, DensityMode: density.Overview}
	s.SetZoom(DefaultZoom)
	return s
}

// Zoom returns the zoom level. Zero is valid and hides every label.
func (s State) Zoom() float64 {
	if s.ZoomLevel == nil {
		return DefaultZoom
	}
	return *s.ZoomLevel
}

// SetZoom sets the zoom level. It stores a fresh pointer, so copies of s
// are unaffected.
func (s *State) SetZoom(z float64) { s.ZoomLevel = &z }

// Active reports whether id is hovered, clicked or focused.
func (s State) Active(id string) bool {
	return id != "" && (id == s.HoveredID || id == s.ClickedID || id == s.FocusedID)
}

// Expanded reports whether client id is explicitly expanded.
func (s State) Expanded(id string) bool { return slices.Contains(s.ExpandedIDs, id) }

// Policy returns the density policy implied by s.
func (s State) Policy() density.Policy {
	return density.Policy{Mode: s.DensityMode, Zoom: s.Zoom()}
}

// Style values.
const (
	RootOpacity = 0.25
	RootWidth   = 1.0

	NeighborhoodOpacity = 0.6
	NeighborhoodWidth   = 1.5

	// AllModeZoom is the zoom level above which mode all shows every edge.
	AllModeZoom       = 0.6
	AllRootOpacity    = 0.35
	AllRootWidth      = 1.0
	AllProjectOpacity = 0.45
	AllProjectWidth   = 1.25

	BoostOpacity    = 0.3
	BoostWidth      = 1.0
	MaxOpacity      = 1.0
	MaxStrokeWidth  = 3.5
	DimFactor       = 0.3
	DimFloor        = 0.08
	DimmedNodeAlpha = 0.2
)

// Color keys resolved by the renderer.
const (
	ColorRoot      = "root"
	ColorProject   = "project"
	ColorHighlight = "highlight"
)

// Style is the computed look of one edge.
type Style = layout.EdgeStyle

// Endpoints identifies an edge for styling.
type Endpoints struct {
	SourceID string
	TargetID string
	Kind     layout.EdgeKind
}

// EndpointsOf returns the endpoints of e.
func EndpointsOf(e layout.Edge) Endpoints {
	return Endpoints{SourceID: e.SourceID, TargetID: e.TargetID, Kind: e.Kind}
}

func (e Endpoints) touches(id string) bool {
	return id != "" && (e.SourceID == id || e.TargetID == id)
}

// EdgeStyle returns the style of one edge.
func EdgeStyle(e Endpoints, strategy layout.Strategy, s State) Style {
	var st Style
	if strategy == layout.StrategyTree {
		st = treeRule(e, s)
	} else {
		st = radialRule(e, s)
	}
	if !st.Visible {
		return Style{}
	}

	if s.Active(e.SourceID) || s.Active(e.TargetID) {
		st.Opacity = min(st.Opacity+BoostOpacity, MaxOpacity)
		st.StrokeWidth = min(st.StrokeWidth+BoostWidth, MaxStrokeWidth)
		st.Color = ColorHighlight
	}

	if (s.HoveredID != "" || s.FocusedID != "") && !e.touches(s.HoveredID) && !e.touches(s.FocusedID) {
		st.Opacity = max(st.Opacity*DimFactor, DimFloor)
	}
	return st
}

func rootStyle() Style {
	return Style{Visible: true, Opacity: RootOpacity, StrokeWidth: RootWidth, Color: ColorRoot}
}

func radialRule(e Endpoints, s State) Style {
	switch s.ConnectorMode {
	case ConnectorOff:
		return Style{}
	case ConnectorMinimal:
		if e.Kind == layout.EdgeRootToClient {
			return rootStyle()
		}
		return Style{}
	case ConnectorAll:
		if s.Zoom() <= AllModeZoom {
			return radialRule(e, State{ConnectorMode: ConnectorMinimal})
		}
		if e.Kind == layout.EdgeRootToClient {
			return Style{Visible: true, Opacity: AllRootOpacity, StrokeWidth: AllRootWidth, Color: ColorRoot}
		}
		return Style{Visible: true, Opacity: AllProjectOpacity, StrokeWidth: AllProjectWidth, Color: ColorProject}
	default:
		if e.Kind == layout.EdgeRootToClient {
			return rootStyle()
		}
		if s.Active(e.SourceID) {
			return Style{Visible: true, Opacity: NeighborhoodOpacity, StrokeWidth: NeighborhoodWidth, Color: ColorProject}
		}
		return Style{}
	}
}

func treeRule(e Endpoints, s State) Style {
	if s.ConnectorMode == ConnectorOff {
		return Style{}
	}
	if e.Kind == layout.EdgeRootToClient {
		return rootStyle()
	}
	if s.Expanded(e.SourceID) || s.Active(e.SourceID) {
		return Style{Visible: true, Opacity: NeighborhoodOpacity, StrokeWidth: NeighborhoodWidth, Color: ColorProject}
	}
	return Style{}
}

// NodeOpacity returns the render opacity of n. With a focused node, only the
// focused node and its direct neighbors stay opaque; the company node stays
// opaque only when it is itself focused. neighbors maps ids to adjacent ids,
// as returned by [layout.Layout.Adjacency].
func NodeOpacity(n layout.Node, s State, neighbors map[string][]string) float64 {
	if s.FocusedID == "" || n.ID == s.FocusedID {
		return 1
	}
	if !n.IsCompany() && slices.Contains(neighbors[s.FocusedID], n.ID) {
		return 1
	}
	return DimmedNodeAlpha
}

// Apply stamps edge styles and node opacities onto l and removes edges that
// are not visible. It returns the ids of the removed edges. A focused id that
// names no node in l dims nothing.
func Apply(l *layout.Layout, s State) []string {
	var hidden []string
	kept := l.Edges[:0]
	adj := l.Adjacency()
	for _, e := range l.Edges {
		e.Style = EdgeStyle(EndpointsOf(e), l.Strategy, s)
		if !e.Style.Visible {
			hidden = append(hidden, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	l.Edges = kept

	if _, ok := l.Node(s.FocusedID); !ok {
		s.FocusedID = ""
	}
	for i := range l.Nodes {
		l.Nodes[i].Opacity = NodeOpacity(l.Nodes[i], s, adj)
	}
	return hidden
}
