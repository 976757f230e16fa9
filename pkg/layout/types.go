package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/crmmap/pkg/geom"
)

// =============================================================================
// Node kinds
// =============================================================================

// Kind identifies the variant of a [Node].
type Kind int

const (
	KindCompany Kind = iota
	KindClient
	KindProject
)

var kindNames = [...]string{"company", "client", "project"}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if strings.EqualFold(string(b), name) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", b)
}

// =============================================================================
// Node payloads
// =============================================================================

// Payload is the kind-specific part of a node. It is implemented only by
// [CompanyData], [ClientData] and [ProjectData].
type Payload interface {
	payloadKind() Kind
}

// CompanyData is the payload of the company node.
type CompanyData struct {
	Name string `json:"name,omitempty"`
}

// ClientData is the payload of a client node.
type ClientData struct {
	Name         string `json:"name"`
	Status       string `json:"status,omitempty"`
	Collapsed    bool   `json:"collapsed"`
	ProjectCount int    `json:"project_count"` // projects after filtering, including hidden ones
}

// ProjectData is the payload of a project node.
type ProjectData struct {
	Name       string `json:"name"`
	ClientID   string `json:"client_id"`
	Status     string `json:"status,omitempty"`
	OwnerName  string `json:"owner_name,omitempty"`
	StageCount int    `json:"stage_count,omitempty"`
	TodoCount  int    `json:"todo_count,omitempty"`
	Ring       int    `json:"ring"` // ring (radial) the project was placed on
}

func (CompanyData) payloadKind() Kind { return KindCompany }
func (ClientData) payloadKind() Kind  { return KindClient }
func (ProjectData) payloadKind() Kind { return KindProject }

// =============================================================================
// Node
// =============================================================================

// Node is a positioned entity. Position is the node center.
type Node struct {
	ID           string     `json:"id"`
	Kind         Kind       `json:"kind"`
	Position     geom.Point `json:"position"`
	Width        float64    `json:"width"`
	Height       float64    `json:"height"`
	Opacity      float64    `json:"opacity"`
	LabelVisible bool       `json:"label_visible"`
	Data         Payload    `json:"data"`
}

// NewNode creates a fully opaque node whose Kind matches its payload.
func NewNode(id string, data Payload, pos geom.Point, w, h float64) Node {
	return Node{
		ID:       id,
		Kind:     data.payloadKind(),
		Position: pos,
		Width:    w,
		Height:   h,
		Opacity:  1,
		Data:     data,
	}
}

// IsCompany reports whether n is the company node.
func (n Node) IsCompany() bool { return n.Kind == KindCompany }

// Draggable reports whether the UI may move n. The company is pinned.
func (n Node) Draggable() bool { return n.Kind != KindCompany }

// Client returns the client payload, if n is a client.
func (n Node) Client() (ClientData, bool) {
	d, ok := n.Data.(ClientData)
	return d, ok
}

// Project returns the project payload, if n is a project.
func (n Node) Project() (ProjectData, bool) {
	d, ok := n.Data.(ProjectData)
	return d, ok
}

// Label returns the display name carried by the payload.
func (n Node) Label() string {
	switch d := n.Data.(type) {
	case CompanyData:
		return d.Name
	case ClientData:
		return d.Name
	case ProjectData:
		return d.Name
	}
	return n.ID
}

// =============================================================================
// Edges
// =============================================================================

// EdgeKind identifies the relationship an edge represents.
type EdgeKind int

const (
	EdgeRootToClient EdgeKind = iota
	EdgeClientToProject
)

// String returns the edge kind name.
func (k EdgeKind) String() string {
	switch k {
	case EdgeRootToClient:
		return "root_to_client"
	case EdgeClientToProject:
		return "client_to_project"
	}
	return fmt.Sprintf("edge_kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k EdgeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// EdgeStyle is how an edge should be drawn. Color is a palette key
// ("root", "project", "highlight") resolved by the renderer.
type EdgeStyle struct {
	Visible     bool    `json:"visible"`
	Opacity     float64 `json:"opacity"`
	StrokeWidth float64 `json:"stroke_width"`
	Color       string  `json:"color"`
}

// Edge connects a parent to a child. Route holds bend points when the
// strategy produced a routed path (tree layout); radial edges are straight.
type Edge struct {
	ID       string       `json:"id"`
	SourceID string       `json:"source"`
	TargetID string       `json:"target"`
	Kind     EdgeKind     `json:"kind"`
	Route    []geom.Point `json:"route,omitempty"`
	Style    EdgeStyle    `json:"style"`
}

// EdgeID returns the canonical id of the edge from src to dst.
func EdgeID(src, dst string) string { return src + "->" + dst }

// NewEdge creates an edge with its canonical id.
func NewEdge(src, dst string, kind EdgeKind) Edge {
	return Edge{ID: EdgeID(src, dst), SourceID: src, TargetID: dst, Kind: kind}
}

// Touches reports whether id is one of the edge's endpoints.
func (e Edge) Touches(id string) bool {
	return id != "" && (e.SourceID == id || e.TargetID == id)
}

// =============================================================================
// Layout
// =============================================================================

// Layout is the result of one layout pass.
type Layout struct {
	Strategy Strategy `json:"strategy"`
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
}

// Node returns a pointer to the node with the given id.
func (l *Layout) Node(id string) (*Node, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return &l.Nodes[i], true
		}
	}
	return nil, false
}

// Company returns the company node.
func (l *Layout) Company() (*Node, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].IsCompany() {
			return &l.Nodes[i], true
		}
	}
	return nil, false
}

// CountKind returns the number of nodes of the given kind.
func (l *Layout) CountKind(k Kind) int {
	n := 0
	for _, node := range l.Nodes {
		if node.Kind == k {
			n++
		}
	}
	return n
}

// Adjacency returns, for every node id, the ids directly connected to it by
// an edge.
func (l *Layout) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(l.Nodes))
	for _, e := range l.Edges {
		adj[e.SourceID] = append(adj[e.SourceID], e.TargetID)
		adj[e.TargetID] = append(adj[e.TargetID], e.SourceID)
	}
	return adj
}

// =============================================================================
// Collapsed clients
// =============================================================================

// CollapsedSet holds the ids of collapsed clients. It is the only piece of
// user state that survives recomputation; the engine receives it on every
// call and never keeps it.
type CollapsedSet map[string]bool

// NewCollapsedSet builds a set from ids.
func NewCollapsedSet(ids ...string) CollapsedSet {
	s := make(CollapsedSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = true
		}
	}
	return s
}

// Has reports whether clientID is collapsed. A nil set has no members.
func (s CollapsedSet) Has(clientID string) bool { return s[clientID] }
