// Package radial places clients on a circle around the company and their
// projects either along each client's spoke or on a shared inner ring.
//
// Clients keep their input order: client i of n sits at angle i·2π/n, so
// collapsing or expanding one client never moves the others.
//
// With ProjectsOutside set, a client's projects are grouped into rings of at
// most MaxPerRing beyond the client. Ring r sits at radius
// RadiusClient + RingGap + r·ProjectGap. A ring holding k > 1 projects fans
// them evenly across the capped spread centered on the spoke; a ring holding
// a single project puts it exactly on the spoke.
//
// Without ProjectsOutside every visible project is placed on one ring of
// radius 0.6·RadiusClient around the company, spaced by its index among all
// visible projects. This denser packing is the compact overview mode.
package radial

import (
	"github.com/matzehuels/crmmap/pkg/density"
	"github.com/matzehuels/crmmap/pkg/geom"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/layout"
)

// Place computes a radial layout for h. Collapsed clients keep their node and
// their company edge but contribute no project nodes or edges.
func Place(h *hierarchy.Hierarchy, collapsed layout.CollapsedSet, params layout.Params, policy density.Policy) *layout.Layout {
	p := params.Normalize()
	out := &layout.Layout{Strategy: layout.StrategyRadial}

	out.Nodes = append(out.Nodes, newNode(h.Company.ID, layout.CompanyData{Name: h.Company.Name}, p.Center, policy))

	step := geom.AngleStep(len(h.Branches))
	var inner []placedProject

	for i, b := range h.Branches {
		angle := float64(i) * step
		isCollapsed := collapsed.Has(b.Client.ID)

		out.Nodes = append(out.Nodes, newNode(b.Client.ID, layout.ClientData{
			Name:         b.Client.Name,
			Status:       b.Client.Status,
			Collapsed:    isCollapsed,
			ProjectCount: len(b.Projects),
		}, geom.PolarToCartesian(p.RadiusClient, angle, p.Center), policy))
		out.Edges = append(out.Edges, layout.NewEdge(h.Company.ID, b.Client.ID, layout.EdgeRootToClient))

		if isCollapsed || len(b.Projects) == 0 {
			continue
		}

		if p.Outside() {
			for _, pp := range spokeProjects(b.Projects, angle, p) {
				out.Nodes = append(out.Nodes, projectNode(pp, b.Client.ID, policy))
				out.Edges = append(out.Edges, layout.NewEdge(b.Client.ID, pp.project.ID, layout.EdgeClientToProject))
			}
			continue
		}
		for _, proj := range b.Projects {
			inner = append(inner, placedProject{project: proj, clientID: b.Client.ID})
		}
	}

	if !p.Outside() {
		innerStep := geom.AngleStep(len(inner))
		for i := range inner {
			inner[i].pos = geom.PolarToCartesian(p.InnerRadius(), float64(i)*innerStep, p.Center)
			out.Nodes = append(out.Nodes, projectNode(inner[i], inner[i].clientID, policy))
			out.Edges = append(out.Edges, layout.NewEdge(inner[i].clientID, inner[i].project.ID, layout.EdgeClientToProject))
		}
	}

	return out
}

type placedProject struct {
	project  hierarchy.Project
	clientID string
	pos      geom.Point
	ring     int
}

// spokeProjects places projects in rings along the spoke at angle.
func spokeProjects(projects []hierarchy.Project, angle float64, p layout.Params) []placedProject {
	out := make([]placedProject, 0, len(projects))
	spread := p.Spread()

	for start, ring := 0, 0; start < len(projects); start, ring = start+p.MaxPerRing, ring+1 {
		end := min(start+p.MaxPerRing, len(projects))
		radius := p.RingRadius(ring)
		for j, a := range RingAngles(end-start, angle, spread) {
			out = append(out, placedProject{
				project: projects[start+j],
				pos:     geom.PolarToCartesian(radius, a, p.Center),
				ring:    ring,
			})
		}
	}
	return out
}

// RingAngles returns the angles of k projects fanned across spread (radians)
// centered on spoke. The first and last project sit on the edges of the
// spread; a single project sits on the spoke.
func RingAngles(k int, spoke, spread float64) []float64 {
	if k <= 0 {
		return nil
	}
	if k == 1 {
		return []float64{spoke}
	}
	angles := make([]float64, k)
	start := spoke - spread/2
	step := spread / float64(k-1)
	for j := range angles {
		angles[j] = start + float64(j)*step
	}
	return angles
}

func newNode(id string, data layout.Payload, pos geom.Point, policy density.Policy) layout.Node {
	n := layout.NewNode(id, data, pos, 0, 0)
	d := policy.Size(n.Kind)
	n.Width, n.Height = d.Width, d.Height
	n.LabelVisible = policy.LabelVisible(n.Kind)
	return n
}

func projectNode(pp placedProject, clientID string, policy density.Policy) layout.Node {
	return newNode(pp.project.ID, layout.ProjectData{
		Name:       pp.project.Name,
		ClientID:   clientID,
		Status:     pp.project.Status,
		OwnerName:  pp.project.OwnerName,
		StageCount: pp.project.StageCount,
		TodoCount:  pp.project.TodoCount,
		Ring:       pp.ring,
	}, pp.pos, policy)
}
