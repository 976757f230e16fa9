// Package layout defines the render-ready output of the map layout engine:
// positioned nodes, typed edges and the parameters that shape them.
//
// Nodes form a tagged union. [Node.Kind] discriminates the variant and
// [Node.Data] carries exactly the fields that variant needs
// ([CompanyData], [ClientData] or [ProjectData]). The company node is unique,
// sits at [Params.Center], is never draggable and never takes part in
// collision resolution.
//
// Edges are either [EdgeRootToClient] (one per client) or
// [EdgeClientToProject] (one per visible project). There are no cycles and
// no node has more than one parent.
//
// The strategies that fill a [Layout] live in subpackages:
//   - radial: clients on a circle, projects on spokes or an inner ring
//   - tree: layered placement delegated to an external [tree.Solver]
//   - collide: overlap relaxation applied after either strategy
package layout
