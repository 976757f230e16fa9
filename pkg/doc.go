// Package pkg holds the crmmap libraries.
//
// A company snapshot flows through them in this order:
//
//	[source] load the company, clients and projects (file or MongoDB, cached)
//	   ↓
//	[hierarchy] validate, group into branches, filter
//	   ↓
//	[layout] place nodes: radial rings or a layered tree via a solver
//	   ↓
//	[layout/collide] push overlapping nodes apart
//	   ↓
//	[visibility] style edges and dim nodes for the interaction state
//	   ↓
//	[render] JSON, or SVG/PNG/PDF/DOT drawn with Graphviz
//
// [pipeline] runs the whole pass and is what the CLI and the HTTP server
// call. [density] sizes nodes and decides label visibility; [config] loads
// the TOML configuration; [errors] defines the coded errors every package
// returns.
//
// [source]: github.com/matzehuels/crmmap/pkg/source
// [hierarchy]: github.com/matzehuels/crmmap/pkg/hierarchy
// [layout]: github.com/matzehuels/crmmap/pkg/layout
// [layout/collide]: github.com/matzehuels/crmmap/pkg/layout/collide
// [visibility]: github.com/matzehuels/crmmap/pkg/visibility
// [render]: github.com/matzehuels/crmmap/pkg/render
// [pipeline]: github.com/matzehuels/crmmap/pkg/pipeline
// [density]: github.com/matzehuels/crmmap/pkg/density
// [config]: github.com/matzehuels/crmmap/pkg/config
// [errors]: github.com/matzehuels/crmmap/pkg/errors
package pkg
