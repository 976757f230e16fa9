// Package pipeline runs the hierarchical map layout end to end.
//
// One pass takes a company snapshot, a filter, the collapsed-client set and
// the live interaction state, and produces the render-ready node and edge
// set:
//
//  1. Filter: validate the snapshot and apply the search/status/owner filter
//  2. Place: position nodes with the radial or the layered tree strategy
//  3. Collide: nudge overlapping nodes apart (the company stays pinned)
//  4. Style: derive edge visibility and node emphasis from the interaction
//
// The CLI, the HTTP API and the interactive explorer all go through this
// package so the stages run in the same order with the same defaults.
//
// # Usage
//
//	engine := pipeline.NewEngine(nodelink.NewSolver(logger), logger)
//	req := pipeline.Request{
//	    Tree:        &tree,
//	    Strategy:    layout.StrategyRadial,
//	    Interaction: visibility.State{FocusedID: "client-42"},
//	}
//	res, err := engine.Compute(ctx, req)
//	if err != nil {
//	    // keep showing the previous layout
//	}
//
// A pass is a pure function of its request. Callers that recompute while an
// earlier tree pass is still waiting on the solver tag each pass with a
// [Generation] and drop results that are no longer current.
package pipeline

import (
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/layout"
	"github.com/matzehuels/crmmap/pkg/layout/collide"
	"github.com/matzehuels/crmmap/pkg/visibility"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API and Explorer
// =============================================================================

const (
	// DefaultStrategy is used when a request names none.
	DefaultStrategy = layout.StrategyRadial

	// DefaultSolverTimeout bounds a single call into the layered-graph
	// solver. The solver itself has no timeout.
	DefaultSolverTimeout = 10 * time.Second

	// DefaultZoom is the zoom level assumed when a request carries none.
	DefaultZoom = visibility.DefaultZoom
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
}

// =============================================================================
// Request - One Layout Pass
// =============================================================================

// CollisionOptions tunes the collision pass.
type CollisionOptions struct {
	Disabled      bool    `json:"disabled,omitempty" toml:"disabled"`
	MinDistance   float64 `json:"min_distance,omitempty" toml:"min_distance"`     // 0 derives it from the density mode
	MaxIterations int     `json:"max_iterations,omitempty" toml:"max_iterations"` // 0 means collide.DefaultMaxIterations
}

// Request holds everything one layout pass depends on. It supports JSON
// serialization for API requests.
type Request struct {
	// Tree is the snapshot to lay out. When nil, a Runner loads CompanyID
	// from its source.
	Tree      *hierarchy.Tree `json:"tree,omitempty"`
	CompanyID string          `json:"company_id,omitempty"`
	Refresh   bool            `json:"refresh,omitempty"` // bypass the snapshot cache

	Filter    hierarchy.FilterSpec `json:"filter"`
	Collapsed []string             `json:"collapsed,omitempty"`

	Strategy layout.Strategy `json:"strategy,omitempty"`
	// Params shapes the strategy. Zero distances and counts take their
	// layout.DefaultParams value and an unset ProjectsOutside means true.
	Params    layout.Params    `json:"params"`
	Collision CollisionOptions `json:"collision"`

	Interaction visibility.State `json:"interaction"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Defaults returns the layout settings of r (strategy, params, collision
// and interaction) as the base of another request. The hierarchy, filter
// and collapsed set are left out. Pointers and slices are copied, so the
// result can be decoded into without touching r.
func (r Request) Defaults() Request {
	out := Request{
		Strategy:    r.Strategy,
		Params:      r.Params,
		Collision:   r.Collision,
		Interaction: r.Interaction,
	}
	if v := r.Params.ProjectsOutside; v != nil {
		out.Params.SetOutside(*v)
	}
	if z := r.Interaction.ZoomLevel; z != nil {
		out.Interaction.SetZoom(*z)
	}
	out.Interaction.ExpandedIDs = slices.Clone(r.Interaction.ExpandedIDs)
	return out
}

// Result is the render-ready output of a pass.
type Result struct {
	Strategy layout.Strategy `json:"strategy"`
	Nodes    []layout.Node   `json:"nodes"`
	Edges    []layout.Edge   `json:"edges"`

	// Hidden lists edges suppressed by the interaction state. They are not
	// part of Edges.
	Hidden []string `json:"hidden,omitempty"`

	// Orphans are projects without a client. Neither strategy places them.
	Orphans []hierarchy.Project `json:"orphans,omitempty"`

	Stats Stats `json:"stats"`
}

// Layout returns the result as a layout for the renderers.
func (r *Result) Layout() *layout.Layout {
	return &layout.Layout{Strategy: r.Strategy, Nodes: r.Nodes, Edges: r.Edges}
}

// Stats contains pass statistics.
type Stats struct {
	Clients    int           `json:"clients"`
	Projects   int           `json:"projects"`
	NodeCount  int           `json:"node_count"`
	EdgeCount  int           `json:"edge_count"`
	Collision  collide.Stats `json:"collision"`
	LoadTime   time.Duration `json:"load_time,omitempty"`
	LayoutTime time.Duration `json:"layout_time"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return crmerrors.New(crmerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg, png, pdf, dot)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks the request and applies defaults. Each
// failure carries the error code of the offending field. The method is
// idempotent.
func (r *Request) ValidateAndSetDefaults() error {
	if r.validated {
		return nil
	}

	strategy, err := layout.ParseStrategy(string(r.Strategy))
	if err != nil {
		return crmerrors.Wrap(crmerrors.ErrCodeInvalidStrategy, err, "invalid strategy")
	}
	r.Strategy = strategy

	if r.Tree == nil {
		if err := crmerrors.ValidateID("company", r.CompanyID); err != nil {
			return err
		}
	}
	if err := crmerrors.ValidateSearch(r.Filter.Search); err != nil {
		return err
	}

	if err := r.setInteractionDefaults(); err != nil {
		return err
	}
	r.SetLayoutDefaults()

	if r.Collision.MinDistance < 0 || r.Collision.MaxIterations < 0 {
		return crmerrors.New(crmerrors.ErrCodeInvalidInput, "collision settings must not be negative")
	}

	r.validated = true
	return nil
}

func (r *Request) setInteractionDefaults() error {
	s := &r.Interaction
	mode, err := visibility.ParseConnectorMode(string(s.ConnectorMode))
	if err != nil {
		return crmerrors.Wrap(crmerrors.ErrCodeInvalidConnectorMode, err, "invalid connector mode")
	}
	s.ConnectorMode = mode

	dm, err := parseDensity(string(s.DensityMode))
	if err != nil {
		return err
	}
	s.DensityMode = dm

	zoom := s.Zoom()
	if zoom < 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return crmerrors.New(crmerrors.ErrCodeInvalidInput, "zoom level must be a finite number >= 0, got %g", zoom)
	}
	s.SetZoom(zoom)
	return nil
}

// SetLayoutDefaults fills unset layout parameters and enforces their
// invariants.
func (r *Request) SetLayoutDefaults() {
	if r.Strategy == "" {
		r.Strategy = DefaultStrategy
	}
	def := layout.DefaultParams()
	p := &r.Params
	if p.RadiusClient == 0 {
		p.RadiusClient = def.RadiusClient
	}
	if p.RingGap == 0 {
		p.RingGap = def.RingGap
	}
	if p.ProjectGap == 0 {
		p.ProjectGap = def.ProjectGap
	}
	if p.ArcSpread == 0 {
		p.ArcSpread = def.ArcSpread
	}
	if p.MaxPerRing == 0 {
		p.MaxPerRing = def.MaxPerRing
	}
	r.Params = r.Params.Normalize()
}

// newDiscardLogger is the default for library types built without a logger.
func newDiscardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
