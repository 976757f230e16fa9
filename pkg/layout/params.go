package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/crmmap/pkg/geom"
)

// Strategy names a layout strategy.
type Strategy string

const (
	StrategyRadial Strategy = "radial"
	StrategyTree   Strategy = "tree"
)

// ParseStrategy parses a strategy name (case-insensitive). Empty means radial.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyRadial, "":
		return StrategyRadial, nil
	case StrategyTree:
		return StrategyTree, nil
	}
	return "", fmt.Errorf("unknown layout strategy %q (must be one of: radial, tree)", s)
}

// Direction is the flow of the layered tree layout.
type Direction string

const (
	DirectionLR Direction = "LR" // company on the left, projects to the right
	DirectionTB Direction = "TB" // company on top, projects below
)

// MaxArcSpread caps the angular fan-out of a project ring, in degrees,
// whatever the configured ArcSpread.
const MaxArcSpread = 60.0

// Params shapes both strategies. Distances are in pixels; ArcSpread is in
// degrees.
type Params struct {
	RadiusClient    float64    `json:"radius_client" toml:"radius_client"`
	RingGap         float64    `json:"ring_gap" toml:"ring_gap"`
	ProjectGap      float64    `json:"project_gap" toml:"project_gap"`
	ArcSpread       float64    `json:"arc_spread" toml:"arc_spread"`
	MaxPerRing      int        `json:"max_per_ring" toml:"max_per_ring"`
	ProjectsOutside *bool      `json:"projects_outside,omitempty" toml:"projects_outside"` // nil means true
	Center          geom.Point `json:"center" toml:"center"`
	Direction       Direction  `json:"direction,omitempty" toml:"direction"`
}

// DefaultParams returns the parameters the UI starts with.
func DefaultParams() Params {
	p := Params{
		RadiusClient: 320,
		RingGap:      140,
		ProjectGap:   90,
		ArcSpread:    48,
		MaxPerRing:   6,
		Direction:    DirectionLR,
	}
	p.SetOutside(true)
	return p
}

// Outside reports whether projects are placed along their client's spoke
// rather than on the shared inner ring.
func (p Params) Outside() bool { return p.ProjectsOutside == nil || *p.ProjectsOutside }

// SetOutside sets ProjectsOutside. It stores a fresh pointer, so copies of
// p are unaffected.
func (p *Params) SetOutside(v bool) { p.ProjectsOutside = &v }

// Normalize returns p with its invariants enforced: MaxPerRing >= 1,
// 0 <= ArcSpread <= MaxArcSpread, non-negative distances, a known
// direction and an explicit ProjectsOutside.
func (p Params) Normalize() Params {
	p.SetOutside(p.Outside())
	if p.MaxPerRing < 1 {
		p.MaxPerRing = 1
	}
	p.ArcSpread = math.Max(0, math.Min(p.ArcSpread, MaxArcSpread))
	p.RadiusClient = math.Max(0, p.RadiusClient)
	p.RingGap = math.Max(0, p.RingGap)
	p.ProjectGap = math.Max(0, p.ProjectGap)
	if p.Direction != DirectionTB {
		p.Direction = DirectionLR
	}
	return p
}

// Spread returns the effective ring fan-out in radians.
func (p Params) Spread() float64 {
	return geom.Deg2Rad(math.Max(0, math.Min(p.ArcSpread, MaxArcSpread)))
}

// RingRadius returns the radius of project ring r in outside mode.
func (p Params) RingRadius(r int) float64 {
	return p.RadiusClient + p.RingGap + float64(r)*p.ProjectGap
}

// InnerRadius returns the radius of the shared project ring in inside mode.
func (p Params) InnerRadius() float64 { return 0.6 * p.RadiusClient }
