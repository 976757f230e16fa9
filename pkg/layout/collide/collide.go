// Package collide separates overlapping nodes after a strategy has placed
// them.
//
// [Resolve] is a bounded relaxation pass, not an exact packing solver. Pairs
// closer than the minimum distance are pushed apart along the line between
// their centers, each node taking half the correction. The company node is
// pinned and takes no part. Pathological inputs may still overlap once the
// iteration budget is spent; [Stats.Converged] tells the two cases apart.
package collide

import (
	"math"
	"sort"

	"github.com/matzehuels/crmmap/pkg/geom"
	"github.com/matzehuels/crmmap/pkg/layout"
)

// Banding selects how nodes are grouped before resolution.
type Banding int

const (
	// BandNone checks every pair of nodes. Used for radial layouts.
	BandNone Banding = iota
	// BandByX groups nodes by quantized x and sorts each group by y. Used
	// for left-to-right tree layouts where a layer is a column.
	BandByX
	// BandByY groups nodes by quantized y and sorts each group by x. Used
	// for top-to-bottom tree layouts.
	BandByY
)

// DefaultMaxIterations bounds the number of relaxation passes.
const DefaultMaxIterations = 50

// tolerance absorbs float drift so a pair pushed to exactly MinDistance is
// not corrected again on the next pass.
const tolerance = 1e-6

// Options configures Resolve.
type Options struct {
	MinDistance   float64
	MaxIterations int // <= 0 means DefaultMaxIterations
	Banding       Banding
	BandWidth     float64 // <= 0 means MinDistance

	// Extent, when set, replaces MinDistance for pairs: a and b must be at
	// least (Extent(a)+Extent(b))/2 apart. Tree layouts pass the footprint
	// across the flow direction.
	Extent func(n *layout.Node) float64
}

// need returns the minimum distance between a and b.
func (o Options) need(a, b *layout.Node) float64 {
	if o.Extent == nil {
		return o.MinDistance
	}
	return (o.Extent(a) + o.Extent(b)) / 2
}

// reach returns the largest distance any pair in idx needs.
func (o Options) reach(nodes []layout.Node, idx []int) float64 {
	if o.Extent == nil {
		return o.MinDistance
	}
	r := 0.0
	for _, i := range idx {
		r = max(r, o.Extent(&nodes[i]))
	}
	return r
}

// ForDirection returns options banded for a tree layout flowing in dir.
func ForDirection(dir layout.Direction, minDistance float64) Options {
	b := BandByX
	if dir == layout.DirectionTB {
		b = BandByY
	}
	return Options{MinDistance: minDistance, Banding: b}
}

// Stats reports what a Resolve call did.
type Stats struct {
	Iterations  int  `json:"iterations"`
	Corrections int  `json:"corrections"`
	Converged   bool `json:"converged"` // the last pass made no corrections
	Groups      int  `json:"groups"`
}

// Resolve moves non-company nodes in place until no pair within a group is
// closer than opts.MinDistance, or the iteration budget runs out. Group
// membership is decided once from the input positions.
func Resolve(nodes []layout.Node, opts Options) Stats {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.BandWidth <= 0 {
		opts.BandWidth = opts.MinDistance
	}

	groups := group(nodes, opts)
	stats := Stats{Groups: len(groups)}
	if opts.MinDistance <= 0 && opts.Extent == nil {
		stats.Converged = true
		return stats
	}

	for stats.Iterations < opts.MaxIterations {
		stats.Iterations++
		moved := 0
		for _, g := range groups {
			moved += relax(nodes, g, opts)
		}
		stats.Corrections += moved
		if moved == 0 {
			stats.Converged = true
			break
		}
	}
	return stats
}

// group returns node indices per band, excluding the company. Bands are
// ordered by key so resolution is deterministic.
func group(nodes []layout.Node, opts Options) [][]int {
	if opts.Banding == BandNone {
		var all []int
		for i, n := range nodes {
			if !n.IsCompany() {
				all = append(all, i)
			}
		}
		if len(all) == 0 {
			return nil
		}
		return [][]int{all}
	}

	byKey := map[int][]int{}
	for i, n := range nodes {
		if n.IsCompany() {
			continue
		}
		v := n.Position.X
		if opts.Banding == BandByY {
			v = n.Position.Y
		}
		k := 0
		if opts.BandWidth > 0 {
			k = int(math.Floor(v / opts.BandWidth))
		}
		byKey[k] = append(byKey[k], i)
	}
	keys := make([]int, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([][]int, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out
}

// secondary returns the coordinate a group is sorted by.
func secondary(p geom.Point, b Banding) float64 {
	if b == BandByY {
		return p.X
	}
	return p.Y
}

// relax runs one pass over a group and returns the number of corrections.
func relax(nodes []layout.Node, idx []int, opts Options) int {
	sort.SliceStable(idx, func(a, b int) bool {
		return secondary(nodes[idx[a]].Position, opts.Banding) < secondary(nodes[idx[b]].Position, opts.Banding)
	})

	reach := opts.reach(nodes, idx)
	corrections := 0
	for a := 0; a < len(idx); a++ {
		for b := a + 1; b < len(idx); b++ {
			na, nb := &nodes[idx[a]], &nodes[idx[b]]
			if secondary(nb.Position, opts.Banding)-secondary(na.Position, opts.Banding) >= reach {
				break
			}
			minDist := opts.need(na, nb)
			d := geom.Distance(na.Position, nb.Position)
			if d >= minDist-tolerance {
				continue
			}
			dir := nb.Position.Sub(na.Position)
			if d == 0 {
				dir = separation(idx[a], idx[b])
			} else {
				dir = dir.Scale(1 / d)
			}
			push := dir.Scale((minDist - d) / 2)
			na.Position = na.Position.Sub(push)
			nb.Position = nb.Position.Add(push)
			corrections++
		}
	}
	return corrections
}

// goldenAngle spreads coincident pairs over distinct directions.
const goldenAngle = 2.399963229728653

// separation returns a unit vector for a pair with coincident centers,
// derived from the pair's indices.
func separation(i, j int) geom.Point {
	a := float64(i*31+j) * goldenAngle
	return geom.Pt(math.Cos(a), math.Sin(a))
}

// Pair is two nodes closer than the minimum distance.
type Pair struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Distance float64 `json:"distance"`
}

// Overlaps lists every pair of non-company nodes closer than minDistance,
// ignoring bands.
func Overlaps(nodes []layout.Node, minDistance float64) []Pair {
	return Overlapping(nodes, Options{MinDistance: minDistance})
}

// Overlapping lists every pair of non-company nodes closer than opts
// requires, ignoring bands.
func Overlapping(nodes []layout.Node, opts Options) []Pair {
	var out []Pair
	for i := range nodes {
		if nodes[i].IsCompany() {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			if nodes[j].IsCompany() {
				continue
			}
			if d := geom.Distance(nodes[i].Position, nodes[j].Position); d < opts.need(&nodes[i], &nodes[j])-tolerance {
				out = append(out, Pair{A: nodes[i].ID, B: nodes[j].ID, Distance: d})
			}
		}
	}
	return out
}
