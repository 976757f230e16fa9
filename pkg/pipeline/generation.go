package pipeline

import "sync/atomic"

// Generation hands out increasing pass numbers. A caller takes a number with
// Next before starting a pass and applies the result only if IsCurrent still
// holds when the pass returns; a superseded tree pass is simply discarded.
// The zero value is ready to use and safe for concurrent use.
type Generation struct {
	n atomic.Uint64
}

// Next starts a new pass and returns its number.
func (g *Generation) Next() uint64 { return g.n.Add(1) }

// Current returns the number of the latest pass.
func (g *Generation) Current() uint64 { return g.n.Load() }

// IsCurrent reports whether pass gen has not been superseded.
func (g *Generation) IsCurrent(gen uint64) bool { return g.n.Load() == gen }
