package nodelink

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/crmmap/pkg/geom"
	"github.com/matzehuels/crmmap/pkg/layout/tree"
)

// formatPlain is Graphviz's line-oriented output: positions and spline
// points in inches with the origin at the bottom-left.
const formatPlain = graphviz.Format("plain")

// Solver is a [tree.Solver] backed by the Graphviz dot engine.
//
// Graphviz runs in-process. A call that outlives its context is abandoned:
// Solve returns ctx.Err() and the in-flight render finishes in the
// background.
type Solver struct {
	Spacing Spacing
	Logger  *log.Logger
}

// NewSolver returns a Solver with default spacing. A nil logger discards
// output.
func NewSolver(logger *log.Logger) *Solver {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Solver{Spacing: DefaultSpacing(), Logger: logger}
}

// Solve implements tree.Solver.
func (s *Solver) Solve(ctx context.Context, g tree.Graph) (*tree.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(g.Nodes) == 0 {
		return &tree.Solution{Boxes: map[string]tree.Box{}}, nil
	}
	sp := s.Spacing
	if sp == (Spacing{}) {
		sp = DefaultSpacing()
	}
	dot := GraphDOT(g, sp)

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		out, err := runGraphviz(ctx, dot, formatPlain)
		done <- result{out, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-done:
	}
	if r.err != nil {
		return nil, r.err
	}

	sol, err := ParsePlain(r.out, g)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Debug("graphviz solved",
			"nodes", len(g.Nodes),
			"edges", len(g.Edges),
			"duration", time.Since(start))
	}
	return sol, nil
}

// ParsePlain converts Graphviz plain output for g into a solution in pixel
// space with y growing downward. Boxes are top-left anchored. Nodes the
// output does not mention are left out of the solution.
func ParsePlain(data []byte, g tree.Graph) (*tree.Solution, error) {
	sol := &tree.Solution{
		Boxes:  make(map[string]tree.Box, len(g.Nodes)),
		Routes: make(map[string][]geom.Point, len(g.Edges)),
	}

	edgeIDs := make(map[[2]int]string, len(g.Edges))
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
	}
	for _, e := range g.Edges {
		src, ok1 := index[e.Source]
		dst, ok2 := index[e.Target]
		if ok1 && ok2 {
			edgeIDs[[2]int{src, dst}] = e.ID
		}
	}

	var height float64
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; sc.Scan(); line++ {
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "graph":
			if len(f) < 4 {
				return nil, fmt.Errorf("plain line %d: short graph record", line)
			}
			h, err := strconv.ParseFloat(f[3], 64)
			if err != nil {
				return nil, fmt.Errorf("plain line %d: graph height: %w", line, err)
			}
			height = h

		case "node":
			if len(f) < 6 {
				return nil, fmt.Errorf("plain line %d: short node record", line)
			}
			i, ok := nodeIndex(f[1], len(g.Nodes))
			if !ok {
				continue
			}
			v, err := floats(f[2:6])
			if err != nil {
				return nil, fmt.Errorf("plain line %d: %w", line, err)
			}
			c := toPixels(v[0], v[1], height)
			w, h := v[2]*pointsPerInch, v[3]*pointsPerInch
			sol.Boxes[g.Nodes[i].ID] = tree.Box{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}

		case "edge":
			if len(f) < 4 {
				return nil, fmt.Errorf("plain line %d: short edge record", line)
			}
			src, ok1 := nodeIndex(f[1], len(g.Nodes))
			dst, ok2 := nodeIndex(f[2], len(g.Nodes))
			id, known := edgeIDs[[2]int{src, dst}]
			if !ok1 || !ok2 || !known {
				continue
			}
			n, err := strconv.Atoi(f[3])
			if err != nil || len(f) < 4+2*n {
				return nil, fmt.Errorf("plain line %d: bad edge point count", line)
			}
			v, err := floats(f[4 : 4+2*n])
			if err != nil {
				return nil, fmt.Errorf("plain line %d: %w", line, err)
			}
			route := make([]geom.Point, 0, n)
			for k := 0; k < n; k++ {
				route = append(route, toPixels(v[2*k], v[2*k+1], height))
			}
			sol.Routes[id] = route

		case "stop":
			return sol, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read plain output: %w", err)
	}
	return sol, nil
}

func nodeIndex(name string, n int) (int, bool) {
	name = strings.Trim(name, `"`)
	if !strings.HasPrefix(name, "n") {
		return 0, false
	}
	i, err := strconv.Atoi(name[1:])
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

func floats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// toPixels flips the y axis and converts inches to pixels.
func toPixels(x, y, height float64) geom.Point {
	return geom.Pt(x*pointsPerInch, (height-y)*pointsPerInch)
}
