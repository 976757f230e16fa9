// Package geom provides the small set of 2D primitives shared by the layout
// strategies: points, polar/cartesian conversion and distances.
//
// Angles are in radians with 0 on the positive x-axis. The direction of
// increasing angle follows the math convention (counter-clockwise with y up);
// on a y-down screen the same numbers run clockwise. Callers only need the
// convention to be consistent, which it is across every package here.
package geom

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Len returns the distance of p from the origin.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Polar is a point expressed as radius and angle around some center.
type Polar struct {
	Radius float64 `json:"radius"`
	Angle  float64 `json:"angle"`
}

// PolarToCartesian converts (radius, angle) around center into a Point.
func PolarToCartesian(radius, angle float64, center Point) Point {
	return Point{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}

// CartesianToPolar is the inverse of PolarToCartesian. The returned angle is
// normalized to [0, 2π). A point equal to center yields a zero Polar.
func CartesianToPolar(p, center Point) Polar {
	d := p.Sub(center)
	r := d.Len()
	if r == 0 {
		return Polar{}
	}
	return Polar{Radius: r, Angle: NormalizeAngle(math.Atan2(d.Y, d.X))}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// NormalizeAngle maps a into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 { return rad * 180 / math.Pi }

// AngleStep returns 2π/n, or 0 when n <= 0.
func AngleStep(n int) float64 {
	if n <= 0 {
		return 0
	}
	return 2 * math.Pi / float64(n)
}
