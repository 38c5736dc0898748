package idml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const Epsilon = 1e-10

// Equal returns true if a and b are equal with tolerance Epsilon.
func Equal(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// angleNorm returns the angle theta in the range [0,2PI).
func angleNorm(theta float64) float64 {
	theta = math.Mod(theta, 2.0*math.Pi)
	if theta < 0.0 {
		theta += 2.0 * math.Pi
	}
	return theta
}

////////////////////////////////////////////////////////////////

// Point is a coordinate in 2D space.
type Point struct {
	X, Y float64
}

// IsZero returns true if P is exactly zero.
func (p Point) IsZero() bool {
	return p.X == 0.0 && p.Y == 0.0
}

// Equals returns true if P and Q are equal with tolerance Epsilon.
func (p Point) Equals(q Point) bool {
	return Equal(p.X, q.X) && Equal(p.Y, q.Y)
}

// Add adds Q to P.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub subtracts Q from P.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Mul multiplies x and y by f.
func (p Point) Mul(f float64) Point {
	return Point{f * p.X, f * p.Y}
}

// Length returns the length of OP.
func (p Point) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("[%g; %g]", p.X, p.Y)
}

////////////////////////////////////////////////////////////////

// Rect is a rectangle in 2D space with a position and size.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2.0, r.Y + r.H/2.0}
}

// Move translates the rectangle by p.
func (r Rect) Move(p Point) Rect {
	r.X += p.X
	r.Y += p.Y
	return r
}

// Add returns the smallest rectangle containing both R and Q.
func (r Rect) Add(q Rect) Rect {
	if q.W == 0.0 || q.H == 0.0 {
		return r
	} else if r.W == 0.0 || r.H == 0.0 {
		return q
	}
	x0 := math.Min(r.X, q.X)
	y0 := math.Min(r.Y, q.Y)
	x1 := math.Max(r.X+r.W, q.X+q.W)
	y1 := math.Max(r.Y+r.H, q.Y+q.H)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Expand grows the rectangle to contain p.
func (r Rect) Expand(p Point) Rect {
	x0 := math.Min(r.X, p.X)
	y0 := math.Min(r.Y, p.Y)
	x1 := math.Max(r.X+r.W, p.X)
	y1 := math.Max(r.Y+r.H, p.Y)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g; %g]--[%g; %g]", r.X, r.Y, r.X+r.W, r.Y+r.H)
}

////////////////////////////////////////////////////////////////

// Matrix is an affine transformation matrix in row-major order. IDML serializes its transforms as
// the six coefficients "a b c d e f", which map to {{a, c, e}, {b, d, f}} so that
// x' = a*x + c*y + e and y' = b*x + d*y + f.
type Matrix [2][3]float64

// Identity is the identity affine transformation matrix.
var Identity = Matrix{
	{1.0, 0.0, 0.0},
	{0.0, 1.0, 0.0},
}

// ParseMatrix parses the six space-separated coefficients of an ItemTransform attribute.
func ParseMatrix(v string) (Matrix, error) {
	fields := strings.Fields(v)
	if len(fields) != 6 {
		return Identity, fmt.Errorf("bad transform: expected 6 coefficients: %s", v)
	}
	var d [6]float64
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Identity, fmt.Errorf("bad transform: %w: %s", err, v)
		}
		d[i] = f
	}
	return Matrix{
		{d[0], d[2], d[4]},
		{d[1], d[3], d[5]},
	}, nil
}

// Mul multiplies M by Q, so that transforming a point by the result is equivalent to transforming
// by Q first and by M second.
func (m Matrix) Mul(q Matrix) Matrix {
	return Matrix{{
		m[0][0]*q[0][0] + m[0][1]*q[1][0],
		m[0][0]*q[0][1] + m[0][1]*q[1][1],
		m[0][0]*q[0][2] + m[0][1]*q[1][2] + m[0][2],
	}, {
		m[1][0]*q[0][0] + m[1][1]*q[1][0],
		m[1][0]*q[0][1] + m[1][1]*q[1][1],
		m[1][0]*q[0][2] + m[1][1]*q[1][2] + m[1][2],
	}}
}

// Dot transforms point P by the matrix.
func (m Matrix) Dot(p Point) Point {
	return Point{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2],
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2],
	}
}

// Translate returns M multiplied by a translation over (x,y).
func (m Matrix) Translate(x, y float64) Matrix {
	return m.Mul(Matrix{
		{1.0, 0.0, x},
		{0.0, 1.0, y},
	})
}

// Rotate returns M multiplied by a rotation of rot radians counter clockwise.
func (m Matrix) Rotate(rot float64) Matrix {
	sintheta, costheta := math.Sincos(rot)
	return m.Mul(Matrix{
		{costheta, -sintheta, 0.0},
		{sintheta, costheta, 0.0},
	})
}

// Scale returns M multiplied by a scale in x and y.
func (m Matrix) Scale(x, y float64) Matrix {
	return m.Mul(Matrix{
		{x, 0.0, 0.0},
		{0.0, y, 0.0},
	})
}

// Equals returns true if M and Q are equal with tolerance Epsilon per coefficient.
func (m Matrix) Equals(q Matrix) bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if !Equal(m[i][j], q[i][j]) {
				return false
			}
		}
	}
	return true
}

// IsIdentity returns true if M is the identity matrix within tolerance.
func (m Matrix) IsIdentity() bool {
	return m.Equals(Identity)
}

// Pos returns the translation coefficients of the matrix.
func (m Matrix) Pos() (float64, float64) {
	return m[0][2], m[1][2]
}

// Decompose extracts the translation, rotation and scale from the matrix. Rotation is returned in
// [0,2PI) and scale is the Euclidean norm of each column. Shear is not modeled, so decomposition
// is exact only for matrices without shear.
func (m Matrix) Decompose() (tx, ty, rot, sx, sy float64) {
	tx, ty = m[0][2], m[1][2]
	rot = angleNorm(math.Atan2(m[1][0], m[0][0]))
	sx = math.Sqrt(m[0][0]*m[0][0] + m[1][0]*m[1][0])
	sy = math.Sqrt(m[0][1]*m[0][1] + m[1][1]*m[1][1])
	return
}

func (m Matrix) String() string {
	return fmt.Sprintf("[%g, %g, %g; %g, %g, %g; 0, 0, 1]", m[0][0], m[0][1], m[0][2], m[1][0], m[1][1], m[1][2])
}

// Compose multiplies the given matrices in order, the first being the outermost ancestor
// transform and the last the element's own. Transforming a point by the result applies the
// element's transform first and the outermost ancestor's last, matching document nesting order.
func Compose(ms []Matrix) Matrix {
	m := Identity
	for _, q := range ms {
		m = m.Mul(q)
	}
	return m
}
