package idml

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tdewolff/idml/document"
)

// PathPoint is a Bézier anchor with its incoming (left) and outgoing (right) control handles.
// A point without curvature has both handles equal to its anchor.
type PathPoint struct {
	Anchor, Left, Right Point
}

// Subpath is an ordered sequence of path points, optionally closed.
type Subpath struct {
	Points []PathPoint
	Closed bool
}

// Path is the vector geometry of an element, one or more subpaths. Paths are parsed fresh per
// element and never mutated.
type Path struct {
	Subpaths []Subpath
}

// Empty returns true if the path has no points.
func (p *Path) Empty() bool {
	for _, sub := range p.Subpaths {
		if 0 < len(sub.Points) {
			return false
		}
	}
	return true
}

// Bounds returns the bounding box over the union of all anchor and control-point coordinates, in
// the path's local coordinate space. A curve may extend beyond its anchors, so handles must be
// part of the union or curved shapes get clipped.
func (p *Path) Bounds() Rect {
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, sub := range p.Subpaths {
		for _, point := range sub.Points {
			for _, q := range [3]Point{point.Anchor, point.Left, point.Right} {
				x0 = math.Min(x0, q.X)
				y0 = math.Min(y0, q.Y)
				x1 = math.Max(x1, q.X)
				y1 = math.Max(y1, q.Y)
			}
		}
	}
	if math.IsInf(x0, 1) {
		return Rect{}
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// SVG returns the path description in SVG notation, translated into box-local coordinates so
// that the bounding box's top-left corner is the origin. Each segment between consecutive points
// is a cubic curve from the current point's outgoing handle to the next point's incoming handle.
func (p *Path) SVG() string {
	bounds := p.Bounds()
	origin := Point{bounds.X, bounds.Y}

	var sb strings.Builder
	for i, sub := range p.Subpaths {
		if len(sub.Points) == 0 {
			continue
		}
		if 0 < i {
			sb.WriteByte(' ')
		}
		first := sub.Points[0].Anchor.Sub(origin)
		sb.WriteString("M ")
		sb.WriteString(dec(first.X))
		sb.WriteByte(' ')
		sb.WriteString(dec(first.Y))
		for j := 1; j < len(sub.Points); j++ {
			cp1 := sub.Points[j-1].Right.Sub(origin)
			cp2 := sub.Points[j].Left.Sub(origin)
			anchor := sub.Points[j].Anchor.Sub(origin)
			sb.WriteString(" C ")
			sb.WriteString(dec(cp1.X))
			sb.WriteByte(' ')
			sb.WriteString(dec(cp1.Y))
			sb.WriteByte(' ')
			sb.WriteString(dec(cp2.X))
			sb.WriteByte(' ')
			sb.WriteString(dec(cp2.Y))
			sb.WriteByte(' ')
			sb.WriteString(dec(anchor.X))
			sb.WriteByte(' ')
			sb.WriteString(dec(anchor.Y))
		}
		if sub.Closed {
			sb.WriteString(" Z")
		}
	}
	return sb.String()
}

// dec formats a coordinate without trailing float noise.
func dec(f float64) string {
	f = math.Round(f*1e6) / 1e6
	if f == 0.0 {
		// avoid negative zero
		f = 0.0
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParsePath reads the PathGeometry of an element into a Path. Elements without path geometry,
// such as groups, return an error.
func ParsePath(elem *document.Elem) (*Path, error) {
	geometry := elem.Find("PathGeometry")
	if geometry == nil {
		return nil, fmt.Errorf("no path geometry")
	}

	p := &Path{}
	for _, geo := range geometry.FindAll("GeometryPathType") {
		sub := Subpath{
			Closed: geo.Attr("PathOpen") != "true",
		}
		for _, pt := range geo.FindAll("PathPointType") {
			anchor, err := parsePoint(pt.Attr("Anchor"))
			if err != nil {
				return nil, fmt.Errorf("bad anchor: %w", err)
			}
			point := PathPoint{Anchor: anchor, Left: anchor, Right: anchor}
			if pt.HasAttr("LeftDirection") {
				if point.Left, err = parsePoint(pt.Attr("LeftDirection")); err != nil {
					return nil, fmt.Errorf("bad left direction: %w", err)
				}
			}
			if pt.HasAttr("RightDirection") {
				if point.Right, err = parsePoint(pt.Attr("RightDirection")); err != nil {
					return nil, fmt.Errorf("bad right direction: %w", err)
				}
			}
			sub.Points = append(sub.Points, point)
		}
		if 0 < len(sub.Points) {
			p.Subpaths = append(p.Subpaths, sub)
		}
	}
	if p.Empty() {
		return nil, fmt.Errorf("no path points")
	}
	return p, nil
}

// parsePoint parses a space-separated coordinate pair.
func parsePoint(v string) (Point, error) {
	fields := strings.Fields(v)
	if len(fields) != 2 {
		return Point{}, fmt.Errorf("expected coordinate pair: %s", v)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Point{}, err
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Point{}, err
	}
	return Point{x, y}, nil
}
