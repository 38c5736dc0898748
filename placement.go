package idml

import (
	"errors"
	"fmt"

	"github.com/tdewolff/idml/document"
)

// ErrNoPage is returned when an element cannot be attributed to any page. An element without a
// page cannot be placed, this is fatal for the element but not for the document.
var ErrNoPage = errors.New("no page found for element")

// Placement is the final page-space position of an element, relative to the top-left of its page
// in document points. Rotation is in radians in [0,2PI).
type Placement struct {
	X, Y           float64
	Width, Height  float64
	Rotation       float64
	ScaleX, ScaleY float64
}

// Page is a page record within a spread. Transform places the page on the spread and Bounds are
// the page's geometric bounds in its own coordinate space, with X,Y the left and top edges.
type Page struct {
	Transform Matrix
	Bounds    Rect
}

// ParsePage reads a Page element's transform and geometric bounds.
func ParsePage(elem *document.Elem) (*Page, error) {
	m, err := ParseMatrix(elem.Attr("ItemTransform"))
	if err != nil {
		return nil, err
	}
	vals, err := parseFloats(elem.Attr("GeometricBounds"))
	if err != nil || len(vals) != 4 {
		return nil, fmt.Errorf("bad geometric bounds: %s", elem.Attr("GeometricBounds"))
	}
	// bounds are serialized as "top left bottom right"
	return &Page{
		Transform: m,
		Bounds:    Rect{vals[1], vals[0], vals[3] - vals[1], vals[2] - vals[0]},
	}, nil
}

// ResolvePlacement places an element on its page. The transforms are the local transforms of the
// element's ancestor containers, outermost first, with the element's own transform last; bounds
// is the element's local bounding box from its path geometry. Raw document coordinates are
// relative to an arbitrary spread origin, so the page's own translation and the origin of its
// geometric bounds are subtracted to re-express the position relative to the page's top-left.
// Identity transforms in the chain are transparent: intermediate non-transforming containers do
// not change the result.
func ResolvePlacement(transforms []Matrix, bounds Rect, page *Page) (Placement, error) {
	if page == nil {
		return Placement{}, ErrNoPage
	}

	m := Compose(transforms)
	corner := m.Dot(Point{bounds.X, bounds.Y})
	px, py := page.Transform.Pos()

	_, _, rot, sx, sy := m.Decompose()
	return Placement{
		X:        corner.X - px - page.Bounds.X,
		Y:        corner.Y - py - page.Bounds.Y,
		Width:    bounds.W * sx,
		Height:   bounds.H * sy,
		Rotation: rot,
		ScaleX:   sx,
		ScaleY:   sy,
	}, nil
}
