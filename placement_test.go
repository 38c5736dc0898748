package idml

import (
	"math"
	"testing"

	"github.com/tdewolff/test"
)

func TestParsePage(t *testing.T) {
	page, err := ParsePage(parseElem(t, `<Page Self="p1" ItemTransform="1 0 0 1 10 20" GeometricBounds="40 30 340 230"/>`))
	test.Error(t, err)
	test.T(t, page.Transform, Matrix{{1.0, 0.0, 10.0}, {0.0, 1.0, 20.0}})
	test.T(t, page.Bounds, Rect{30.0, 40.0, 200.0, 300.0})

	_, err = ParsePage(parseElem(t, `<Page GeometricBounds="0 0 100"/>`))
	test.That(t, err != nil)
}

func TestResolvePlacement(t *testing.T) {
	page := &Page{
		Transform: Identity.Translate(10.0, 20.0),
		Bounds:    Rect{30.0, 40.0, 200.0, 300.0},
	}
	bounds := Rect{0.0, 0.0, 10.0, 10.0}

	// a rectangle nested two groups deep, each group rotated 45 degrees, the element itself
	// carrying no transform
	group1 := Identity.Translate(100.0, 50.0).Rotate(math.Pi / 4.0)
	group2 := Identity.Translate(20.0, 0.0).Rotate(math.Pi / 4.0)
	placement, err := ResolvePlacement([]Matrix{group1, group2, Identity}, bounds, page)
	test.Error(t, err)

	test.Float(t, placement.Rotation, math.Pi/2.0)
	test.Float(t, placement.ScaleX, 1.0)
	test.Float(t, placement.ScaleY, 1.0)
	test.Float(t, placement.Width, 10.0)
	test.Float(t, placement.Height, 10.0)

	// the inner group's offset rotates through the outer group, and both the page transform and
	// the geometric-bounds origin are subtracted
	d := 20.0 / math.Sqrt2
	test.Float(t, placement.X, 100.0+d-10.0-30.0)
	test.Float(t, placement.Y, 50.0+d-20.0-40.0)
}

func TestResolvePlacementIdentityTransparent(t *testing.T) {
	page := &Page{Bounds: Rect{0.0, 0.0, 100.0, 100.0}}
	bounds := Rect{5.0, 5.0, 20.0, 30.0}
	m := Identity.Translate(12.0, 34.0).Rotate(0.5)

	a, err := ResolvePlacement([]Matrix{m}, bounds, page)
	test.Error(t, err)
	b, err := ResolvePlacement([]Matrix{Identity, Identity, m, Identity}, bounds, page)
	test.Error(t, err)
	test.T(t, a, b)
}

func TestResolvePlacementScale(t *testing.T) {
	page := &Page{Bounds: Rect{0.0, 0.0, 100.0, 100.0}}
	placement, err := ResolvePlacement([]Matrix{Identity.Scale(2.0, 3.0)}, Rect{0.0, 0.0, 10.0, 10.0}, page)
	test.Error(t, err)
	test.Float(t, placement.Width, 20.0)
	test.Float(t, placement.Height, 30.0)
	test.Float(t, placement.ScaleX, 2.0)
	test.Float(t, placement.ScaleY, 3.0)
}

func TestResolvePlacementNoPage(t *testing.T) {
	_, err := ResolvePlacement([]Matrix{Identity}, Rect{}, nil)
	test.T(t, err, ErrNoPage)
}
