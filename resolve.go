package idml

import (
	"math"
	"strconv"

	"github.com/tdewolff/idml/document"
)

// Paint is the resolved fill or stroke of an element: a solid color, a gradient with its
// user-facing angle in degrees, or nothing.
type Paint struct {
	Color    RGBA
	Gradient *Gradient
	Angle    float64
	Has      bool
}

// Resolved is the geometrically and stylistically resolved description of one visual element,
// ready to hand to a rendering engine. Path is the box-local SVG path description and Placement
// positions the box on its page. Text holds a text frame's slice of its story, with Runs giving
// per-range styling as rune offsets into Text.
type Resolved struct {
	ID              string
	Placement       Placement
	Path            string
	Fill            Paint
	Stroke          Paint
	StrokeWidth     float64
	StrokeAlignment string
	Opacity         float64
	Text            string
	Runs            []Run
}

// Renderer is the external rendering engine this core drives, one page at a time. An error from
// Element aborts only that element.
type Renderer interface {
	StartPage(width, height float64) error
	Element(elem *Resolved) error
	EndPage() error
}

// Document is a resolved IDML document: the read-only color, gradient, and style tables built
// once at open time, plus the planned text flow. It is not shared mutably across conversions.
type Document struct {
	pkg       *document.Package
	Colors    map[string]RGBA
	Gradients map[string]*Gradient
	Styles    *StyleSheet
	stories   map[string]*Story
	ranges    map[string][2]int
	Diags     Diagnostics
}

// Resolve builds the document-wide resource tables and plans the text flow of every story across
// its linked frames. Partial failures degrade to diagnostics, no element aborts its siblings.
func Resolve(pkg *document.Package) *Document {
	d := &Document{
		pkg:     pkg,
		stories: map[string]*Story{},
		ranges:  map[string][2]int{},
	}
	d.Colors = ExtractColors(pkg.Graphic(), &d.Diags)
	d.Gradients = ExtractGradients(pkg.Graphic(), d.Colors, &d.Diags)
	d.Styles = ParseStyles(pkg.Styles(), &d.Diags)
	d.planTextFlow()
	return d
}

// story returns the parsed story with the given identifier, or nil if the package has none.
func (d *Document) story(id string) *Story {
	if story, ok := d.stories[id]; ok {
		return story
	}
	elem := d.pkg.Story(id)
	if elem == nil {
		d.stories[id] = nil
		return nil
	}
	story := ParseStory(elem, d.Styles, d.Colors, &d.Diags)
	d.stories[id] = story
	return story
}

// planTextFlow groups the document's text frames by story, orders each chain, and splits the
// story text into per-frame character ranges.
func (d *Document) planTextFlow() {
	frames := map[string][]Frame{}
	var order []string
	for _, spread := range d.pkg.Spreads() {
		for _, elem := range spread.FindAll("TextFrame") {
			id := elem.Attr("Self")
			storyID := elem.Attr("ParentStory")
			if id == "" || storyID == "" {
				continue
			}
			if _, ok := frames[storyID]; !ok {
				order = append(order, storyID)
			}
			frames[storyID] = append(frames[storyID], Frame{
				ID:       id,
				Previous: attrOr(elem, "PreviousTextFrame", NoFrame),
				Next:     attrOr(elem, "NextTextFrame", NoFrame),
			})
		}
	}

	for _, storyID := range order {
		ordered := OrderFrames(frames[storyID], &d.Diags)
		if ordered == nil {
			// unresolvable chain, the frames keep their full-story fallback
			continue
		}
		story := d.story(storyID)
		if story == nil {
			d.Diags.Dataf(storyID, "missing story")
			continue
		}
		splits := SplitIndices(story.Text, len(ordered))
		ranges := AssignRanges(story.Len(), len(ordered), splits)
		for i, frame := range ordered {
			d.ranges[frame.ID] = ranges[i]
		}
	}
}

// Render resolves every element of every spread and hands the records to the renderer grouped
// per page. Renderer errors from StartPage and EndPage abort the conversion, element errors are
// collected as diagnostics.
func (d *Document) Render(r Renderer) error {
	for _, spread := range d.pkg.Spreads() {
		var pages []*Page
		for _, elem := range spread.Children {
			if elem.Tag != "Page" {
				continue
			}
			page, err := ParsePage(elem)
			if err != nil {
				d.Diags.Dataf(elem.Attr("Self"), "bad page: %v", err)
				continue
			}
			pages = append(pages, page)
		}
		if len(pages) == 0 {
			d.Diags.Structuralf(spread.Attr("Self"), "spread has no pages")
			continue
		}

		perPage := make([][]*Resolved, len(pages))
		d.resolveItems(spread.Children, nil, pages, perPage)

		for i, page := range pages {
			if err := r.StartPage(page.Bounds.W, page.Bounds.H); err != nil {
				return err
			}
			for _, res := range perPage[i] {
				if err := r.Element(res); err != nil {
					d.Diags.Dataf(res.ID, "renderer: %v", err)
				}
			}
			if err := r.EndPage(); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveItems walks page items in document order. Groups contribute their transform to the
// ancestor chain and recurse, leaf items resolve to records.
func (d *Document) resolveItems(elems []*document.Elem, ancestors []Matrix, pages []*Page, perPage [][]*Resolved) {
	for _, elem := range elems {
		switch elem.Tag {
		case "Group":
			m, err := itemTransform(elem)
			if err != nil {
				d.Diags.Dataf(elem.Attr("Self"), "%v", err)
				continue
			}
			chain := append(ancestors[:len(ancestors):len(ancestors)], m)
			d.resolveItems(elem.Children, chain, pages, perPage)
		case "Rectangle", "Oval", "Polygon", "GraphicLine", "TextFrame":
			if res, page, ok := d.resolveItem(elem, ancestors, pages); ok {
				perPage[page] = append(perPage[page], res)
			}
		}
	}
}

// resolveItem runs one element through the pipeline: geometry, then placement, then style.
func (d *Document) resolveItem(elem *document.Elem, ancestors []Matrix, pages []*Page) (*Resolved, int, bool) {
	id := elem.Attr("Self")

	own, err := itemTransform(elem)
	if err != nil {
		d.Diags.Dataf(id, "%v", err)
		return nil, 0, false
	}
	path, err := ParsePath(elem)
	if err != nil {
		d.Diags.Dataf(id, "%v", err)
		return nil, 0, false
	}
	bounds := path.Bounds()

	transforms := append(ancestors[:len(ancestors):len(ancestors)], own)
	corner := Compose(transforms).Dot(Point{bounds.X, bounds.Y})
	pageIndex := pageFor(corner, pages)
	if pageIndex < 0 {
		d.Diags.Structuralf(id, "no page found for element")
		return nil, 0, false
	}
	placement, err := ResolvePlacement(transforms, bounds, pages[pageIndex])
	if err != nil {
		d.Diags.Structuralf(id, "%v", err)
		return nil, 0, false
	}

	res := &Resolved{
		ID:              id,
		Placement:       placement,
		Path:            path.SVG(),
		Fill:            d.paint(elem.Attr("FillColor"), elem.Attr("GradientFillAngle"), id),
		Stroke:          d.paint(elem.Attr("StrokeColor"), elem.Attr("GradientStrokeAngle"), id),
		StrokeAlignment: strokeAlignment(elem.Attr("StrokeAlignment")),
		Opacity:         opacity(elem),
	}
	if elem.HasAttr("StrokeWeight") {
		if res.StrokeWidth, err = strconv.ParseFloat(elem.Attr("StrokeWeight"), 64); err != nil {
			d.Diags.Dataf(id, "bad stroke weight: %v", err)
			res.StrokeWidth = 0.0
		}
	}

	if elem.Tag == "TextFrame" {
		story := d.story(elem.Attr("ParentStory"))
		if story == nil {
			d.Diags.Dataf(id, "missing story: %s", elem.Attr("ParentStory"))
		} else {
			start, end := 0, story.Len()
			if rng, ok := d.ranges[id]; ok {
				start, end = rng[0], rng[1]
			}
			res.Text = story.slice(start, end)
			res.Runs = story.clip(start, end)
		}
	}
	return res, pageIndex, true
}

// itemTransform parses an element's ItemTransform, treating an absent attribute as identity.
func itemTransform(elem *document.Elem) (Matrix, error) {
	if !elem.HasAttr("ItemTransform") {
		return Identity, nil
	}
	return ParseMatrix(elem.Attr("ItemTransform"))
}

// pageFor attributes a spread-space point to a page: the page containing it, or failing that the
// page whose center is nearest. Returns -1 only when there are no pages.
func pageFor(p Point, pages []*Page) int {
	nearest, dist := -1, math.Inf(1)
	for i, page := range pages {
		px, py := page.Transform.Pos()
		rect := page.Bounds.Move(Point{px, py})
		if rect.X <= p.X && p.X <= rect.X+rect.W && rect.Y <= p.Y && p.Y <= rect.Y+rect.H {
			return i
		}
		if d := p.Sub(rect.Center()).Length(); d < dist {
			nearest, dist = i, d
		}
	}
	return nearest
}

// paint resolves a fill or stroke reference against the color and gradient tables. An unknown
// reference substitutes opaque black with a warning.
func (d *Document) paint(ref, angle, elemID string) Paint {
	if ref == "" || ref == "Swatch/None" {
		return Paint{}
	}
	if col, ok := d.Colors[ref]; ok {
		return Paint{Color: col, Has: true}
	}
	if gradient, ok := d.Gradients[ref]; ok {
		p := Paint{Gradient: gradient, Has: true}
		if angle != "" {
			a, err := strconv.ParseFloat(angle, 64)
			if err != nil {
				d.Diags.Dataf(elemID, "bad gradient angle: %v", err)
			} else {
				p.Angle = a
			}
		}
		return p
	}
	d.Diags.Warnf(elemID, "unknown color reference: %s", ref)
	return Paint{Color: Black, Has: true}
}

// strokeAlignment normalizes the document's alignment keywords.
func strokeAlignment(v string) string {
	switch v {
	case "InsideAlignment":
		return "inside"
	case "OutsideAlignment":
		return "outside"
	}
	return "center"
}

// opacity reads an element's transparency settings, defaulting to fully opaque.
func opacity(elem *document.Elem) float64 {
	if settings := elem.Child("TransparencySetting"); settings != nil {
		if blending := settings.Child("BlendingSetting"); blending != nil && blending.HasAttr("Opacity") {
			if v, err := strconv.ParseFloat(blending.Attr("Opacity"), 64); err == nil {
				return math.Min(math.Max(v/100.0, 0.0), 1.0)
			}
		}
	}
	return 1.0
}

// attrOr returns the attribute value or a default when absent.
func attrOr(elem *document.Elem, name, def string) string {
	if elem.HasAttr(name) {
		return elem.Attr(name)
	}
	return def
}
