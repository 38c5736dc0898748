// Package svg renders resolved IDML elements to scalable vector graphics, one SVG document per
// page. It is the reference consumer of the idml.Renderer contract.
package svg

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tdewolff/idml"
	"github.com/tdewolff/minify/v2"
)

// Precision is the number of significant digits written for coordinates.
const Precision = 6

type dec float64

func (f dec) String() string {
	s := fmt.Sprintf("%.*f", Precision, float64(f))
	return string(minify.Decimal([]byte(s), Precision))
}

// Renderer writes one SVG document per page. The open callback supplies the destination for each
// page, numbered from zero.
type Renderer struct {
	open func(page int) (io.WriteCloser, error)

	w          io.WriteCloser
	page       int
	gradientID int
}

// New creates an SVG renderer writing each page to the writer returned by open.
func New(open func(page int) (io.WriteCloser, error)) *Renderer {
	return &Renderer{open: open, page: -1}
}

// StartPage opens the next page's destination and writes the SVG header.
func (r *Renderer) StartPage(width, height float64) error {
	r.page++
	w, err := r.open(r.page)
	if err != nil {
		return err
	}
	r.w = w
	_, err = fmt.Fprintf(r.w, `<svg version="1.1" width="%v" height="%v" viewBox="0 0 %v %v" xmlns="http://www.w3.org/2000/svg">`, dec(width), dec(height), dec(width), dec(height))
	return err
}

// EndPage closes the SVG document and its destination.
func (r *Renderer) EndPage() error {
	if r.w == nil {
		return fmt.Errorf("no open page")
	}
	_, err := fmt.Fprintf(r.w, "\n</svg>\n")
	if cerr := r.w.Close(); err == nil {
		err = cerr
	}
	r.w = nil
	return err
}

// Element writes one resolved element as a path, with its text runs as tspans for text frames.
func (r *Renderer) Element(elem *idml.Resolved) error {
	if r.w == nil {
		return fmt.Errorf("no open page")
	}

	p := elem.Placement
	fmt.Fprintf(r.w, "\n<g transform=\"translate(%v %v)", dec(p.X), dec(p.Y))
	if !idml.Equal(p.Rotation, 0.0) {
		fmt.Fprintf(r.w, " rotate(%v)", dec(p.Rotation*180.0/math.Pi))
	}
	if !idml.Equal(p.ScaleX, 1.0) || !idml.Equal(p.ScaleY, 1.0) {
		fmt.Fprintf(r.w, " scale(%v %v)", dec(p.ScaleX), dec(p.ScaleY))
	}
	fmt.Fprintf(r.w, `"`)
	if !idml.Equal(elem.Opacity, 1.0) {
		fmt.Fprintf(r.w, ` opacity="%v"`, dec(elem.Opacity))
	}
	fmt.Fprintf(r.w, `>`)

	aspect := 1.0
	if p.Height != 0.0 {
		aspect = p.Width / p.Height
	}
	fill, defs := r.paint(elem.Fill, aspect)
	stroke, strokeDefs := r.paint(elem.Stroke, aspect)
	defs += strokeDefs
	if defs != "" {
		fmt.Fprintf(r.w, "<defs>%s</defs>", defs)
	}

	fmt.Fprintf(r.w, `<path d="%s" fill="%s"`, elem.Path, fill)
	if elem.Stroke.Has && 0.0 < elem.StrokeWidth {
		fmt.Fprintf(r.w, ` stroke="%s" stroke-width="%v"`, stroke, dec(elem.StrokeWidth))
	}
	fmt.Fprintf(r.w, `/>`)

	if 0 < len(elem.Runs) {
		r.text(elem)
	}
	_, err := fmt.Fprintf(r.w, "</g>")
	return err
}

// paint returns the paint's SVG fill value plus any gradient definition it requires.
func (r *Renderer) paint(paint idml.Paint, aspect float64) (string, string) {
	if !paint.Has {
		return "none", ""
	} else if paint.Gradient == nil {
		return cssColor(paint.Color), ""
	}

	r.gradientID++
	id := fmt.Sprintf("g%d", r.gradientID)
	var sb strings.Builder
	if paint.Gradient.Type == idml.LinearGradient {
		start, end := idml.GradientPoints(paint.Angle, aspect)
		fmt.Fprintf(&sb, `<linearGradient id="%s" x1="%v" y1="%v" x2="%v" y2="%v">`, id, dec(start.X), dec(start.Y), dec(end.X), dec(end.Y))
	} else {
		fmt.Fprintf(&sb, `<radialGradient id="%s" cx="0.5" cy="0.5" r="0.5">`, id)
	}
	for _, stop := range paint.Gradient.Stops {
		fmt.Fprintf(&sb, `<stop offset="%v" stop-color="%s"/>`, dec(stop.Position), cssColor(stop.Color))
	}
	if paint.Gradient.Type == idml.LinearGradient {
		sb.WriteString("</linearGradient>")
	} else {
		sb.WriteString("</radialGradient>")
	}
	return fmt.Sprintf("url(#%s)", id), sb.String()
}

// text writes a text frame's runs as tspans. Line breaking is not this renderer's concern, runs
// keep the story's break characters as-is.
func (r *Renderer) text(elem *idml.Resolved) {
	fmt.Fprintf(r.w, `<text>`)
	runes := []rune(elem.Text)
	for _, run := range elem.Runs {
		start, end := run.Start, run.End
		if start < 0 || len(runes) < end || end <= start {
			continue
		}
		fmt.Fprintf(r.w, `<tspan fill="%s" font-size="%v"`, cssColor(run.Color), dec(run.Size))
		if run.Font != "" {
			fmt.Fprintf(r.w, ` font-family="%s"`, escape(run.Font))
		}
		if run.Weight != "normal" {
			fmt.Fprintf(r.w, ` font-weight="%s"`, run.Weight)
		}
		if run.Style != "normal" {
			fmt.Fprintf(r.w, ` font-style="%s"`, run.Style)
		}
		fmt.Fprintf(r.w, `>%s</tspan>`, escape(string(runes[start:end])))
	}
	fmt.Fprintf(r.w, `</text>`)
}

// cssColor formats a normalized color as a CSS color value.
func cssColor(c idml.RGBA) string {
	r := uint8(c.R*255.0 + 0.5)
	g := uint8(c.G*255.0 + 0.5)
	b := uint8(c.B*255.0 + 0.5)
	if idml.Equal(c.A, 1.0) {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%v)", r, g, b, dec(c.A))
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string {
	return escaper.Replace(s)
}
