package idml

import (
	"math"
	"strconv"
	"strings"

	"github.com/tdewolff/idml/document"
)

// RGBA is a normalized color with all channels in [0,1]. Alpha is not premultiplied.
type RGBA struct {
	R, G, B, A float64
}

var (
	Black       = RGBA{0.0, 0.0, 0.0, 1.0}
	White       = RGBA{1.0, 1.0, 1.0, 1.0}
	Transparent = RGBA{}
)

// RGBA implements the color.Color interface with alpha-premultiplied 16-bit channels.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R*c.A*65535.0 + 0.5)
	g = uint32(c.G*c.A*65535.0 + 0.5)
	b = uint32(c.B*c.A*65535.0 + 0.5)
	a = uint32(c.A*65535.0 + 0.5)
	return
}

// Equals returns true if C and D are equal with tolerance Epsilon per channel.
func (c RGBA) Equals(d RGBA) bool {
	return Equal(c.R, d.R) && Equal(c.G, d.G) && Equal(c.B, d.B) && Equal(c.A, d.A)
}

// CMYK converts process color components in [0,1] to RGBA.
func CMYK(c, m, y, k float64) RGBA {
	return RGBA{
		R: 1.0 - math.Min(1.0, c*(1.0-k)+k),
		G: 1.0 - math.Min(1.0, m*(1.0-k)+k),
		B: 1.0 - math.Min(1.0, y*(1.0-k)+k),
		A: 1.0,
	}
}

// Tint interpolates the color toward white by 1-t, so that t=1 is the base color and t=0 white.
func (c RGBA) Tint(t float64) RGBA {
	return RGBA{
		R: 1.0 - t*(1.0-c.R),
		G: 1.0 - t*(1.0-c.G),
		B: 1.0 - t*(1.0-c.B),
		A: c.A,
	}
}

////////////////////////////////////////////////////////////////

// GradientType distinguishes linear from radial gradients.
type GradientType int

const (
	LinearGradient GradientType = iota
	RadialGradient
)

// Stop is a gradient color stop at a position in [0,1].
type Stop struct {
	Color    RGBA
	Position float64
}

// Gradient is a resolved gradient definition. Gradients are immutable once extracted.
type Gradient struct {
	Type  GradientType
	Stops []Stop
}

////////////////////////////////////////////////////////////////

// ExtractColors builds the document-wide color map from the Graphic resource tree, keyed by each
// color's Self identifier. CMYK components come in 0..100 and RGB in 0..255. An unknown color
// space resolves to opaque black with a warning, so rendering proceeds with a visibly wrong but
// non-crashing substitute.
func ExtractColors(graphic *document.Elem, diags *Diagnostics) map[string]RGBA {
	colors := map[string]RGBA{}
	if graphic == nil {
		return colors
	}
	for _, elem := range graphic.FindAll("Color") {
		id := elem.Attr("Self")
		if id == "" {
			continue
		}
		vals, err := parseFloats(elem.Attr("ColorValue"))
		if err != nil {
			diags.Dataf(id, "bad color value: %v", err)
			colors[id] = Black
			continue
		}
		switch space := elem.Attr("Space"); space {
		case "CMYK":
			if len(vals) != 4 {
				diags.Dataf(id, "bad color value: expected 4 CMYK components")
				colors[id] = Black
				continue
			}
			colors[id] = CMYK(vals[0]/100.0, vals[1]/100.0, vals[2]/100.0, vals[3]/100.0)
		case "RGB":
			if len(vals) != 3 {
				diags.Dataf(id, "bad color value: expected 3 RGB components")
				colors[id] = Black
				continue
			}
			colors[id] = RGBA{vals[0] / 255.0, vals[1] / 255.0, vals[2] / 255.0, 1.0}
		default:
			diags.Warnf(id, "unknown color space: %s", space)
			colors[id] = Black
		}
	}

	// tint swatches reference a base color and scale it toward white
	for _, elem := range graphic.FindAll("Tint") {
		id := elem.Attr("Self")
		if id == "" {
			continue
		}
		base, ok := colors[elem.Attr("BaseColor")]
		if !ok {
			diags.Warnf(id, "missing tint base color: %s", elem.Attr("BaseColor"))
			colors[id] = Black
			continue
		}
		t := 100.0
		if elem.HasAttr("TintValue") {
			var err error
			if t, err = strconv.ParseFloat(elem.Attr("TintValue"), 64); err != nil {
				diags.Dataf(id, "bad tint value: %v", err)
				colors[id] = base
				continue
			}
		}
		colors[id] = base.Tint(t / 100.0)
	}
	return colors
}

// ExtractGradients builds the document-wide gradient map from the Graphic resource tree. A stop's
// position comes from its Location percentage or, when absent, stops distribute evenly. A stop
// referencing a missing color resolves to opaque black with a diagnostic.
func ExtractGradients(graphic *document.Elem, colors map[string]RGBA, diags *Diagnostics) map[string]*Gradient {
	gradients := map[string]*Gradient{}
	if graphic == nil {
		return gradients
	}
	for _, elem := range graphic.FindAll("Gradient") {
		id := elem.Attr("Self")
		if id == "" {
			continue
		}
		gradient := &Gradient{}
		if elem.Attr("Type") == "Radial" {
			gradient.Type = RadialGradient
		}

		stops := elem.FindAll("GradientStop")
		for i, stop := range stops {
			position := 0.0
			if stop.HasAttr("Location") {
				loc, err := strconv.ParseFloat(stop.Attr("Location"), 64)
				if err != nil {
					diags.Dataf(id, "bad gradient stop location: %v", err)
				} else {
					position = loc / 100.0
				}
			} else if 1 < len(stops) {
				position = float64(i) / float64(len(stops)-1)
			}

			col, ok := colors[stop.Attr("StopColor")]
			if !ok {
				diags.Warnf(id, "missing gradient stop color: %s", stop.Attr("StopColor"))
				col = Black
			}
			gradient.Stops = append(gradient.Stops, Stop{col, position})
		}
		gradients[id] = gradient
	}
	return gradients
}

// parseFloats parses space-separated floats.
func parseFloats(v string) ([]float64, error) {
	fields := strings.Fields(v)
	vals := make([]float64, len(fields))
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = f
	}
	return vals, nil
}

////////////////////////////////////////////////////////////////

// GradientPoints maps a user-facing linear gradient angle in degrees (0 pointing up, positive
// clockwise) to start and end control points on the boundary of the unit square centered at
// (0.5,0.5). The aspect ratio (width/height) of the target shape compensates the x-component for
// non-square shapes. Start and end are always reflections of each other through the center.
func GradientPoints(angle, aspect float64) (Point, Point) {
	if aspect == 0.0 {
		aspect = 1.0
	}
	rad := (angle + 90.0) * math.Pi / 180.0
	x := math.Sqrt2 * math.Cos(rad) / aspect
	y := math.Sqrt2 * math.Sin(rad)

	// rescale so the longer component reaches the unit square's edge
	if m := math.Max(math.Abs(x), math.Abs(y)); m != 0.0 {
		x /= m
		y /= m
	}
	start := Point{0.5 - x/2.0, 0.5 + y/2.0}
	end := Point{0.5 + x/2.0, 0.5 - y/2.0}
	return start, end
}
