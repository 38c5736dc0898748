package idml

import (
	"strconv"

	"github.com/tdewolff/idml/document"
)

// CharacterStyle holds the text formatting properties a style or style range can carry. Unset
// properties keep their zero value and the corresponding Has flag false, so styles layer over
// each other without clobbering inherited values.
type CharacterStyle struct {
	Size    float64
	HasSize bool
	Fill    string
	Font    string
	Style   string
	Caps    string
	basedOn string
}

// merge overlays the set properties of o on top of s.
func (s CharacterStyle) merge(o CharacterStyle) CharacterStyle {
	if o.HasSize {
		s.Size, s.HasSize = o.Size, true
	}
	if o.Fill != "" {
		s.Fill = o.Fill
	}
	if o.Font != "" {
		s.Font = o.Font
	}
	if o.Style != "" {
		s.Style = o.Style
	}
	if o.Caps != "" {
		s.Caps = o.Caps
	}
	return s
}

// parseCharacterStyle reads the style properties present on an element, which may be a style
// definition or a style range.
func parseCharacterStyle(elem *document.Elem, diags *Diagnostics) CharacterStyle {
	style := CharacterStyle{
		Fill:    elem.Attr("FillColor"),
		Style:   elem.Attr("FontStyle"),
		Caps:    elem.Attr("Capitalization"),
		basedOn: elem.Attr("BasedOn"),
	}
	if elem.HasAttr("PointSize") {
		size, err := strconv.ParseFloat(elem.Attr("PointSize"), 64)
		if err != nil {
			diags.Dataf(elem.Attr("Self"), "bad point size: %v", err)
		} else {
			style.Size, style.HasSize = size, true
		}
	}
	if props := elem.Child("Properties"); props != nil {
		if font := props.Child("AppliedFont"); font != nil {
			style.Font = font.Text
		}
		if basedOn := props.Child("BasedOn"); basedOn != nil && style.basedOn == "" {
			style.basedOn = basedOn.Text
		}
	}
	return style
}

// StyleSheet is the document-wide character style table, built once per document.
type StyleSheet struct {
	char map[string]CharacterStyle
}

// ParseStyles builds the style sheet from the Styles resource tree.
func ParseStyles(root *document.Elem, diags *Diagnostics) *StyleSheet {
	s := &StyleSheet{char: map[string]CharacterStyle{}}
	if root == nil {
		return s
	}
	for _, elem := range root.FindAll("CharacterStyle") {
		if id := elem.Attr("Self"); id != "" {
			s.char[id] = parseCharacterStyle(elem, diags)
		}
	}
	return s
}

// Character resolves the character style with the given identifier, following its BasedOn chain
// from the root down so that derived styles override inherited properties. A cycle in the chain
// stops inheritance at the repeated style.
func (s *StyleSheet) Character(id string) (CharacterStyle, bool) {
	chain := []CharacterStyle{}
	visited := map[string]bool{}
	found := false
	for id != "" && !visited[id] {
		visited[id] = true
		style, ok := s.char[id]
		if !ok {
			break
		}
		found = found || ok
		chain = append(chain, style)
		id = style.basedOn
	}
	if !found {
		return CharacterStyle{}, false
	}
	style := CharacterStyle{}
	for i := len(chain) - 1; 0 <= i; i-- {
		style = style.merge(chain[i])
	}
	return style, true
}
