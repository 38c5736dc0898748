// Package document provides access to the contents of an IDML package: a ZIP container of XML
// documents describing spreads, stories, and shared resources. Attribute values are exposed as
// raw strings, numeric interpretation is left to the caller.
package document

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

// Elem is an element in a parsed XML document tree.
type Elem struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Parent   *Elem
	Children []*Elem
}

// Attr returns the value of the named attribute, or the empty string if absent.
func (e *Elem) Attr(name string) string {
	return e.Attrs[name]
}

// HasAttr returns true if the named attribute is present.
func (e *Elem) HasAttr(name string) bool {
	_, ok := e.Attrs[name]
	return ok
}

// Child returns the first direct child with the given tag, or nil.
func (e *Elem) Child(tag string) *Elem {
	for _, child := range e.Children {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

// Find returns the first descendant with the given tag in document order, or nil.
func (e *Elem) Find(tag string) *Elem {
	for _, child := range e.Children {
		if child.Tag == tag {
			return child
		}
		if elem := child.Find(tag); elem != nil {
			return elem
		}
	}
	return nil
}

// FindAll returns all descendants with the given tag in document order.
func (e *Elem) FindAll(tag string) []*Elem {
	var elems []*Elem
	for _, child := range e.Children {
		if child.Tag == tag {
			elems = append(elems, child)
		}
		elems = append(elems, child.FindAll(tag)...)
	}
	return elems
}

// Parse reads an XML document and returns its root element.
func Parse(r io.Reader) (*Elem, error) {
	z := parse.NewInput(r)
	defer z.Restore()

	var root, cur *Elem
	l := xml.NewLexer(z)
	for {
		tt, data := l.Next()
		switch tt {
		case xml.ErrorToken:
			if l.Err() != io.EOF {
				return nil, l.Err()
			} else if root == nil {
				return nil, fmt.Errorf("empty document")
			} else if cur != nil {
				return nil, fmt.Errorf("unclosed element: %s", cur.Tag)
			}
			return root, nil
		case xml.StartTagToken:
			elem := &Elem{
				Tag:    string(data[1:]),
				Attrs:  map[string]string{},
				Parent: cur,
			}
			for {
				tt, _ = l.Next()
				if tt != xml.AttributeToken {
					break
				}
				val := l.AttrVal()
				val = val[1 : len(val)-1]
				elem.Attrs[string(l.Text())] = unescape(string(val))
			}
			if cur != nil {
				cur.Children = append(cur.Children, elem)
			} else if root == nil {
				root = elem
			} else {
				return nil, fmt.Errorf("multiple root elements")
			}
			if tt != xml.StartTagCloseVoidToken {
				cur = elem
			}
		case xml.EndTagToken:
			if cur == nil {
				return nil, fmt.Errorf("unexpected end tag: %s", string(data))
			}
			cur = cur.Parent
		case xml.TextToken:
			if cur != nil {
				cur.Text += unescape(string(data))
			}
		case xml.CDATAToken:
			if cur != nil {
				cur.Text += string(l.Text())
			}
		}
	}
}

// unescape resolves the predefined XML entities and numeric character references.
func unescape(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for {
		i := strings.IndexByte(s, '&')
		if i == -1 {
			sb.WriteString(s)
			break
		}
		sb.WriteString(s[:i])
		s = s[i:]
		j := strings.IndexByte(s, ';')
		if j == -1 {
			sb.WriteString(s)
			break
		}
		entity := s[1:j]
		switch {
		case entity == "amp":
			sb.WriteByte('&')
		case entity == "lt":
			sb.WriteByte('<')
		case entity == "gt":
			sb.WriteByte('>')
		case entity == "quot":
			sb.WriteByte('"')
		case entity == "apos":
			sb.WriteByte('\'')
		case strings.HasPrefix(entity, "#x") || strings.HasPrefix(entity, "#X"):
			if n, err := strconv.ParseUint(entity[2:], 16, 32); err == nil {
				sb.WriteRune(rune(n))
			} else {
				sb.WriteString(s[:j+1])
			}
		case strings.HasPrefix(entity, "#"):
			if n, err := strconv.ParseUint(entity[1:], 10, 32); err == nil {
				sb.WriteRune(rune(n))
			} else {
				sb.WriteString(s[:j+1])
			}
		default:
			sb.WriteString(s[:j+1])
		}
		s = s[j+1:]
	}
	return sb.String()
}
