package document

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Package is an opened IDML container. The design map is read eagerly and its idPkg references
// are followed to the spread, resource, and story documents. All trees are immutable after Open.
type Package struct {
	designmap *Elem
	spreads   []*Elem
	graphic   *Elem
	styles    *Elem
	stories   map[string]*Elem
}

// Open opens the IDML package at the given path.
func Open(filename string) (*Package, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Read(f, info.Size())
}

// Read reads an IDML package from r.
func Read(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("bad container: %w", err)
	}

	files := map[string]*zip.File{}
	for _, file := range zr.File {
		files[path.Clean(file.Name)] = file
	}

	designmap, err := parseFile(files, "designmap.xml")
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		designmap: designmap,
		stories:   map[string]*Elem{},
	}
	for _, ref := range designmap.FindAll("idPkg:Spread") {
		spread, err := parseFile(files, ref.Attr("src"))
		if err != nil {
			return nil, err
		}
		if elem := spread.Find("Spread"); elem != nil {
			pkg.spreads = append(pkg.spreads, elem)
		}
	}
	if ref := designmap.Find("idPkg:Graphic"); ref != nil {
		if pkg.graphic, err = parseFile(files, ref.Attr("src")); err != nil {
			return nil, err
		}
	}
	if ref := designmap.Find("idPkg:Styles"); ref != nil {
		if pkg.styles, err = parseFile(files, ref.Attr("src")); err != nil {
			return nil, err
		}
	}
	for _, ref := range designmap.FindAll("idPkg:Story") {
		root, err := parseFile(files, ref.Attr("src"))
		if err != nil {
			return nil, err
		}
		for _, story := range root.FindAll("Story") {
			if id := story.Attr("Self"); id != "" {
				pkg.stories[id] = story
			}
		}
	}
	return pkg, nil
}

func parseFile(files map[string]*zip.File, name string) (*Elem, error) {
	file, ok := files[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("missing document: %s", name)
	}
	fr, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer fr.Close()

	// tolerate a byte-order mark before the XML declaration
	dec := unicode.UTF8.NewDecoder()
	elem, err := Parse(transform.NewReader(fr, unicode.BOMOverride(dec)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return elem, nil
}

// Designmap returns the root of the package's design map.
func (p *Package) Designmap() *Elem {
	return p.designmap
}

// Spreads returns the Spread elements in design-map order.
func (p *Package) Spreads() []*Elem {
	return p.spreads
}

// Graphic returns the root of the shared color and gradient resource document, or nil.
func (p *Package) Graphic() *Elem {
	return p.graphic
}

// Styles returns the root of the shared styles document, or nil.
func (p *Package) Styles() *Elem {
	return p.styles
}

// Story returns the story with the given identifier, or nil.
func (p *Package) Story(id string) *Elem {
	return p.stories[id]
}
