package document

import (
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestParse(t *testing.T) {
	root, err := Parse(strings.NewReader(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
	<Document Self="d" DOMVersion="13.0">
	  <Spread Self="s1">
	    <Page Self="p1" GeometricBounds="0 0 100 200"/>
	    <Rectangle Self="r1" ItemTransform="1 0 0 1 5 5"/>
	  </Spread>
	</Document>`))
	test.Error(t, err)
	test.T(t, root.Tag, "Document")
	test.T(t, root.Attr("DOMVersion"), "13.0")

	spread := root.Child("Spread")
	test.That(t, spread != nil)
	test.T(t, len(spread.Children), 2)
	test.T(t, spread.Parent, root)

	page := root.Find("Page")
	test.That(t, page != nil)
	test.T(t, page.Attr("GeometricBounds"), "0 0 100 200")
	test.That(t, page.HasAttr("Self"))
	test.That(t, !page.HasAttr("ItemTransform"))

	test.T(t, len(root.FindAll("Rectangle")), 1)
	test.That(t, root.Find("Oval") == nil)
}

func TestParseText(t *testing.T) {
	root, err := Parse(strings.NewReader(`<Story><Content>one</Content><Br/><Content>two &amp; three</Content></Story>`))
	test.Error(t, err)
	test.T(t, len(root.Children), 3)
	test.T(t, root.Children[0].Text, "one")
	test.T(t, root.Children[1].Tag, "Br")
	test.T(t, root.Children[2].Text, "two & three")
}

func TestParseEntities(t *testing.T) {
	root, err := Parse(strings.NewReader(`<X A="&lt;&gt;&quot;&apos;&amp;" B="&#65;&#x2028;"><Content>a&#10;b</Content></X>`))
	test.Error(t, err)
	test.T(t, root.Attr("A"), `<>"'&`)
	test.T(t, root.Attr("B"), "A\u2028")
	test.T(t, root.Children[0].Text, "a\nb")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(``))
	test.That(t, err != nil)

	_, err = Parse(strings.NewReader(`<A><B></A>`))
	test.That(t, err != nil)

	_, err = Parse(strings.NewReader(`<A></A><B></B>`))
	test.That(t, err != nil)
}

func TestUnescapeMalformed(t *testing.T) {
	// unknown entities and truncated references pass through untouched
	test.T(t, unescape("a &unknown; b"), "a &unknown; b")
	test.T(t, unescape("broken &amp"), "broken &amp")
	test.T(t, unescape("&#xZZ;"), "&#xZZ;")
	test.T(t, unescape("plain"), "plain")
}
